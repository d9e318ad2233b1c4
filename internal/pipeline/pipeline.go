// Package pipeline runs the four-stage batch flow end to end: generate,
// process, analyze, and the optional archive of the finished run. Each stage
// is also callable on its own; the stage commands wrap exactly one call each.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"adpulse/domain/campaign"
	"adpulse/internal"
	"adpulse/internal/analyze"
	"adpulse/internal/clean"
	"adpulse/internal/config"
	"adpulse/internal/errors"
	"adpulse/internal/generate"
	"adpulse/internal/quality"
	"adpulse/internal/store"
)

// GenerateResult is what the generator stage produced and persisted.
type GenerateResult struct {
	Clean   *campaign.Table
	Raw     *campaign.Table
	Summary generate.Summary
}

// ProcessResult is the processor stage output: the quality report over the
// raw input, the cleaning audit trail, and the validated processed table.
type ProcessResult struct {
	Quality    quality.Report
	Steps      []clean.Step
	Processed  *campaign.Table
	Validation clean.Validation
}

// AnalyzeResult is every artifact the analyzer computed and persisted.
type AnalyzeResult struct {
	Overall    campaign.OverallKPIs
	ByCampaign *campaign.SegmentReport
	ByDevice   *campaign.SegmentReport
	ByLocation *campaign.SegmentReport
	Daily      []campaign.DailyRow
	Anomalies  []campaign.Anomaly
	Insights   *campaign.InsightSet
}

// RunGenerate builds the synthetic dataset, injects defects, and writes
// both interchange files.
func RunGenerate(cfg *config.Config, log *internal.Logger) (*GenerateResult, error) {
	start, err := time.ParseInLocation("2006-01-02", cfg.Generate.StartDate, time.UTC)
	if err != nil {
		return nil, errors.ConfigInvalid(
			fmt.Sprintf("invalid GENERATE_START %q (expected YYYY-MM-DD)", cfg.Generate.StartDate))
	}

	gen, err := generate.New(generate.Config{
		Days:        cfg.Generate.Days,
		Seed:        cfg.Generate.Seed,
		StartDate:   start,
		AnomalyRate: cfg.Generate.AnomalyRate,
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, errors.StorageError("create data directory", err)
	}

	log.Info("generating %d days of campaign data (seed %d)", cfg.Generate.Days, cfg.Generate.Seed)
	cleanTable := gen.Generate()
	rawTable := gen.InjectAnomalies(cleanTable)

	if err := store.WriteTable(cfg.Data.Path(cfg.Data.CleanFile), cleanTable); err != nil {
		return nil, err
	}
	if err := store.WriteTable(cfg.Data.Path(cfg.Data.RawFile), rawTable); err != nil {
		return nil, err
	}

	summary := generate.Summarize(cleanTable)
	log.Info("wrote %d records to %s and %s", cleanTable.Len(),
		cfg.Data.Path(cfg.Data.CleanFile), cfg.Data.Path(cfg.Data.RawFile))

	return &GenerateResult{Clean: cleanTable, Raw: rawTable, Summary: summary}, nil
}

// RunProcess reads the defect-injected dataset, assesses its quality,
// cleans and enriches it, and persists the processed table only when the
// validation gate passes.
func RunProcess(cfg *config.Config, log *internal.Logger) (*ProcessResult, error) {
	raw, err := store.ReadTable(cfg.Data.Path(cfg.Data.RawFile), "generate")
	if err != nil {
		return nil, err
	}
	log.Info("loaded %d raw records", raw.Len())

	report := quality.Assess(raw)
	log.Info("quality: %d duplicates, %d columns with missing values",
		report.DuplicateRecords, len(report.MissingValues))

	cleaned, err := clean.Clean(raw)
	if err != nil {
		return nil, err
	}
	for _, step := range cleaned.Steps {
		log.Debug("cleaning step %s: %d affected (%s)", step.Name, step.Affected, step.Note)
	}

	enriched := clean.Enrich(cleaned.Table)

	result := &ProcessResult{
		Quality:    report,
		Steps:      cleaned.Steps,
		Processed:  enriched,
		Validation: clean.Validate(enriched),
	}
	if !result.Validation.Valid {
		return result, errors.ValidationFailed(
			"processed data failed validation: " + strings.Join(result.Validation.Issues, "; "))
	}

	if err := store.WriteTable(cfg.Data.Path(cfg.Data.ProcessedFile), enriched); err != nil {
		return nil, err
	}
	log.Info("wrote %d processed records to %s", enriched.Len(),
		cfg.Data.Path(cfg.Data.ProcessedFile))

	return result, nil
}

// RunAnalyze reads the processed table, computes every analysis artifact,
// and persists the reports, the anomaly file, the insights document, and
// the XLSX workbook.
func RunAnalyze(cfg *config.Config, log *internal.Logger) (*AnalyzeResult, error) {
	table, err := store.ReadTable(cfg.Data.Path(cfg.Data.ProcessedFile), "process")
	if err != nil {
		return nil, err
	}
	log.Info("analyzing %d processed records", table.Len())

	result := &AnalyzeResult{
		Overall:    analyze.Overall(table),
		ByCampaign: analyze.ByCampaign(table),
		ByDevice:   analyze.ByDevice(table),
		ByLocation: analyze.ByLocation(table),
		Daily:      analyze.DailyTrends(table),
	}
	result.Anomalies = analyze.DetectAnomalies(result.Daily, cfg.Analyze.AnomalyThreshold)
	result.Insights = analyze.Insights(result.Overall,
		result.ByCampaign, result.ByDevice, result.ByLocation, result.Daily)

	log.Info("found %d anomalies across %d days", len(result.Anomalies), len(result.Daily))

	if err := store.WriteSegmentReport(cfg.Data.Path(cfg.Data.CampaignPerfFile), result.ByCampaign); err != nil {
		return nil, err
	}
	if err := store.WriteSegmentReport(cfg.Data.Path(cfg.Data.DevicePerfFile), result.ByDevice); err != nil {
		return nil, err
	}
	if err := store.WriteSegmentReport(cfg.Data.Path(cfg.Data.LocationPerfFile), result.ByLocation); err != nil {
		return nil, err
	}
	if err := store.WriteDailyTrends(cfg.Data.Path(cfg.Data.DailyTrendsFile), result.Daily); err != nil {
		return nil, err
	}
	if err := store.WriteAnomalies(cfg.Data.Path(cfg.Data.AnomaliesFile), result.Anomalies); err != nil {
		return nil, err
	}

	md := analyze.RenderMarkdown(result.Insights, result.Anomalies)
	if err := os.WriteFile(cfg.Data.Path(cfg.Data.InsightsFile), []byte(md), 0o644); err != nil {
		return nil, errors.StorageError("write insights document", err)
	}

	if err := store.WriteWorkbook(cfg.Data.Path(cfg.Data.WorkbookFile), result.Overall,
		result.ByCampaign, result.ByDevice, result.ByLocation, result.Daily); err != nil {
		return nil, err
	}
	log.Info("analysis artifacts written to %s", cfg.Data.Dir)

	return result, nil
}

// Run executes the full pipeline and, when DATABASE_URL is configured,
// archives the completed run.
func Run(ctx context.Context, cfg *config.Config, log *internal.Logger) error {
	runID := uuid.New()
	startedAt := time.Now().UTC()
	log.Info("pipeline run %s starting", runID)

	genResult, err := RunGenerate(cfg, log)
	if err != nil {
		return errors.Wrap(err, "generate stage failed")
	}
	procResult, err := RunProcess(cfg, log)
	if err != nil {
		return errors.Wrap(err, "process stage failed")
	}
	analyzeResult, err := RunAnalyze(cfg, log)
	if err != nil {
		return errors.Wrap(err, "analyze stage failed")
	}

	log.Info("pipeline run %s complete: %d raw records, %d cleaned, ROAS %.2fx",
		runID, genResult.Raw.Len(), procResult.Processed.Len(),
		analyzeResult.Overall.KPIs.ROAS)

	if cfg.Archive.DatabaseURL == "" {
		return nil
	}

	archive, err := store.OpenArchive(ctx, cfg.Archive.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "open run archive")
	}
	defer archive.Close()

	run := &store.RunRecord{
		ID:          runID,
		StartedAt:   startedAt,
		FinishedAt:  time.Now().UTC(),
		RawRecords:  genResult.Raw.Len(),
		CleanedRows: procResult.Processed.Len(),
		Overall:     analyzeResult.Overall,
	}
	if err := archive.SaveRun(ctx, run); err != nil {
		return errors.Wrap(err, "archive pipeline run")
	}
	log.Info("run %s archived", runID)
	return nil
}
