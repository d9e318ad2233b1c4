// Package store reads and writes the pipeline interchange files. Every
// stage communicates with the next through these files alone, so each
// reader reports a missing file together with the stage that produces it.
package store

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"adpulse/domain/campaign"
	"adpulse/internal/errors"
)

const dateLayout = "2006-01-02"

// rawColumns is the column order of the generator outputs and the first 17
// columns of the processed file.
var rawColumns = []string{
	"date", "campaign_id", "campaign_name", "campaign_type", "keyword",
	"device", "location",
	"impressions", "clicks", "conversions", "cost", "revenue",
	"ctr", "cpc", "cpa", "roas", "conversion_rate",
}

// featureColumns extends rawColumns on enriched tables.
var featureColumns = []string{
	"day_of_week", "month", "week", "is_weekend",
	"ctr_category", "roas_category",
	"cost_per_impression", "revenue_per_click",
}

// WriteTable persists a campaign table. Enriched tables carry the feature
// columns after the base schema; raw tables carry the base schema alone.
func WriteTable(path string, table *campaign.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StorageError(fmt.Sprintf("create %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := rawColumns
	if table.Enriched {
		header = append(append([]string(nil), rawColumns...), featureColumns...)
	}
	if err := w.Write(header); err != nil {
		return errors.StorageError(fmt.Sprintf("write %s", path), err)
	}

	for i := range table.Records {
		if err := w.Write(recordCells(&table.Records[i], table.Enriched)); err != nil {
			return errors.StorageError(fmt.Sprintf("write %s", path), err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadTable loads a campaign table written by WriteTable. producingStage
// names the stage whose output the caller expects at path; it is only used
// for the missing-file error. A parseable date column populates Date, the
// raw text is always retained in RawDate.
func ReadTable(path, producingStage string) (*campaign.Table, error) {
	rows, header, err := readCSV(path, producingStage)
	if err != nil {
		return nil, err
	}

	enriched := len(header) == len(rawColumns)+len(featureColumns)
	if !enriched && len(header) != len(rawColumns) {
		return nil, errors.StorageError(
			fmt.Sprintf("%s: unexpected column count %d", path, len(header)), nil)
	}

	table := &campaign.Table{Enriched: enriched}
	for n, row := range rows {
		r, err := parseRecord(row, enriched)
		if err != nil {
			return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
		}
		table.Records = append(table.Records, r)
	}
	return table, nil
}

func recordCells(r *campaign.Record, enriched bool) []string {
	date := r.RawDate
	if date == "" {
		date = r.Date.Format(dateLayout)
	}
	cells := []string{
		date, r.CampaignID, r.CampaignName, r.CampaignType, r.Keyword,
		r.Device, r.Location,
		formatFloat(r.Impressions), formatFloat(r.Clicks), formatFloat(r.Conversions),
		formatFloat(r.Cost), formatFloat(r.Revenue),
		formatFloat(r.CTR), formatFloat(r.CPC), formatFloat(r.CPA),
		formatFloat(r.ROAS), formatFloat(r.ConversionRate),
	}
	if enriched {
		cells = append(cells,
			r.DayOfWeek,
			strconv.Itoa(r.Month),
			strconv.Itoa(r.Week),
			strconv.FormatBool(r.IsWeekend),
			r.CTRCategory,
			r.ROASCategory,
			formatFloat(r.CostPerImpression),
			formatFloat(r.RevenuePerClick),
		)
	}
	return cells
}

func parseRecord(row []string, enriched bool) (campaign.Record, error) {
	r := campaign.Record{
		RawDate:      row[0],
		CampaignID:   row[1],
		CampaignName: row[2],
		CampaignType: row[3],
		Keyword:      row[4],
		Device:       row[5],
		Location:     row[6],
	}
	if d, err := time.ParseInLocation(dateLayout, row[0], time.UTC); err == nil {
		r.Date = d
	}

	floats := []*float64{
		&r.Impressions, &r.Clicks, &r.Conversions, &r.Cost, &r.Revenue,
		&r.CTR, &r.CPC, &r.CPA, &r.ROAS, &r.ConversionRate,
	}
	for i, dst := range floats {
		v, err := parseFloat(row[7+i])
		if err != nil {
			return r, fmt.Errorf("column %s: %w", rawColumns[7+i], err)
		}
		*dst = v
	}

	if !enriched {
		return r, nil
	}

	f := row[len(rawColumns):]
	r.DayOfWeek = f[0]
	var err error
	if r.Month, err = strconv.Atoi(f[1]); err != nil {
		return r, fmt.Errorf("column month: %w", err)
	}
	if r.Week, err = strconv.Atoi(f[2]); err != nil {
		return r, fmt.Errorf("column week: %w", err)
	}
	if r.IsWeekend, err = strconv.ParseBool(f[3]); err != nil {
		return r, fmt.Errorf("column is_weekend: %w", err)
	}
	r.CTRCategory = f[4]
	r.ROASCategory = f[5]
	if r.CostPerImpression, err = parseFloat(f[6]); err != nil {
		return r, fmt.Errorf("column cost_per_impression: %w", err)
	}
	if r.RevenuePerClick, err = parseFloat(f[7]); err != nil {
		return r, fmt.Errorf("column revenue_per_click: %w", err)
	}
	return r, nil
}

// WriteSegmentReport persists one aggregate report: key columns first, then
// the summed metrics and the KPI columns.
func WriteSegmentReport(path string, report *campaign.SegmentReport) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StorageError(fmt.Sprintf("create %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append(append([]string(nil), report.KeyColumns...),
		"impressions", "clicks", "conversions", "cost", "revenue",
		"ctr", "cpc", "cpa", "roas", "conversion_rate")
	if err := w.Write(header); err != nil {
		return errors.StorageError(fmt.Sprintf("write %s", path), err)
	}

	for _, row := range report.Rows {
		cells := append(append([]string(nil), row.Keys...),
			formatFloat(row.Impressions), formatFloat(row.Clicks),
			formatFloat(row.Conversions), formatFloat(row.Cost), formatFloat(row.Revenue),
			formatFloat(row.KPIs.CTR), formatFloat(row.KPIs.CPC), formatFloat(row.KPIs.CPA),
			formatFloat(row.KPIs.ROAS), formatFloat(row.KPIs.ConversionRate))
		if err := w.Write(cells); err != nil {
			return errors.StorageError(fmt.Sprintf("write %s", path), err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSegmentReport loads a report written by WriteSegmentReport. keyCount
// is the number of leading key columns (3 for campaign reports, 1 for
// device and location).
func ReadSegmentReport(path string, keyCount int, producingStage string) (*campaign.SegmentReport, error) {
	rows, header, err := readCSV(path, producingStage)
	if err != nil {
		return nil, err
	}
	if len(header) != keyCount+10 {
		return nil, errors.StorageError(
			fmt.Sprintf("%s: unexpected column count %d", path, len(header)), nil)
	}

	report := &campaign.SegmentReport{KeyColumns: header[:keyCount]}
	for n, row := range rows {
		seg := campaign.SegmentRow{Keys: row[:keyCount]}
		cells := row[keyCount:]
		dsts := []*float64{
			&seg.Impressions, &seg.Clicks, &seg.Conversions, &seg.Cost, &seg.Revenue,
			&seg.KPIs.CTR, &seg.KPIs.CPC, &seg.KPIs.CPA, &seg.KPIs.ROAS, &seg.KPIs.ConversionRate,
		}
		for i, dst := range dsts {
			v, err := parseFloat(cells[i])
			if err != nil {
				return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
			}
			*dst = v
		}
		report.Rows = append(report.Rows, seg)
	}
	return report, nil
}

// WriteDailyTrends persists the date-ordered daily series with its moving
// averages.
func WriteDailyTrends(path string, rows []campaign.DailyRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StorageError(fmt.Sprintf("create %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date", "impressions", "clicks", "conversions", "cost", "revenue",
		"ctr", "cpc", "roas", "revenue_ma7", "ctr_ma7", "roas_ma7",
	}
	if err := w.Write(header); err != nil {
		return errors.StorageError(fmt.Sprintf("write %s", path), err)
	}

	for _, row := range rows {
		cells := []string{
			row.Date.Format(dateLayout),
			formatFloat(row.Impressions), formatFloat(row.Clicks),
			formatFloat(row.Conversions), formatFloat(row.Cost), formatFloat(row.Revenue),
			formatFloat(row.CTR), formatFloat(row.CPC), formatFloat(row.ROAS),
			formatFloat(row.RevenueMA7), formatFloat(row.CTRMA7), formatFloat(row.ROASMA7),
		}
		if err := w.Write(cells); err != nil {
			return errors.StorageError(fmt.Sprintf("write %s", path), err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadDailyTrends loads the series written by WriteDailyTrends.
func ReadDailyTrends(path, producingStage string) ([]campaign.DailyRow, error) {
	rows, _, err := readCSV(path, producingStage)
	if err != nil {
		return nil, err
	}

	out := make([]campaign.DailyRow, 0, len(rows))
	for n, row := range rows {
		var daily campaign.DailyRow
		daily.Date, err = time.ParseInLocation(dateLayout, row[0], time.UTC)
		if err != nil {
			return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
		}
		dsts := []*float64{
			&daily.Impressions, &daily.Clicks, &daily.Conversions, &daily.Cost, &daily.Revenue,
			&daily.CTR, &daily.CPC, &daily.ROAS,
			&daily.RevenueMA7, &daily.CTRMA7, &daily.ROASMA7,
		}
		for i, dst := range dsts {
			v, err := parseFloat(row[1+i])
			if err != nil {
				return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
			}
			*dst = v
		}
		out = append(out, daily)
	}
	return out, nil
}

// WriteAnomalies persists the flagged (date, metric) pairs.
func WriteAnomalies(path string, anomalies []campaign.Anomaly) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StorageError(fmt.Sprintf("create %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "metric", "value", "z_score", "expected_range"}); err != nil {
		return errors.StorageError(fmt.Sprintf("write %s", path), err)
	}
	for _, a := range anomalies {
		cells := []string{
			a.Date.Format(dateLayout), a.Metric,
			formatFloat(a.Value), formatFloat(a.ZScore), a.ExpectedRange,
		}
		if err := w.Write(cells); err != nil {
			return errors.StorageError(fmt.Sprintf("write %s", path), err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadAnomalies loads the anomaly report written by WriteAnomalies.
func ReadAnomalies(path, producingStage string) ([]campaign.Anomaly, error) {
	rows, _, err := readCSV(path, producingStage)
	if err != nil {
		return nil, err
	}

	out := make([]campaign.Anomaly, 0, len(rows))
	for n, row := range rows {
		var a campaign.Anomaly
		a.Date, err = time.ParseInLocation(dateLayout, row[0], time.UTC)
		if err != nil {
			return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
		}
		a.Metric = row[1]
		if a.Value, err = parseFloat(row[2]); err != nil {
			return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
		}
		if a.ZScore, err = parseFloat(row[3]); err != nil {
			return nil, errors.StorageError(fmt.Sprintf("%s row %d", path, n+2), err)
		}
		a.ExpectedRange = row[4]
		out = append(out, a)
	}
	return out, nil
}

func readCSV(path, producingStage string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.MissingUpstream(path, producingStage)
		}
		return nil, nil, errors.StorageError(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.StorageError(fmt.Sprintf("read %s", path), err)
	}
	if len(all) == 0 {
		return nil, nil, errors.StorageError(fmt.Sprintf("%s: empty file", path), nil)
	}
	return all[1:], all[0], nil
}

// formatFloat renders a metric cell; missing values become empty cells the
// way the upstream tooling wrote them.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
