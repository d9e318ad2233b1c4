// Package clean transforms a raw campaign table into an analysis-ready one.
// The pass order is load-bearing: dates parse first, duplicates drop before
// imputation (so duplicated defects are not imputed twice), imputation
// settles missing cells before the negative-row drop, the drop completes
// over all five base metrics before any IQR capping begins, and the derived
// KPI columns are recomputed only after every base metric has settled.
package clean

import (
	"fmt"
	"math"
	"sort"
	"time"

	"adpulse/domain/campaign"
	"adpulse/internal/errors"

	"github.com/montanaflynn/stats"
)

// cappedMetrics lists the columns the IQR pass clips, in schema order.
var cappedMetrics = []string{
	campaign.MetricImpressions,
	campaign.MetricClicks,
	campaign.MetricCost,
}

// Step records one executed cleaning pass for the audit log.
type Step struct {
	Name     string
	Affected int
	Note     string
}

// Result carries the cleaned table and the per-step audit trail.
type Result struct {
	Table *campaign.Table
	Steps []Step
}

func (r *Result) log(name string, affected int, note string) {
	r.Steps = append(r.Steps, Step{Name: name, Affected: affected, Note: note})
}

// Clean runs the full cleaning sequence over a copy of the input table.
// The only fatal condition is an unparseable date; every other defect is
// repaired in place by the conventions the pipeline guarantees downstream.
func Clean(table *campaign.Table) (*Result, error) {
	result := &Result{Table: &campaign.Table{
		Records: append([]campaign.Record(nil), table.Records...),
	}}

	if err := parseDates(result); err != nil {
		return nil, err
	}
	dropDuplicates(result)
	if err := imputeMissing(result); err != nil {
		return nil, err
	}
	dropNegatives(result)
	capOutliers(result)
	recomputeKPIs(result)

	return result, nil
}

func parseDates(result *Result) error {
	parsed := 0
	for i := range result.Table.Records {
		r := &result.Table.Records[i]
		if r.RawDate == "" {
			if r.Date.IsZero() {
				return errors.InvalidInput(fmt.Sprintf("record %d has no date", i))
			}
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", r.RawDate, time.UTC)
		if err != nil {
			return errors.Wrapf(err, "unparseable date %q at record %d", r.RawDate, i)
		}
		r.Date = d
		parsed++
	}
	result.log("parse_dates", parsed, "date column parsed to calendar days")
	return nil
}

func dropDuplicates(result *Result) {
	seen := make(map[string]struct{}, len(result.Table.Records))
	kept := result.Table.Records[:0]
	removed := 0
	for i := range result.Table.Records {
		key := result.Table.Records[i].DedupKey()
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, result.Table.Records[i])
	}
	result.Table.Records = kept
	result.log("drop_duplicates", removed, "exact duplicate rows removed")
}

// imputeMissing fills missing base-metric cells in schema order:
// impressions and clicks default to 0, the value-bearing columns
// (conversions, cost, revenue) take the column median over the rows
// present at this point in the sequence.
func imputeMissing(result *Result) error {
	for _, col := range campaign.BaseMetrics {
		missing := 0
		var present []float64
		for i := range result.Table.Records {
			v := result.Table.Records[i].Base(col)
			if campaign.Missing(v) {
				missing++
			} else {
				present = append(present, v)
			}
		}
		if missing == 0 {
			continue
		}

		fill := 0.0
		note := "missing filled with 0"
		if col != campaign.MetricImpressions && col != campaign.MetricClicks {
			if len(present) == 0 {
				return errors.ValidationFailed(fmt.Sprintf("column %s has no values to impute from", col))
			}
			median, err := stats.Median(present)
			if err != nil {
				return errors.Wrapf(err, "median of %s", col)
			}
			fill = median
			note = fmt.Sprintf("missing filled with median (%.2f)", median)
		}

		for i := range result.Table.Records {
			r := &result.Table.Records[i]
			if campaign.Missing(r.Base(col)) {
				r.SetBase(col, fill)
			}
		}
		result.log("impute_"+col, missing, note)
	}
	return nil
}

// dropNegatives removes corrupt rows. Negative metrics are impossible in
// advertising data, so the row is discarded rather than repaired.
func dropNegatives(result *Result) {
	for _, col := range campaign.BaseMetrics {
		kept := result.Table.Records[:0]
		removed := 0
		for i := range result.Table.Records {
			if result.Table.Records[i].Base(col) < 0 {
				removed++
				continue
			}
			kept = append(kept, result.Table.Records[i])
		}
		result.Table.Records = kept
		if removed > 0 {
			result.log("drop_negative_"+col, removed, "rows with negative values removed")
		}
	}
}

// capOutliers clips extreme values to the Tukey fences, column by column.
// Capping rather than dropping keeps the row count stable through this pass.
func capOutliers(result *Result) {
	for _, col := range cappedMetrics {
		values := make([]float64, 0, len(result.Table.Records))
		for i := range result.Table.Records {
			values = append(values, result.Table.Records[i].Base(col))
		}
		if len(values) < 4 {
			continue
		}

		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr

		capped := 0
		for i := range result.Table.Records {
			r := &result.Table.Records[i]
			v := r.Base(col)
			if v < lower {
				r.SetBase(col, lower)
				capped++
			} else if v > upper {
				r.SetBase(col, upper)
				capped++
			}
		}
		if capped > 0 {
			result.log("cap_outliers_"+col, capped,
				fmt.Sprintf("IQR bounds [%.2f, %.2f]", lower, upper))
		}
	}
}

func recomputeKPIs(result *Result) {
	for i := range result.Table.Records {
		result.Table.Records[i].RecomputeKPIs()
	}
	result.log("recompute_kpis", len(result.Table.Records), "derived columns rebuilt from cleaned base metrics")
}

// quantile computes the p-quantile with linear interpolation between the
// closest ranks, matching the convention the interchange files were
// produced under. For [1,2,3,4,5,100]: Q1 = 2.25, Q3 = 4.75.
func quantile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
