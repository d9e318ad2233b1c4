package campaign

import "time"

// SegmentRow is one aggregated row of a segment report: the segment key
// values, the summed base metrics, and the KPIs reapplied over those sums.
type SegmentRow struct {
	Keys []string
	Totals
	KPIs KPISet
}

// SegmentReport is the result of grouping the processed table on a segment
// key, sorted descending by revenue. KeyColumns names the key fields in the
// same order Keys carries their values (campaign reports use three: id,
// name, type).
type SegmentReport struct {
	KeyColumns []string
	Rows       []SegmentRow
}

// DailyRow is one calendar day of the daily trends table: summed base
// metrics, the daily CTR/CPC/ROAS, and trailing 7-day moving averages over
// the date-ordered series. Days 1-6 average over the days available so far.
type DailyRow struct {
	Date time.Time
	Totals
	CTR  float64
	CPC  float64
	ROAS float64

	RevenueMA7 float64
	CTRMA7     float64
	ROASMA7    float64
}

// Anomaly flags one (date, metric) pair whose z-score against the full
// series exceeds the detection threshold.
type Anomaly struct {
	Date          time.Time
	Metric        string
	Value         float64
	ZScore        float64
	ExpectedRange string // "[low - high]" formatted to two decimals
}

// InsightSet groups the generated insight strings by category. Pure
// presentation text, derived from the aggregates by rule evaluation.
type InsightSet struct {
	TopPerformers             []string
	OptimizationOpportunities []string
	Trends                    []string
	Recommendations           []string
}

// OverallKPIs is the whole-table rollup the analyzer prints and the
// dashboard re-derives for filtered subsets.
type OverallKPIs struct {
	Totals
	KPIs KPISet
}
