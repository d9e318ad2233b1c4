package campaign

import "math"

// Totals is the sum of the five base metrics over some slice of the table.
type Totals struct {
	Impressions float64
	Clicks      float64
	Conversions float64
	Cost        float64
	Revenue     float64
}

// KPISet carries the five derived ratios computed from a Totals.
type KPISet struct {
	CTR            float64 // percentage, 0-100
	CPC            float64 // USD per click
	CPA            float64 // USD per conversion
	ROAS           float64 // revenue multiple of cost
	ConversionRate float64 // percentage, 0-100
}

// SafeDiv divides n by d under the pipeline-wide convention that a zero,
// missing, or non-finite denominator yields 0 rather than Inf or NaN.
func SafeDiv(n, d float64) float64 {
	if d == 0 || math.IsNaN(d) || math.IsNaN(n) {
		return 0
	}
	q := n / d
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return 0
	}
	return q
}

// Round2 rounds to two decimal places, matching the precision stored in the
// interchange files.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeKPIs derives the full KPI set from metric totals.
func ComputeKPIs(t Totals) KPISet {
	return KPISet{
		CTR:            SafeDiv(t.Clicks, t.Impressions) * 100,
		CPC:            SafeDiv(t.Cost, t.Clicks),
		CPA:            SafeDiv(t.Cost, t.Conversions),
		ROAS:           SafeDiv(t.Revenue, t.Cost),
		ConversionRate: SafeDiv(t.Conversions, t.Clicks) * 100,
	}
}

// Sum accumulates the base metrics of every record. Missing cells are
// skipped; callers aggregating cleaned tables never hit that path.
func Sum(records []Record) Totals {
	var t Totals
	for i := range records {
		r := &records[i]
		t.Impressions += orZero(r.Impressions)
		t.Clicks += orZero(r.Clicks)
		t.Conversions += orZero(r.Conversions)
		t.Cost += orZero(r.Cost)
		t.Revenue += orZero(r.Revenue)
	}
	return t
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// RecomputeKPIs rewrites the record's derived columns from its base metrics,
// applying the zero-guard convention and clipping the two rate columns at 100.
func (r *Record) RecomputeKPIs() {
	r.CTR = math.Min(Round2(SafeDiv(r.Clicks, r.Impressions)*100), 100)
	r.CPC = Round2(SafeDiv(r.Cost, r.Clicks))
	r.CPA = Round2(SafeDiv(r.Cost, r.Conversions))
	r.ROAS = Round2(SafeDiv(r.Revenue, r.Cost))
	r.ConversionRate = math.Min(Round2(SafeDiv(r.Conversions, r.Clicks)*100), 100)
}
