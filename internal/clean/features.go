package clean

import (
	"math"
	"time"

	"adpulse/domain/campaign"
)

// Performance bucket labels share the break points 1 / 2 / 5; a CTR of 1.0
// lands in Medium, a ROAS of 1.0 in Break-even (left-closed buckets).
var (
	ctrLabels  = [4]string{"Low", "Medium", "High", "Very High"}
	roasLabels = [4]string{"Poor", "Break-even", "Good", "Excellent"}
)

// Enrich adds the analysis feature columns to a cleaned table: calendar
// features, performance categories, and the two efficiency metrics. Purely
// additive; base metrics and KPIs are never touched.
func Enrich(table *campaign.Table) *campaign.Table {
	out := &campaign.Table{
		Records:  append([]campaign.Record(nil), table.Records...),
		Enriched: true,
	}

	for i := range out.Records {
		r := &out.Records[i]

		r.DayOfWeek = r.Date.Weekday().String()
		r.Month = int(r.Date.Month())
		_, r.Week = r.Date.ISOWeek()
		// Weekend under a Monday=0 weekday convention.
		r.IsWeekend = r.Date.Weekday() == time.Saturday || r.Date.Weekday() == time.Sunday

		r.CTRCategory = bucket(r.CTR, ctrLabels)
		r.ROASCategory = bucket(r.ROAS, roasLabels)

		if r.Impressions == 0 {
			// Not used for gating downstream; an undefined ratio stays NaN.
			r.CostPerImpression = math.NaN()
		} else {
			r.CostPerImpression = round4(r.Cost / r.Impressions)
		}
		r.RevenuePerClick = campaign.Round2(campaign.SafeDiv(r.Revenue, r.Clicks))
	}

	return out
}

func bucket(v float64, labels [4]string) string {
	switch {
	case v < 1:
		return labels[0]
	case v < 2:
		return labels[1]
	case v < 5:
		return labels[2]
	default:
		return labels[3]
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
