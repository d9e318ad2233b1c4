package analyze

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"adpulse/domain/campaign"
)

// minTrendDays is the history needed before the revenue trend rule can
// compare the first full week against the last without the windows
// overlapping.
const minTrendDays = 14

// Insights evaluates the rule set over the computed aggregates and returns
// the categorized insight text. Every rule degrades to silence (or an
// explicit "insufficient history" note) when its inputs are empty, so the
// analyzer never fails on a thin dataset.
func Insights(overall campaign.OverallKPIs, byCampaign, byDevice, byLocation *campaign.SegmentReport, daily []campaign.DailyRow) *campaign.InsightSet {
	set := &campaign.InsightSet{}

	topPerformers(set, byCampaign, byDevice, byLocation)
	optimizations(set, byCampaign)
	trends(set, byDevice, daily)
	recommendations(set, byCampaign, byDevice, byLocation)

	return set
}

func topPerformers(set *campaign.InsightSet, byCampaign, byDevice, byLocation *campaign.SegmentReport) {
	if best := maxByROAS(byCampaign); best != nil {
		set.TopPerformers = append(set.TopPerformers,
			fmt.Sprintf("Best performing campaign: %s with ROAS of %.2fx", best.Keys[1], best.KPIs.ROAS))
	}
	if best := maxByROAS(byDevice); best != nil {
		set.TopPerformers = append(set.TopPerformers,
			fmt.Sprintf("%s delivers the highest return at %.2fx ROAS", best.Keys[0], best.KPIs.ROAS))
	}
	if best := maxByROAS(byLocation); best != nil {
		set.TopPerformers = append(set.TopPerformers,
			fmt.Sprintf("Strongest market: %s with ROAS of %.2fx", best.Keys[0], best.KPIs.ROAS))
	}
}

func optimizations(set *campaign.InsightSet, byCampaign *campaign.SegmentReport) {
	if worst := minByROAS(byCampaign); worst != nil {
		msg := fmt.Sprintf("Weakest campaign: %s with ROAS of %.2fx", worst.Keys[1], worst.KPIs.ROAS)
		if worst.KPIs.ROAS < 1.0 {
			msg += " - running at a loss, consider pausing"
		}
		set.OptimizationOpportunities = append(set.OptimizationOpportunities, msg)
	}

	if len(byCampaign.Rows) < 2 {
		return
	}
	cpcs := make([]float64, 0, len(byCampaign.Rows))
	for i := range byCampaign.Rows {
		cpcs = append(cpcs, byCampaign.Rows[i].KPIs.CPC)
	}
	meanCPC, err := stats.Mean(cpcs)
	if err != nil || meanCPC == 0 {
		return
	}
	for i := range byCampaign.Rows {
		row := &byCampaign.Rows[i]
		if row.KPIs.CPC > 1.5*meanCPC {
			set.OptimizationOpportunities = append(set.OptimizationOpportunities,
				fmt.Sprintf("%s pays %.2f per click against a %.2f average - review keyword bids",
					row.Keys[1], row.KPIs.CPC, meanCPC))
		}
	}
}

func trends(set *campaign.InsightSet, byDevice *campaign.SegmentReport, daily []campaign.DailyRow) {
	if len(daily) < minTrendDays {
		set.Trends = append(set.Trends,
			fmt.Sprintf("Insufficient history for trend analysis (%d days, need %d)", len(daily), minTrendDays))
	} else {
		var first, last float64
		for _, row := range daily[:7] {
			first += row.Revenue
		}
		for _, row := range daily[len(daily)-7:] {
			last += row.Revenue
		}

		change := campaign.SafeDiv(last-first, first) * 100
		switch {
		case change > 5:
			set.Trends = append(set.Trends,
				fmt.Sprintf("Revenue is trending up: last 7 days %.2f%% above the first week", change))
		case change < -5:
			set.Trends = append(set.Trends,
				fmt.Sprintf("Revenue is trending down: last 7 days %.2f%% below the first week", -change))
		default:
			set.Trends = append(set.Trends, "Revenue is stable across the period")
		}
	}

	if mobile := segmentRow(byDevice, "Mobile"); mobile != nil {
		set.Trends = append(set.Trends, fmt.Sprintf("Mobile ROAS: %.2fx", mobile.KPIs.ROAS))
	}
}

func recommendations(set *campaign.InsightSet, byCampaign, byDevice, byLocation *campaign.SegmentReport) {
	var strong []string
	if byCampaign != nil {
		for i := range byCampaign.Rows {
			if byCampaign.Rows[i].KPIs.ROAS > 1.5 {
				strong = append(strong, byCampaign.Rows[i].Keys[1])
			}
		}
	}
	if len(strong) > 0 {
		set.Recommendations = append(set.Recommendations,
			fmt.Sprintf("Shift budget toward campaigns returning above 1.5x: %s", strings.Join(strong, ", ")))
	}

	if best, worst := maxByROAS(byDevice), minByROAS(byDevice); best != nil && worst != nil &&
		worst.KPIs.ROAS > 0 && best.KPIs.ROAS > 1.5*worst.KPIs.ROAS {
		set.Recommendations = append(set.Recommendations,
			fmt.Sprintf("Shift spend toward %s: it returns %.2fx against %.2fx on %s",
				best.Keys[0], best.KPIs.ROAS, worst.KPIs.ROAS, worst.Keys[0]))
	}

	if len(byLocation.Rows) > 0 {
		top := byLocation.Rows
		if len(top) > 3 {
			top = top[:3]
		}
		names := make([]string, 0, len(top))
		for i := range top {
			names = append(names, top[i].Keys[0])
		}
		set.Recommendations = append(set.Recommendations,
			fmt.Sprintf("Top revenue markets: %s", strings.Join(names, ", ")))
	}
}

func segmentRow(report *campaign.SegmentReport, key string) *campaign.SegmentRow {
	if report == nil {
		return nil
	}
	for i := range report.Rows {
		if len(report.Rows[i].Keys) > 0 && report.Rows[i].Keys[0] == key {
			return &report.Rows[i]
		}
	}
	return nil
}

func maxByROAS(report *campaign.SegmentReport) *campaign.SegmentRow {
	return extremeByROAS(report, func(a, b float64) bool { return a > b })
}

func minByROAS(report *campaign.SegmentReport) *campaign.SegmentRow {
	return extremeByROAS(report, func(a, b float64) bool { return a < b })
}

func extremeByROAS(report *campaign.SegmentReport, better func(a, b float64) bool) *campaign.SegmentRow {
	if report == nil || len(report.Rows) == 0 {
		return nil
	}
	idx := 0
	for i := 1; i < len(report.Rows); i++ {
		if better(report.Rows[i].KPIs.ROAS, report.Rows[idx].KPIs.ROAS) {
			idx = i
		}
	}
	return &report.Rows[idx]
}
