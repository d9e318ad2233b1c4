// Package analyze turns the processed campaign table into the analysis
// artifacts the dashboard serves: the overall KPI rollup, the three segment
// reports, the daily trend series, statistical anomalies, and the generated
// insight text.
package analyze

import (
	"sort"
	"time"

	"adpulse/domain/campaign"
)

// Overall sums the whole table and derives the aggregate KPI set from the
// sums, never by averaging per-row ratios.
func Overall(table *campaign.Table) campaign.OverallKPIs {
	totals := campaign.Sum(table.Records)
	return campaign.OverallKPIs{
		Totals: totals,
		KPIs:   roundKPIs(campaign.ComputeKPIs(totals)),
	}
}

// ByCampaign groups on the campaign identity triple. Name and type are
// functionally dependent on the id, so the triple produces the same groups
// as the id alone but keeps the labels in the report.
func ByCampaign(table *campaign.Table) *campaign.SegmentReport {
	return segmentReport(table,
		[]string{"campaign_id", "campaign_name", "campaign_type"},
		func(r *campaign.Record) []string {
			return []string{r.CampaignID, r.CampaignName, r.CampaignType}
		})
}

// ByDevice groups on the device column.
func ByDevice(table *campaign.Table) *campaign.SegmentReport {
	return segmentReport(table, []string{"device"},
		func(r *campaign.Record) []string { return []string{r.Device} })
}

// ByLocation groups on the location column.
func ByLocation(table *campaign.Table) *campaign.SegmentReport {
	return segmentReport(table, []string{"location"},
		func(r *campaign.Record) []string { return []string{r.Location} })
}

func segmentReport(table *campaign.Table, keyColumns []string, keyFn func(*campaign.Record) []string) *campaign.SegmentReport {
	groups := make(map[string][]string)
	sums := make(map[string]campaign.Totals)

	for i := range table.Records {
		r := &table.Records[i]
		keys := keyFn(r)
		id := joinKey(keys)
		if _, ok := groups[id]; !ok {
			groups[id] = keys
		}
		t := sums[id]
		t.Impressions += r.Impressions
		t.Clicks += r.Clicks
		t.Conversions += r.Conversions
		t.Cost += r.Cost
		t.Revenue += r.Revenue
		sums[id] = t
	}

	report := &campaign.SegmentReport{KeyColumns: keyColumns}
	for id, keys := range groups {
		totals := sums[id]
		report.Rows = append(report.Rows, campaign.SegmentRow{
			Keys:   keys,
			Totals: totals,
			KPIs:   roundKPIs(campaign.ComputeKPIs(totals)),
		})
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return joinKey(a.Keys) < joinKey(b.Keys)
	})

	return report
}

func joinKey(keys []string) string {
	id := keys[0]
	for _, k := range keys[1:] {
		id += "\x1f" + k
	}
	return id
}

// DailyTrends sums the table per calendar day, derives the daily ratios,
// and attaches trailing 7-day moving averages. The first six days average
// over the days available so far, so the series carries no leading gaps.
func DailyTrends(table *campaign.Table) []campaign.DailyRow {
	sums := make(map[time.Time]campaign.Totals)
	for i := range table.Records {
		r := &table.Records[i]
		day := r.Date
		t := sums[day]
		t.Impressions += r.Impressions
		t.Clicks += r.Clicks
		t.Conversions += r.Conversions
		t.Cost += r.Cost
		t.Revenue += r.Revenue
		sums[day] = t
	}

	rows := make([]campaign.DailyRow, 0, len(sums))
	for day, totals := range sums {
		rows = append(rows, campaign.DailyRow{
			Date:   day,
			Totals: totals,
			CTR:    campaign.Round2(campaign.SafeDiv(totals.Clicks, totals.Impressions) * 100),
			CPC:    campaign.Round2(campaign.SafeDiv(totals.Cost, totals.Clicks)),
			ROAS:   campaign.Round2(campaign.SafeDiv(totals.Revenue, totals.Cost)),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	for i := range rows {
		lo := i - 6
		if lo < 0 {
			lo = 0
		}
		window := rows[lo : i+1]
		var rev, ctr, roas float64
		for _, w := range window {
			rev += w.Revenue
			ctr += w.CTR
			roas += w.ROAS
		}
		n := float64(len(window))
		rows[i].RevenueMA7 = campaign.Round2(rev / n)
		rows[i].CTRMA7 = campaign.Round2(ctr / n)
		rows[i].ROASMA7 = campaign.Round2(roas / n)
	}

	return rows
}

func roundKPIs(k campaign.KPISet) campaign.KPISet {
	return campaign.KPISet{
		CTR:            campaign.Round2(k.CTR),
		CPC:            campaign.Round2(k.CPC),
		CPA:            campaign.Round2(k.CPA),
		ROAS:           campaign.Round2(k.ROAS),
		ConversionRate: campaign.Round2(k.ConversionRate),
	}
}
