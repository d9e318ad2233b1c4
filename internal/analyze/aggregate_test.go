package analyze

import (
	"math"
	"testing"
	"time"

	"adpulse/domain/campaign"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func record(d int, id, device, location string, impr, clicks, conv, cost, rev float64) campaign.Record {
	r := campaign.Record{
		Date:         day(d),
		RawDate:      day(d).Format("2006-01-02"),
		CampaignID:   id,
		CampaignName: "Campaign " + id,
		CampaignType: campaign.TypeSearch,
		Keyword:      "shoes",
		Device:       device,
		Location:     location,
		Impressions:  impr,
		Clicks:       clicks,
		Conversions:  conv,
		Cost:         cost,
		Revenue:      rev,
	}
	r.RecomputeKPIs()
	return r
}

// twoDayTable is the fixture both days of which are fully known:
// totals 1000 impressions, 100 clicks, 10 conversions, 200 cost, 566.6 revenue.
func twoDayTable() *campaign.Table {
	return &campaign.Table{Records: []campaign.Record{
		record(1, "CAMP_001", "Mobile", "New York", 600, 60, 6, 120, 340),
		record(2, "CAMP_002", "Desktop", "Chicago", 400, 40, 4, 80, 226.6),
	}}
}

func TestOverall_TwoDayScenario(t *testing.T) {
	overall := Overall(twoDayTable())

	if overall.Impressions != 1000 || overall.Clicks != 100 {
		t.Fatalf("totals = %+v", overall.Totals)
	}
	if overall.KPIs.CTR != 10 {
		t.Errorf("CTR = %v, want 10", overall.KPIs.CTR)
	}
	if overall.KPIs.CPC != 2 {
		t.Errorf("CPC = %v, want 2", overall.KPIs.CPC)
	}
	if overall.KPIs.CPA != 20 {
		t.Errorf("CPA = %v, want 20", overall.KPIs.CPA)
	}
	if overall.KPIs.ROAS != 2.83 {
		t.Errorf("ROAS = %v, want 2.83", overall.KPIs.ROAS)
	}
	if overall.KPIs.ConversionRate != 10 {
		t.Errorf("conversion rate = %v, want 10", overall.KPIs.ConversionRate)
	}
}

func TestSegmentReports_ConsistentWithOverall(t *testing.T) {
	table := &campaign.Table{Records: []campaign.Record{
		record(1, "CAMP_001", "Mobile", "New York", 600, 60, 6, 120, 340),
		record(1, "CAMP_002", "Desktop", "Chicago", 400, 40, 4, 80, 200),
		record(2, "CAMP_001", "Tablet", "Houston", 500, 25, 2, 50, 90),
		record(2, "CAMP_003", "Mobile", "Chicago", 300, 15, 1, 30, 45),
	}}
	overall := Overall(table)

	for name, report := range map[string]*campaign.SegmentReport{
		"campaign": ByCampaign(table),
		"device":   ByDevice(table),
		"location": ByLocation(table),
	} {
		var totals campaign.Totals
		for _, row := range report.Rows {
			totals.Impressions += row.Impressions
			totals.Clicks += row.Clicks
			totals.Conversions += row.Conversions
			totals.Cost += row.Cost
			totals.Revenue += row.Revenue
		}
		if totals != overall.Totals {
			t.Errorf("%s report totals %+v != overall %+v", name, totals, overall.Totals)
		}
	}
}

func TestSegmentReport_SortedByRevenueDesc(t *testing.T) {
	table := &campaign.Table{Records: []campaign.Record{
		record(1, "CAMP_001", "Mobile", "New York", 600, 60, 6, 120, 100),
		record(1, "CAMP_002", "Desktop", "Chicago", 400, 40, 4, 80, 500),
		record(2, "CAMP_003", "Tablet", "Houston", 500, 25, 2, 50, 300),
	}}

	report := ByCampaign(table)
	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(report.Rows))
	}
	for i := 1; i < len(report.Rows); i++ {
		if report.Rows[i].Revenue > report.Rows[i-1].Revenue {
			t.Fatalf("rows not sorted by revenue: %v before %v",
				report.Rows[i-1].Revenue, report.Rows[i].Revenue)
		}
	}
	if report.Rows[0].Keys[0] != "CAMP_002" {
		t.Errorf("top row = %s, want CAMP_002", report.Rows[0].Keys[0])
	}
}

func TestSegmentReport_ZeroCostSegmentHasZeroROAS(t *testing.T) {
	table := &campaign.Table{Records: []campaign.Record{
		record(1, "CAMP_001", "Mobile", "New York", 600, 60, 6, 0, 340),
	}}

	report := ByCampaign(table)
	if roas := report.Rows[0].KPIs.ROAS; roas != 0 || math.IsInf(roas, 0) {
		t.Errorf("ROAS for zero-cost segment = %v, want 0", roas)
	}
}

func TestDailyTrends_ExpandingThenSlidingWindow(t *testing.T) {
	var records []campaign.Record
	for d := 1; d <= 10; d++ {
		// revenue 100, 200, ..., 1000
		records = append(records,
			record(d, "CAMP_001", "Mobile", "New York", 1000, 100, 10, 100, float64(d)*100))
	}
	rows := DailyTrends(&campaign.Table{Records: records})

	if len(rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(rows))
	}
	if !rows[0].Date.Before(rows[9].Date) {
		t.Fatal("rows not in date order")
	}

	// day 1: window of one
	if rows[0].RevenueMA7 != 100 {
		t.Errorf("day 1 MA = %v, want 100", rows[0].RevenueMA7)
	}
	// day 3: mean of 100,200,300
	if rows[2].RevenueMA7 != 200 {
		t.Errorf("day 3 MA = %v, want 200", rows[2].RevenueMA7)
	}
	// day 7: first full window, mean of 100..700
	if rows[6].RevenueMA7 != 400 {
		t.Errorf("day 7 MA = %v, want 400", rows[6].RevenueMA7)
	}
	// day 10: mean of 400..1000
	if rows[9].RevenueMA7 != 700 {
		t.Errorf("day 10 MA = %v, want 700", rows[9].RevenueMA7)
	}
}

func TestDailyTrends_SumsRecordsSharingADay(t *testing.T) {
	table := &campaign.Table{Records: []campaign.Record{
		record(1, "CAMP_001", "Mobile", "New York", 600, 60, 6, 120, 340),
		record(1, "CAMP_002", "Desktop", "Chicago", 400, 40, 4, 80, 226.6),
	}}

	rows := DailyTrends(table)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].CTR != 10 || rows[0].CPC != 2 || rows[0].ROAS != 2.83 {
		t.Errorf("daily ratios = %v/%v/%v, want 10/2/2.83",
			rows[0].CTR, rows[0].CPC, rows[0].ROAS)
	}
}
