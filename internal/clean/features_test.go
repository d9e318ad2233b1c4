package clean

import (
	"math"
	"testing"
	"time"

	"adpulse/domain/campaign"
)

func TestEnrich_CalendarFeatures(t *testing.T) {
	// 2024-01-06 is a Saturday in ISO week 1.
	r := baseRecord("2024-01-06")
	r.Date = time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	out := Enrich(&campaign.Table{Records: []campaign.Record{r}})
	if !out.Enriched {
		t.Fatal("expected Enriched flag set")
	}

	got := out.Records[0]
	if got.DayOfWeek != "Saturday" {
		t.Errorf("DayOfWeek = %q, want Saturday", got.DayOfWeek)
	}
	if got.Month != 1 {
		t.Errorf("Month = %d, want 1", got.Month)
	}
	if got.Week != 1 {
		t.Errorf("Week = %d, want 1", got.Week)
	}
	if !got.IsWeekend {
		t.Error("Saturday should be a weekend")
	}
}

func TestEnrich_Buckets(t *testing.T) {
	cases := []struct {
		value    float64
		ctrCat   string
		roasCat  string
	}{
		{0.5, "Low", "Poor"},
		{1.0, "Medium", "Break-even"},
		{1.99, "Medium", "Break-even"},
		{2.0, "High", "Good"},
		{4.99, "High", "Good"},
		{5.0, "Very High", "Excellent"},
	}

	for _, tc := range cases {
		r := baseRecord("2024-01-01")
		r.Date = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		r.CTR = tc.value
		r.ROAS = tc.value

		out := Enrich(&campaign.Table{Records: []campaign.Record{r}})
		if got := out.Records[0].CTRCategory; got != tc.ctrCat {
			t.Errorf("CTR %v -> category %q, want %q", tc.value, got, tc.ctrCat)
		}
		if got := out.Records[0].ROASCategory; got != tc.roasCat {
			t.Errorf("ROAS %v -> category %q, want %q", tc.value, got, tc.roasCat)
		}
	}
}

func TestEnrich_EfficiencyMetrics(t *testing.T) {
	r := baseRecord("2024-01-01")
	r.Date = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Impressions = 3000
	r.Cost = 10
	r.Revenue = 100
	r.Clicks = 30

	out := Enrich(&campaign.Table{Records: []campaign.Record{r}})
	got := out.Records[0]

	if got.CostPerImpression != 0.0033 {
		t.Errorf("CostPerImpression = %v, want 0.0033", got.CostPerImpression)
	}
	if got.RevenuePerClick != 3.33 {
		t.Errorf("RevenuePerClick = %v, want 3.33", got.RevenuePerClick)
	}
}

func TestEnrich_ZeroDenominators(t *testing.T) {
	r := baseRecord("2024-01-01")
	r.Date = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Impressions = 0
	r.Clicks = 0

	out := Enrich(&campaign.Table{Records: []campaign.Record{r}})
	got := out.Records[0]

	if !math.IsNaN(got.CostPerImpression) {
		t.Errorf("CostPerImpression with zero impressions = %v, want NaN", got.CostPerImpression)
	}
	if got.RevenuePerClick != 0 {
		t.Errorf("RevenuePerClick with zero clicks = %v, want 0", got.RevenuePerClick)
	}
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	r := baseRecord("2024-01-01")
	r.Date = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := &campaign.Table{Records: []campaign.Record{r}}

	Enrich(in)

	if in.Enriched {
		t.Error("input table flagged as enriched")
	}
	if in.Records[0].DayOfWeek != "" {
		t.Error("input record gained feature columns")
	}
}
