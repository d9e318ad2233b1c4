package campaign

import (
	"math"
	"testing"
)

func TestSafeDiv_ZeroGuard(t *testing.T) {
	if got := SafeDiv(10, 0); got != 0 {
		t.Errorf("SafeDiv(10, 0) = %v, want 0", got)
	}
	if got := SafeDiv(0, 0); got != 0 {
		t.Errorf("SafeDiv(0, 0) = %v, want 0", got)
	}
	if got := SafeDiv(math.NaN(), 5); got != 0 {
		t.Errorf("SafeDiv(NaN, 5) = %v, want 0", got)
	}
	if got := SafeDiv(10, math.NaN()); got != 0 {
		t.Errorf("SafeDiv(10, NaN) = %v, want 0", got)
	}
	if got := SafeDiv(10, 4); got != 2.5 {
		t.Errorf("SafeDiv(10, 4) = %v, want 2.5", got)
	}
}

func TestComputeKPIs_TwoDayScenario(t *testing.T) {
	// Two rows: impressions [100,200], clicks [10,20], conversions [1,2],
	// cost [20,40], revenue [50,120].
	totals := Sum([]Record{
		{Impressions: 100, Clicks: 10, Conversions: 1, Cost: 20, Revenue: 50},
		{Impressions: 200, Clicks: 20, Conversions: 2, Cost: 40, Revenue: 120},
	})

	kpis := ComputeKPIs(totals)

	if kpis.CTR != 10 {
		t.Errorf("CTR = %v, want 10", kpis.CTR)
	}
	if kpis.CPC != 2 {
		t.Errorf("CPC = %v, want 2", kpis.CPC)
	}
	if kpis.CPA != 20 {
		t.Errorf("CPA = %v, want 20", kpis.CPA)
	}
	if math.Abs(kpis.ROAS-170.0/60.0) > 1e-12 {
		t.Errorf("ROAS = %v, want %v", kpis.ROAS, 170.0/60.0)
	}
	if kpis.ConversionRate != 10 {
		t.Errorf("ConversionRate = %v, want 10", kpis.ConversionRate)
	}
}

func TestRecomputeKPIs_RowZeroGuards(t *testing.T) {
	cases := []struct {
		name   string
		rec    Record
		verify func(t *testing.T, r *Record)
	}{
		{
			name: "zero impressions yields zero ctr",
			rec:  Record{Impressions: 0, Clicks: 0, Conversions: 0, Cost: 5, Revenue: 0},
			verify: func(t *testing.T, r *Record) {
				if r.CTR != 0 {
					t.Errorf("CTR = %v, want 0", r.CTR)
				}
			},
		},
		{
			name: "zero clicks yields zero cpc and conversion rate",
			rec:  Record{Impressions: 100, Clicks: 0, Conversions: 0, Cost: 5, Revenue: 0},
			verify: func(t *testing.T, r *Record) {
				if r.CPC != 0 || r.ConversionRate != 0 {
					t.Errorf("CPC = %v, ConversionRate = %v, want 0, 0", r.CPC, r.ConversionRate)
				}
			},
		},
		{
			name: "zero conversions yields zero cpa",
			rec:  Record{Impressions: 100, Clicks: 10, Conversions: 0, Cost: 5, Revenue: 0},
			verify: func(t *testing.T, r *Record) {
				if r.CPA != 0 {
					t.Errorf("CPA = %v, want 0", r.CPA)
				}
			},
		},
		{
			name: "zero cost yields zero roas",
			rec:  Record{Impressions: 100, Clicks: 10, Conversions: 1, Cost: 0, Revenue: 50},
			verify: func(t *testing.T, r *Record) {
				if r.ROAS != 0 {
					t.Errorf("ROAS = %v, want 0", r.ROAS)
				}
			},
		},
		{
			name: "ctr clipped at 100",
			rec:  Record{Impressions: 10, Clicks: 200, Conversions: 1, Cost: 1, Revenue: 1},
			verify: func(t *testing.T, r *Record) {
				if r.CTR != 100 {
					t.Errorf("CTR = %v, want 100 (clipped)", r.CTR)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.rec
			r.RecomputeKPIs()
			tc.verify(t, &r)
		})
	}
}

func TestSum_SkipsMissingCells(t *testing.T) {
	totals := Sum([]Record{
		{Impressions: 100, Clicks: math.NaN(), Cost: 10},
		{Impressions: 50, Clicks: 5, Cost: math.NaN()},
	})
	if totals.Impressions != 150 {
		t.Errorf("Impressions = %v, want 150", totals.Impressions)
	}
	if totals.Clicks != 5 {
		t.Errorf("Clicks = %v, want 5", totals.Clicks)
	}
	if totals.Cost != 10 {
		t.Errorf("Cost = %v, want 10", totals.Cost)
	}
}
