package analyze

import (
	"testing"

	"adpulse/domain/campaign"
)

func flatDays(n int, revenue float64) []campaign.DailyRow {
	rows := make([]campaign.DailyRow, n)
	for i := range rows {
		rows[i] = campaign.DailyRow{
			Date: day(i + 1),
			Totals: campaign.Totals{
				Impressions: 1000, Clicks: 50, Conversions: 5, Cost: 100, Revenue: revenue,
			},
			CTR: 5, CPC: 2, ROAS: revenue / 100,
		}
	}
	return rows
}

func TestDetectAnomalies_FlagsRevenueSpike(t *testing.T) {
	rows := flatDays(30, 500)
	// nudge the series so its variance is nonzero before the spike
	for i := range rows {
		rows[i].Revenue += float64(i % 3)
	}
	rows[15].Revenue = 50000

	anomalies := DetectAnomalies(rows, DefaultAnomalyThreshold)

	found := false
	for _, a := range anomalies {
		if a.Metric == "revenue" && a.Date.Equal(day(16)) {
			found = true
			if a.ZScore <= DefaultAnomalyThreshold {
				t.Errorf("z-score = %v, want > %v", a.ZScore, DefaultAnomalyThreshold)
			}
			if a.Value != 50000 {
				t.Errorf("value = %v, want 50000", a.Value)
			}
			if a.ExpectedRange == "" {
				t.Error("expected range not populated")
			}
		}
		if a.Metric == "revenue" && !a.Date.Equal(day(16)) {
			t.Errorf("ordinary day %v flagged as revenue anomaly", a.Date)
		}
	}
	if !found {
		t.Fatal("revenue spike not flagged")
	}
}

func TestDetectAnomalies_SkipsConstantSeries(t *testing.T) {
	// every series is perfectly flat
	anomalies := DetectAnomalies(flatDays(30, 500), DefaultAnomalyThreshold)
	if len(anomalies) != 0 {
		t.Errorf("flat series produced %d anomalies: %v", len(anomalies), anomalies)
	}
}

func TestDetectAnomalies_ZeroThresholdFallsBackToDefault(t *testing.T) {
	rows := flatDays(30, 500)
	for i := range rows {
		rows[i].Revenue += float64(i % 3)
	}

	// with threshold 0 every nonzero z-score would be an anomaly; the
	// default keeps the mild jitter unflagged
	anomalies := DetectAnomalies(rows, 0)
	for _, a := range anomalies {
		if a.Metric == "revenue" {
			t.Errorf("jitter flagged as anomaly: %+v", a)
		}
	}
}
