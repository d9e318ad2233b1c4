package analyze

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"adpulse/domain/campaign"
)

// DefaultAnomalyThreshold is the z-score cutoff used when no override is
// configured.
const DefaultAnomalyThreshold = 2.0

// anomalyMetrics are the daily series scanned for outliers, in report order.
var anomalyMetrics = []string{"impressions", "clicks", "revenue", "ctr", "roas"}

// DetectAnomalies z-scores each daily series against its own mean and
// standard deviation and flags every day beyond the threshold. A series
// with zero variance is skipped; every value sits on the mean and a z-score
// is undefined there.
func DetectAnomalies(daily []campaign.DailyRow, threshold float64) []campaign.Anomaly {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	var anomalies []campaign.Anomaly
	for _, metric := range anomalyMetrics {
		series := make([]float64, len(daily))
		for i := range daily {
			series[i] = dailyValue(&daily[i], metric)
		}

		mean, std := stat.MeanStdDev(series, nil)
		if std == 0 {
			continue
		}

		for i, v := range series {
			z := (v - mean) / std
			if z > threshold || z < -threshold {
				anomalies = append(anomalies, campaign.Anomaly{
					Date:   daily[i].Date,
					Metric: metric,
					Value:  v,
					ZScore: campaign.Round2(z),
					ExpectedRange: fmt.Sprintf("%.2f - %.2f",
						mean-threshold*std, mean+threshold*std),
				})
			}
		}
	}
	return anomalies
}

func dailyValue(row *campaign.DailyRow, metric string) float64 {
	switch metric {
	case "impressions":
		return row.Impressions
	case "clicks":
		return row.Clicks
	case "revenue":
		return row.Revenue
	case "ctr":
		return row.CTR
	case "roas":
		return row.ROAS
	default:
		return 0
	}
}
