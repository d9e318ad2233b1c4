package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"adpulse/domain/campaign"
	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/internal/pipeline"
)

func main() {
	dataDir := flag.String("data", "", "data directory (overrides DATA_DIR)")
	threshold := flag.Float64("threshold", 0, "anomaly z-score threshold (overrides ANOMALY_THRESHOLD)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(2)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *threshold > 0 {
		cfg.Analyze.AnomalyThreshold = *threshold
	}

	log := internal.NewStageLogger("analyze")
	result, err := pipeline.RunAnalyze(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "analyze failed:", err)
		os.Exit(1)
	}

	fmt.Println("Overall Performance")
	fmt.Println("==================================================")
	fmt.Printf("Impressions: %.0f\n", result.Overall.Impressions)
	fmt.Printf("Clicks: %.0f\n", result.Overall.Clicks)
	fmt.Printf("Conversions: %.0f\n", result.Overall.Conversions)
	fmt.Printf("Cost: $%.2f\n", result.Overall.Cost)
	fmt.Printf("Revenue: $%.2f\n", result.Overall.Revenue)
	fmt.Printf("CTR: %.2f%%  CPC: $%.2f  CPA: $%.2f  ROAS: %.2fx  Conv. rate: %.2f%%\n",
		result.Overall.KPIs.CTR, result.Overall.KPIs.CPC, result.Overall.KPIs.CPA,
		result.Overall.KPIs.ROAS, result.Overall.KPIs.ConversionRate)

	if len(result.ByCampaign.Rows) > 0 {
		top := result.ByCampaign.Rows[0]
		fmt.Printf("\nTop campaign by revenue: %s ($%.2f)\n", top.Keys[1], top.Revenue)
	}
	fmt.Printf("Anomalies detected: %d\n", len(result.Anomalies))

	printTrends(result.Daily)

	fmt.Println()
	fmt.Println("Insights")
	fmt.Println("==================================================")
	for _, section := range [][]string{
		result.Insights.TopPerformers,
		result.Insights.OptimizationOpportunities,
		result.Insights.Trends,
		result.Insights.Recommendations,
	} {
		for _, line := range section {
			fmt.Println("-", line)
		}
	}
}

func printTrends(daily []campaign.DailyRow) {
	if len(daily) == 0 {
		return
	}

	best, worst := daily[0], daily[0]
	for _, day := range daily[1:] {
		if day.Revenue > best.Revenue {
			best = day
		}
		if day.Revenue < worst.Revenue {
			worst = day
		}
	}
	fmt.Printf("Best day: %s ($%.2f)  Worst day: %s ($%.2f)\n",
		best.Date.Format("2006-01-02"), best.Revenue,
		worst.Date.Format("2006-01-02"), worst.Revenue)

	if len(daily) < 14 {
		return
	}
	var firstWeek, lastWeek float64
	for _, day := range daily[:7] {
		firstWeek += day.Revenue
	}
	for _, day := range daily[len(daily)-7:] {
		lastWeek += day.Revenue
	}
	if firstWeek > 0 {
		change := (lastWeek - firstWeek) / firstWeek * 100
		fmt.Printf("Weekly revenue: $%.2f first week, $%.2f last week (%+.1f%%)\n",
			firstWeek, lastWeek, change)
	}
}
