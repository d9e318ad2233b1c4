package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/internal/generate"
	"adpulse/internal/pipeline"
)

func main() {
	days := flag.Int("days", 0, "number of days to generate (overrides GENERATE_DAYS)")
	seed := flag.Int64("seed", 0, "RNG seed (overrides GENERATE_SEED)")
	start := flag.String("start", "", "start date YYYY-MM-DD (overrides GENERATE_START)")
	rate := flag.Float64("anomaly-rate", -1, "fraction of records to corrupt (overrides ANOMALY_RATE)")
	dataDir := flag.String("data", "", "data directory (overrides DATA_DIR)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(2)
	}
	if *days > 0 {
		cfg.Generate.Days = *days
	}
	if *seed != 0 {
		cfg.Generate.Seed = *seed
	}
	if *start != "" {
		cfg.Generate.StartDate = *start
	}
	if *rate >= 0 {
		cfg.Generate.AnomalyRate = *rate
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	log := internal.NewStageLogger("generate")
	result, err := pipeline.RunGenerate(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate failed:", err)
		os.Exit(1)
	}

	printSummary(result.Summary)
}

func printSummary(s generate.Summary) {
	fmt.Println("Data Summary")
	fmt.Println("==================================================")
	fmt.Printf("Total records: %d\n", s.TotalRecords)
	fmt.Printf("Date range: %s to %s\n",
		s.DateMin.Format("2006-01-02"), s.DateMax.Format("2006-01-02"))
	fmt.Printf("Campaigns: %d\n", s.Campaigns)
	fmt.Printf("Devices: %d\n", s.Devices)
	fmt.Printf("Locations: %d\n", s.Locations)
	fmt.Println()
	fmt.Println("Average KPIs:")
	fmt.Printf("CTR: %.2f%%\n", s.MeanKPIs.CTR)
	fmt.Printf("CPC: $%.2f\n", s.MeanKPIs.CPC)
	fmt.Printf("CPA: $%.2f\n", s.MeanKPIs.CPA)
	fmt.Printf("ROAS: %.2fx\n", s.MeanKPIs.ROAS)
	fmt.Printf("Conversion rate: %.2f%%\n", s.MeanKPIs.ConversionRate)
	fmt.Println()
	fmt.Printf("Total cost: $%.2f\n", s.Totals.Cost)
	fmt.Printf("Total revenue: $%.2f\n", s.Totals.Revenue)
}
