package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/internal/errors"
	"adpulse/internal/pipeline"
)

func main() {
	dataDir := flag.String("data", "", "data directory (overrides DATA_DIR)")
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

	log := internal.NewStageLogger("process")
	result, err := pipeline.RunProcess(cfg, log)
	if err != nil {
		if errors.GetCode(err) == errors.CodeValidationFailed && result != nil {
			fmt.Fprintln(os.Stderr, "validation failed; processed file not written")
			for _, issue := range result.Validation.Issues {
				fmt.Fprintln(os.Stderr, " -", issue)
			}
		} else {
			fmt.Fprintln(os.Stderr, "process failed:", err)
		}
		os.Exit(1)
	}

	fmt.Println("Data Quality Report")
	fmt.Println("==================================================")
	fmt.Printf("Total records: %d\n", result.Quality.TotalRecords)
	fmt.Printf("Columns: %d\n", result.Quality.TotalColumns)
	fmt.Printf("Date range: %s\n", result.Quality.DateRange)
	fmt.Printf("Duplicate records: %d\n", result.Quality.DuplicateRecords)
	if len(result.Quality.MissingValues) > 0 {
		fmt.Println("Missing values:")
		cols := make([]string, 0, len(result.Quality.MissingValues))
		for col := range result.Quality.MissingValues {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			fmt.Printf("  %s: %d\n", col, result.Quality.MissingValues[col])
		}
	}

	fmt.Println()
	fmt.Println("Cleaning Steps")
	fmt.Println("==================================================")
	for _, step := range result.Steps {
		fmt.Printf("%-24s %6d affected  %s\n", step.Name, step.Affected, step.Note)
	}

	fmt.Println()
	fmt.Printf("Validation passed; %d records processed\n", result.Processed.Len())
}
