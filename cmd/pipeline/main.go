package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/internal/pipeline"
)

func main() {
	days := flag.Int("days", 0, "number of days to generate (overrides GENERATE_DAYS)")
	seed := flag.Int64("seed", 0, "RNG seed (overrides GENERATE_SEED)")
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
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := internal.NewStageLogger("pipeline")
	if err := pipeline.Run(ctx, cfg, log); err != nil {
		fmt.Fprintln(os.Stderr, "pipeline failed:", err)
		os.Exit(1)
	}
}
