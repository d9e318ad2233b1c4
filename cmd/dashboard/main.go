package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/ui"
)

func main() {
	dataDir := flag.String("data", "", "data directory (overrides DATA_DIR)")
	port := flag.String("port", "", "listen port (overrides PORT)")
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
	if *port != "" {
		cfg.Server.Port = *port
	}

	log := internal.NewStageLogger("dashboard")
	server := ui.NewServer(cfg, log)
	if err := server.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, "dashboard init failed:", err)
		os.Exit(1)
	}
	if err := server.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "dashboard server failed:", err)
		os.Exit(1)
	}
}
