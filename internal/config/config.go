package config

import (
	"os"
	"path/filepath"
	"strconv"

	"adpulse/internal/errors"
)

// Config represents the complete pipeline configuration
type Config struct {
	Data     DataConfig
	Generate GenerateConfig
	Analyze  AnalyzeConfig
	Server   ServerConfig
	Archive  ArchiveConfig
}

// DataConfig holds the data directory and the fixed interchange filenames
type DataConfig struct {
	Dir                string
	CleanFile          string
	RawFile            string
	ProcessedFile      string
	CampaignPerfFile   string
	DevicePerfFile     string
	LocationPerfFile   string
	DailyTrendsFile    string
	AnomaliesFile      string
	InsightsFile       string
	WorkbookFile       string
}

// GenerateConfig holds synthetic data generation settings
type GenerateConfig struct {
	Days        int
	Seed        int64
	StartDate   string
	AnomalyRate float64
}

// AnalyzeConfig holds analysis settings
type AnalyzeConfig struct {
	AnomalyThreshold float64
}

// ServerConfig holds dashboard server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ArchiveConfig holds the optional Postgres results archive settings.
// The archive is enabled only when DATABASE_URL is set.
type ArchiveConfig struct {
	DatabaseURL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:     loadDataConfig(),
		Generate: loadGenerateConfig(),
		Analyze:  loadAnalyzeConfig(),
		Server:   loadServerConfig(),
		Archive: ArchiveConfig{
			DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() DataConfig {
	return DataConfig{
		Dir:              getEnvOrDefault("DATA_DIR", "data"),
		CleanFile:        "campaign_data_clean.csv",
		RawFile:          "campaign_data_with_anomalies.csv",
		ProcessedFile:    "campaign_data_processed.csv",
		CampaignPerfFile: "campaign_performance.csv",
		DevicePerfFile:   "device_performance.csv",
		LocationPerfFile: "location_performance.csv",
		DailyTrendsFile:  "daily_trends.csv",
		AnomaliesFile:    "anomalies.csv",
		InsightsFile:     "insights.md",
		WorkbookFile:     "campaign_analysis.xlsx",
	}
}

func loadGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Days:        getEnvIntOrDefault("GENERATE_DAYS", 90),
		Seed:        int64(getEnvIntOrDefault("GENERATE_SEED", 42)),
		StartDate:   getEnvOrDefault("GENERATE_START", "2024-01-01"),
		AnomalyRate: getEnvFloatOrDefault("ANOMALY_RATE", 0.05),
	}
}

func loadAnalyzeConfig() AnalyzeConfig {
	return AnalyzeConfig{
		AnomalyThreshold: getEnvFloatOrDefault("ANOMALY_THRESHOLD", 2.0),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func validateConfig(config *Config) error {
	if config.Data.Dir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.Generate.Days <= 0 {
		return errors.ConfigInvalid("GENERATE_DAYS must be > 0")
	}
	if config.Generate.AnomalyRate < 0 || config.Generate.AnomalyRate > 1 {
		return errors.ConfigInvalid("ANOMALY_RATE must be in [0,1]")
	}
	if config.Analyze.AnomalyThreshold <= 0 {
		return errors.ConfigInvalid("ANOMALY_THRESHOLD must be > 0")
	}
	return nil
}

// Path resolves an interchange filename against the data directory.
func (d DataConfig) Path(filename string) string {
	return filepath.Join(d.Dir, filename)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
