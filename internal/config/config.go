package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tablesense/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Scan     ScanConfig
	Report   ReportConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL    string
	Driver string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	UIPort       string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ScanConfig bounds chunked retrieval against the backing store
type ScanConfig struct {
	PageSize      int
	MaxScanRows   int
	MaxEmptyPages int
}

// ReportConfig holds sampling and aggregation caps
type ReportConfig struct {
	QuickSampleRows      int
	ReportMaxRows        int
	PreviewLimit         int
	MaxConcurrentReports int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: *loadDatabaseConfig(),
		Server:   *loadServerConfig(),
		Scan:     *loadScanConfig(),
		Report:   *loadReportConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is provided
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		Server: ServerConfig{
			Port:         "8080",
			UIPort:       "8081",
			GinMode:      "release",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Scan: ScanConfig{
			PageSize:      1000,
			MaxScanRows:   500000,
			MaxEmptyPages: 3,
		},
		Report: ReportConfig{
			QuickSampleRows:      1000,
			ReportMaxRows:        50000,
			PreviewLimit:         100,
			MaxConcurrentReports: 4,
		},
		LogLevel: "INFO",
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    os.Getenv("DATABASE_URL"),
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
	}
}

func loadServerConfig() *ServerConfig {
	d := Default().Server
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", d.Port),
		UIPort:       getEnvOrDefault("UI_PORT", d.UIPort),
		GinMode:      getEnvOrDefault("GIN_MODE", d.GinMode),
		ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", d.ReadTimeout),
		WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", d.WriteTimeout),
	}
}

func loadScanConfig() *ScanConfig {
	d := Default().Scan
	return &ScanConfig{
		PageSize:      getEnvIntOrDefault("PAGE_SIZE", d.PageSize),
		MaxScanRows:   getEnvIntOrDefault("MAX_SCAN_ROWS", d.MaxScanRows),
		MaxEmptyPages: getEnvIntOrDefault("MAX_EMPTY_PAGES", d.MaxEmptyPages),
	}
}

func loadReportConfig() *ReportConfig {
	d := Default().Report
	return &ReportConfig{
		QuickSampleRows:      getEnvIntOrDefault("QUICK_SAMPLE_ROWS", d.QuickSampleRows),
		ReportMaxRows:        getEnvIntOrDefault("REPORT_MAX_ROWS", d.ReportMaxRows),
		PreviewLimit:         getEnvIntOrDefault("PREVIEW_LIMIT", d.PreviewLimit),
		MaxConcurrentReports: getEnvIntOrDefault("MAX_CONCURRENT_REPORTS", d.MaxConcurrentReports),
	}
}

// Validate checks the fields every binary depends on
func Validate(config *Config) error {
	if config.Database.URL == "" {
		return errors.Configuration("DATABASE_URL is required")
	}
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Configuration("DATABASE_DRIVER must be postgres or sqlite, got " + config.Database.Driver)
	}
	if config.Scan.PageSize <= 0 {
		return errors.Configuration("PAGE_SIZE must be positive")
	}
	if config.Scan.MaxScanRows < config.Scan.PageSize {
		return errors.Configuration("MAX_SCAN_ROWS must be at least PAGE_SIZE")
	}
	if config.Scan.MaxEmptyPages <= 0 {
		return errors.Configuration("MAX_EMPTY_PAGES must be positive")
	}
	if config.Report.QuickSampleRows <= 0 || config.Report.ReportMaxRows <= 0 {
		return errors.Configuration("sample and report row caps must be positive")
	}
	if config.Report.MaxConcurrentReports <= 0 {
		return errors.Configuration("MAX_CONCURRENT_REPORTS must be positive")
	}
	return nil
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
