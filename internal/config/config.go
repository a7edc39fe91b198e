/**
 * Configuration for the OCR service.
 *
 * Values come from the environment, with a .env file loaded first when
 * present. All knobs have defaults except DATABASE_URL.
 */

package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds service configuration.
type Config struct {
	// HTTP server
	Port      int
	AppDomain string

	// PostgreSQL configuration
	DatabaseURL string

	// Optional Redis for job status events; empty disables publishing
	RedisURL string

	// Worker configuration
	MaxConcurrentJobs  int
	PDFPageConcurrency int

	// Tesseract configuration
	TesseractLang string
	PdftoppmPath  string

	// Temporary directory for PDF rasters
	TempDir string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is normal in production.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 3040)
	v.SetDefault("APP_DOMAIN", "http://localhost:3040")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MAX_CONCURRENT_JOBS", 3)
	v.SetDefault("PDF_PAGE_CONCURRENCY", 4)
	v.SetDefault("TESSERACT_LANG", "eng")
	v.SetDefault("PDFTOPPM_PATH", "pdftoppm")
	v.SetDefault("TEMP_DIR", "")

	cfg := &Config{
		Port:               v.GetInt("PORT"),
		AppDomain:          v.GetString("APP_DOMAIN"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		RedisURL:           v.GetString("REDIS_URL"),
		MaxConcurrentJobs:  v.GetInt("MAX_CONCURRENT_JOBS"),
		PDFPageConcurrency: v.GetInt("PDF_PAGE_CONCURRENCY"),
		TesseractLang:      v.GetString("TESSERACT_LANG"),
		PdftoppmPath:       v.GetString("PDFTOPPM_PATH"),
		TempDir:            v.GetString("TEMP_DIR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	if c.MaxConcurrentJobs < 1 || c.MaxConcurrentJobs > 100 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be between 1 and 100, got %d", c.MaxConcurrentJobs)
	}

	if c.PDFPageConcurrency < 1 || c.PDFPageConcurrency > 32 {
		return fmt.Errorf("PDF_PAGE_CONCURRENCY must be between 1 and 32, got %d", c.PDFPageConcurrency)
	}

	return nil
}
