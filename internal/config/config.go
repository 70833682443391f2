package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server and pipeline configuration, loaded from environment
// variables with sensible defaults. A .env file next to the binary is
// picked up when present.
type Config struct {
	// Server
	Port string

	// Storage
	DatabasePath string
	OutputDir    string

	// AI
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	// Registry lookups
	RegistryEnabled   bool
	ScrapeBaseURL     string
	MaxProposalUpload int64

	// Logging
	LogLevel string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is fine, environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("SERVER_PORT", "8080"),

		DatabasePath: getEnv("DATABASE_PATH", "equalprop.db"),
		OutputDir:    getEnv("OUTPUT_DIR", "out"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 180*time.Second),

		RegistryEnabled:   getEnv("REGISTRY_ENABLED", "true") == "true",
		ScrapeBaseURL:     os.Getenv("REGISTRY_SCRAPE_URL"),
		MaxProposalUpload: int64(getEnvInt("MAX_PROPOSAL_UPLOAD_MB", 32)) << 20,

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("SERVER_PORT must not be empty")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.MaxProposalUpload <= 0 {
		return fmt.Errorf("MAX_PROPOSAL_UPLOAD_MB must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
