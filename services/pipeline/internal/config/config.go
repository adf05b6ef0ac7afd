package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/footballdata"
)

const (
	TokenEnv = "FOOTBALL_DATA_API_TOKEN"

	defaultDataDir  = "data"
	defaultLogLevel = "info"
)

// ErrMissingToken is returned when the API token is not configured.
var ErrMissingToken = errors.New(TokenEnv + " is required")

// Config holds runtime configuration for the pipeline.
type Config struct {
	APIToken       string
	BaseURL        string
	MinInterval    time.Duration
	RequestTimeout time.Duration

	DataDir      string
	DatasetsFile string
	Retries      int

	DatabaseURL string
	LogLevel    string
	DryRun      bool
}

// RawDir holds the verbatim API payloads.
func (c Config) RawDir() string { return filepath.Join(c.DataDir, "raw", "football_data") }

// InterimDir holds flattened, untyped tables.
func (c Config) InterimDir() string { return filepath.Join(c.DataDir, "interim") }

// ProcessedDir holds cleaned tables and feature matrices.
func (c Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }

// Load reads configuration from environment variables (optionally .env).
// A missing API token is fatal.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		BaseURL:        footballdata.DefaultBaseURL,
		MinInterval:    footballdata.DefaultMinInterval,
		RequestTimeout: footballdata.DefaultRequestTimeout,
		DataDir:        defaultDataDir,
		LogLevel:       defaultLogLevel,
	}

	cfg.APIToken = strings.TrimSpace(os.Getenv(TokenEnv))
	if cfg.APIToken == "" {
		return cfg, ErrMissingToken
	}

	if v := strings.TrimSpace(os.Getenv("FOOTBALL_DATA_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}

	if v := strings.TrimSpace(os.Getenv("FOOTBALL_DATA_MIN_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid FOOTBALL_DATA_MIN_INTERVAL: %q", v)
		}
		cfg.MinInterval = d
	}

	if v := strings.TrimSpace(os.Getenv("FOOTBALL_DATA_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid FOOTBALL_DATA_REQUEST_TIMEOUT: %q", v)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	cfg.DatasetsFile = strings.TrimSpace(os.Getenv("PIPELINE_DATASETS"))

	if v := strings.TrimSpace(os.Getenv("PIPELINE_RETRIES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid PIPELINE_RETRIES: %q", v)
		}
		cfg.Retries = n
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}
