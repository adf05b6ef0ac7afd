package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/footballdata"
)

var configEnv = []string{
	TokenEnv,
	"FOOTBALL_DATA_BASE_URL",
	"FOOTBALL_DATA_MIN_INTERVAL",
	"FOOTBALL_DATA_REQUEST_TIMEOUT",
	"DATA_DIR",
	"PIPELINE_DATASETS",
	"PIPELINE_RETRIES",
	"DATABASE_URL",
	"LOG_LEVEL",
	"DRY_RUN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Load() error = %v, want ErrMissingToken", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(TokenEnv, " abc ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIToken != "abc" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.BaseURL != footballdata.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.MinInterval != 6200*time.Millisecond {
		t.Errorf("MinInterval = %v", cfg.MinInterval)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.DataDir != "data" || cfg.Retries != 0 || cfg.DryRun || cfg.DatabaseURL != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RawDir() != filepath.Join("data", "raw", "football_data") {
		t.Errorf("RawDir() = %q", cfg.RawDir())
	}
	if cfg.ProcessedDir() != filepath.Join("data", "processed") {
		t.Errorf("ProcessedDir() = %q", cfg.ProcessedDir())
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(TokenEnv, "abc")
	t.Setenv("FOOTBALL_DATA_BASE_URL", "http://localhost:9999/v4")
	t.Setenv("FOOTBALL_DATA_MIN_INTERVAL", "0s")
	t.Setenv("FOOTBALL_DATA_REQUEST_TIMEOUT", "5s")
	t.Setenv("DATA_DIR", "/tmp/matchday")
	t.Setenv("PIPELINE_DATASETS", "datasets.yaml")
	t.Setenv("PIPELINE_RETRIES", "2")
	t.Setenv("DATABASE_URL", "postgres://localhost/matchday")
	t.Setenv("DRY_RUN", "TRUE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999/v4" || cfg.MinInterval != 0 || cfg.RequestTimeout != 5*time.Second {
		t.Errorf("client settings = %+v", cfg)
	}
	if cfg.DataDir != "/tmp/matchday" || cfg.DatasetsFile != "datasets.yaml" || cfg.Retries != 2 {
		t.Errorf("pipeline settings = %+v", cfg)
	}
	if cfg.DatabaseURL == "" || !cfg.DryRun {
		t.Errorf("DatabaseURL/DryRun = %q/%v", cfg.DatabaseURL, cfg.DryRun)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	testCases := []struct {
		key, value string
	}{
		{"FOOTBALL_DATA_MIN_INTERVAL", "six"},
		{"FOOTBALL_DATA_MIN_INTERVAL", "-1s"},
		{"FOOTBALL_DATA_REQUEST_TIMEOUT", "0s"},
		{"PIPELINE_RETRIES", "-1"},
		{"PIPELINE_RETRIES", "many"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(TokenEnv, "abc")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error", tc.key, tc.value)
			}
		})
	}
}
