package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "BACKEND_API_URL", "MAX_RETRIES", "SESSION_TTL", "CORS_ORIGINS", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("expected no retries by default, got %d", cfg.MaxRetries)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.CORSOrigins != nil {
		t.Errorf("expected no cors origins, got %v", cfg.CORSOrigins)
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("expected tracing disabled, got %q", cfg.OTLPEndpoint)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_API_URL", "https://api.example.com/api/")
	t.Setenv("MAX_RETRIES", "2")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("MAX_BACKOFF", "500ms")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := config.Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.BackendAPIURL != "https://api.example.com/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BackendAPIURL)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("expected 2 retries, got %d", cfg.MaxRetries)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.MaxBackoff != 500*time.Millisecond {
		t.Errorf("expected 500ms max backoff, got %s", cfg.MaxBackoff)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.CORSOrigins)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("SESSION_TTL", "forever")

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("expected fallback port, got %d", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected fallback ttl, got %s", cfg.SessionTTL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# local\nBFF_DOTENV_NEW=from-file\nBFF_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BFF_DOTENV_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("BFF_DOTENV_NEW") })

	if err := config.LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := os.Getenv("BFF_DOTENV_NEW"); got != "from-file" {
		t.Errorf("expected value from file, got %q", got)
	}
	if got := os.Getenv("BFF_DOTENV_SET"); got != "from-env" {
		t.Errorf("existing env must win, got %q", got)
	}
}
