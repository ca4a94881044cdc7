package config

import (
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.ProbeURL != DefaultProbeURL {
		t.Fatalf("unexpected probe url %q", cfg.ProbeURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no request timeout by default, got %v", cfg.RequestTimeout)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("unexpected storage type %q", cfg.StorageType)
	}
	if cfg.StorageTTL != 7*24*time.Hour {
		t.Fatalf("unexpected storage ttl %v", cfg.StorageTTL)
	}
}

func TestLoadArgsEnvOverride(t *testing.T) {
	t.Setenv("PROBE_URL", "https://api.example.com/health")
	t.Setenv("PROBE_HEADERS", "X-Trace=abc, Accept=application/json")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")

	cfg, err := LoadArgs(nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.ProbeURL != "https://api.example.com/health" {
		t.Fatalf("env override ignored, got %q", cfg.ProbeURL)
	}
	if cfg.ProbeHeaders["X-Trace"] != "abc" || cfg.ProbeHeaders["Accept"] != "application/json" {
		t.Fatalf("unexpected headers %#v", cfg.ProbeHeaders)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}
}

func TestLoadArgsFlagsWinOverEnv(t *testing.T) {
	t.Setenv("PROBE_URL", "https://env.example.com")

	cfg, err := LoadArgs([]string{"--url", "http://127.0.0.1:9000/test_db", "--timeout", "5"})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.ProbeURL != "http://127.0.0.1:9000/test_db" {
		t.Fatalf("flag override ignored, got %q", cfg.ProbeURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}
}

func TestLoadArgsRejectsInvalidValues(t *testing.T) {
	cases := map[string][]string{
		"scheme":  {"--url", "ftp://example.com"},
		"no host": {"--url", "http://"},
		"timeout": {"--timeout", "-1"},
	}
	for name, args := range cases {
		if _, err := LoadArgs(args); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	t.Setenv("PROBE_HEADERS", "missing-separator")
	if _, err := LoadArgs(nil); err == nil {
		t.Fatalf("expected error for malformed probe_headers")
	}
}

func TestLoadArgsRejectsPositionalArgs(t *testing.T) {
	if _, err := LoadArgs([]string{"http://example.com"}); err == nil {
		t.Fatalf("expected error for positional argument")
	}
}
