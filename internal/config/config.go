package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultProbeURL = "http://localhost:8080/test_db"

// Config holds the application configuration loaded from files, environment variables and flags.
type Config struct {
	AppName               string            `mapstructure:"app_name"`
	Env                   string            `mapstructure:"app_env"`
	LogLevel              string            `mapstructure:"log_level"`
	ProbeURL              string            `mapstructure:"probe_url"`
	ProbeHeadersRaw       string            `mapstructure:"probe_headers"`
	ProbeHeaders          map[string]string `mapstructure:"-"`
	RequestTimeoutSeconds int64             `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration     `mapstructure:"-"`
	PublishersFile        string            `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from the .env file, environment variables and os.Args.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load without the .env lookup. A nil args slice skips flag parsing.
func LoadArgs(args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app_name", "samvad-api-probe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("probe_url", DefaultProbeURL)
	v.SetDefault("probe_headers", "")
	v.SetDefault("request_timeout_seconds", 0) // no timeout
	v.SetDefault("publishers_file", "")
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/probe.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	if args != nil {
		flags := newFlagSet()
		if err := flags.Parse(args); err != nil {
			return nil, fmt.Errorf("parse flags: %w", err)
		}
		if flags.NArg() > 0 {
			return nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
		}
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ProbeURL = strings.TrimSpace(cfg.ProbeURL)
	if err := validateURL(cfg.ProbeURL); err != nil {
		return nil, err
	}

	headers, err := parseHeaders(cfg.ProbeHeadersRaw)
	if err != nil {
		return nil, err
	}
	cfg.ProbeHeaders = headers

	if cfg.RequestTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("probe", pflag.ContinueOnError)
	flags.String("url", "", "target endpoint for the GET request")
	flags.Int64("timeout", 0, "request timeout in seconds (0 disables)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("publishers", "", "path to the publishers file (YAML or JSON)")
	return flags
}

// bindFlags maps explicitly set flags onto their config keys so unset flags never mask env values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	keys := map[string]string{
		"url":        "probe_url",
		"timeout":    "request_timeout_seconds",
		"log-level":  "log_level",
		"publishers": "publishers_file",
	}
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		if key, ok := keys[f.Name]; ok {
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		}
	})
	return bindErr
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("probe_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid probe_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid probe_url scheme %q (expected http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid probe_url %q: host is empty", raw)
	}
	return nil
}

// parseHeaders decodes "Key=Value,Other=Value" pairs.
func parseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid probe_headers entry %q (expected Key=Value)", pair)
		}
		out[key] = strings.TrimSpace(val)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
