package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"stockanalyzer/internal/logger"
	"stockanalyzer/internal/metrics"
)

type Server struct {
	Port              string `json:"port" toml:"port" validate:"required,numeric"`
	RequestTimeoutSec int    `json:"request_timeout_sec" toml:"request_timeout_sec" validate:"gte=1"`
}

type Runner struct {
	SymbolDelaySec float64 `json:"symbol_delay_sec" toml:"symbol_delay_sec" validate:"gte=0"`
	SymbolsFile    string  `json:"symbols_file" toml:"symbols_file"`
	OutputDir      string  `json:"output_dir" toml:"output_dir" validate:"required"`
}

// Source configures one upstream quote provider. Suffix applies to Yahoo,
// Exchange to Google Finance and SessionTTLSec to NSE.
type Source struct {
	Enabled               bool   `json:"enabled" toml:"enabled"`
	Endpoint              string `json:"endpoint" toml:"endpoint" validate:"required,url"`
	TimeoutSec            int    `json:"timeout_sec" toml:"timeout_sec" validate:"gte=1"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" toml:"max_requests_per_minute" validate:"gte=0"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" toml:"min_request_interval_sec" validate:"gte=0"`
	Burst                 int    `json:"burst" toml:"burst" validate:"gte=0"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec" toml:"cache_ttl_sec" validate:"gte=0"`
	CacheMaxItems         int    `json:"cache_max_items" toml:"cache_max_items" validate:"gte=0"`
	Suffix                string `json:"suffix,omitempty" toml:"suffix,omitempty"`
	Exchange              string `json:"exchange,omitempty" toml:"exchange,omitempty"`
	SessionTTLSec         int    `json:"session_ttl_sec,omitempty" toml:"session_ttl_sec,omitempty" validate:"gte=0"`
}

func (s Source) Timeout() time.Duration     { return time.Duration(s.TimeoutSec) * time.Second }
func (s Source) CacheTTL() time.Duration    { return time.Duration(s.CacheTTLSeconds) * time.Second }
func (s Source) MinInterval() time.Duration { return time.Duration(s.MinRequestIntervalSec) * time.Second }

type Config struct {
	Server   Server          `json:"server" toml:"server"`
	Logging  logger.Config   `json:"logging" toml:"logging"`
	Runner   Runner          `json:"runner" toml:"runner"`
	Yahoo    Source          `json:"yahoo" toml:"yahoo"`
	NSE      Source          `json:"nse" toml:"nse"`
	Google   Source          `json:"google" toml:"google"`
	Estimate metrics.Factors `json:"estimate" toml:"estimate"`
}

// SymbolDelay is the pause between consecutive symbols.
func (c Config) SymbolDelay() time.Duration {
	return time.Duration(c.Runner.SymbolDelaySec * float64(time.Second))
}

func Default() Config {
	return Config{
		Server:  Server{Port: "8080", RequestTimeoutSec: 120},
		Logging: logger.Config{Level: "info", Format: "pretty", FilePath: "logs", RotationSize: 100, RetentionDays: 7},
		Runner:  Runner{SymbolDelaySec: 2, OutputDir: "."},
		Yahoo: Source{
			Enabled:              true,
			Endpoint:             "https://query1.finance.yahoo.com",
			TimeoutSec:           15,
			MaxRequestsPerMinute: 30,
			Burst:                2,
			CacheTTLSeconds:      60,
			CacheMaxItems:        1000,
			Suffix:               ".NS",
		},
		NSE: Source{
			Enabled:              true,
			Endpoint:             "https://www.nseindia.com",
			TimeoutSec:           15,
			MaxRequestsPerMinute: 20,
			Burst:                1,
			CacheTTLSeconds:      60,
			CacheMaxItems:        1000,
			SessionTTLSec:        300,
		},
		Google: Source{
			Enabled:               true,
			Endpoint:              "https://www.google.com/finance",
			TimeoutSec:            10,
			MinRequestIntervalSec: 1,
			CacheTTLSeconds:       60,
			CacheMaxItems:         1000,
			Exchange:              "NSE",
		},
		Estimate: metrics.DefaultFactors,
	}
}

// Load reads config from path. JSON is assumed unless the path ends in .toml.
// If path is empty, config.json then config.toml are tried in the working
// directory; with neither present the defaults are used. A .env file is
// loaded first, and environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		for _, p := range []string{"config.json", "config.toml"} {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(b, cfg)
	}
	return json.Unmarshal(b, cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that at least one source is enabled.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.Yahoo.Enabled && !cfg.NSE.Enabled && !cfg.Google.Enabled {
		return errors.New("invalid config: no provider enabled")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	envInt("REQUEST_TIMEOUT_SEC", &cfg.Server.RequestTimeoutSec, 1)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	envBool("LOG_FILE_ENABLED", &cfg.Logging.FileEnabled)
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		cfg.Logging.FilePath = v
	}
	if v := os.Getenv("SYMBOL_DELAY_SEC"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil && x >= 0 {
			cfg.Runner.SymbolDelaySec = x
		}
	}
	if v := os.Getenv("SYMBOLS_FILE"); v != "" {
		cfg.Runner.SymbolsFile = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Runner.OutputDir = v
	}

	applySourceEnv("YAHOO", &cfg.Yahoo)
	if v := os.Getenv("YAHOO_SUFFIX"); v != "" {
		cfg.Yahoo.Suffix = v
	}
	applySourceEnv("NSE", &cfg.NSE)
	envInt("NSE_SESSION_TTL_SEC", &cfg.NSE.SessionTTLSec, 0)
	applySourceEnv("GOOGLE", &cfg.Google)
	if v := os.Getenv("GOOGLE_EXCHANGE"); v != "" {
		cfg.Google.Exchange = v
	}
}

func applySourceEnv(prefix string, s *Source) {
	envBool(prefix+"_ENABLED", &s.Enabled)
	if v := os.Getenv(prefix + "_ENDPOINT"); v != "" {
		s.Endpoint = v
	}
	envInt(prefix+"_TIMEOUT_SEC", &s.TimeoutSec, 1)
	envInt(prefix+"_MAX_RPM", &s.MaxRequestsPerMinute, 0)
	envInt(prefix+"_MIN_INTERVAL_SEC", &s.MinRequestIntervalSec, 0)
	envInt(prefix+"_BURST", &s.Burst, 1)
	envInt(prefix+"_CACHE_TTL_SEC", &s.CacheTTLSeconds, 0)
	envInt(prefix+"_CACHE_MAX_ITEMS", &s.CacheMaxItems, 1)
}

func envInt(key string, dst *int, min int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if x, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && x >= min {
		*dst = x
	}
}

func envBool(key string, dst *bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	}
}
