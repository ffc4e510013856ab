package profile

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/fastdatetime/server/timezone"
)

// Profile is the configuration shared by the CLI and the HTTP server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	// Parsing defaults
	DayFirst         bool   // FASTDATETIME_DAYFIRST (default: false)
	YearFirst        bool   // FASTDATETIME_YEARFIRST (default: false)
	ZoneResolution   string // FASTDATETIME_ZONE_RESOLUTION (default: now)
	FormatCacheSize  int    // FASTDATETIME_FORMAT_CACHE_SIZE (default: 256)
	BatchConcurrency int    // FASTDATETIME_BATCH_CONCURRENCY (default: 8)

	// HTTP limits
	BatchMaxInputs int     // FASTDATETIME_BATCH_MAX_INPUTS (default: 1000)
	MaxBatches     int     // FASTDATETIME_MAX_BATCHES (default: 4)
	RateLimit      float64 // FASTDATETIME_RATE_LIMIT, requests per second per client (default: 10)
	RateBurst      int     // FASTDATETIME_RATE_BURST (default: 20)
}

// Defaults.
const (
	DefaultPort             = 8081
	DefaultFormatCacheSize  = 256
	DefaultBatchConcurrency = 8
	DefaultBatchMaxInputs   = 1000
	DefaultMaxBatches       = 4
	DefaultRateLimit        = 10
	DefaultRateBurst        = 20
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "FASTDATETIME"

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + "_" + key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from FASTDATETIME_* environment variables.
// Unset or unparsable numeric values keep their defaults; Validate reports
// values that parse but are out of range.
func (p *Profile) FromEnv() {
	getInt := func(key string, defaultValue int) int {
		v, err := strconv.Atoi(getEnvOrDefault(key, ""))
		if err != nil {
			return defaultValue
		}
		return v
	}
	getBool := func(key string) bool {
		v, _ := strconv.ParseBool(getEnvOrDefault(key, "false"))
		return v
	}

	p.Mode = getEnvOrDefault("MODE", "dev")
	p.Addr = getEnvOrDefault("ADDR", "")
	p.Port = getInt("PORT", DefaultPort)
	p.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	p.DayFirst = getBool("DAYFIRST")
	p.YearFirst = getBool("YEARFIRST")
	p.ZoneResolution = getEnvOrDefault("ZONE_RESOLUTION", timezone.ResolveAtNow.String())
	p.FormatCacheSize = getInt("FORMAT_CACHE_SIZE", DefaultFormatCacheSize)
	p.BatchConcurrency = getInt("BATCH_CONCURRENCY", DefaultBatchConcurrency)

	p.BatchMaxInputs = getInt("BATCH_MAX_INPUTS", DefaultBatchMaxInputs)
	p.MaxBatches = getInt("MAX_BATCHES", DefaultMaxBatches)
	p.RateBurst = getInt("RATE_BURST", DefaultRateBurst)
	p.RateLimit = DefaultRateLimit
	if v, err := strconv.ParseFloat(getEnvOrDefault("RATE_LIMIT", ""), 64); err == nil {
		p.RateLimit = v
	}
}

// ZoneMode returns the parsed ZoneResolution.
func (p *Profile) ZoneMode() timezone.Mode {
	m, _ := timezone.ParseMode(p.ZoneResolution)
	return m
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to info.
func (p *Profile) SlogLevel() slog.Level {
	switch strings.ToLower(p.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	if _, err := timezone.ParseMode(p.ZoneResolution); err != nil {
		return errors.Wrap(err, "invalid zone resolution")
	}
	if p.FormatCacheSize <= 0 {
		p.FormatCacheSize = DefaultFormatCacheSize
	}
	if p.BatchConcurrency <= 0 {
		p.BatchConcurrency = DefaultBatchConcurrency
	}
	if p.BatchMaxInputs <= 0 {
		return errors.Errorf("batch max inputs must be positive, got %d", p.BatchMaxInputs)
	}
	if p.MaxBatches <= 0 {
		p.MaxBatches = DefaultMaxBatches
	}
	if p.RateLimit <= 0 || p.RateBurst <= 0 {
		slog.Warn("rate limiting disabled",
			slog.Float64("rate_limit", p.RateLimit),
			slog.Int("rate_burst", p.RateBurst))
	}
	return nil
}

// RateLimited reports whether the HTTP server should rate limit clients.
func (p *Profile) RateLimited() bool {
	return p.RateLimit > 0 && p.RateBurst > 0
}
