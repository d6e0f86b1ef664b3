// Package config assembles simulator settings from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/citytraffic/internal/logging"
	"github.com/signalsfoundry/citytraffic/internal/observability"
	"github.com/signalsfoundry/citytraffic/timectrl"
)

// Config holds everything cmd/citysim needs to run.
type Config struct {
	Tick             time.Duration
	MaxTicks         int
	Mode             timectrl.Mode
	ScenarioPath     string // empty means the built-in sample city
	StrictValidation bool
	StopWhenSettled  bool
	MetricsAddr      string // empty disables the /metrics server

	Log     logging.Config
	Tracing observability.TracingConfig
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Tick:            500 * time.Millisecond,
		MaxTicks:        10,
		Mode:            timectrl.Accelerated,
		StopWhenSettled: true,
		Log:             logging.Config{Level: "info", Format: "text"},
		Tracing:         observability.DefaultTracingConfig(),
	}
}

// Load reads the given .env files (".env" when none are named; a missing
// file is not an error) and then overlays environment variables on Default.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	if cfg.Tick, err = durationEnv("SIM_TICK", cfg.Tick); err != nil {
		return Config{}, err
	}
	if cfg.Tick <= 0 {
		return Config{}, fmt.Errorf("config: SIM_TICK must be positive, got %s", cfg.Tick)
	}
	if cfg.MaxTicks, err = intEnv("SIM_MAX_TICKS", cfg.MaxTicks); err != nil {
		return Config{}, err
	}
	if cfg.MaxTicks < 0 {
		return Config{}, fmt.Errorf("config: SIM_MAX_TICKS must not be negative, got %d", cfg.MaxTicks)
	}
	if cfg.Mode, err = ParseMode(getEnv("SIM_MODE", "accelerated")); err != nil {
		return Config{}, err
	}
	cfg.ScenarioPath = os.Getenv("SIM_SCENARIO")
	if cfg.StrictValidation, err = boolEnv("SIM_STRICT_VALIDATION", cfg.StrictValidation); err != nil {
		return Config{}, err
	}
	if cfg.StopWhenSettled, err = boolEnv("SIM_STOP_WHEN_SETTLED", cfg.StopWhenSettled); err != nil {
		return Config{}, err
	}
	cfg.MetricsAddr = os.Getenv("SIM_METRICS_ADDR")

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if cfg.Tracing, err = observability.TracingConfigFromEnv(cfg.Tracing); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ParseMode maps "realtime" / "accelerated" to a timectrl.Mode.
func ParseMode(s string) (timectrl.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "realtime", "real-time", "real_time":
		return timectrl.RealTime, nil
	case "accelerated", "fast", "":
		return timectrl.Accelerated, nil
	default:
		return 0, fmt.Errorf("config: SIM_MODE: unknown mode %q", s)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
