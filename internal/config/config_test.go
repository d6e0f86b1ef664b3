package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/citytraffic/timectrl"
)

var simKeys = []string{
	"SIM_TICK", "SIM_MAX_TICKS", "SIM_MODE", "SIM_SCENARIO",
	"SIM_STRICT_VALIDATION", "SIM_STOP_WHEN_SETTLED", "SIM_METRICS_ADDR",
	"LOG_LEVEL", "LOG_FORMAT", "SIM_TRACING_ENABLED", "SIM_TRACING_EXPORTER",
	"SIM_TRACING_SERVICE_NAME", "SIM_TRACING_SAMPLE_RATIO", "SIM_OTLP_ENDPOINT",
}

// clearEnv unsets keys for the duration of the test; t.Setenv registers the
// restore of the original values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range simKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := Default()
	if cfg.Tick != want.Tick || cfg.MaxTicks != want.MaxTicks || cfg.Mode != want.Mode {
		t.Fatalf("FromEnv() = %+v, want defaults %+v", cfg, want)
	}
	if cfg.StrictValidation {
		t.Fatalf("StrictValidation should default to false")
	}
	if cfg.Tracing != want.Tracing {
		t.Fatalf("Tracing = %+v, want defaults %+v", cfg.Tracing, want.Tracing)
	}
	if cfg.Tracing.Enabled {
		t.Fatalf("tracing should default to disabled")
	}
}

func TestFromEnvTracingOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIM_TRACING_ENABLED", "true")
	t.Setenv("SIM_TRACING_SERVICE_NAME", "citysim-ci")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.ServiceName != "citysim-ci" {
		t.Fatalf("Tracing = %+v, want enabled citysim-ci", cfg.Tracing)
	}
	if want := Default().Tracing; cfg.Tracing.Exporter != want.Exporter || cfg.Tracing.SampleRatio != want.SampleRatio {
		t.Fatalf("Tracing = %+v, want default exporter and ratio from %+v", cfg.Tracing, want)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]timectrl.Mode{
		"realtime":    timectrl.RealTime,
		" RealTime ":  timectrl.RealTime,
		"real-time":   timectrl.RealTime,
		"accelerated": timectrl.Accelerated,
		"fast":        timectrl.Accelerated,
		"":            timectrl.Accelerated,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("warp"); err == nil {
		t.Fatalf("ParseMode(warp) succeeded, want error")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIM_TICK", "2s")
	t.Setenv("SIM_MAX_TICKS", "7")
	t.Setenv("SIM_MODE", "realtime")
	t.Setenv("SIM_SCENARIO", "city.json")
	t.Setenv("SIM_STRICT_VALIDATION", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Tick != 2*time.Second {
		t.Fatalf("Tick = %v, want 2s", cfg.Tick)
	}
	if cfg.MaxTicks != 7 {
		t.Fatalf("MaxTicks = %d, want 7", cfg.MaxTicks)
	}
	if cfg.Mode != timectrl.RealTime {
		t.Fatalf("Mode = %v, want RealTime", cfg.Mode)
	}
	if cfg.ScenarioPath != "city.json" {
		t.Fatalf("ScenarioPath = %q, want city.json", cfg.ScenarioPath)
	}
	if !cfg.StrictValidation {
		t.Fatalf("StrictValidation = false, want true")
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"SIM_TICK":                 "soon",
		"SIM_MAX_TICKS":            "-1",
		"SIM_MODE":                 "warp",
		"SIM_STRICT_VALIDATION":    "maybe",
		"SIM_TRACING_SAMPLE_RATIO": "2",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", key, val)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sim.env")
	if err := os.WriteFile(path, []byte("SIM_MAX_TICKS=3\nSIM_SCENARIO=examples/city.city\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxTicks != 3 {
		t.Fatalf("MaxTicks = %d, want 3", cfg.MaxTicks)
	}
	if cfg.ScenarioPath != "examples/city.city" {
		t.Fatalf("ScenarioPath = %q, want examples/city.city", cfg.ScenarioPath)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
}
