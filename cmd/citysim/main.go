package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/citytraffic/core"
	"github.com/signalsfoundry/citytraffic/internal/config"
	"github.com/signalsfoundry/citytraffic/internal/logging"
	"github.com/signalsfoundry/citytraffic/internal/observability"
	"github.com/signalsfoundry/citytraffic/scenario"
	"github.com/signalsfoundry/citytraffic/timectrl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "citysim: %v\n", err)
		os.Exit(1)
	}
}

// run executes one simulation. The console transcript goes to stdout; logs
// and stdout-exported spans go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("citysim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scenarioPath := fs.String("scenario", cfg.ScenarioPath, "scenario file (.json, .geojson, .osm, .city); empty runs the sample city")
	ticks := fs.Int("ticks", cfg.MaxTicks, "maximum number of ticks to run (0 = until settled or interrupted)")
	tick := fs.Duration("tick", cfg.Tick, "tick interval")
	realtime := fs.Bool("realtime", cfg.Mode == timectrl.RealTime, "wait one tick interval between steps")
	strict := fs.Bool("strict", cfg.StrictValidation, "reject vehicles placed on or heading for unknown regions")
	untilSettled := fs.Bool("until-settled", cfg.StopWhenSettled, "stop once every vehicle has arrived")
	metricsAddr := fs.String("metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (e.g. :9090)")
	logLevel := fs.String("log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tick <= 0 {
		return fmt.Errorf("-tick must be positive")
	}

	cfg.Log.Level = *logLevel
	cfg.Log.Writer = stderr
	cfg.Tracing.Writer = stderr
	log := logging.New(cfg.Log)
	ctx, log = logging.WithRunLogger(ctx, log)

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	reg := prometheus.NewRegistry()
	collector, err := observability.NewSimCollector(reg)
	if err != nil {
		return err
	}
	if *metricsAddr != "" {
		srv := serveMetrics(ctx, *metricsAddr, collector, log)
		defer shutdownServer(srv, log)
	}

	net := core.NewNetwork(core.Options{StrictValidation: *strict})
	out := newConsole(stdout)
	out.Attach(net)

	var summary *scenario.Summary
	if *scenarioPath == "" {
		summary, err = scenario.Sample(net)
	} else {
		summary, err = scenario.LoadFile(net, *scenarioPath)
	}
	if err != nil {
		return err
	}
	log.Info(ctx, "scenario loaded",
		logging.String("source", sourceName(*scenarioPath)),
		logging.Int("regions", len(summary.RegionIDs)),
		logging.Int("connections", summary.Connections),
		logging.Int("vehicles", len(summary.VehicleNames)),
	)

	engine := core.NewSimulationEngine(net,
		core.WithLogger(log),
		core.WithMetrics(collector),
	)

	mode := timectrl.Accelerated
	if *realtime {
		mode = timectrl.RealTime
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), *tick, mode)
	tc.AddListener(func(ctx context.Context, info timectrl.TickInfo) error {
		if *untilSettled && net.Settled() {
			return timectrl.ErrStop
		}
		out.BeginTick()
		engine.Step(ctx)
		return nil
	})

	log.Info(ctx, "starting simulation",
		logging.Int("max_ticks", *ticks),
		logging.Duration("tick", *tick),
		logging.String("mode", mode.String()),
	)
	err = tc.Run(ctx, *ticks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := net.Stats()
	log.Info(ctx, "simulation complete",
		logging.Int("ticks", net.Ticks()),
		logging.Int("arrived", stats.Arrived),
		logging.Int("vehicles", stats.Vehicles),
	)
	return nil
}

func sourceName(path string) string {
	if path == "" {
		return "sample"
	}
	return path
}

func serveMetrics(ctx context.Context, addr string, c *observability.SimCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info(ctx, "metrics server listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logging.Err(err))
		}
	}()
	return srv
}

func shutdownServer(srv *http.Server, log logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn(ctx, "metrics server shutdown failed", logging.Err(err))
	}
}
