package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/citytraffic/internal/logging"
	"github.com/signalsfoundry/citytraffic/model"
)

const tracerName = "github.com/signalsfoundry/citytraffic/core"

// MetricsRecorder receives per-tick measurements. It is satisfied by
// observability.SimCollector.
type MetricsRecorder interface {
	RecordTick(elapsed time.Duration, moves map[model.LinkKind]int, blocked, arrived int)
	SetNetworkCounts(regions, links, vehicles, arrived int)
}

// SimulationEngine drives a Network tick by tick and wraps every tick with
// tracing, metrics and logging.
type SimulationEngine struct {
	Network *Network

	// StopWhenSettled ends Run once every vehicle has arrived.
	StopWhenSettled bool

	log           logging.Logger
	metrics       MetricsRecorder
	tracer        trace.Tracer
	tickListeners []func(TickReport)
}

// EngineOption configures a SimulationEngine.
type EngineOption func(*SimulationEngine)

func WithLogger(l logging.Logger) EngineOption {
	return func(se *SimulationEngine) {
		if l != nil {
			se.log = l
		}
	}
}

func WithMetrics(m MetricsRecorder) EngineOption {
	return func(se *SimulationEngine) { se.metrics = m }
}

// WithTracerProvider overrides the global OTel tracer provider.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(se *SimulationEngine) {
		if tp != nil {
			se.tracer = tp.Tracer(tracerName)
		}
	}
}

func WithStopWhenSettled(stop bool) EngineOption {
	return func(se *SimulationEngine) { se.StopWhenSettled = stop }
}

func NewSimulationEngine(net *Network, opts ...EngineOption) *SimulationEngine {
	se := &SimulationEngine{
		Network: net,
		log:     logging.Noop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(se)
	}
	se.publishCounts()
	return se
}

func (se *SimulationEngine) RegisterTickListener(fn func(TickReport)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// Step runs exactly one network tick.
func (se *SimulationEngine) Step(ctx context.Context) TickReport {
	ctx, span := se.tracer.Start(ctx, "Network.Tick")
	defer span.End()

	start := time.Now()
	report := se.Network.Tick()
	elapsed := time.Since(start)

	moves := make(map[model.LinkKind]int)
	for _, res := range report.Results {
		if res.Result.Outcome == model.MoveMoved {
			moves[res.Result.Kind]++
		}
	}
	moved := report.Count(model.MoveMoved)
	blocked := report.Count(model.MoveBlocked)
	arrived := len(report.Arrivals())

	span.SetAttributes(
		attribute.Int("sim.tick", report.Tick),
		attribute.Int("sim.vehicles.moved", moved),
		attribute.Int("sim.vehicles.blocked", blocked),
		attribute.Int("sim.vehicles.arrived", arrived),
	)

	if se.metrics != nil {
		se.metrics.RecordTick(elapsed, moves, blocked, arrived)
	}
	se.publishCounts()

	se.log.Debug(ctx, "tick complete",
		logging.Int("tick", report.Tick),
		logging.Int("moved", moved),
		logging.Int("blocked", blocked),
		logging.Int("arrived", arrived),
		logging.Duration("elapsed", elapsed),
	)

	for _, fn := range se.tickListeners {
		fn(report)
	}
	return report
}

// Run steps the network up to ticks times. A non-positive ticks value means
// no limit, in which case Run only returns once the network settles (with
// StopWhenSettled) or ctx is done. It returns the number of ticks executed.
func (se *SimulationEngine) Run(ctx context.Context, ticks int) (int, error) {
	ran := 0
	for ticks <= 0 || ran < ticks {
		if err := ctx.Err(); err != nil {
			return ran, err
		}
		if se.StopWhenSettled && se.Network.Settled() {
			se.log.Info(ctx, "all vehicles arrived", logging.Int("ticks", ran))
			return ran, nil
		}
		se.Step(ctx)
		ran++
	}
	return ran, nil
}

func (se *SimulationEngine) publishCounts() {
	if se.metrics == nil {
		return
	}
	s := se.Network.Stats()
	se.metrics.SetNetworkCounts(s.Regions, s.Links, s.Vehicles, s.Arrived)
}
