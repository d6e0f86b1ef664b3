package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/citytraffic/model"
)

// SimCollector bundles Prometheus metrics for the traffic simulation. It
// satisfies core.MetricsRecorder.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Ticks         prometheus.Counter
	Moves         *prometheus.CounterVec
	Blocked       prometheus.Counter
	Arrivals      prometheus.Counter
	TickDurations prometheus.Histogram

	Regions         prometheus.Gauge
	Links           prometheus.Gauge
	Vehicles        prometheus.Gauge
	VehiclesArrived prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registering twice against the same registry reuses the existing collectors.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimCollector{gatherer: gatherer}
	var err error

	if c.Ticks, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "citysim_ticks_total",
		Help: "Total number of simulation ticks executed.",
	}), "citysim_ticks_total"); err != nil {
		return nil, err
	}

	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citysim_vehicle_moves_total",
		Help: "Total number of vehicle hops, labeled by link kind.",
	}, []string{"kind"})
	if c.Moves, err = registerCounterVec(reg, moves, "citysim_vehicle_moves_total"); err != nil {
		return nil, err
	}

	if c.Blocked, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "citysim_vehicle_blocked_total",
		Help: "Total number of per-tick vehicle advances that found no direct link.",
	}), "citysim_vehicle_blocked_total"); err != nil {
		return nil, err
	}
	if c.Arrivals, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "citysim_vehicle_arrivals_total",
		Help: "Total number of vehicles that reached their destination.",
	}), "citysim_vehicle_arrivals_total"); err != nil {
		return nil, err
	}

	if c.TickDurations, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "citysim_tick_duration_seconds",
		Help:    "Wall-clock time spent resolving one tick.",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "citysim_tick_duration_seconds"); err != nil {
		return nil, err
	}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Regions, "citysim_regions", "Current number of regions in the network."},
		{&c.Links, "citysim_links", "Current number of directed links in the network."},
		{&c.Vehicles, "citysim_vehicles", "Current number of vehicles in the network."},
		{&c.VehiclesArrived, "citysim_vehicles_arrived", "Current number of vehicles at their destination."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: g.name,
			Help: g.help,
		}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}

	return c, nil
}

// RecordTick records one tick's outcome.
func (c *SimCollector) RecordTick(elapsed time.Duration, moves map[model.LinkKind]int, blocked, arrived int) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDurations.Observe(elapsed.Seconds())
	for kind, n := range moves {
		c.Moves.WithLabelValues(kind.String()).Add(float64(n))
	}
	c.Blocked.Add(float64(blocked))
	c.Arrivals.Add(float64(arrived))
}

// SetNetworkCounts drives the network gauges.
func (c *SimCollector) SetNetworkCounts(regions, links, vehicles, arrived int) {
	if c == nil {
		return
	}
	c.Regions.Set(float64(regions))
	c.Links.Set(float64(links))
	c.Vehicles.Set(float64(vehicles))
	c.VehiclesArrived.Set(float64(arrived))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
