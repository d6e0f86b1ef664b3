package timectrl

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStop may be returned by a listener to end a run cleanly.
var ErrStop = errors.New("timectrl: stop")

// SimClock is an interface for reading simulation time without depending on
// the concrete controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// Ticks returns how many ticks have elapsed.
	Ticks() int
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime waits one wall-clock Tick between steps.
	RealTime Mode = iota
	// Accelerated steps back-to-back while still advancing simulation time by Tick.
	Accelerated
)

func (m Mode) String() string {
	if m == RealTime {
		return "realtime"
	}
	return "accelerated"
}

// TickInfo is passed to listeners on every tick.
type TickInfo struct {
	Tick    int // 1-based
	SimTime time.Time
}

// Listener is invoked once per tick. Returning ErrStop ends the run without
// error; any other error aborts it.
type Listener func(ctx context.Context, info TickInfo) error

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	ticks       int
	err         error

	listeners []Listener
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// Ticks returns the number of completed ticks. Implements SimClock.
func (tc *TimeController) Ticks() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.ticks
}

// SetTime moves the simulation clock to t.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// Err returns the result of the last finished Start.
func (tc *TimeController) Err() error {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.err
}

// AddListener registers a callback invoked on every tick. Listeners must be
// added before Run or Start.
func (tc *TimeController) AddListener(fn Listener) {
	tc.listeners = append(tc.listeners, fn)
}

// Run advances time synchronously until maxTicks ticks have run (0 means no
// limit), a listener returns ErrStop, or ctx is done.
func (tc *TimeController) Run(ctx context.Context, maxTicks int) error {
	tc.mu.Lock()
	simTime := tc.StartTime
	tc.currentTime = simTime
	tc.ticks = 0
	tc.mu.Unlock()

	var ticker *time.Ticker
	if tc.Mode == RealTime {
		ticker = time.NewTicker(tc.Tick)
		defer ticker.Stop()
	}

	for n := 1; maxTicks <= 0 || n <= maxTicks; n++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		simTime = simTime.Add(tc.Tick)

		tc.mu.Lock()
		tc.currentTime = simTime
		tc.ticks = n
		tc.mu.Unlock()

		info := TickInfo{Tick: n, SimTime: simTime}
		for _, fn := range tc.listeners {
			if err := fn(ctx, info); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// Start runs the controller in a separate goroutine. It returns a channel
// that is closed when the run finishes; Err reports how it ended.
func (tc *TimeController) Start(ctx context.Context, maxTicks int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := tc.Run(ctx, maxTicks)
		tc.mu.Lock()
		tc.err = err
		tc.mu.Unlock()
	}()
	return done
}
