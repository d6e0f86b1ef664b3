package main

import (
	"fmt"
	"io"

	"github.com/signalsfoundry/citytraffic/core"
	"github.com/signalsfoundry/citytraffic/model"
)

// console renders network events as the human-readable lines of the
// original demo.
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) *console { return &console{w: w} }

// Attach subscribes the console to net's events.
func (c *console) Attach(net *core.Network) (detach func()) {
	return net.Subscribe(c.render)
}

func (c *console) render(e model.Event) {
	switch e.Type {
	case model.EventConnectionBuilt:
		fmt.Fprintf(c.w, "%s built between %s and %s\n", e.Kind, e.From, e.To)
	case model.EventVehicleMoved:
		fmt.Fprintf(c.w, "%s is moving to %s.\n", e.Vehicle, e.To)
	case model.EventVehicleArrived:
		fmt.Fprintf(c.w, "%s has reached its destination: %s\n", e.Vehicle, e.To)
	}
}

// BeginTick prints the per-tick banner.
func (c *console) BeginTick() {
	fmt.Fprintln(c.w, "Simulating city traffic...")
}
