package core

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/signalsfoundry/citytraffic/model"
)

var (
	ErrDuplicateRegion = errors.New("region already exists")
	ErrInvalidRegion   = errors.New("invalid region")
	ErrUnknownRegion   = errors.New("unknown region")
	ErrInvalidVehicle  = errors.New("invalid vehicle")
)

// Options tweaks Network validation.
type Options struct {
	// StrictValidation makes AddVehicle reject vehicles whose location or
	// destination is not a registered region. Off by default: such vehicles
	// are accepted and simply stay blocked.
	StrictValidation bool
}

// Network owns all regions and vehicles and runs the per-tick movement
// pass. It is not safe for concurrent use; a single goroutine drives it.
type Network struct {
	opts Options

	// region ID -> *Region, iterated in insertion order
	regions  *linkedhashmap.Map
	vehicles []*Vehicle
	tick     int

	subs   map[int]func(model.Event)
	subIDs []int
	nextID int
}

// TickReport summarises one Tick.
type TickReport struct {
	Tick    int
	Results []VehicleResult
}

// VehicleResult is the outcome for a single vehicle within a tick.
type VehicleResult struct {
	Vehicle string
	Result  model.MoveResult
	// Arrived is set only on the tick the vehicle reached its destination.
	Arrived bool
}

// Count returns how many vehicles had the given outcome.
func (r TickReport) Count(o model.MoveOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Result.Outcome == o {
			n++
		}
	}
	return n
}

// Arrivals returns the names of vehicles that arrived during the tick.
func (r TickReport) Arrivals() []string {
	var out []string
	for _, res := range r.Results {
		if res.Arrived {
			out = append(out, res.Vehicle)
		}
	}
	return out
}

// Stats is a point-in-time summary of the network.
type Stats struct {
	Regions  int
	Links    int
	Vehicles int
	Arrived  int
}

// NewNetwork constructs an empty network.
func NewNetwork(opts Options) *Network {
	return &Network{
		opts:    opts,
		regions: linkedhashmap.New(),
		subs:    make(map[int]func(model.Event)),
	}
}

//
// ---------- Construction ----------
//

// AddRegion registers r. It returns ErrDuplicateRegion if a region with the
// same ID is already present.
func (n *Network) AddRegion(r *Region) error {
	if r == nil || r.id == "" {
		return fmt.Errorf("%w: nil or empty ID", ErrInvalidRegion)
	}
	if _, exists := n.regions.Get(r.id); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegion, r.id)
	}
	n.regions.Put(r.id, r)
	return nil
}

// AddVehicle appends v to the vehicle sequence. Location and destination are
// only checked when StrictValidation is on.
func (n *Network) AddVehicle(v *Vehicle) error {
	if v == nil {
		return fmt.Errorf("%w: nil vehicle", ErrInvalidVehicle)
	}
	if n.opts.StrictValidation {
		for _, id := range []string{v.location, v.destination} {
			if n.Region(id) == nil {
				return fmt.Errorf("%w: %q (vehicle %q)", ErrUnknownRegion, id, v.name)
			}
		}
	}
	n.vehicles = append(n.vehicles, v)
	return nil
}

// BuildConnection links a and b in both directions with the same kind and
// emits a single ConnectionBuilt event. It does nothing if either region is
// nil.
func (n *Network) BuildConnection(a, b *Region, kind model.LinkKind) {
	if a == nil || b == nil {
		return
	}
	a.AddLink(b, kind)
	b.AddLink(a, kind)
	n.emit(model.ConnectionBuilt(a.id, b.id, kind))
}

// Connect is BuildConnection by region ID.
func (n *Network) Connect(aID, bID string, kind model.LinkKind) error {
	a := n.Region(aID)
	if a == nil {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, aID)
	}
	b := n.Region(bID)
	if b == nil {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, bID)
	}
	n.BuildConnection(a, b, kind)
	return nil
}

//
// ---------- Simulation ----------
//

// Tick advances every vehicle once, in the order they were added. A vehicle
// hops at most one link per tick.
func (n *Network) Tick() TickReport {
	n.tick++
	report := TickReport{
		Tick:    n.tick,
		Results: make([]VehicleResult, 0, len(n.vehicles)),
	}

	for _, v := range n.vehicles {
		res := v.Advance(n)
		vr := VehicleResult{Vehicle: v.name, Result: res}

		if res.Outcome == model.MoveMoved {
			n.emit(model.VehicleMoved(n.tick, v.name, res.From, res.To, res.Kind))
			// Arrived is terminal and only reachable by moving, so this
			// fires once per vehicle.
			if v.Arrived() {
				vr.Arrived = true
				n.emit(model.VehicleArrived(n.tick, v.name, v.destination))
			}
		}
		report.Results = append(report.Results, vr)
	}
	return report
}

// Ticks returns how many times Tick has run.
func (n *Network) Ticks() int { return n.tick }

// Settled reports whether every vehicle has arrived.
func (n *Network) Settled() bool {
	for _, v := range n.vehicles {
		if !v.Arrived() {
			return false
		}
	}
	return true
}

//
// ---------- Observers ----------
//

// Subscribe registers fn for network events. Callbacks run synchronously in
// emission order. It returns an unsubscribe function.
func (n *Network) Subscribe(fn func(model.Event)) (unsubscribe func()) {
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.subIDs = append(n.subIDs, id)

	return func() {
		if _, ok := n.subs[id]; !ok {
			return
		}
		delete(n.subs, id)
		for i, sid := range n.subIDs {
			if sid == id {
				n.subIDs = append(n.subIDs[:i], n.subIDs[i+1:]...)
				break
			}
		}
	}
}

func (n *Network) emit(e model.Event) {
	ids := append([]int(nil), n.subIDs...)
	for _, id := range ids {
		if fn, ok := n.subs[id]; ok {
			fn(e)
		}
	}
}

//
// ---------- Queries ----------
//

// Region returns the region with the given ID, or nil if not found.
func (n *Network) Region(id string) *Region {
	v, ok := n.regions.Get(id)
	if !ok {
		return nil
	}
	return v.(*Region)
}

// Regions returns all regions in insertion order.
func (n *Network) Regions() []*Region {
	out := make([]*Region, 0, n.regions.Size())
	n.eachRegion(func(r *Region) bool {
		out = append(out, r)
		return true
	})
	return out
}

// Vehicles returns a snapshot of the vehicle sequence.
func (n *Network) Vehicles() []*Vehicle {
	out := make([]*Vehicle, len(n.vehicles))
	copy(out, n.vehicles)
	return out
}

// Vehicle returns the first vehicle with the given name, or nil.
func (n *Network) Vehicle(name string) *Vehicle {
	for _, v := range n.vehicles {
		if v.name == name {
			return v
		}
	}
	return nil
}

// Stats summarises the network.
func (n *Network) Stats() Stats {
	s := Stats{
		Regions:  n.regions.Size(),
		Vehicles: len(n.vehicles),
	}
	n.eachRegion(func(r *Region) bool {
		s.Links += len(r.links)
		return true
	})
	for _, v := range n.vehicles {
		if v.Arrived() {
			s.Arrived++
		}
	}
	return s
}

// eachRegion calls fn for every region in insertion order until fn returns
// false.
func (n *Network) eachRegion(fn func(*Region) bool) {
	it := n.regions.Iterator()
	for it.Next() {
		if !fn(it.Value().(*Region)) {
			return
		}
	}
}
