package core

import "github.com/signalsfoundry/citytraffic/model"

// Vehicle is tracked by its current location and destination, both region
// IDs. Only Advance mutates it.
type Vehicle struct {
	name        string
	location    string
	destination string
}

// NewVehicle returns a vehicle at location heading for destination.
func NewVehicle(name, location, destination string) *Vehicle {
	return &Vehicle{name: name, location: location, destination: destination}
}

func (v *Vehicle) Name() string        { return v.name }
func (v *Vehicle) Location() string    { return v.location }
func (v *Vehicle) Destination() string { return v.destination }

// Arrived reports whether the vehicle is at its destination.
func (v *Vehicle) Arrived() bool { return v.location == v.destination }

// State maps Arrived onto the vehicle state machine.
func (v *Vehicle) State() model.VehicleState {
	if v.Arrived() {
		return model.Arrived
	}
	return model.Traveling
}

// Advance moves the vehicle at most one hop. Regions are scanned in the
// network's iteration order for the one named by the vehicle's location, and
// the first direct link from there to the destination is taken.
func (v *Vehicle) Advance(net *Network) model.MoveResult {
	if v.Arrived() {
		return model.MoveResult{Outcome: model.MoveNoOp}
	}

	var (
		next *Region
		via  Link
	)
	net.eachRegion(func(r *Region) bool {
		if r.id != v.location {
			return true
		}
		hop, l, ok := r.NextHopToward(v.destination)
		if !ok {
			return true
		}
		next, via = hop, l
		return false
	})
	if next == nil {
		return model.MoveResult{Outcome: model.MoveBlocked}
	}

	from := v.location
	v.location = next.id
	return model.MoveResult{
		Outcome: model.MoveMoved,
		From:    from,
		To:      v.location,
		Kind:    via.Kind,
	}
}
