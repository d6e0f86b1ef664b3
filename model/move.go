package model

// MoveOutcome classifies the result of advancing a vehicle by one tick.
type MoveOutcome int

const (
	// MoveNoOp means the vehicle had already arrived.
	MoveNoOp MoveOutcome = iota
	// MoveMoved means the vehicle hopped over one link.
	MoveMoved
	// MoveBlocked means no direct link leads from the vehicle's location to
	// its destination. This is a steady state, not an error.
	MoveBlocked
)

func (o MoveOutcome) String() string {
	switch o {
	case MoveNoOp:
		return "NoOp"
	case MoveMoved:
		return "Moved"
	case MoveBlocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}

// MoveResult is what Vehicle.Advance reports. From, To and Kind are only
// meaningful when Outcome is MoveMoved.
type MoveResult struct {
	Outcome MoveOutcome
	From    string
	To      string
	Kind    LinkKind
}

// VehicleState is the per-vehicle state machine: Traveling until the
// vehicle's location equals its destination, then Arrived for good.
type VehicleState int

const (
	Traveling VehicleState = iota
	Arrived
)

func (s VehicleState) String() string {
	if s == Arrived {
		return "Arrived"
	}
	return "Traveling"
}
