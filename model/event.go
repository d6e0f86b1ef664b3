package model

// EventType indicates what happened in the network.
type EventType int

const (
	EventConnectionBuilt EventType = iota
	EventVehicleMoved
	EventVehicleArrived
)

func (t EventType) String() string {
	switch t {
	case EventConnectionBuilt:
		return "ConnectionBuilt"
	case EventVehicleMoved:
		return "VehicleMoved"
	case EventVehicleArrived:
		return "VehicleArrived"
	default:
		return "Unknown"
	}
}

// Event is delivered to network subscribers. Which fields are set depends on
// Type:
//
//   - EventConnectionBuilt: From, To, Kind
//   - EventVehicleMoved: Vehicle, From, To, Kind
//   - EventVehicleArrived: Vehicle, To (the destination)
//
// Tick is the 1-based tick number for vehicle events and 0 for
// connections built during setup.
type Event struct {
	Type    EventType
	Tick    int
	Vehicle string
	From    string
	To      string
	Kind    LinkKind
}

// ConnectionBuilt returns the event for a new bidirectional connection.
func ConnectionBuilt(from, to string, kind LinkKind) Event {
	return Event{Type: EventConnectionBuilt, From: from, To: to, Kind: kind}
}

// VehicleMoved returns the event for a single hop.
func VehicleMoved(tick int, vehicle, from, to string, kind LinkKind) Event {
	return Event{Type: EventVehicleMoved, Tick: tick, Vehicle: vehicle, From: from, To: to, Kind: kind}
}

// VehicleArrived returns the event for a vehicle reaching its destination.
func VehicleArrived(tick int, vehicle, destination string) Event {
	return Event{Type: EventVehicleArrived, Tick: tick, Vehicle: vehicle, To: destination}
}
