package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/signalsfoundry/citytraffic/core"
	"github.com/signalsfoundry/citytraffic/model"
)

// internal JSON shapes; unexported so the file format can evolve freely.
type cityJSON struct {
	Regions     []string         `json:"regions"`
	Connections []connectionJSON `json:"connections"`
	Vehicles    []vehicleJSON    `json:"vehicles"`
}

type connectionJSON struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Kind string `json:"kind"` // "road" | "bridge" | "tunnel"; empty means road
}

type vehicleJSON struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Destination string `json:"destination"`
}

// LoadJSON reads a JSON scenario:
//
//	{
//	  "regions": ["North", "South"],
//	  "connections": [{"a": "North", "b": "South", "kind": "road"}],
//	  "vehicles": [{"name": "Car 1", "location": "North", "destination": "South"}]
//	}
//
// Regions are added first, then connections, then vehicles.
func LoadJSON(net *core.Network, r io.Reader) (*Summary, error) {
	var payload cityJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "scenario: decode json")
	}

	b := newBuilder(net)
	for _, id := range payload.Regions {
		if id == "" {
			return nil, fmt.Errorf("scenario: region with empty id")
		}
		if err := b.region(id); err != nil {
			return nil, err
		}
	}
	for _, c := range payload.Connections {
		kind, err := kindOrRoad(c.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "scenario: connection %s-%s", c.A, c.B)
		}
		if err := b.connect(c.A, c.B, kind); err != nil {
			return nil, err
		}
	}
	for _, v := range payload.Vehicles {
		if err := b.vehicle(v.Name, v.Location, v.Destination); err != nil {
			return nil, err
		}
	}
	return b.summary, nil
}

func kindOrRoad(s string) (model.LinkKind, error) {
	if s == "" {
		return model.LinkRoad, nil
	}
	return model.ParseLinkKind(s)
}
