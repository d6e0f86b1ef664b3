package scenario

import (
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/signalsfoundry/citytraffic/core"
)

// CityFile is the grammar of the .city text format:
//
//	region North, South
//	region "Old Town"
//	connect North South road
//	connect "Old Town" North by tunnel
//	vehicle "Car 1" from North to South
//
// The link kind (road, bridge or tunnel) is required on every connect.
// Statements are applied in the order they appear. Comments use // or /* */.
type CityFile struct {
	Statements []*Statement `@@*`
}

type Statement struct {
	Pos lexer.Position

	Region  *RegionStmt  `  @@`
	Connect *ConnectStmt `| @@`
	Vehicle *VehicleStmt `| @@`
}

type RegionStmt struct {
	Names []string `"region" @(Ident | String) ("," @(Ident | String))*`
}

type ConnectStmt struct {
	A    string `"connect" @(Ident | String)`
	B    string `@(Ident | String)`
	Kind string `"by"? @Ident`
}

type VehicleStmt struct {
	Name        string `"vehicle" @(Ident | String)`
	Location    string `"from" @(Ident | String)`
	Destination string `"to" @(Ident | String)`
}

var parseCity = participle.MustBuild[CityFile](participle.Unquote("String"))

// ParseCity parses .city source without applying it.
func ParseCity(filename string, r io.Reader) (*CityFile, error) {
	file, err := parseCity.Parse(filename, r)
	if err != nil {
		return nil, errors.Wrap(err, "scenario: parse city")
	}
	return file, nil
}

// LoadCity parses .city source from r and applies it to net.
func LoadCity(net *core.Network, r io.Reader) (*Summary, error) {
	file, err := ParseCity("", r)
	if err != nil {
		return nil, err
	}
	return file.Apply(net)
}

// Apply adds the file's regions, connections and vehicles to net.
func (f *CityFile) Apply(net *core.Network) (*Summary, error) {
	b := newBuilder(net)
	for _, st := range f.Statements {
		var err error
		switch {
		case st.Region != nil:
			for _, name := range st.Region.Names {
				if err = b.region(name); err != nil {
					break
				}
			}
		case st.Connect != nil:
			kind, kerr := kindOrRoad(st.Connect.Kind)
			if kerr != nil {
				err = kerr
				break
			}
			err = b.connect(st.Connect.A, st.Connect.B, kind)
		case st.Vehicle != nil:
			err = b.vehicle(st.Vehicle.Name, st.Vehicle.Location, st.Vehicle.Destination)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s", st.Pos)
		}
	}
	return b.summary, nil
}
