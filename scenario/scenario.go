// Package scenario populates a core.Network from scenario files and builds
// the built-in sample city.
package scenario

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/signalsfoundry/citytraffic/core"
	"github.com/signalsfoundry/citytraffic/model"
)

// Format names a scenario encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
	FormatOSM     Format = "osm"
	FormatCity    Format = "city"
)

// Summary lists what a loader added to the network.
type Summary struct {
	RegionIDs    []string
	Connections  int
	VehicleNames []string
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d regions, %d connections, %d vehicles",
		len(s.RegionIDs), s.Connections, len(s.VehicleNames))
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".geojson":
		return FormatGeoJSON, nil
	case ".osm", ".xml":
		return FormatOSM, nil
	case ".city":
		return FormatCity, nil
	default:
		return "", fmt.Errorf("scenario: unsupported file extension %q", filepath.Ext(path))
	}
}

// LoadFile opens path and loads it in the format implied by its extension.
func LoadFile(net *core.Network, path string) (*Summary, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: open %s", path)
	}
	defer f.Close()

	return Load(net, format, f)
}

// Load reads a scenario of the given format from r.
func Load(net *core.Network, format Format, r io.Reader) (*Summary, error) {
	if net == nil {
		return nil, fmt.Errorf("scenario: network is nil")
	}
	switch format {
	case FormatJSON:
		return LoadJSON(net, r)
	case FormatGeoJSON:
		return LoadGeoJSON(net, r)
	case FormatOSM:
		return LoadOSM(net, r)
	case FormatCity:
		return LoadCity(net, r)
	default:
		return nil, fmt.Errorf("scenario: unknown format %q", format)
	}
}

// Sample builds the demo city: four districts of Baia Mare, a road between
// North and South, a bridge between East and West, and two cars.
func Sample(net *core.Network) (*Summary, error) {
	b := newBuilder(net)
	for _, id := range []string{"North", "South", "East", "West"} {
		if err := b.region(id); err != nil {
			return nil, err
		}
	}
	if err := b.vehicle("Car 1", "North", "South"); err != nil {
		return nil, err
	}
	if err := b.vehicle("Car 2", "East", "West"); err != nil {
		return nil, err
	}
	if err := b.connect("North", "South", model.LinkRoad); err != nil {
		return nil, err
	}
	if err := b.connect("East", "West", model.LinkBridge); err != nil {
		return nil, err
	}
	return b.summary, nil
}

// builder applies loader output to a network and keeps the summary.
type builder struct {
	net     *core.Network
	summary *Summary
}

func newBuilder(net *core.Network) *builder {
	return &builder{net: net, summary: &Summary{}}
}

func (b *builder) region(id string) error {
	if err := b.net.AddRegion(core.NewRegion(id)); err != nil {
		return errors.Wrap(err, "scenario")
	}
	b.summary.RegionIDs = append(b.summary.RegionIDs, id)
	return nil
}

func (b *builder) connect(a, c string, kind model.LinkKind) error {
	if err := b.net.Connect(a, c, kind); err != nil {
		return errors.Wrapf(err, "scenario: connect %s-%s", a, c)
	}
	b.summary.Connections++
	return nil
}

func (b *builder) vehicle(name, location, destination string) error {
	if name == "" {
		return fmt.Errorf("scenario: vehicle with empty name")
	}
	if err := b.net.AddVehicle(core.NewVehicle(name, location, destination)); err != nil {
		return errors.Wrapf(err, "scenario: vehicle %q", name)
	}
	b.summary.VehicleNames = append(b.summary.VehicleNames, name)
	return nil
}
