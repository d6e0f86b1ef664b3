package scenario

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/citytraffic/core"
	"github.com/signalsfoundry/citytraffic/model"
)

func linkKind(t *testing.T, net *core.Network, from, to string) model.LinkKind {
	t.Helper()
	r := net.Region(from)
	if r == nil {
		t.Fatalf("region %q missing", from)
	}
	_, link, ok := r.NextHopToward(to)
	if !ok {
		t.Fatalf("no direct link %s -> %s", from, to)
	}
	return link.Kind
}

func TestSampleCity(t *testing.T) {
	net := core.NewNetwork(core.Options{StrictValidation: true})
	summary, err := Sample(net)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(summary.RegionIDs) != 4 || summary.Connections != 2 || len(summary.VehicleNames) != 2 {
		t.Fatalf("summary = %s, want 4 regions, 2 connections, 2 vehicles", summary)
	}
	if got := linkKind(t, net, "West", "East"); got != model.LinkBridge {
		t.Fatalf("West -> East kind = %v, want Bridge", got)
	}

	net.Tick()
	if !net.Settled() {
		t.Fatalf("sample city should settle after one tick")
	}
}

func TestLoadJSON(t *testing.T) {
	src := `{
		"regions": ["A", "B", "C"],
		"connections": [{"a": "A", "b": "B", "kind": "Tunnel"}, {"a": "B", "b": "C"}],
		"vehicles": [{"name": "v1", "location": "A", "destination": "B"}]
	}`
	net := core.NewNetwork(core.Options{})
	summary, err := LoadJSON(net, strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if summary.Connections != 2 {
		t.Fatalf("Connections = %d, want 2", summary.Connections)
	}
	if got := linkKind(t, net, "B", "A"); got != model.LinkTunnel {
		t.Fatalf("B -> A kind = %v, want Tunnel", got)
	}
	if got := linkKind(t, net, "C", "B"); got != model.LinkRoad {
		t.Fatalf("C -> B kind = %v, want Road (default)", got)
	}
	if net.Vehicle("v1") == nil {
		t.Fatalf("vehicle v1 missing")
	}
}

func TestLoadJSONErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want error
	}{
		"duplicate region": {`{"regions": ["A", "A"]}`, core.ErrDuplicateRegion},
		"unknown endpoint": {`{"regions": ["A"], "connections": [{"a": "A", "b": "Z"}]}`, core.ErrUnknownRegion},
		"bad kind":         {`{"regions": ["A", "B"], "connections": [{"a": "A", "b": "B", "kind": "ferry"}]}`, model.ErrUnknownLinkKind},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadJSON(core.NewNetwork(core.Options{}), strings.NewReader(tc.src))
			if !errors.Is(err, tc.want) {
				t.Fatalf("LoadJSON err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadJSONRejectsMalformedInput(t *testing.T) {
	for _, src := range []string{`{"regions": [`, `{"roads": []}`} {
		if _, err := LoadJSON(core.NewNetwork(core.Options{}), strings.NewReader(src)); err == nil {
			t.Fatalf("LoadJSON(%q) succeeded, want error", src)
		}
	}
}

func TestLoadCity(t *testing.T) {
	src := `
		// comment
		region North, South
		region "Old Town"
		connect North South road
		connect "Old Town" North by Tunnel
		vehicle "Car 1" from "Old Town" to North
	`
	net := core.NewNetwork(core.Options{})
	summary, err := LoadCity(net, strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadCity: %v", err)
	}
	if len(summary.RegionIDs) != 3 || summary.RegionIDs[2] != "Old Town" {
		t.Fatalf("RegionIDs = %v, want [North South Old Town]", summary.RegionIDs)
	}
	if got := linkKind(t, net, "North", "Old Town"); got != model.LinkTunnel {
		t.Fatalf("North -> Old Town kind = %v, want Tunnel", got)
	}
	car := net.Vehicle("Car 1")
	if car == nil || car.Location() != "Old Town" || car.Destination() != "North" {
		t.Fatalf("Car 1 = %+v, want Old Town -> North", car)
	}
}

func TestLoadCityGrammarExample(t *testing.T) {
	src := `region North, South
region "Old Town"
connect North South road
connect "Old Town" North by tunnel
vehicle "Car 1" from North to South
`
	net := core.NewNetwork(core.Options{StrictValidation: true})
	summary, err := LoadCity(net, strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadCity: %v", err)
	}
	if summary.Connections != 2 || len(summary.VehicleNames) != 1 {
		t.Fatalf("summary = %s, want 2 connections and 1 vehicle", summary)
	}
	if got := linkKind(t, net, "North", "Old Town"); got != model.LinkTunnel {
		t.Fatalf("North -> Old Town kind = %v, want Tunnel", got)
	}
}

func TestLoadCityErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want error
	}{
		"duplicate region": {"region A\nregion A", core.ErrDuplicateRegion},
		"unknown region":   {"region A\nconnect A B road", core.ErrUnknownRegion},
		"bad kind":         {"region A, B\nconnect A B ferry", model.ErrUnknownLinkKind},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCity(core.NewNetwork(core.Options{}), strings.NewReader(tc.src))
			if !errors.Is(err, tc.want) {
				t.Fatalf("LoadCity err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadCitySyntaxError(t *testing.T) {
	if _, err := LoadCity(core.NewNetwork(core.Options{}), strings.NewReader("teleport A B")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadGeoJSON(t *testing.T) {
	src := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"vehicle": "v", "location": "A", "destination": "B"}},
		{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}, "properties": {"from": "A", "to": "B", "kind": "bridge"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"region": "A"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 1]}, "properties": {"region": "B"}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}, "properties": {}}
	]}`
	net := core.NewNetwork(core.Options{StrictValidation: true})
	summary, err := LoadGeoJSON(net, strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if len(summary.RegionIDs) != 2 || summary.Connections != 1 || len(summary.VehicleNames) != 1 {
		t.Fatalf("summary = %s, want 2 regions, 1 connection, 1 vehicle", summary)
	}
	if got := linkKind(t, net, "A", "B"); got != model.LinkBridge {
		t.Fatalf("A -> B kind = %v, want Bridge", got)
	}
}

func TestLoadGeoJSONNamedRegions(t *testing.T) {
	src := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [23.58, 47.67]}, "properties": {"name": "North"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [23.58, 47.64]}, "properties": {"name": "South"}},
		{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[23.58, 47.67], [23.58, 47.64]]}, "properties": {"from": "North", "to": "South"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [23.58, 47.67]}, "properties": {"vehicle": "Car 1", "location": "North", "destination": "South"}}
	]}`
	net := core.NewNetwork(core.Options{StrictValidation: true})
	summary, err := LoadGeoJSON(net, strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if got := strings.Join(summary.RegionIDs, ","); got != "North,South" {
		t.Fatalf("RegionIDs = %s, want North,South", got)
	}
	if got := linkKind(t, net, "South", "North"); got != model.LinkRoad {
		t.Fatalf("South -> North kind = %v, want Road", got)
	}
	if net.Vehicle("Car 1") == nil {
		t.Fatalf("vehicle Car 1 missing")
	}
}

func TestLoadGeoJSONMissingEndpoints(t *testing.T) {
	src := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}, "properties": {"from": "A"}}
	]}`
	if _, err := LoadGeoJSON(core.NewNetwork(core.Options{}), strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for linestring without \"to\"")
	}
}

func TestLoadOSM(t *testing.T) {
	net := core.NewNetwork(core.Options{})
	summary, err := LoadFile(net, filepath.Join("..", "examples", "scenarios", "baia-mare.osm"))
	if err != nil {
		t.Fatalf("LoadFile(osm): %v", err)
	}
	if got := strings.Join(summary.RegionIDs, ","); got != "North,South,East,West" {
		t.Fatalf("RegionIDs = %s, want North,South,East,West", got)
	}
	if summary.Connections != 3 {
		t.Fatalf("Connections = %d, want 3 (waterway ignored)", summary.Connections)
	}
	if got := linkKind(t, net, "South", "North"); got != model.LinkRoad {
		t.Fatalf("South -> North kind = %v, want Road", got)
	}
	if got := linkKind(t, net, "West", "East"); got != model.LinkBridge {
		t.Fatalf("West -> East kind = %v, want Bridge", got)
	}
	if got := linkKind(t, net, "East", "North"); got != model.LinkTunnel {
		t.Fatalf("East -> North kind = %v, want Tunnel", got)
	}
	if len(summary.VehicleNames) != 0 {
		t.Fatalf("OSM should not create vehicles, got %v", summary.VehicleNames)
	}
}

func TestLoadFileExamples(t *testing.T) {
	cases := []struct {
		file     string
		regions  int
		vehicles int
	}{
		{"baia-mare.json", 5, 3},
		{"baia-mare.city", 5, 3},
		{"baia-mare.geojson", 4, 2},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			net := core.NewNetwork(core.Options{StrictValidation: true})
			summary, err := LoadFile(net, filepath.Join("..", "examples", "scenarios", tc.file))
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if len(summary.RegionIDs) != tc.regions || len(summary.VehicleNames) != tc.vehicles {
				t.Fatalf("summary = %s, want %d regions and %d vehicles", summary, tc.regions, tc.vehicles)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":    FormatJSON,
		"a.GeoJSON": FormatGeoJSON,
		"a.osm":     FormatOSM,
		"a.city":    FormatCity,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Fatalf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("a.yaml"); err == nil {
		t.Fatalf("expected error for .yaml")
	}
}
