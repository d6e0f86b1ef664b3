package scenario

import (
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"github.com/signalsfoundry/citytraffic/core"
)

// LoadGeoJSON reads a FeatureCollection describing a city:
//
//   - Point features with a "name" property are regions. "region" is
//     accepted as an alias.
//   - LineString features with "from", "to" and optional "kind" properties
//     are connections.
//   - Point features with a "vehicle" property are vehicles, placed at the
//     "location" region and heading for "destination".
//
// Geometry coordinates are not used by the simulation. Features of other
// shapes are ignored.
func LoadGeoJSON(net *core.Network, r io.Reader) (*Summary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "scenario: read geojson")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "scenario: decode geojson")
	}

	var regions, links, vehicles []*geojson.Feature
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch {
		case f.Geometry.IsPoint() && hasProperty(f, "vehicle"):
			vehicles = append(vehicles, f)
		case f.Geometry.IsPoint() && (hasProperty(f, "name") || hasProperty(f, "region")):
			regions = append(regions, f)
		case f.Geometry.IsLineString():
			links = append(links, f)
		}
	}

	b := newBuilder(net)
	for _, f := range regions {
		id := regionName(f)
		if id == "" {
			return nil, fmt.Errorf("scenario: geojson region feature without a string \"name\" property")
		}
		if err := b.region(id); err != nil {
			return nil, err
		}
	}
	for _, f := range links {
		from := f.PropertyMustString("from")
		to := f.PropertyMustString("to")
		if from == "" || to == "" {
			return nil, fmt.Errorf("scenario: geojson linestring needs \"from\" and \"to\" properties")
		}
		kind, err := kindOrRoad(f.PropertyMustString("kind"))
		if err != nil {
			return nil, errors.Wrapf(err, "scenario: geojson connection %s-%s", from, to)
		}
		if err := b.connect(from, to, kind); err != nil {
			return nil, err
		}
	}
	for _, f := range vehicles {
		name := f.PropertyMustString("vehicle")
		if err := b.vehicle(name, f.PropertyMustString("location"), f.PropertyMustString("destination")); err != nil {
			return nil, err
		}
	}
	return b.summary, nil
}

func hasProperty(f *geojson.Feature, key string) bool {
	_, ok := f.Properties[key]
	return ok
}

// regionName prefers "name" and falls back to "region".
func regionName(f *geojson.Feature) string {
	for _, key := range []string{"name", "region"} {
		if id, err := f.PropertyString(key); err == nil && id != "" {
			return id
		}
	}
	return ""
}
