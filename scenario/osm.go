package scenario

import (
	"context"
	"io"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"

	"github.com/signalsfoundry/citytraffic/core"
	"github.com/signalsfoundry/citytraffic/model"
)

// LoadOSM reads an OSM XML extract. Every node carrying a "name" tag becomes
// a region (nodes sharing a name collapse into one region). Every way tagged
// "highway" connects the first and last named nodes it passes through;
// bridge=yes makes it a Bridge, tunnel=yes a Tunnel, anything else a Road.
// OSM data carries no vehicles.
func LoadOSM(net *core.Network, r io.Reader) (*Summary, error) {
	scanner := osmxml.New(context.Background(), r)
	defer scanner.Close()

	var (
		names     = make(map[osm.NodeID]string)
		nameOrder []string
		seen      = make(map[string]struct{})
		ways      []*osm.Way
	)
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			name := strings.TrimSpace(o.Tags.Find("name"))
			if name == "" {
				continue
			}
			names[o.ID] = name
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				nameOrder = append(nameOrder, name)
			}
		case *osm.Way:
			if o.Tags.Find("highway") != "" {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scenario: scan osm")
	}

	b := newBuilder(net)
	for _, name := range nameOrder {
		if err := b.region(name); err != nil {
			return nil, err
		}
	}
	for _, w := range ways {
		var first, last string
		for _, wn := range w.Nodes {
			name, ok := names[wn.ID]
			if !ok {
				continue
			}
			if first == "" {
				first = name
			}
			last = name
		}
		if first == "" || first == last {
			continue
		}
		if err := b.connect(first, last, wayKind(w.Tags)); err != nil {
			return nil, err
		}
	}
	return b.summary, nil
}

func wayKind(tags osm.Tags) model.LinkKind {
	switch {
	case isYes(tags.Find("bridge")):
		return model.LinkBridge
	case isYes(tags.Find("tunnel")):
		return model.LinkTunnel
	default:
		return model.LinkRoad
	}
}

func isYes(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	}
	return false
}
