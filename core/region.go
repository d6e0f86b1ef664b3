package core

import "github.com/signalsfoundry/citytraffic/model"

// Region is a node of the road network, e.g. a named area of a city.
type Region struct {
	id    string
	links []Link
}

// NewRegion returns a region with no links.
func NewRegion(id string) *Region {
	return &Region{id: id}
}

// ID returns the region identifier.
func (r *Region) ID() string { return r.id }

// AddLink appends an outgoing link to target. Duplicate links to the same
// target are kept.
func (r *Region) AddLink(target *Region, kind model.LinkKind) {
	r.links = append(r.links, Link{
		From:   r.id,
		To:     target.id,
		Kind:   kind,
		target: target,
	})
}

// Links returns a copy of the outgoing links in insertion order.
func (r *Region) Links() []Link {
	out := make([]Link, len(r.links))
	copy(out, r.links)
	return out
}

// NextHopToward returns the target of the first outgoing link that leads
// directly to destinationID. Only direct neighbours are considered.
func (r *Region) NextHopToward(destinationID string) (*Region, Link, bool) {
	for _, l := range r.links {
		if l.To == destinationID {
			return l.target, l, true
		}
	}
	return nil, Link{}, false
}
