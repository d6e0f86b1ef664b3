package core

import (
	"fmt"

	"github.com/signalsfoundry/citytraffic/model"
)

// Link is a directed, typed edge between two regions. Links are created by
// Network.BuildConnection (or Region.AddLink) and never change afterwards;
// callers only ever see copies.
type Link struct {
	From string
	To   string
	Kind model.LinkKind

	target *Region
}

// Target returns the region the link leads to.
func (l Link) Target() *Region { return l.target }

func (l Link) String() string {
	return fmt.Sprintf("%s -> %s (%s)", l.From, l.To, l.Kind)
}
