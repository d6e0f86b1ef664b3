package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLinkKind is returned when a link kind name is not recognised.
var ErrUnknownLinkKind = errors.New("unknown link kind")

// LinkKind tags what kind of infrastructure a link is.
type LinkKind int

const (
	LinkRoad LinkKind = iota
	LinkBridge
	LinkTunnel
)

// LinkKinds lists every kind in declaration order.
var LinkKinds = []LinkKind{LinkRoad, LinkBridge, LinkTunnel}

func (k LinkKind) String() string {
	switch k {
	case LinkRoad:
		return "Road"
	case LinkBridge:
		return "Bridge"
	case LinkTunnel:
		return "Tunnel"
	default:
		return fmt.Sprintf("LinkKind(%d)", int(k))
	}
}

// ParseLinkKind maps a case-insensitive name ("road", "Bridge", "TUNNEL")
// to its LinkKind.
func ParseLinkKind(s string) (LinkKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "road":
		return LinkRoad, nil
	case "bridge":
		return LinkBridge, nil
	case "tunnel":
		return LinkTunnel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLinkKind, s)
	}
}
