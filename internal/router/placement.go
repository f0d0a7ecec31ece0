package router

import (
	"fmt"
	"strings"

	"github.com/danmuck/microsync/internal/location"
)

// Mode is the configured routing mode of the host.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeHash   Mode = "hash"
	ModeSearch Mode = "search"
)

// ParseMode reads a routing mode; empty means ModeAuto.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeHash, ModeSearch:
		return m, nil
	default:
		return "", fmt.Errorf("router: unknown routing mode %q", raw)
	}
}

// Placement decides whether a micro path is attached to the hash query.
type Placement interface {
	AttachToHash(current location.Location) bool
}

// PlacementFunc adapts a function to Placement.
type PlacementFunc func(current location.Location) bool

func (f PlacementFunc) AttachToHash(current location.Location) bool {
	return f(current)
}

// HeuristicPlacement treats a URL with a hash and no search as hash routed.
// A host using both a hash and a search at once is read as search routed.
type HeuristicPlacement struct{}

func (HeuristicPlacement) AttachToHash(current location.Location) bool {
	return current.Hash != "" && current.Search == ""
}

// FixedPlacement always picks the same query.
type FixedPlacement struct {
	Hash bool
}

func (p FixedPlacement) AttachToHash(location.Location) bool {
	return p.Hash
}

// PlacementForMode maps a routing mode onto its placement policy.
func PlacementForMode(mode Mode) Placement {
	switch mode {
	case ModeHash:
		return FixedPlacement{Hash: true}
	case ModeSearch:
		return FixedPlacement{Hash: false}
	default:
		return HeuristicPlacement{}
	}
}
