// Package selection holds the zones chosen for a comparison: one base zone
// and a bounded list of target zones.
package selection

import (
	"errors"
	"fmt"

	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

// MaxTargets is the number of target zones a selection can hold.
const MaxTargets = 5

var (
	ErrLimitReached = errors.New("target limit reached")
	ErrDuplicate    = errors.New("zone already selected")
	ErrIsBase       = errors.New("zone is the base zone")
)

// Defaults used when nothing better is known.
var (
	DefaultBase   = zone.IANA{ID: "Europe/Istanbul", Name: "Istanbul, Turkey"}
	DefaultTarget = zone.IANA{ID: "America/New_York", Name: "New York, USA"}
)

// Selection is a base zone plus up to MaxTargets distinct targets.
// The base never appears among the targets.
type Selection struct {
	base    zone.Zone
	targets []zone.Zone
}

// Default returns the initial selection.
func Default() *Selection {
	return &Selection{base: DefaultBase, targets: []zone.Zone{DefaultTarget}}
}

// New returns a selection with the given base and targets, applying the
// same rules as Add to each target.
func New(base zone.Zone, targets ...zone.Zone) (*Selection, error) {
	if base == nil {
		return nil, errors.New("base zone is required")
	}
	s := &Selection{base: base}
	for _, t := range targets {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Base returns the base zone.
func (s *Selection) Base() zone.Zone { return s.base }

// Targets returns a copy of the target zones in insertion order.
func (s *Selection) Targets() []zone.Zone {
	out := make([]zone.Zone, len(s.targets))
	copy(out, s.targets)
	return out
}

// Zones returns the base followed by the targets.
func (s *Selection) Zones() []zone.Zone {
	return append([]zone.Zone{s.base}, s.targets...)
}

// Add appends a target zone.
func (s *Selection) Add(z zone.Zone) error {
	id := z.ZoneID()
	if id == s.base.ZoneID() {
		return fmt.Errorf("%w: %s", ErrIsBase, id)
	}
	for _, t := range s.targets {
		if t.ZoneID() == id {
			return fmt.Errorf("%w: %s", ErrDuplicate, id)
		}
	}
	if len(s.targets) >= MaxTargets {
		return fmt.Errorf("%w: at most %d targets", ErrLimitReached, MaxTargets)
	}
	s.targets = append(s.targets, z)
	return nil
}

// Remove drops the target with the given ID and reports whether it was
// present.
func (s *Selection) Remove(id string) bool {
	for i, t := range s.targets {
		if t.ZoneID() == id {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			return true
		}
	}
	return false
}

// SetBase replaces the base zone. If the new base was a target it is
// removed from the targets.
func (s *Selection) SetBase(z zone.Zone) {
	s.Remove(z.ZoneID())
	s.base = z
}
