// Package zone models the locations a comparison can show: named tz database
// zones and manually entered fixed offsets.
//
// A Zone is either IANA or FixedOffset; no other implementations exist.
package zone

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // zone rules must not depend on the host's zoneinfo

	"github.com/maypok86/otter/v2"
)

// Kind identifies the variant of a Zone on the wire.
type Kind string

const (
	KindIANA   Kind = "iana"
	KindCustom Kind = "custom"
)

var (
	// ErrUnresolvable is returned when a tz database identifier cannot be loaded.
	ErrUnresolvable = errors.New("unresolvable time zone")
	// ErrInvalidCustom is returned when a custom zone fails validation.
	ErrInvalidCustom = errors.New("invalid custom zone")
)

// Zone is a location that can be shown as a column of the comparison grid.
type Zone interface {
	// ZoneID is the unique key of the zone within a selection.
	ZoneID() string
	// DisplayName is the human readable label.
	DisplayName() string
	Kind() Kind

	isZone()
}

// IANA is a zone governed by tz database rules, including daylight saving.
type IANA struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (z IANA) ZoneID() string { return z.ID }

func (z IANA) DisplayName() string {
	if z.Name == "" {
		return z.ID
	}
	return z.Name
}

func (IANA) Kind() Kind { return KindIANA }
func (IANA) isZone()    {}

// Location resolves the zone's rules.
func (z IANA) Location() (*time.Location, error) {
	return Resolve(z.ID)
}

// FixedOffset is a user supplied zone with a constant offset from UTC.
// It never observes daylight saving.
type FixedOffset struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	OffsetMinutes int    `json:"offset_minutes"`
}

func (z FixedOffset) ZoneID() string      { return z.ID }
func (z FixedOffset) DisplayName() string { return z.Name }
func (FixedOffset) Kind() Kind            { return KindCustom }
func (FixedOffset) isZone()               {}

// Offset returns the offset as a duration.
func (z FixedOffset) Offset() time.Duration {
	return time.Duration(z.OffsetMinutes) * time.Minute
}

// locations caches loaded rules by identifier. Offsets are never cached,
// they depend on the instant.
var locations = otter.Must(&otter.Options[string, *time.Location]{
	MaximumSize:     1024,
	InitialCapacity: 64,
})

// Resolve loads the rules for a tz database identifier.
// "Local" and the empty string are rejected so results never depend on the
// machine running the code.
func Resolve(id string) (*time.Location, error) {
	if loc, ok := locations.GetIfPresent(id); ok {
		return loc, nil
	}
	if id == "" || id == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvable, id)
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnresolvable, id, err)
	}
	locations.Set(id, loc)
	return loc, nil
}
