package zone

import (
	"fmt"

	"github.com/google/uuid"
)

// Offsets a custom zone can reach through the form.
const (
	minCustomMinutes = MinOffsetHours*60 - 45
	maxCustomMinutes = MaxOffsetHours*60 + 45
)

// Descriptor is the JSON form of a Zone.
type Descriptor struct {
	OffsetMinutes *int   `json:"offset_minutes,omitempty"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Kind          Kind   `json:"kind"`
}

// Describe converts a zone to its wire form.
func Describe(z Zone) Descriptor {
	d := Descriptor{ID: z.ZoneID(), Name: z.DisplayName(), Kind: z.Kind()}
	if f, ok := z.(FixedOffset); ok {
		m := f.OffsetMinutes
		d.OffsetMinutes = &m
	}
	return d
}

// Zone converts a descriptor back into a zone. IANA identifiers must
// resolve; custom zones must carry an offset in the range the form allows.
// A custom descriptor without an ID gets a fresh one.
func (d Descriptor) Zone() (Zone, error) {
	switch d.Kind {
	case KindIANA, "":
		if d.OffsetMinutes != nil {
			return nil, fmt.Errorf("%w: offset given for tz database zone %q", ErrInvalidCustom, d.ID)
		}
		if _, err := Resolve(d.ID); err != nil {
			return nil, err
		}
		return IANA{ID: d.ID, Name: d.Name}, nil
	case KindCustom:
		if d.OffsetMinutes == nil {
			return nil, fmt.Errorf("%w: missing offset_minutes", ErrInvalidCustom)
		}
		m := *d.OffsetMinutes
		if m < minCustomMinutes || m > maxCustomMinutes || m%15 != 0 {
			return nil, fmt.Errorf("%w: offset %d minutes out of range", ErrInvalidCustom, m)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidCustom)
		}
		id := d.ID
		if id == "" {
			id = "custom-" + uuid.NewString()
		}
		return FixedOffset{ID: id, Name: d.Name, OffsetMinutes: m}, nil
	default:
		return nil, fmt.Errorf("unknown zone kind %q", d.Kind)
	}
}
