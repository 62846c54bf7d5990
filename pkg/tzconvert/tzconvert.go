// Package tzconvert renders instants as wall-clock text for a zone.
// ALL instants in the codebase are absolute (UTC based).
// These functions handle the conversion to a zone's civil time for display only.
//
// Custom zones are rendered as UTC shifted by their offset, computed from the
// absolute instant alone. The machine's local zone never takes part.
package tzconvert

import (
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

// Patterns used by the comparison grid.
const (
	ClockPattern = "HH:mm"
	DatePattern  = "EEE, MMM d"
)

// fallbackLabel is shown when a zone's offset cannot be determined.
const fallbackLabel = "GMT+0"

// DaySlots returns the 24 hourly instants of the UTC day containing ref,
// starting at 00:00 UTC.
// Example: DaySlots(2024-06-01T17:42-04:00) starts at 2024-06-01T00:00Z and
// ends at 2024-06-01T23:00Z.
func DaySlots(ref time.Time) []time.Time {
	u := ref.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	slots := make([]time.Time, 24)
	for i := range slots {
		slots[i] = midnight.Add(time.Duration(i) * time.Hour)
	}
	return slots
}

// Civil returns t as the wall-clock time of z.
// For a FixedOffset zone the result is t+offset expressed in UTC, so its
// calendar fields are the zone's civil time. For an IANA zone the result is t
// in the zone's location.
func Civil(t time.Time, z zone.Zone) (time.Time, error) {
	switch z := z.(type) {
	case zone.FixedOffset:
		return t.UTC().Add(z.Offset()), nil
	case zone.IANA:
		loc, err := z.Location()
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported zone type %T", z)
	}
}

// FormatClock renders t as the wall-clock time of z using a date-fns style
// pattern such as "HH:mm". An IANA identifier that cannot be resolved is an
// error and is never masked.
func FormatClock(t time.Time, z zone.Zone, pattern string) (string, error) {
	c, err := Civil(t, z)
	if err != nil {
		return "", fmt.Errorf("formatting %s for %q: %w", pattern, z.ZoneID(), err)
	}
	return Format(c, pattern)
}

// FormatDate renders the calendar date of t in z, e.g. "Mon, Mar 11".
func FormatDate(t time.Time, z zone.Zone) (string, error) {
	return FormatClock(t, z, DatePattern)
}

// OffsetMinutes returns the offset from UTC in effect for z at the instant at.
// For IANA zones this follows daylight saving rules; for custom zones it is
// constant.
func OffsetMinutes(z zone.Zone, at time.Time) (int, error) {
	switch z := z.(type) {
	case zone.FixedOffset:
		return z.OffsetMinutes, nil
	case zone.IANA:
		loc, err := z.Location()
		if err != nil {
			return 0, err
		}
		_, secs := at.In(loc).Zone()
		return secs / 60, nil
	default:
		return 0, fmt.Errorf("unsupported zone type %T", z)
	}
}

// OffsetLabel renders the offset of z at the instant at as GMT±H[:MM].
// Examples:
//   - 180 minutes renders "GMT+3"
//   - -330 minutes renders "GMT-5:30"
//   - 0 renders "GMT+0"
//
// When the offset cannot be determined the label is "GMT+0".
func OffsetLabel(z zone.Zone, at time.Time) string {
	m, err := OffsetMinutes(z, at)
	if err != nil {
		return fallbackLabel
	}
	return LabelForMinutes(m)
}

// LabelForMinutes renders a raw offset in minutes as GMT±H[:MM].
func LabelForMinutes(offsetMinutes int) string {
	sign, abs := splitSign(offsetMinutes)
	hours, minutes := abs/60, abs%60
	if minutes == 0 {
		return fmt.Sprintf("GMT%c%d", sign, hours)
	}
	return fmt.Sprintf("GMT%c%d:%02d", sign, hours, minutes)
}

// OffsetString renders an offset as ±HH:MM, the form used by zone listings.
// Example: OffsetString(-210) returns "-03:30".
func OffsetString(offsetMinutes int) string {
	sign, abs := splitSign(offsetMinutes)
	return fmt.Sprintf("%c%02d:%02d", sign, abs/60, abs%60)
}

func splitSign(m int) (byte, int) {
	if m < 0 {
		return '-', -m
	}
	return '+', m
}
