// Package band classifies local clock hours into business, personal and
// sleeping time.
package band

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Band is the kind of time an hour of the day falls into.
type Band int

const (
	Personal Band = iota
	Business
	Sleeping
)

// Hour boundaries, local time. Business is [BusinessStart, BusinessEnd);
// sleeping is hour >= SleepStart or hour < SleepEnd.
const (
	BusinessStart = 8
	BusinessEnd   = 18
	SleepStart    = 23
	SleepEnd      = 7
)

// ErrBadClock is returned when a clock string has no leading hour.
var ErrBadClock = errors.New("clock string has no hour")

var names = [...]string{
	Personal: "personal",
	Business: "business",
	Sleeping: "sleeping",
}

func (b Band) String() string {
	if b < 0 || int(b) >= len(names) {
		return fmt.Sprintf("band(%d)", int(b))
	}
	return names[b]
}

// MarshalText encodes the band as its name.
func (b Band) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(names) {
		return nil, fmt.Errorf("unknown band %d", int(b))
	}
	return []byte(names[b]), nil
}

// UnmarshalText decodes a band name.
func (b *Band) UnmarshalText(text []byte) error {
	for i, n := range names {
		if n == string(text) {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown band %q", text)
}

// Classify returns the band of a local hour in [0, 23].
// Sleeping wins over the other checks at the midnight wrap.
func Classify(hour int) Band {
	switch {
	case hour >= BusinessStart && hour < BusinessEnd:
		return Business
	case hour >= SleepStart || hour < SleepEnd:
		return Sleeping
	default:
		return Personal
	}
}

// ClassifyClock classifies a formatted clock string such as "09:00" by its
// leading hour digits.
func ClassifyClock(clock string) (Band, error) {
	digits := clock
	if i := strings.IndexFunc(clock, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = clock[:i]
	}
	hour, err := strconv.Atoi(digits)
	if err != nil || hour > 23 {
		return Personal, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	return Classify(hour), nil
}

// Entry describes a band for display.
type Entry struct {
	Band        Band   `json:"band"`
	Description string `json:"description"`
}

// Legend lists the bands in display order.
func Legend() []Entry {
	return []Entry{
		{Band: Business, Description: "Business Hours (8 AM - 6 PM)"},
		{Band: Personal, Description: "Personal Time"},
		{Band: Sleeping, Description: "Sleeping Hours (11 PM - 7 AM)"},
	}
}
