package tzconvert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

var (
	newYork   = zone.IANA{ID: "America/New_York", Name: "New York, USA"}
	kathmandu = zone.IANA{ID: "Asia/Kathmandu", Name: "Kathmandu, Nepal"}
	tokyo     = zone.IANA{ID: "Asia/Tokyo", Name: "Tokyo, Japan"}
	utc       = zone.IANA{ID: "UTC", Name: "UTC"}
	bogus     = zone.IANA{ID: "Atlantis/Capital", Name: "Atlantis"}
)

func custom(minutes int) zone.FixedOffset {
	return zone.FixedOffset{ID: "custom-test", Name: "Test", OffsetMinutes: minutes}
}

func TestDaySlots(t *testing.T) {
	// 17:42 in New York on June 1 is 21:42 UTC the same day.
	ref := time.Date(2024, 6, 1, 17, 42, 0, 0, time.FixedZone("EDT", -4*3600))
	slots := DaySlots(ref)

	require.Len(t, slots, 24)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), slots[0])
	assert.Equal(t, time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC), slots[23])
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, time.Hour, slots[i].Sub(slots[i-1]))
	}
}

func TestDaySlotsAcrossUTCDate(t *testing.T) {
	// 22:30 on March 10 in Los Angeles is already March 11 in UTC.
	la, err := zone.Resolve("America/Los_Angeles")
	require.NoError(t, err)
	slots := DaySlots(time.Date(2024, 3, 10, 22, 30, 0, 0, la))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), slots[0])
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		z    zone.Zone
		want string
	}{
		{"custom west", time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC), custom(-300), "09:00"},
		{"custom east half hour", time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC), custom(330), "01:30"},
		{"custom wraps to previous day", time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC), custom(-300), "21:00"},
		{"utc zone", time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC), utc, "14:00"},
		{"new york before dst", time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC), newYork, "01:00"},
		{"new york after dst", time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), newYork, "03:00"},
		{"kathmandu quarter hour", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), kathmandu, "05:45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatClock(tt.at, tt.z, ClockPattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClockUnresolvable(t *testing.T) {
	_, err := FormatClock(time.Now(), bogus, ClockPattern)
	require.Error(t, err)
	assert.ErrorIs(t, err, zone.ErrUnresolvable)

	_, err = FormatDate(time.Now(), bogus)
	assert.ErrorIs(t, err, zone.ErrUnresolvable)
}

func TestFormatClockIgnoresMachineZone(t *testing.T) {
	saved := time.Local
	t.Cleanup(func() { time.Local = saved })
	time.Local = time.FixedZone("Elsewhere", 7*3600)

	// 21:00 local on the fake machine is 14:00 UTC.
	at := time.Date(2024, 3, 10, 21, 0, 0, 0, time.Local)
	got, err := FormatClock(at, custom(-300), ClockPattern)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got)
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		z    zone.Zone
		want string
	}{
		{"custom behind utc", custom(-300), "Sun, Mar 10"},
		{"tokyo", tokyo, "Mon, Mar 11"},
		{"new york", newYork, "Sun, Mar 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDate(at, tt.z)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelForMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{180, "GMT+3"},
		{-330, "GMT-5:30"},
		{0, "GMT+0"},
		{345, "GMT+5:45"},
		{-30, "GMT-0:30"},
		{840, "GMT+14"},
		{-720, "GMT-12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, LabelForMinutes(tt.minutes))
			assert.Equal(t, tt.want, OffsetLabel(custom(tt.minutes), time.Now()))
		})
	}
}

func TestOffsetLabelDST(t *testing.T) {
	before := time.Date(2024, 3, 10, 6, 59, 0, 0, time.UTC)
	after := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)

	assert.Equal(t, "GMT-5", OffsetLabel(newYork, before))
	assert.Equal(t, "GMT-4", OffsetLabel(newYork, after))

	fixed := custom(-300)
	assert.Equal(t, OffsetLabel(fixed, before), OffsetLabel(fixed, after))
	assert.Equal(t, OffsetLabel(fixed, before), OffsetLabel(fixed, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestOffsetLabelIANA(t *testing.T) {
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "GMT+5:45", OffsetLabel(kathmandu, at))
	assert.Equal(t, "GMT+9", OffsetLabel(tokyo, at))
	assert.Equal(t, "GMT+0", OffsetLabel(utc, at))
	assert.Equal(t, "GMT+0", OffsetLabel(bogus, at))
}

func TestOffsetMinutes(t *testing.T) {
	at := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	m, err := OffsetMinutes(newYork, at)
	require.NoError(t, err)
	assert.Equal(t, -240, m)

	m, err = OffsetMinutes(custom(-210), at)
	require.NoError(t, err)
	assert.Equal(t, -210, m)

	_, err = OffsetMinutes(bogus, at)
	assert.ErrorIs(t, err, zone.ErrUnresolvable)
}

func TestOffsetString(t *testing.T) {
	assert.Equal(t, "-03:30", OffsetString(-210))
	assert.Equal(t, "+00:00", OffsetString(0))
	assert.Equal(t, "+05:45", OffsetString(345))
	assert.Equal(t, "+14:00", OffsetString(840))
}
