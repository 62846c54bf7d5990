package zone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Bounds of the custom zone form.
const (
	MinOffsetHours = -12
	MaxOffsetHours = 14
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type customForm struct {
	Name    string `validate:"required,max=64"`
	Hours   int    `validate:"min=-12,max=14"`
	Minutes int    `validate:"oneof=0 15 30 45 -15 -30 -45"`
}

// NewCustom builds a fixed-offset zone from the custom zone form.
// The offset is hours*60 + minutes and the ID is freshly generated.
func NewCustom(name string, hours, minutes int) (FixedOffset, error) {
	form := customForm{Name: strings.TrimSpace(name), Hours: hours, Minutes: minutes}
	if err := validate.Struct(form); err != nil {
		return FixedOffset{}, fmt.Errorf("%w: %w", ErrInvalidCustom, err)
	}
	return FixedOffset{
		ID:            "custom-" + uuid.NewString(),
		Name:          form.Name,
		OffsetMinutes: hours*60 + minutes,
	}, nil
}

// ParseOffset splits an offset such as "+5:30", "-3" or "9:45" into the
// hours and minutes fields of the custom zone form. Both fields carry the
// sign of the offset.
func ParseOffset(s string) (hours, minutes int, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "UTC"), "GMT")
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty offset", ErrInvalidCustom)
	}

	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	default:
	}

	h, m, hasMinutes := strings.Cut(s, ":")
	hours, err = strconv.Atoi(h)
	if err != nil || hours < 0 {
		return 0, 0, fmt.Errorf("%w: bad hours in %q", ErrInvalidCustom, s)
	}
	if hasMinutes {
		minutes, err = strconv.Atoi(m)
		if err != nil || minutes < 0 || len(m) != 2 {
			return 0, 0, fmt.Errorf("%w: bad minutes in %q", ErrInvalidCustom, s)
		}
	}
	return sign * hours, sign * minutes, nil
}
