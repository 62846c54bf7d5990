package tzconvert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadPattern is returned for pattern letters with no English rendering.
var ErrBadPattern = errors.New("unsupported pattern token")

// tokenLayouts maps date-fns tokens onto Go reference layouts.
// Tokens Go cannot express as a layout are handled in formatToken.
var tokenLayouts = map[string]string{
	"yyyy": "2006",
	"yy":   "06",
	"y":    "2006",
	"MMMM": "January",
	"MMM":  "Jan",
	"MM":   "01",
	"M":    "1",
	"dd":   "02",
	"d":    "2",
	"EEEE": "Monday",
	"EEE":  "Mon",
	"EE":   "Mon",
	"E":    "Mon",
	"HH":   "15",
	"hh":   "03",
	"h":    "3",
	"mm":   "04",
	"ss":   "05",
	"a":    "PM",
}

// Format renders t's calendar fields using a date-fns style pattern.
// Letters form tokens. Text inside single quotes is literal, and '' is a
// quote both inside and outside quoted text. Every other character is copied
// as is. Each token is rendered on its own, so literal text can never be
// mistaken for a Go layout element.
func Format(t time.Time, pattern string) (string, error) {
	var b strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			if i+1 < len(runes) && runes[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			closed := false
			for i++; i < len(runes); i++ {
				if runes[i] != '\'' {
					b.WriteRune(runes[i])
					continue
				}
				if i+1 < len(runes) && runes[i+1] == '\'' {
					b.WriteRune('\'')
					i++
					continue
				}
				closed = true
				i++
				break
			}
			if !closed {
				return "", fmt.Errorf("%w: unterminated quote in %q", ErrBadPattern, pattern)
			}
		case isLetter(r):
			j := i
			for j < len(runes) && runes[j] == r {
				j++
			}
			s, err := formatToken(t, string(runes[i:j]))
			if err != nil {
				return "", fmt.Errorf("%q: %w", pattern, err)
			}
			b.WriteString(s)
			i = j
		default:
			b.WriteRune(r)
			i++
		}
	}
	return b.String(), nil
}

func formatToken(t time.Time, tok string) (string, error) {
	if layout, ok := tokenLayouts[tok]; ok {
		return t.Format(layout), nil
	}
	switch tok {
	case "H":
		return strconv.Itoa(t.Hour()), nil
	case "m":
		return strconv.Itoa(t.Minute()), nil
	case "s":
		return strconv.Itoa(t.Second()), nil
	default:
		return "", fmt.Errorf("%w %q", ErrBadPattern, tok)
	}
}

func isLetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
