package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Entry is one zone of the catalog.
type Entry struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Country      string   `json:"country,omitempty"`
	CountryCodes []string `json:"country_codes,omitempty"`
}

// Parse reads zone.tab (or zone1970.tab) and iso3166.tab. Comment lines and
// blank lines are ignored; columns are tab separated. Entries keep the order
// of the zone table and carry the name of their first country.
func Parse(t Tables) ([]Entry, error) {
	countries := map[string]string{}
	err := eachLine(t.Countries, func(n int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("%s:%d: want 2 columns, got %d", countryFile, n, len(fields))
		}
		countries[fields[0]] = fields[1]
		return nil
	})
	if err != nil {
		return nil, err
	}

	var entries []Entry
	seen := map[string]bool{}
	err = eachLine(t.Zones, func(n int, fields []string) error {
		if len(fields) < 3 {
			return fmt.Errorf("%s:%d: want at least 3 columns, got %d", zoneFile, n, len(fields))
		}
		id := fields[2]
		if seen[id] {
			return nil
		}
		seen[id] = true

		codes := strings.Split(fields[0], ",")
		entries = append(entries, Entry{
			ID:           id,
			CountryCodes: codes,
			Country:      countries[codes[0]],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func eachLine(data []byte, fn func(n int, fields []string) error) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(n, strings.Split(line, "\t")); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Label builds the display label of a zone: "City, Country" when the
// country is known, "City (Region)" for other multi-part IDs, and the
// city alone otherwise. The city is the last path segment with
// underscores shown as spaces.
func Label(id, country string) string {
	parts := strings.Split(id, "/")
	city := strings.ReplaceAll(parts[len(parts)-1], "_", " ")
	switch {
	case country != "":
		return city + ", " + country
	case len(parts) > 1:
		return city + " (" + parts[0] + ")"
	default:
		return city
	}
}
