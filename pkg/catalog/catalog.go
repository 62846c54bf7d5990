// Package catalog lists the tz database zones a user can pick from, with
// English labels and the offset each zone observes at a given instant.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/codeGROOVE-dev/tzgrid/pkg/tzconvert"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

// Option is a catalog entry as offered to a zone picker.
// Offset is ±HH:MM at the instant the option was computed.
type Option struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Offset string `json:"offset"`
}

// Catalog is an immutable, label-sorted list of resolvable zones.
type Catalog struct {
	index   map[string]int
	entries []Entry
}

// Build loads the tables from src and returns the catalog. UTC is always
// present. Zones that cannot be resolved are left out and logged.
func Build(ctx context.Context, src Source, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tables, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", src, err)
	}
	entries, err := Parse(tables)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog from %s: %w", src, err)
	}
	entries = append(entries, Entry{ID: "UTC"})

	var skipped *multierror.Error
	kept := make([]Entry, 0, len(entries))
	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		if _, err := zone.Resolve(e.ID); err != nil {
			skipped = multierror.Append(skipped, err)
			continue
		}
		e.Label = Label(e.ID, e.Country)
		kept = append(kept, e)
	}
	if err := skipped.ErrorOrNil(); err != nil {
		logger.Warn("skipping unresolvable zones", "count", len(skipped.Errors), "error", err)
	}

	c := New(kept)
	logger.Debug("catalog built", "source", src.String(), "zones", c.Len())
	return c, nil
}

// New returns a catalog of already labelled entries, sorted by label in
// English collation order with the ID as a tiebreak.
func New(entries []Entry) *Catalog {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	col := collate.New(language.English)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := col.CompareString(sorted[i].Label, sorted[j].Label); c != 0 {
			return c < 0
		}
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[string]int, len(sorted))
	for i, e := range sorted {
		index[e.ID] = i
	}
	return &Catalog{entries: sorted, index: index}
}

// Len returns the number of zones.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns the zones in display order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup finds a zone by ID.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Zone returns the catalog zone for id, labelled for display.
func (c *Catalog) Zone(id string) (zone.IANA, bool) {
	e, ok := c.Lookup(id)
	if !ok {
		return zone.IANA{}, false
	}
	return zone.IANA{ID: e.ID, Name: e.Label}, true
}

// Options returns every zone with the offset it observes at now.
func (c *Catalog) Options(now time.Time) []Option {
	return c.options(c.entries, now)
}

// Search returns zones whose label or ID contains query, ignoring case,
// leaving out the IDs in exclude. An empty query matches everything.
func (c *Catalog) Search(query string, exclude []string, now time.Time) []Option {
	q := strings.ToLower(strings.TrimSpace(query))
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var matched []Entry
	for _, e := range c.entries {
		if skip[e.ID] {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(e.Label), q) || strings.Contains(strings.ToLower(e.ID), q) {
			matched = append(matched, e)
		}
	}
	return c.options(matched, now)
}

func (*Catalog) options(entries []Entry, now time.Time) []Option {
	out := make([]Option, 0, len(entries))
	for _, e := range entries {
		m, err := tzconvert.OffsetMinutes(zone.IANA{ID: e.ID}, now)
		if err != nil {
			m = 0
		}
		out = append(out, Option{Value: e.ID, Label: e.Label, Offset: tzconvert.OffsetString(m)})
	}
	return out
}
