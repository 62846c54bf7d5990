// Package grid builds the comparison table: one row per UTC hour of the day
// and one column per selected zone.
package grid

import (
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/tzgrid/pkg/band"
	"github.com/codeGROOVE-dev/tzgrid/pkg/selection"
	"github.com/codeGROOVE-dev/tzgrid/pkg/tzconvert"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

// Column describes one zone as of the table's reference instant.
type Column struct {
	Zone   zone.Descriptor `json:"zone"`
	Name   string          `json:"name"`
	Date   string          `json:"date"`
	Offset string          `json:"offset"`
}

// Cell is the wall-clock time of a slot in one zone.
type Cell struct {
	Clock string    `json:"clock"`
	Band  band.Band `json:"band"`
}

// Row is one UTC hour slot.
type Row struct {
	UTC     time.Time `json:"utc"`
	Label   string    `json:"label"`
	Cells   []Cell    `json:"cells"`
	Current bool      `json:"current"`
}

// Table is the full comparison for the UTC day containing Now.
type Table struct {
	Now     time.Time    `json:"now"`
	Columns []Column     `json:"columns"`
	Rows    []Row        `json:"rows"`
	Legend  []band.Entry `json:"legend"`
}

// Build computes the table for sel at the instant now. Columns are the
// base zone followed by the targets. Exactly one row is current: the slot
// whose UTC hour matches now.
func Build(now time.Time, sel *selection.Selection) (*Table, error) {
	zones := sel.Zones()
	t := &Table{
		Now:     now.UTC(),
		Columns: make([]Column, 0, len(zones)),
		Legend:  band.Legend(),
	}

	for _, z := range zones {
		date, err := tzconvert.FormatDate(now, z)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", z.ZoneID(), err)
		}
		t.Columns = append(t.Columns, Column{
			Zone:   zone.Describe(z),
			Name:   z.DisplayName(),
			Date:   date,
			Offset: tzconvert.OffsetLabel(z, now),
		})
	}

	currentHour := now.UTC().Hour()
	for _, slot := range tzconvert.DaySlots(now) {
		label, err := tzconvert.Format(slot, tzconvert.ClockPattern)
		if err != nil {
			return nil, err
		}
		row := Row{
			UTC:     slot,
			Label:   label,
			Current: slot.Hour() == currentHour,
			Cells:   make([]Cell, 0, len(zones)),
		}
		for _, z := range zones {
			clock, err := tzconvert.FormatClock(slot, z, tzconvert.ClockPattern)
			if err != nil {
				return nil, fmt.Errorf("slot %s: %w", label, err)
			}
			b, err := band.ClassifyClock(clock)
			if err != nil {
				return nil, fmt.Errorf("slot %s: %w", label, err)
			}
			row.Cells = append(row.Cells, Cell{Clock: clock, Band: b})
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// CurrentRow returns the index of the current row, or -1.
func (t *Table) CurrentRow() int {
	for i, r := range t.Rows {
		if r.Current {
			return i
		}
	}
	return -1
}
