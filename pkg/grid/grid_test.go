package grid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/tzgrid/pkg/band"
	"github.com/codeGROOVE-dev/tzgrid/pkg/selection"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

func TestBuildScenario(t *testing.T) {
	// Base UTC, one target at UTC-5.
	minus5, err := zone.NewCustom("UTC-5", -5, 0)
	require.NoError(t, err)
	sel, err := selection.New(zone.IANA{ID: "UTC", Name: "UTC"}, minus5)
	require.NoError(t, err)

	now := time.Date(2024, 6, 12, 14, 20, 0, 0, time.UTC)
	table, err := Build(now, sel)
	require.NoError(t, err)

	require.Len(t, table.Rows, 24)
	require.Len(t, table.Columns, 2)

	afternoon := table.Rows[14]
	assert.Equal(t, "14:00", afternoon.Label)
	assert.Equal(t, Cell{Clock: "14:00", Band: band.Business}, afternoon.Cells[0])
	assert.Equal(t, Cell{Clock: "09:00", Band: band.Business}, afternoon.Cells[1])

	night := table.Rows[2]
	assert.Equal(t, "02:00", night.Label)
	assert.Equal(t, Cell{Clock: "02:00", Band: band.Sleeping}, night.Cells[0])
	assert.Equal(t, Cell{Clock: "21:00", Band: band.Personal}, night.Cells[1])

	assert.Equal(t, 14, table.CurrentRow())
	assert.Equal(t, "GMT+0", table.Columns[0].Offset)
	assert.Equal(t, "GMT-5", table.Columns[1].Offset)
	assert.Equal(t, "Wed, Jun 12", table.Columns[0].Date)
	assert.Equal(t, "Wed, Jun 12", table.Columns[1].Date)
}

func TestBuildExactlyOneCurrentRow(t *testing.T) {
	for h := range 24 {
		now := time.Date(2024, 1, 1, h, 59, 0, 0, time.UTC)
		table, err := Build(now, selection.Default())
		require.NoError(t, err)

		current := 0
		for _, r := range table.Rows {
			if r.Current {
				current++
			}
		}
		assert.Equal(t, 1, current, "hour %d", h)
		assert.Equal(t, h, table.CurrentRow())
	}
}

func TestBuildDefaultSelection(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	table, err := Build(now, selection.Default())
	require.NoError(t, err)

	assert.Equal(t, "Istanbul, Turkey", table.Columns[0].Name)
	assert.Equal(t, "GMT+3", table.Columns[0].Offset)
	assert.Equal(t, "New York, USA", table.Columns[1].Name)
	assert.Equal(t, "GMT-5", table.Columns[1].Offset)

	// 00:00 UTC is 03:00 in Istanbul and 19:00 the previous day in New York.
	assert.Equal(t, "03:00", table.Rows[0].Cells[0].Clock)
	assert.Equal(t, "19:00", table.Rows[0].Cells[1].Clock)
	assert.Len(t, table.Legend, 3)
}

func TestBuildFollowsDST(t *testing.T) {
	sel, err := selection.New(zone.IANA{ID: "UTC"}, zone.IANA{ID: "America/New_York"})
	require.NoError(t, err)

	table, err := Build(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), sel)
	require.NoError(t, err)

	// The clocks jump from 01:59 to 03:00 at 07:00 UTC.
	assert.Equal(t, "01:00", table.Rows[6].Cells[1].Clock)
	assert.Equal(t, "03:00", table.Rows[7].Cells[1].Clock)
	assert.Equal(t, "GMT-4", table.Columns[1].Offset)
}

func TestBuildUnresolvable(t *testing.T) {
	sel, err := selection.New(zone.IANA{ID: "UTC"}, zone.IANA{ID: "Nowhere/City"})
	require.NoError(t, err)

	_, err = Build(time.Now(), sel)
	assert.ErrorIs(t, err, zone.ErrUnresolvable)
}

func TestTableJSON(t *testing.T) {
	table, err := Build(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), selection.Default())
	require.NoError(t, err)

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"band":"business"`)
	assert.Contains(t, string(data), `"kind":"iana"`)
	assert.Contains(t, string(data), `"current":true`)
}
