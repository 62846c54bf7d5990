// Package render prints comparison tables and zone listings for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/codeGROOVE-dev/tzgrid/pkg/band"
	"github.com/codeGROOVE-dev/tzgrid/pkg/catalog"
	"github.com/codeGROOVE-dev/tzgrid/pkg/grid"
)

const currentMarker = "●"

// Options controls terminal output.
type Options struct {
	// Color enables ANSI colours regardless of whether w is a terminal.
	Color bool
}

type palette struct {
	bands   map[band.Band]*color.Color
	current *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		bands: map[band.Band]*color.Color{
			band.Business: color.New(color.FgGreen),
			band.Personal: color.New(color.Reset),
			band.Sleeping: color.New(color.FgBlue),
		},
		current: color.New(color.FgYellow, color.Bold),
		dim:     color.New(color.FgHiBlack),
	}
	for _, c := range append([]*color.Color{p.current, p.dim}, p.bands[band.Business], p.bands[band.Personal], p.bands[band.Sleeping]) {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// bandGlyph marks a cell's band so the table reads without colour.
func bandGlyph(b band.Band) string {
	switch b {
	case band.Business:
		return "▪"
	case band.Sleeping:
		return "z"
	default:
		return " "
	}
}

func newWriter() table.Writer {
	tw := table.NewWriter()
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw
}

// Table writes a comparison table to w.
func Table(w io.Writer, t *grid.Table, opts Options) error {
	p := newPalette(opts.Color)

	tw := newWriter()
	header := table.Row{"Time (UTC)"}
	for _, c := range t.Columns {
		header = append(header, fmt.Sprintf("%s\n%s\n%s", c.Name, p.dim.Sprint(c.Date), p.dim.Sprint(c.Offset)))
	}
	tw.AppendHeader(header)

	for _, r := range t.Rows {
		label := r.Label + "  "
		if r.Current {
			label = p.current.Sprint(r.Label + " " + currentMarker)
		}
		row := table.Row{label}
		for _, cell := range r.Cells {
			row = append(row, p.bands[cell.Band].Sprint(cell.Clock+" "+bandGlyph(cell.Band)))
		}
		tw.AppendRow(row)
	}

	var b strings.Builder
	b.WriteString("🕐 Time zone comparison\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")
	b.WriteString(tw.Render())
	b.WriteString("\n")

	legend := make([]string, 0, len(t.Legend))
	for _, e := range t.Legend {
		legend = append(legend, p.bands[e.Band].Sprint(strings.TrimSpace(bandGlyph(e.Band)+" "+e.Description)))
	}
	legend = append(legend, p.current.Sprint(currentMarker+" Current hour"))
	b.WriteString(strings.Join(legend, "   ") + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Zones writes a zone listing to w.
func Zones(w io.Writer, opts []catalog.Option) error {
	tw := newWriter()
	tw.AppendHeader(table.Row{"Zone", "Label", "Offset"})
	for _, o := range opts {
		tw.AppendRow(table.Row{o.Value, o.Label, o.Offset})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
