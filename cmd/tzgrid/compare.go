package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/tzgrid/pkg/grid"
	"github.com/codeGROOVE-dev/tzgrid/pkg/localzone"
	"github.com/codeGROOVE-dev/tzgrid/pkg/render"
	"github.com/codeGROOVE-dev/tzgrid/pkg/selection"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		base    string
		targets []string
		customs []string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Print the 24-hour comparison table",
		Long: `Print today's 24 UTC hours as local clock times for a base zone and up to five
targets. Without --base the local zone is used when it can be detected.
Custom zones are given as NAME=±H[:MM], for example --custom "Ship=-9:30".`,
		Example: `  tzgrid compare --base Europe/Istanbul --target America/New_York --target Asia/Tokyo
  tzgrid compare --custom "Field team=+5:30" --no-color`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := a.now()
			if err != nil {
				return err
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}

			var baseZone zone.Zone
			if base != "" {
				if baseZone, err = zoneArg(cat, base); err != nil {
					return fmt.Errorf("--base: %w", err)
				}
			} else {
				baseZone = localzone.New().Base(cat, selection.DefaultBase, a.logger)
			}

			sel, err := selection.New(baseZone)
			if err != nil {
				return err
			}
			for _, arg := range append(targets, customs...) {
				z, err := zoneArg(cat, arg)
				if err != nil {
					return fmt.Errorf("target %q: %w", arg, err)
				}
				if err := sel.Add(z); err != nil {
					return fmt.Errorf("target %q: %w", arg, err)
				}
			}
			if len(targets)+len(customs) == 0 && selection.DefaultTarget.ID != baseZone.ZoneID() {
				if err := sel.Add(selection.DefaultTarget); err != nil {
					return err
				}
			}

			table, err := grid.Build(now, sel)
			if err != nil {
				return err
			}
			return render.Table(cmd.OutOrStdout(), table, render.Options{Color: !noColor && !color.NoColor})
		},
	}

	cmd.Flags().StringVarP(&base, "base", "b", "", "Base zone ID (default: detected local zone)")
	cmd.Flags().StringArrayVarP(&targets, "target", "t", nil, "Target zone ID, repeatable")
	cmd.Flags().StringArrayVarP(&customs, "custom", "c", nil, "Custom zone as NAME=±H[:MM], repeatable")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colour output")
	return cmd
}
