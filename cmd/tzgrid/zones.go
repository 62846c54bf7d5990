package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/tzgrid/pkg/render"
	"github.com/codeGROOVE-dev/tzgrid/pkg/tzconvert"
)

func newZonesCmd(a *app) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "zones [query]",
		Short: "List or search the zone catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := a.now()
			if err != nil {
				return err
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			opts := cat.Search(query, exclude, now)
			if len(opts) == 0 {
				return fmt.Errorf("no zones match %q", query)
			}
			return render.Zones(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Zone IDs to leave out")
	return cmd
}

func newOffsetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "offset ZONE...",
		Short: "Print the GMT offset label of each zone",
		Long:  `Print the GMT±H[:MM] label of each zone at --at (default now). A zone is a tz database ID or NAME=±H[:MM].`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := a.now()
			if err != nil {
				return err
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			for _, arg := range args {
				z, err := zoneArg(cat, arg)
				if err != nil {
					return fmt.Errorf("%q: %w", arg, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", z.DisplayName(), tzconvert.OffsetLabel(z, now))
			}
			return nil
		},
	}
}
