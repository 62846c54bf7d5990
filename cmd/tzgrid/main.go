// Package main implements the tzgrid command line tool, which prints a
// 24-hour comparison of the clocks in several time zones.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/tzgrid/pkg/catalog"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

const cliVersion = "tzgrid v0.3.0"

// app carries state shared by the subcommands.
type app struct {
	logger      *slog.Logger
	envFile     string
	catalogKind string
	mirrorURL   string
	cacheDir    string
	at          string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tzgrid",
		Short: "Compare clocks across time zones.",
		Long: `tzgrid prints the 24 hours of today (UTC) side by side for a base zone and up to
five target zones, marking business, personal and sleeping hours.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env", ".env", "The env file to read.")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&a.catalogKind, "catalog", "", "Zone catalog source: auto, dir, embedded, http (or set TZGRID_CATALOG)")
	flags.StringVar(&a.mirrorURL, "mirror", "", "tz database mirror for the http catalog (or set TZGRID_MIRROR)")
	flags.StringVar(&a.cacheDir, "cache-dir", "", "Cache directory for downloaded tables (or set CACHE_DIR)")
	flags.StringVar(&a.at, "at", "", "Reference instant in RFC 3339 (default now)")

	root.AddCommand(
		newCompareCmd(a),
		newZonesCmd(a),
		newOffsetCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), cliVersion)
			},
		},
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(a.envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("failed to load env file", "file", a.envFile, "error", err)
		}
	}

	if a.catalogKind == "" {
		a.catalogKind = os.Getenv("TZGRID_CATALOG")
	}
	if a.mirrorURL == "" {
		a.mirrorURL = os.Getenv("TZGRID_MIRROR")
	}
	if a.cacheDir == "" {
		a.cacheDir = os.Getenv("CACHE_DIR")
	}
	return nil
}

func (a *app) now() (time.Time, error) {
	if a.at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, a.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t, nil
}

func (a *app) catalog(ctx context.Context) (*catalog.Catalog, error) {
	return catalog.Open(ctx, catalog.Config{
		Kind:      a.catalogKind,
		MirrorURL: a.mirrorURL,
		CacheDir:  a.cacheDir,
	}, a.logger)
}

// zoneArg resolves a command line zone: a catalog ID, any other tz
// database ID, or NAME=±H[:MM] for a custom offset.
func zoneArg(cat *catalog.Catalog, arg string) (zone.Zone, error) {
	if name, offset, ok := cutCustom(arg); ok {
		h, m, err := zone.ParseOffset(offset)
		if err != nil {
			return nil, err
		}
		return zone.NewCustom(name, h, m)
	}
	if z, ok := cat.Zone(arg); ok {
		return z, nil
	}
	if _, err := zone.Resolve(arg); err != nil {
		return nil, err
	}
	return zone.IANA{ID: arg}, nil
}

func cutCustom(arg string) (name, offset string, ok bool) {
	for i := len(arg) - 1; i >= 0; i-- {
		if arg[i] == '=' {
			return arg[:i], arg[i+1:], true
		}
	}
	return "", "", false
}
