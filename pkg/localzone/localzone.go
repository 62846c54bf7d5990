// Package localzone detects the tz database zone of the machine running the
// program.
package localzone

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/tzgrid/pkg/catalog"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

// ErrUndetected is returned when no source names a usable zone.
var ErrUndetected = errors.New("local time zone not detected")

// utcAliases are reported as plain UTC.
var utcAliases = map[string]bool{
	"Etc/UTC": true, "Etc/UCT": true, "Etc/Universal": true, "Etc/Zulu": true,
	"Etc/GMT": true, "Etc/GMT0": true, "Etc/Greenwich": true,
	"UCT": true, "Universal": true, "Zulu": true, "GMT": true,
}

// Detector looks for the local zone in $TZ, then time.Local, then the
// /etc/localtime symlink.
type Detector struct {
	LookupEnv     func(string) (string, bool)
	Local         *time.Location
	LocaltimePath string
}

// New returns a detector for the current process.
func New() Detector {
	return Detector{LookupEnv: os.LookupEnv, Local: time.Local, LocaltimePath: "/etc/localtime"}
}

// Detect returns the tz database ID of the local zone.
func (d Detector) Detect() (string, error) {
	var errs []error
	try := func(source, id string) bool {
		if _, err := zone.Resolve(id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			return false
		}
		return true
	}

	if d.LookupEnv != nil {
		if tz, found := d.LookupEnv("TZ"); found {
			// TZ set but empty means UTC.
			id := strings.TrimPrefix(tz, ":")
			if id == "" {
				id = "UTC"
			}
			if try("TZ", id) {
				return normalize(id), nil
			}
		}
	}

	if d.Local != nil {
		if id := d.Local.String(); id != "Local" && id != "" && try("time.Local", id) {
			return normalize(id), nil
		}
	}

	if d.LocaltimePath != "" {
		target, err := os.Readlink(d.LocaltimePath)
		if err != nil {
			errs = append(errs, err)
		} else if _, id, found := strings.Cut(target, "zoneinfo/"); found && try(d.LocaltimePath, id) {
			return normalize(id), nil
		}
	}

	if len(errs) == 0 {
		return "", ErrUndetected
	}
	return "", fmt.Errorf("%w: %w", ErrUndetected, errors.Join(errs...))
}

func normalize(id string) string {
	if utcAliases[id] {
		return "UTC"
	}
	return id
}

// Base returns the catalog zone matching the local zone. When detection
// fails or the zone is not in the catalog it logs and returns fallback.
func (d Detector) Base(cat *catalog.Catalog, fallback zone.Zone, logger *slog.Logger) zone.Zone {
	if logger == nil {
		logger = slog.Default()
	}
	id, err := d.Detect()
	if err != nil {
		logger.Debug("keeping default base zone", "default", fallback.ZoneID(), "error", err)
		return fallback
	}
	z, ok := cat.Zone(id)
	if !ok {
		logger.Debug("local zone not in catalog, keeping default", "zone", id, "default", fallback.ZoneID())
		return fallback
	}
	logger.Debug("detected local zone", "zone", id)
	return z
}
