package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/codeGROOVE-dev/tzgrid/pkg/httpcache"
)

// ErrNoSource is returned when no source could provide the tables.
var ErrNoSource = errors.New("no catalog source available")

// DefaultMirror serves the current tz database release unpacked.
const DefaultMirror = "https://data.iana.org/time-zones/tzdb/"

const (
	zoneFile    = "zone.tab"
	countryFile = "iso3166.tab"
)

// Tables holds the raw contents of zone.tab and iso3166.tab.
type Tables struct {
	Zones     []byte
	Countries []byte
}

// Source provides the tz database tables a catalog is built from.
type Source interface {
	Load(ctx context.Context) (Tables, error)
	String() string
}

// DirSource reads the tables from a zoneinfo directory.
type DirSource struct {
	Dir string
}

func (s DirSource) String() string { return "dir:" + s.Dir }

// Load reads both tables from the directory.
func (s DirSource) Load(ctx context.Context) (Tables, error) {
	if err := ctx.Err(); err != nil {
		return Tables{}, err
	}
	zones, err := os.ReadFile(filepath.Join(s.Dir, zoneFile))
	if err != nil {
		return Tables{}, fmt.Errorf("reading %s: %w", zoneFile, err)
	}
	countries, err := os.ReadFile(filepath.Join(s.Dir, countryFile))
	if err != nil {
		return Tables{}, fmt.Errorf("reading %s: %w", countryFile, err)
	}
	return Tables{Zones: zones, Countries: countries}, nil
}

// SystemDirs lists the zoneinfo directories searched on this host, with
// $ZONEINFO first when it names a directory.
func SystemDirs() []string {
	dirs := []string{"/usr/share/zoneinfo", "/usr/share/lib/zoneinfo", "/usr/lib/locale/TZ"}
	if z := os.Getenv("ZONEINFO"); z != "" {
		if info, err := os.Stat(z); err == nil && info.IsDir() {
			dirs = append([]string{z}, dirs...)
		}
	}
	return dirs
}

// SystemSource tries each of SystemDirs in order.
func SystemSource(logger *slog.Logger) *FallbackSource {
	var sources []Source
	for _, d := range SystemDirs() {
		sources = append(sources, DirSource{Dir: d})
	}
	return &FallbackSource{Sources: sources, Logger: logger}
}

var (
	//go:embed data/zone.tab
	embeddedZones []byte
	//go:embed data/iso3166.tab
	embeddedCountries []byte
)

// EmbeddedSource serves the tables compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) String() string { return "embedded" }

// Load returns the embedded tables.
func (EmbeddedSource) Load(context.Context) (Tables, error) {
	return Tables{Zones: embeddedZones, Countries: embeddedCountries}, nil
}

// HTTPSource downloads the tables from a tz database mirror.
type HTTPSource struct {
	Client  *httpcache.Client
	BaseURL string
}

func (s HTTPSource) String() string { return "http:" + s.baseURL() }

func (s HTTPSource) baseURL() string {
	if s.BaseURL == "" {
		return DefaultMirror
	}
	if !strings.HasSuffix(s.BaseURL, "/") {
		return s.BaseURL + "/"
	}
	return s.BaseURL
}

// Load fetches both tables.
func (s HTTPSource) Load(ctx context.Context) (Tables, error) {
	zones, err := s.Client.Get(ctx, s.baseURL()+zoneFile)
	if err != nil {
		return Tables{}, fmt.Errorf("fetching %s: %w", zoneFile, err)
	}
	countries, err := s.Client.Get(ctx, s.baseURL()+countryFile)
	if err != nil {
		return Tables{}, fmt.Errorf("fetching %s: %w", countryFile, err)
	}
	return Tables{Zones: zones, Countries: countries}, nil
}

// FallbackSource returns the tables of the first source that loads.
type FallbackSource struct {
	Logger  *slog.Logger
	Sources []Source
}

func (s *FallbackSource) String() string {
	names := make([]string, len(s.Sources))
	for i, src := range s.Sources {
		names[i] = src.String()
	}
	return strings.Join(names, ",")
}

// Load tries each source in order. When all fail the returned error wraps
// ErrNoSource and every individual failure.
func (s *FallbackSource) Load(ctx context.Context) (Tables, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var errs *multierror.Error
	for _, src := range s.Sources {
		t, err := src.Load(ctx)
		if err == nil {
			logger.Debug("catalog source loaded", "source", src.String())
			return t, nil
		}
		logger.Debug("catalog source failed", "source", src.String(), "error", err)
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", src, err))
	}
	if errs == nil {
		return Tables{}, ErrNoSource
	}
	return Tables{}, fmt.Errorf("%w: %w", ErrNoSource, errs)
}
