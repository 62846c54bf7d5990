package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/tzgrid/pkg/httpcache"
)

// Source kinds accepted by Config.
const (
	KindAuto     = "auto"
	KindDir      = "dir"
	KindEmbedded = "embedded"
	KindHTTP     = "http"
)

// Config selects where the catalog comes from.
type Config struct {
	// Kind is one of auto, dir, embedded or http. Auto tries the host's
	// zoneinfo directories, then the embedded tables.
	Kind string
	// Dir is read by the dir kind. Empty means SystemDirs.
	Dir string
	// MirrorURL is fetched by the http kind. Empty means DefaultMirror.
	MirrorURL string
	// CacheDir persists downloaded tables. Empty keeps them in memory.
	CacheDir string
	CacheTTL time.Duration
}

// Source returns the configured source and a function releasing its
// resources. The http kind falls back to the embedded tables.
func (c Config) Source(ctx context.Context, logger *slog.Logger) (Source, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	switch c.Kind {
	case "", KindAuto:
		sys := SystemSource(logger)
		return &FallbackSource{Sources: append(sys.Sources, EmbeddedSource{}), Logger: logger}, noop, nil
	case KindDir:
		if c.Dir != "" {
			return DirSource{Dir: c.Dir}, noop, nil
		}
		return SystemSource(logger), noop, nil
	case KindEmbedded:
		return EmbeddedSource{}, noop, nil
	case KindHTTP:
		ttl := c.CacheTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		var cache *httpcache.OtterCache
		if c.CacheDir != "" {
			var err error
			cache, err = httpcache.NewOtterCache(ctx, c.CacheDir, ttl, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("opening cache: %w", err)
			}
		} else {
			cache = httpcache.NewMemoryOnlyCache(ttl, logger)
		}
		client := httpcache.NewClient(cache, &http.Client{Timeout: 30 * time.Second}, logger)
		src := &FallbackSource{
			Sources: []Source{HTTPSource{Client: client, BaseURL: c.MirrorURL}, EmbeddedSource{}},
			Logger:  logger,
		}
		return src, cache.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q (want %s, %s, %s or %s)",
			c.Kind, KindAuto, KindDir, KindEmbedded, KindHTTP)
	}
}

// Open builds a catalog from the configured source.
func Open(ctx context.Context, c Config, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	src, closeFn, err := c.Source(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("closing catalog source", "error", err)
		}
	}()
	return Build(ctx, src, logger)
}
