package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeGROOVE-dev/tzgrid/pkg/band"
	"github.com/codeGROOVE-dev/tzgrid/pkg/catalog"
	"github.com/codeGROOVE-dev/tzgrid/pkg/grid"
	"github.com/codeGROOVE-dev/tzgrid/pkg/metrics"
	"github.com/codeGROOVE-dev/tzgrid/pkg/selection"
	"github.com/codeGROOVE-dev/tzgrid/pkg/tzconvert"
	"github.com/codeGROOVE-dev/tzgrid/pkg/zone"
)

const maxBodyBytes = 64 << 10

type server struct {
	catalog  *catalog.Catalog
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	limiter  *rateLimiter
	logger   *slog.Logger
	now      func() time.Time
}

func newServer(cat *catalog.Catalog, m *metrics.Metrics, g prometheus.Gatherer, limiter *rateLimiter, logger *slog.Logger) *server {
	return &server{
		catalog:  cat,
		metrics:  m,
		gatherer: g,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/zones", s.handleZones)
	mux.HandleFunc("POST /api/v1/compare", s.handleCompare)
	mux.HandleFunc("POST /api/v1/custom", s.handleCustom)
	mux.HandleFunc("GET /api/v1/offset", s.handleOffset)
	mux.HandleFunc("GET /api/v1/legend", s.handleLegend)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok\n") //nolint:errcheck // nothing to do on failure
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	antiCSRF := http.NewCrossOriginProtection()
	return s.wrap(antiCSRF.Handler(mux))
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response",
			"request_id", w.Header().Get("X-Request-ID"),
			"path", r.URL.Path,
			"error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, e apiError) {
	s.writeJSON(w, r, status, e)
}

// instant reads an optional RFC 3339 "at" value, defaulting to now.
func (s *server) instant(at string) (time.Time, error) {
	if at == "" {
		return s.now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("at must be RFC 3339: %w", err)
	}
	return t, nil
}

func (s *server) handleZones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var exclude []string
	if ex := q.Get("exclude"); ex != "" {
		exclude = strings.Split(ex, ",")
	}
	now, err := s.instant(q.Get("at"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, apiError{Error: "Invalid instant", Details: err.Error(), Code: "INVALID_INSTANT"})
		return
	}

	opts := s.catalog.Search(q.Get("q"), exclude, now)
	s.writeJSON(w, r, http.StatusOK, map[string]any{"zones": opts, "count": len(opts)})
}

type compareRequest struct {
	Base    *zone.Descriptor  `json:"base"`
	At      string            `json:"at"`
	Targets []zone.Descriptor `json:"targets"`
}

// resolve converts a descriptor, filling in the catalog label of
// unnamed tz database zones.
func (s *server) resolve(d zone.Descriptor) (zone.Zone, error) {
	z, err := d.Zone()
	if err != nil {
		return nil, err
	}
	if iz, ok := z.(zone.IANA); ok && iz.Name == "" {
		if named, found := s.catalog.Zone(iz.ID); found {
			return named, nil
		}
	}
	return z, nil
}

func zoneError(err error) (int, apiError) {
	switch {
	case errors.Is(err, zone.ErrInvalidCustom):
		return http.StatusUnprocessableEntity, apiError{Error: "Invalid custom zone", Details: err.Error(), Code: "INVALID_CUSTOM_ZONE"}
	case errors.Is(err, zone.ErrUnresolvable):
		return http.StatusBadRequest, apiError{Error: "Unknown time zone", Details: err.Error(), Code: "UNKNOWN_ZONE"}
	case errors.Is(err, selection.ErrLimitReached):
		return http.StatusBadRequest, apiError{
			Error:   "Too many target zones",
			Details: fmt.Sprintf("At most %d target zones can be compared.", selection.MaxTargets),
			Code:    "TOO_MANY_TARGETS",
		}
	case errors.Is(err, selection.ErrDuplicate):
		return http.StatusBadRequest, apiError{Error: "Duplicate zone", Details: err.Error(), Code: "DUPLICATE_ZONE"}
	case errors.Is(err, selection.ErrIsBase):
		return http.StatusBadRequest, apiError{Error: "Target is the base zone", Details: err.Error(), Code: "BASE_IN_TARGETS"}
	default:
		return http.StatusBadRequest, apiError{Error: "Invalid zone", Details: err.Error(), Code: "INVALID_ZONE"}
	}
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := w.Header().Get("X-Request-ID")

	var req compareRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Warn("invalid request body", "request_id", requestID, "error", err, "client_ip", clientIP(r))
		s.writeError(w, r, http.StatusBadRequest, apiError{Error: "Invalid request", Details: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	now, err := s.instant(req.At)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, apiError{Error: "Invalid instant", Details: err.Error(), Code: "INVALID_INSTANT"})
		return
	}

	var base zone.Zone = selection.DefaultBase
	if req.Base != nil {
		if base, err = s.resolve(*req.Base); err != nil {
			status, e := zoneError(err)
			s.writeError(w, r, status, e)
			return
		}
	}
	targets := make([]zone.Zone, 0, len(req.Targets))
	for _, d := range req.Targets {
		z, err := s.resolve(d)
		if err != nil {
			status, e := zoneError(err)
			s.writeError(w, r, status, e)
			return
		}
		targets = append(targets, z)
	}

	sel, err := selection.New(base, targets...)
	if err != nil {
		status, e := zoneError(err)
		s.writeError(w, r, status, e)
		return
	}

	buildStart := time.Now()
	table, err := grid.Build(now, sel)
	s.metrics.GridDuration.Observe(time.Since(buildStart).Seconds())
	if err != nil {
		s.logger.Error("grid build failed", "request_id", requestID, "error", err)
		status, e := zoneError(err)
		s.writeError(w, r, status, e)
		return
	}

	s.logger.Info("comparison built",
		"request_id", requestID,
		"base", base.ZoneID(),
		"targets", len(targets),
		"duration_ms", time.Since(start).Milliseconds())
	s.writeJSON(w, r, http.StatusOK, table)
}

type customRequest struct {
	Name    string `json:"name"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
}

func (s *server) handleCustom(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, apiError{Error: "Invalid request", Details: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	z, err := zone.NewCustom(req.Name, req.Hours, req.Minutes)
	if err != nil {
		status, e := zoneError(err)
		s.writeError(w, r, status, e)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, map[string]any{
		"zone":   zone.Describe(z),
		"offset": tzconvert.OffsetLabel(z, s.now()),
	})
}

func (s *server) handleOffset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("zone")
	if id == "" {
		s.writeError(w, r, http.StatusBadRequest, apiError{Error: "Missing zone", Code: "INVALID_REQUEST"})
		return
	}
	at, err := s.instant(q.Get("at"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, apiError{Error: "Invalid instant", Details: err.Error(), Code: "INVALID_INSTANT"})
		return
	}
	if _, err := zone.Resolve(id); err != nil {
		s.writeError(w, r, http.StatusNotFound, apiError{Error: "Unknown time zone", Details: err.Error(), Code: "UNKNOWN_ZONE"})
		return
	}

	z := zone.IANA{ID: id}
	s.writeJSON(w, r, http.StatusOK, map[string]string{
		"zone":  id,
		"label": tzconvert.OffsetLabel(z, at),
	})
}

func (s *server) handleLegend(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, band.Legend())
}
