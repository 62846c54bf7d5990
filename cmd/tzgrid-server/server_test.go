package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/tzgrid/pkg/band"
	"github.com/codeGROOVE-dev/tzgrid/pkg/catalog"
	"github.com/codeGROOVE-dev/tzgrid/pkg/grid"
	"github.com/codeGROOVE-dev/tzgrid/pkg/metrics"
)

var fixedNow = time.Date(2024, 6, 12, 14, 20, 0, 0, time.UTC)

func newTestServer(t *testing.T, perMinute int) *httptest.Server {
	t.Helper()
	cat, err := catalog.Build(context.Background(), catalog.EmbeddedSource{}, nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newServer(cat, metrics.New(reg, "tzgrid"), reg, newRateLimiter(perMinute, time.Minute), logger)
	s.now = func() time.Time { return fixedNow }

	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() }) //nolint:errcheck // test cleanup
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() }) //nolint:errcheck // test cleanup
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestZones(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := get(t, srv, "/api/v1/zones?q=york")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store, no-cache, must-revalidate, private", resp.Header.Get("Cache-Control"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decode[struct {
		Zones []catalog.Option `json:"zones"`
	}](t, resp)
	require.Len(t, body.Zones, 1)
	assert.Equal(t, catalog.Option{Value: "America/New_York", Label: "New York, United States", Offset: "-04:00"}, body.Zones[0])

	resp = get(t, srv, "/api/v1/zones?q=york&exclude=America/New_York,UTC")
	body = decode[struct {
		Zones []catalog.Option `json:"zones"`
	}](t, resp)
	assert.Empty(t, body.Zones)
}

func TestCompareScenario(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := post(t, srv, "/api/v1/compare", `{
		"base": {"id": "UTC", "kind": "iana"},
		"targets": [{"name": "UTC-5", "kind": "custom", "offset_minutes": -300}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	table := decode[grid.Table](t, resp)
	require.Len(t, table.Rows, 24)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, "UTC", table.Columns[0].Name, "catalog label filled in")
	assert.Equal(t, grid.Cell{Clock: "09:00", Band: band.Business}, table.Rows[14].Cells[1])
	assert.Equal(t, grid.Cell{Clock: "21:00", Band: band.Personal}, table.Rows[2].Cells[1])
	assert.True(t, table.Rows[14].Current)
	assert.Equal(t, "GMT-5", table.Columns[1].Offset)
}

func TestCompareDefaults(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := post(t, srv, "/api/v1/compare", `{"targets": [{"id": "America/New_York"}], "at": "2024-01-15T09:00:00Z"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	table := decode[grid.Table](t, resp)
	assert.Equal(t, "Istanbul, Turkey", table.Columns[0].Name)
	assert.Equal(t, "GMT-5", table.Columns[1].Offset)
	assert.True(t, table.Rows[9].Current)
}

func TestCompareErrors(t *testing.T) {
	srv := newTestServer(t, 100)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown zone", `{"targets":[{"id":"Nowhere/City","kind":"iana"}]}`, http.StatusBadRequest, "UNKNOWN_ZONE"},
		{"bad custom", `{"targets":[{"name":"x","kind":"custom","offset_minutes":7}]}`, http.StatusUnprocessableEntity, "INVALID_CUSTOM_ZONE"},
		{"duplicate", `{"targets":[{"id":"Asia/Tokyo"},{"id":"Asia/Tokyo"}]}`, http.StatusBadRequest, "DUPLICATE_ZONE"},
		{"base in targets", `{"base":{"id":"UTC"},"targets":[{"id":"UTC"}]}`, http.StatusBadRequest, "BASE_IN_TARGETS"},
		{"bad instant", `{"at":"yesterday"}`, http.StatusBadRequest, "INVALID_INSTANT"},
		{"too many", `{"targets":[{"id":"Asia/Tokyo"},{"id":"Asia/Seoul"},{"id":"Asia/Dubai"},{"id":"Europe/Paris"},{"id":"Europe/London"},{"id":"America/Chicago"}]}`,
			http.StatusBadRequest, "TOO_MANY_TARGETS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/api/v1/compare", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			e := decode[apiError](t, resp)
			assert.Equal(t, tt.wantCode, e.Code)
		})
	}
}

func TestCustom(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := post(t, srv, "/api/v1/custom", `{"name":"Office","hours":5,"minutes":30}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[struct {
		Zone struct {
			ID            string `json:"id"`
			Kind          string `json:"kind"`
			OffsetMinutes int    `json:"offset_minutes"`
		} `json:"zone"`
		Offset string `json:"offset"`
	}](t, resp)
	assert.True(t, strings.HasPrefix(body.Zone.ID, "custom-"))
	assert.Equal(t, "custom", body.Zone.Kind)
	assert.Equal(t, 330, body.Zone.OffsetMinutes)
	assert.Equal(t, "GMT+5:30", body.Offset)

	resp = post(t, srv, "/api/v1/custom", `{"name":"Office","hours":15,"minutes":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestOffset(t *testing.T) {
	srv := newTestServer(t, 100)

	tests := []struct {
		query      string
		wantStatus int
		wantLabel  string
	}{
		{"zone=America/New_York&at=2024-03-10T06:59:00Z", http.StatusOK, "GMT-5"},
		{"zone=America/New_York&at=2024-03-10T07:00:00Z", http.StatusOK, "GMT-4"},
		{"zone=Asia/Kathmandu", http.StatusOK, "GMT+5:45"},
		{"zone=Atlantis/Capital", http.StatusNotFound, ""},
		{"", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := get(t, srv, "/api/v1/offset?"+tt.query)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantLabel != "" {
				body := decode[map[string]string](t, resp)
				assert.Equal(t, tt.wantLabel, body["label"])
			}
		})
	}
}

func TestLegendAndHealth(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := get(t, srv, "/api/v1/legend")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]band.Entry](t, resp), 3)

	resp = get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, 2)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/legend").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/legend").StatusCode)

	resp := get(t, srv, "/api/v1/legend")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decode[apiError](t, resp).Code)

	// Health checks are not limited.
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, 100)
	get(t, srv, "/api/v1/legend")

	resp := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tzgrid_http_requests_total{code="200",route="GET /api/v1/legend"} 1`)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	rl.mu.Lock()
	rl.lastSeen["10.0.0.1"] = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	assert.True(t, rl.allow("10.0.0.2"))
	rl.mu.Lock()
	_, kept := rl.limiters["10.0.0.1"]
	rl.mu.Unlock()
	assert.False(t, kept)
}
