package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSource(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []string{"", KindAuto, KindDir, KindEmbedded, KindHTTP} {
		t.Run("kind "+kind, func(t *testing.T) {
			src, closeFn, err := Config{Kind: kind}.Source(ctx, nil)
			require.NoError(t, err)
			assert.NotNil(t, src)
			assert.NoError(t, closeFn())
		})
	}

	_, _, err := Config{Kind: "ftp"}.Source(ctx, nil)
	assert.ErrorContains(t, err, "unknown catalog source")
}

func TestOpenDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, zoneFile), []byte(sampleZones), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, countryFile), []byte(sampleCountries), 0o600))

	c, err := Open(context.Background(), Config{Kind: KindDir, Dir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
}

func TestOpenHTTPFallsBackToEmbedded(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := Open(context.Background(), Config{Kind: KindHTTP, MirrorURL: srv.URL, CacheDir: t.TempDir()}, nil)
	require.NoError(t, err)
	_, ok := c.Lookup("Europe/Istanbul")
	assert.True(t, ok)
}
