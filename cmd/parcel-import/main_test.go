package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/internal/registry/handler"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/platform/middleware/auth"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-file", "x.shp", "-zoning-field", "ZONE"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "x.shp", opts.file)
	assert.Equal(t, "ZONE", opts.cols.Zoning)
	assert.Equal(t, "AREA_SQFT", opts.cols.Area)

	_, err = parseFlags(nil, io.Discard)
	assert.Error(t, err)
}

func TestOptions_Bearer(t *testing.T) {
	tok, err := options{token: "given"}.bearer(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "given", tok)

	_, err = options{}.bearer(time.Now())
	assert.Error(t, err)

	minted, err := options{signingKey: "k", principal: "registrar-2"}.bearer(time.Now())
	require.NoError(t, err)
	claims, err := auth.NewHMACValidator("k", "").ValidateToken(minted)
	require.NoError(t, err)
	assert.Equal(t, "registrar-2", claims.Principal)
}

func TestRun_DryRunSkipsInvalidRows(t *testing.T) {
	path := writeShapefile(t, []row{
		{lng: 10, lat: 10, attrs: []string{"100", "1", "", "", "", ""}},
		{lng: 10, lat: 10, attrs: []string{"0", "1", "", "", "", ""}},
	})

	s, err := run(context.Background(), options{file: path, dryRun: true, cols: defaultColumns()}, discard)
	require.NoError(t, err)
	assert.Equal(t, summary{registered: 1, skipped: 1}, s)
}

func TestRun_PostsEachValidRow(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, handler.RegisterPropertyResponse{ID: 1})
	}))
	defer srv.Close()

	path := writeShapefile(t, []row{
		{lng: 1, lat: 1, attrs: []string{"10", "1", "a", "b", "c", "d"}},
		{lng: 2, lat: 2, attrs: []string{"20", "2", "a", "b", "c", "d"}},
		{lng: 3, lat: 3, attrs: []string{"30", "3", "a", "b", "c", "d"}},
	})

	s, err := run(context.Background(), options{
		file: path, server: srv.URL, token: "tok", cols: defaultColumns(),
	}, discard)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, summary{registered: 2, skipped: 1}, s)
}

func TestRun_RequiresCredentials(t *testing.T) {
	path := writeShapefile(t, nil)
	_, err := run(context.Background(), options{file: path, cols: defaultColumns()}, discard)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "-token"))
}
