package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/internal/platform/config"
	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
)

func testConfig() config.Server {
	return config.Server{
		Deployer:      "deployer",
		JWTSigningKey: "test-key",
		TxTimeout:     time.Second,
	}
}

func buildMemory(t *testing.T) (*infra, *slog.Logger) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := buildInfra(context.Background(), testConfig(), log)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	return deps, log
}

func TestApplyGenesis(t *testing.T) {
	deps, log := buildMemory(t)
	registry := buildService(testConfig(), deps, log)
	ctx := context.Background()
	inactive := false

	err := applyGenesis(ctx, registry, &config.Genesis{
		Bootstrap: true,
		Administrators: []config.GenesisGrant{
			{Principal: "notary-1", Role: "NOTARY"},
			{Principal: "retired", Role: "REGISTRAR", Active: &inactive},
		},
	})
	require.NoError(t, err)

	ok, err := registry.HasRole(ctx, "deployer", models.RoleRegistrar)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = registry.HasRole(ctx, "notary-1", models.RoleNotary)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = registry.HasRole(ctx, "retired", models.RoleRegistrar)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, applyGenesis(ctx, registry, &config.Genesis{Bootstrap: true}), "re-running is a re-grant")
}

func TestApplyGenesis_UnknownRole(t *testing.T) {
	deps, log := buildMemory(t)
	registry := buildService(testConfig(), deps, log)

	err := applyGenesis(context.Background(), registry, &config.Genesis{
		Administrators: []config.GenesisGrant{{Principal: "x", Role: "OWNER"}},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	deps, log := buildMemory(t)
	cfg := testConfig()
	router := newRouter(cfg, deps, buildService(cfg, deps, log), log)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/registry/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_WritesRequireToken(t *testing.T) {
	deps, log := buildMemory(t)
	cfg := testConfig()
	router := newRouter(cfg, deps, buildService(cfg, deps, log), log)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/registry/bootstrap", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
