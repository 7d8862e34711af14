package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/platform/config"
	"landregistry/internal/registry/handler"
	"landregistry/internal/registry/service"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/platform/middleware/auth"
	"landregistry/pkg/platform/middleware/request"
	"landregistry/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

func newRouter(cfg config.Server, deps *infra, registry *service.Service, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthz(deps))
	r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())

	tokens := auth.NewHMACValidator(cfg.JWTSigningKey, cfg.JWTIssuer)
	h := handler.New(registry, tokens, cfg.AdminToken, log)
	h.Register(r)
	return r
}

type check func(ctx context.Context) error

func healthz(deps *infra) http.HandlerFunc {
	checks := map[string]check{}
	if deps.db != nil {
		checks["postgres"] = deps.db.PingContext
	}
	if deps.redis != nil {
		checks["redis"] = deps.redis.Health
	}
	if deps.kafka != nil {
		checks["kafka"] = deps.kafka.Ping
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, fn := range checks {
			if err := fn(ctx); err != nil {
				status[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.WriteJSON(w, code, status)
	}
}
