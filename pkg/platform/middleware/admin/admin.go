// Package admin guards operator-only routes with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/platform/httputil"
	request "landregistry/pkg/platform/middleware/request"
)

const HeaderAdminToken = "X-Admin-Token"

var errTokenRequired = dErrors.New(dErrors.CodeUnauthenticated, "admin token required")

// RequireAdminToken rejects requests whose X-Admin-Token does not match.
// An empty expected token disables the route entirely.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	expected := []byte(expectedToken)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matches(expected, r.Header.Get(HeaderAdminToken)) {
				ctx := r.Context()
				logger.WarnContext(ctx, "operator route rejected",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, errTokenRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func matches(expected []byte, presented string) bool {
	if len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), expected) == 1
}
