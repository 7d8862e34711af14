package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "landregistry/pkg/platform/middleware/request"
	"landregistry/pkg/requestcontext"
)

// TokenValidator turns a bearer token into the caller's principal.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims are the parts of a validated token the registry cares about.
type Claims struct {
	Principal string
	TokenID   string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequirePrincipal rejects requests without a valid bearer token and stores
// the token subject as the invocation principal.
func RequirePrincipal(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthenticated request - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated request - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, claims.Principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalPrincipal attaches the principal when a valid token is present and
// otherwise lets the request through anonymously. Used by read routes.
func OptionalPrincipal(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				if claims, err := validator.ValidateToken(token); err == nil {
					r = r.WithContext(requestcontext.WithPrincipal(r.Context(), claims.Principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal is a convenience for handlers.
func GetPrincipal(ctx context.Context) string {
	return requestcontext.Principal(ctx)
}
