// Package requesttime pins a single wall-clock "now" per request so audit
// events emitted during one invocation share a timestamp.
package requesttime

import (
	"net/http"
	"time"

	"landregistry/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
