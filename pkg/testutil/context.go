package testutil

import (
	"context"

	"landregistry/pkg/requestcontext"
)

// AsRequest tags ctx with a request id, as the request middleware would.
func AsRequest(ctx context.Context, requestID string) context.Context {
	return requestcontext.WithRequestID(ctx, requestID)
}
