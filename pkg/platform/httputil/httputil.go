package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	dErrors "landregistry/pkg/domain-errors"
)

// maxBodyBytes caps request bodies; registry payloads are small.
const maxBodyBytes = 64 << 10

// ErrorResponse is the JSON error envelope returned by every handler.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a tagged error into the JSON envelope.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor maps a failure code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case dErrors.CodeUnauthorized, dErrors.CodeNotOwner:
		return http.StatusForbidden
	case dErrors.CodePropertyNotFound, dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeInvalidRecipient, dErrors.CodeInvalidCoordinates, dErrors.CodeInvalidArea,
		dErrors.CodeInsufficientPayment, dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeTransferRestricted, dErrors.CodePropertyExists, dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Preparable requests normalize and validate themselves after decoding.
type Preparable interface {
	Normalize()
	Validate() error
}

// DecodeAndPrepare decodes a JSON body into req, then normalizes and
// validates it. Failures are tagged bad_request.
func DecodeAndPrepare[T any, PT interface {
	*T
	Preparable
}](r *http.Request) (*T, error) {
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	p := PT(&req)
	p.Normalize()
	if err := p.Validate(); err != nil {
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid request: %v", err))
	}
	return &req, nil
}
