package models

import (
	"strconv"
	"strings"

	dErrors "landregistry/pkg/domain-errors"
)

// Principal is an opaque, host-authenticated account reference. The registry
// only compares principals; it never authenticates them.
type Principal string

func (p Principal) IsZero() bool { return p == "" }

func (p Principal) String() string { return string(p) }

// ParsePrincipal trims s and rejects empty or oversized identities.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "principal is required")
	}
	if len(s) > MaxPrincipalLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "principal exceeds max length")
	}
	return Principal(s), nil
}

// MaxPrincipalLength bounds identities accepted at the edge.
const MaxPrincipalLength = 256

// PropertyID is allocated from a counter starting at 1 and never reused.
type PropertyID uint64

func (id PropertyID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ParsePropertyID parses a decimal id. Zero parses like any other id; it is
// never allocated, so lookups simply miss.
func ParsePropertyID(s string) (PropertyID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid property id")
	}
	return PropertyID(v), nil
}
