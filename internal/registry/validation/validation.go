// Package validation holds the registry's pure predicates. Nothing here
// touches state.
package validation

import (
	"fmt"
	"unicode/utf8"
)

// Coordinate bounds in micro-degrees (degrees × 10⁶). Boundaries are valid.
const (
	MinLatitude  int64 = -90_000_000
	MaxLatitude  int64 = 90_000_000
	MinLongitude int64 = -180_000_000
	MaxLongitude int64 = 180_000_000
)

// Metadata field limits in bytes.
const (
	MaxLegalDescriptionLength = 512
	MaxPropertyTypeLength     = 64
	MaxZoningCodeLength       = 32
	MaxTaxIDLength            = 64
)

// ValidCoordinates reports whether lat and lng fall inside the bounds.
func ValidCoordinates(lat, lng int64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lng >= MinLongitude && lng <= MaxLongitude
}

// PositiveQuantity reports whether x > 0.
func PositiveQuantity(x uint64) bool {
	return x > 0
}

// ValidText checks a bounded metadata field.
func ValidText(field, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf("%s exceeds max length of %d", field, max)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s must be valid UTF-8", field)
	}
	return nil
}
