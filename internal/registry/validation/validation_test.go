package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng int64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"new york", 40_000_000, -74_000_000, true},
		{"north-east corner", MaxLatitude, MaxLongitude, true},
		{"south-west corner", MinLatitude, MinLongitude, true},
		{"lat above range", MaxLatitude + 1, 0, false},
		{"lat below range", MinLatitude - 1, 0, false},
		{"lng above range", 0, MaxLongitude + 1, false},
		{"lng below range", 0, MinLongitude - 1, false},
		{"both out of range", 100_000_000, 200_000_000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lng))
		})
	}
}

func TestPositiveQuantity(t *testing.T) {
	assert.False(t, PositiveQuantity(0))
	assert.True(t, PositiveQuantity(1))
	assert.True(t, PositiveQuantity(^uint64(0)))
}

func TestValidText(t *testing.T) {
	t.Run("at max length passes", func(t *testing.T) {
		assert.NoError(t, ValidText("zoning", strings.Repeat("a", MaxZoningCodeLength), MaxZoningCodeLength))
	})

	t.Run("over max length fails", func(t *testing.T) {
		err := ValidText("zoning", strings.Repeat("a", MaxZoningCodeLength+1), MaxZoningCodeLength)
		assert.ErrorContains(t, err, "zoning exceeds max length")
	})

	t.Run("invalid utf-8 fails", func(t *testing.T) {
		assert.Error(t, ValidText("tax id", "\xff\xfe", MaxTaxIDLength))
	})
}
