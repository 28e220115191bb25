package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Category
		wantErr bool
	}{
		{"restaurant", "restaurant", CategoryRestaurant, false},
		{"cafe", "cafe", CategoryCafe, false},
		{"gas station", "gas_station", CategoryGasStation, false},
		{"mosque", "mosque", CategoryMosque, false},
		{"unknown", "bowling_alley", "", true},
		{"empty", "", "", true},
		{"case sensitive", "Restaurant", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoriesStableAndComplete(t *testing.T) {
	all := Categories()
	assert.Len(t, all, 12)
	assert.Equal(t, all, Categories(), "order must be stable across calls")

	for _, c := range all {
		assert.True(t, c.Valid())
	}
	for _, c := range ReferenceCategories() {
		assert.Contains(t, all, c)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"istanbul", 41.0082, 28.9784, false},
		{"equator", 0, 0, false},
		{"poles", 90, 180, false},
		{"lat too high", 90.1, 0, true},
		{"lat too low", -90.1, 0, true},
		{"lng too high", 0, 180.1, true},
		{"lng too low", 0, -180.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, Clamp(11, 0, 10))
	assert.Equal(t, 5.5, Clamp(5.5, 0, 10))
}
