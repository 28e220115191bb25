// Package model defines the core domain types shared across the scoring
// pipeline: business categories, score results, model artifacts, and
// review sentiment aggregates.
package model

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Category is a closed enumeration of supported business kinds. Values map
// 1:1 to the business_type column written by the acquisition layer.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryCafe       Category = "cafe"
	CategoryRetail     Category = "retail"
	CategoryHotel      Category = "hotel"
	CategoryBank       Category = "bank"
	CategoryHospital   Category = "hospital"
	CategorySchool     Category = "school"
	CategoryGasStation Category = "gas_station"
	CategoryPark       Category = "park"
	CategoryMuseum     Category = "museum"
	CategoryMosque     Category = "mosque"
	CategoryChurch     Category = "church"
)

// ErrUnknownCategory is returned when input names a category outside the
// closed set. Callers must reject the request before any extraction work.
var ErrUnknownCategory = eris.New("model: unknown business category")

// ErrInvalidCoordinate is returned for out-of-range latitude or longitude.
var ErrInvalidCoordinate = eris.New("model: coordinate out of range")

var categories = map[Category]bool{
	CategoryRestaurant: true,
	CategoryCafe:       true,
	CategoryRetail:     true,
	CategoryHotel:      true,
	CategoryBank:       true,
	CategoryHospital:   true,
	CategorySchool:     true,
	CategoryGasStation: true,
	CategoryPark:       true,
	CategoryMuseum:     true,
	CategoryMosque:     true,
	CategoryChurch:     true,
}

// ParseCategory validates a raw category string against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !categories[c] {
		return "", eris.Wrapf(ErrUnknownCategory, "%q", s)
	}
	return c, nil
}

// Valid reports whether the category is a member of the closed set.
func (c Category) Valid() bool {
	return categories[c]
}

func (c Category) String() string {
	return string(c)
}

// Categories returns every member of the closed category set in a stable
// order.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for c := range categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReferenceCategories is the fixed list used for one-hot "category present
// nearby" features. Order is part of the feature schema; do not reorder.
func ReferenceCategories() []Category {
	return []Category{
		CategoryRestaurant,
		CategoryCafe,
		CategoryRetail,
		CategoryHotel,
		CategoryBank,
		CategoryHospital,
		CategorySchool,
	}
}

// ValidateCoordinates checks that a point lies within WGS84 bounds.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return eris.Wrapf(ErrInvalidCoordinate, "latitude %f", lat)
	}
	if lng < -180 || lng > 180 {
		return eris.Wrapf(ErrInvalidCoordinate, "longitude %f", lng)
	}
	return nil
}
