package models

import "errors"

// Map center used when a query omits lat/lng.
const (
	DefaultLatitude  = 12.9716
	DefaultLongitude = 77.5946
	DefaultRadiusKm  = 5.0
)

// Filter selects issues within RadiusKm of a center point. Empty Status or
// Category means "any".
type Filter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Status    IssueStatus
	Category  IssueCategory
}

var (
	ErrInvalidRadius   = errors.New("radius must be a positive number of kilometers")
	ErrInvalidStatus   = errors.New("unknown status")
	ErrInvalidCategory = errors.New("unknown category")
)

// Validate checks the center, radius and optional selectors.
func (f Filter) Validate() error {
	if err := ValidateCoordinates(f.Latitude, f.Longitude); err != nil {
		return err
	}
	if !(f.RadiusKm > 0) || f.RadiusKm > 20037 {
		return ErrInvalidRadius
	}
	if f.Status != "" && !f.Status.Valid() {
		return ErrInvalidStatus
	}
	if f.Category != "" && !f.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// RadiusMeters converts the radius for stores that measure in meters.
func (f Filter) RadiusMeters() float64 {
	return f.RadiusKm * 1000
}
