package models

import (
	"errors"
	"math"
	"time"
)

// IssueCategory enum
type IssueCategory string

const (
	Roads        IssueCategory = "roads"
	Water        IssueCategory = "water"
	Garbage      IssueCategory = "garbage"
	Lighting     IssueCategory = "lighting"
	Safety       IssueCategory = "safety"
	Obstructions IssueCategory = "obstructions"
)

// Categories lists every category in display order.
var Categories = []IssueCategory{Roads, Water, Garbage, Lighting, Safety, Obstructions}

// DefaultMarkerColor is used for categories outside the enumeration.
const DefaultMarkerColor = "#3388ff"

var categoryColors = map[IssueCategory]string{
	Roads:        "#ff7a29",
	Water:        "#2b9bf4",
	Garbage:      "#7cb342",
	Lighting:     "#ffd23f",
	Safety:       "#e53935",
	Obstructions: "#8e5cd9",
}

// Valid reports whether c is one of the recognized categories.
func (c IssueCategory) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the marker color for c, falling back to DefaultMarkerColor.
func (c IssueCategory) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return DefaultMarkerColor
}

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "reported"
	InProgress IssueStatus = "in_progress"
	Resolved   IssueStatus = "resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []IssueStatus{Reported, InProgress, Resolved}

func (s IssueStatus) Valid() bool {
	switch s {
	case Reported, InProgress, Resolved:
		return true
	}
	return false
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    IssueCategory `json:"category"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Address     string        `json:"address,omitempty"`
	Status      IssueStatus   `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at"`
}

var ErrInvalidCoordinates = errors.New("coordinates out of valid range (-90 to 90 lat, -180 to 180 lng)")

// ValidateCoordinates rejects non-finite or out-of-range latitude/longitude pairs.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
