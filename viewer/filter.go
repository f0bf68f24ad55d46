package viewer

import (
	"errors"
	"math"
	"net/url"
	"strconv"

	"civictrack/models"
)

var (
	// ErrMapNotReady means the map has no center yet; the query must wait.
	ErrMapNotReady = errors.New("map is not ready")
	ErrBadRadius   = errors.New("radius must be a positive number of kilometers")
)

// Filter is the spatial and categorical query behind a fetch. Center is nil
// until the map has been positioned.
type Filter struct {
	Center   *LatLng
	RadiusKm float64
	Status   models.IssueStatus
	Category models.IssueCategory
}

// BuildQuery turns f into the query string for GET /api/issues. Optional
// selectors that are empty are left out entirely.
func BuildQuery(f Filter) (url.Values, error) {
	if f.Center == nil {
		return nil, ErrMapNotReady
	}
	if !finite(f.Center.Lat) || !finite(f.Center.Lng) {
		return nil, ErrMapNotReady
	}
	if !(f.RadiusKm > 0) || math.IsInf(f.RadiusKm, 0) {
		return nil, ErrBadRadius
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.ErrInvalidStatus
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, models.ErrInvalidCategory
	}

	q := url.Values{}
	q.Set("lat", formatFloat(f.Center.Lat))
	q.Set("lng", formatFloat(f.Center.Lng))
	q.Set("radius", formatFloat(f.RadiusKm))
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	return q, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
