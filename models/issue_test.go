package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#ff7a29", Roads.Color())
	assert.Equal(t, DefaultMarkerColor, IssueCategory("potholes").Color())
	assert.Equal(t, DefaultMarkerColor, IssueCategory("").Color())

	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
		assert.NotEqual(t, DefaultMarkerColor, c.Color(), c)
	}
}

func TestValidateCoordinates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "Bangalore", lat: 12.97, lng: 77.59},
		{name: "Corners", lat: -90, lng: 180},
		{name: "LatTooLarge", lat: 90.1, lng: 0, wantErr: true},
		{name: "LngTooSmall", lat: 0, lng: -180.5, wantErr: true},
		{name: "NaN", lat: math.NaN(), lng: 0, wantErr: true},
		{name: "Inf", lat: 0, lng: math.Inf(1), wantErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateCoordinates(testCase.lat, testCase.lng)
			if testCase.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilterValidate(t *testing.T) {
	t.Parallel()

	base := Filter{Latitude: DefaultLatitude, Longitude: DefaultLongitude, RadiusKm: DefaultRadiusKm}
	assert.NoError(t, base.Validate())
	assert.Equal(t, 5000.0, base.RadiusMeters())

	zeroRadius := base
	zeroRadius.RadiusKm = 0
	assert.ErrorIs(t, zeroRadius.Validate(), ErrInvalidRadius)

	nanRadius := base
	nanRadius.RadiusKm = math.NaN()
	assert.ErrorIs(t, nanRadius.Validate(), ErrInvalidRadius)

	badStatus := base
	badStatus.Status = "closed"
	assert.ErrorIs(t, badStatus.Validate(), ErrInvalidStatus)

	badCategory := base
	badCategory.Category = "parks"
	assert.ErrorIs(t, badCategory.Validate(), ErrInvalidCategory)

	full := base
	full.Status = InProgress
	full.Category = Water
	assert.NoError(t, full.Validate())
}
