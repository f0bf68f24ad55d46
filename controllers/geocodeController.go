package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"civictrack/models"
	"civictrack/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GeocodeController proxies address lookups so viewers share one cache and
// one User-Agent toward the geocoding service.
type GeocodeController struct {
	Geocoder services.Geocoder
}

// Search returns up to five places matching q.
func (gc *GeocodeController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, []services.Place{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	places, err := gc.Geocoder.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("Geocoding search failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding service unavailable"})
		return
	}
	if len(places) > services.MaxSuggestions {
		places = places[:services.MaxSuggestions]
	}

	c.JSON(http.StatusOK, places)
}

// Reverse resolves lat/lng to the nearest address.
func (gc *GeocodeController) Reverse(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || models.ValidateCoordinates(lat, lng) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parameters"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	place, err := gc.Geocoder.Reverse(ctx, lat, lng)
	if errors.Is(err, services.ErrNoPlace) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No address found"})
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("Reverse geocoding failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding service unavailable"})
		return
	}

	c.JSON(http.StatusOK, place)
}
