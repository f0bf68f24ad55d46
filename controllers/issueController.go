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
	"civictrack/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// IssueController serves the issue API and announces new issues.
type IssueController struct {
	Store       store.IssueStore
	Broadcaster services.Broadcaster
	// Events is optional; nil disables event export.
	Events services.EventPublisher
}

type createIssueInput struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required,issuecategory"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	Address     string   `json:"address" binding:"max=500"`
}

// ListIssues returns issues within radius km of lat/lng, optionally narrowed
// by status and category.
func (ic *IssueController) ListIssues(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parameters"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	issues, err := ic.Store.FindNearby(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve issues")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}

	c.JSON(http.StatusOK, issues)
}

// CreateIssue validates and stores a new issue, then pushes it to live viewers.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var input createIssueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if err := models.ValidateCoordinates(*input.Latitude, *input.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates out of valid range (-90 to 90 lat, -180 to 180 lng)"})
		return
	}

	issue := models.Issue{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    models.IssueCategory(input.Category),
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		Address:     strings.TrimSpace(input.Address),
		Status:      models.Reported,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := ic.Store.Create(ctx, &issue); err != nil {
		log.Error().Err(err).Msg("Error creating issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	log.Info().Str("issue_id", issue.ID).Str("category", string(issue.Category)).Msg("Issue created")
	c.JSON(http.StatusCreated, issue)

	ic.announce(issue)
}

// announce is best-effort: a failed broadcast never fails the request.
func (ic *IssueController) announce(issue models.Issue) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if ic.Broadcaster != nil {
		if err := ic.Broadcaster.Publish(ctx, issue); err != nil {
			log.Warn().Err(err).Str("issue_id", issue.ID).Msg("Failed to broadcast new issue")
		}
	}
	if ic.Events != nil {
		if err := ic.Events.PublishIssueCreated(ctx, issue); err != nil {
			log.Warn().Err(err).Str("issue_id", issue.ID).Msg("Failed to publish issue.created")
		}
	}
}

// GetIssue retrieves an issue by its ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	issue, err := ic.Store.FindByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	c.JSON(http.StatusOK, issue)
}

type categoryInfo struct {
	Name  models.IssueCategory `json:"name"`
	Color string               `json:"color"`
}

// Categories returns the closed category list with marker colors.
func (ic *IssueController) Categories(c *gin.Context) {
	categories := make([]categoryInfo, 0, len(models.Categories))
	for _, category := range models.Categories {
		categories = append(categories, categoryInfo{Name: category, Color: category.Color()})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":    categories,
		"default_color": models.DefaultMarkerColor,
		"statuses":      models.Statuses,
	})
}

func parseFilter(c *gin.Context) (models.Filter, error) {
	lat, err := queryFloat(c, "lat", models.DefaultLatitude)
	if err != nil {
		return models.Filter{}, err
	}
	lng, err := queryFloat(c, "lng", models.DefaultLongitude)
	if err != nil {
		return models.Filter{}, err
	}
	radius, err := queryFloat(c, "radius", models.DefaultRadiusKm)
	if err != nil {
		return models.Filter{}, err
	}

	filter := models.Filter{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radius,
		Status:    models.IssueStatus(c.Query("status")),
		Category:  models.IssueCategory(c.Query("category")),
	}
	return filter, filter.Validate()
}

func queryFloat(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func bindingMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			return "Missing required fields"
		case "issuecategory":
			return "Invalid category. Must be one of: " + categoryList()
		}
	}
	return validationErrors[0].Field() + " is invalid"
}

func categoryList() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
