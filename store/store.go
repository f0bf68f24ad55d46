package store

//go:generate mockgen -source=store.go -destination=../mocks/mock_issue_store.go -package=mocks

import (
	"context"
	"errors"

	"civictrack/models"
)

var ErrNotFound = errors.New("issue not found")

// IssueStore persists issues and answers spatial queries over them.
type IssueStore interface {
	// Create assigns ID, CreatedAt and a default status, then inserts issue.
	Create(ctx context.Context, issue *models.Issue) error
	// FindNearby returns issues inside the filter radius, newest first.
	FindNearby(ctx context.Context, filter models.Filter) ([]models.Issue, error)
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	// Ping verifies the backing database is reachable and usable.
	Ping(ctx context.Context) error
}

func prepareForInsert(issue *models.Issue) {
	if issue.Status == "" {
		issue.Status = models.Reported
	}
	issue.UpdatedAt = nil
}
