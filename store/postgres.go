package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"civictrack/models"

	"github.com/rs/zerolog/log"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS issues (
	id BIGSERIAL PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL,
	category VARCHAR(50) NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	location geometry(Point, 4326) NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'reported',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_issues_location ON issues USING GIST ((location::geography));
CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues (created_at DESC);`

const issueColumns = `id, title, description, category, latitude, longitude, address, status, created_at, updated_at`

// PostgresStore keeps issues in a PostGIS table and filters with ST_DWithin
// on geography, so the radius is measured in meters on the spheroid.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates the schema if needed.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to initialize db schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Create(ctx context.Context, issue *models.Issue) error {
	prepareForInsert(issue)

	query := `
	INSERT INTO issues (title, description, category, latitude, longitude, location, address, status)
	VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($5, $4), 4326), $6, $7)
	RETURNING id, created_at`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		issue.Title, issue.Description, string(issue.Category),
		issue.Latitude, issue.Longitude, issue.Address, string(issue.Status),
	).Scan(&id, &issue.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert issue: %w", err)
	}

	issue.ID = strconv.FormatInt(id, 10)
	return nil
}

func (s *PostgresStore) FindNearby(ctx context.Context, filter models.Filter) ([]models.Issue, error) {
	query, args := nearbyQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	issues := []models.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read issues: %w", err)
	}
	return issues, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, numericID)
	issue, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return issue, err
}

// Ping checks connectivity, PostGIS availability and the issues table.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	var version string
	if err := s.db.QueryRowContext(ctx, `SELECT PostGIS_version()`).Scan(&version); err != nil {
		return fmt.Errorf("PostGIS unavailable: %w", err)
	}
	log.Debug().Str("postgis", version).Msg("PostGIS available")

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT to_regclass('public.issues') IS NOT NULL`).Scan(&exists); err != nil {
		return fmt.Errorf("failed to inspect tables: %w", err)
	}
	if !exists {
		return errors.New("missing table: issues")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	var (
		issue    models.Issue
		id       int64
		category string
		status   string
		updated  sql.NullTime
	)
	err := row.Scan(&id, &issue.Title, &issue.Description, &category,
		&issue.Latitude, &issue.Longitude, &issue.Address, &status,
		&issue.CreatedAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	issue.ID = strconv.FormatInt(id, 10)
	issue.Category = models.IssueCategory(category)
	issue.Status = models.IssueStatus(status)
	if updated.Valid {
		issue.UpdatedAt = &updated.Time
	}
	return &issue, nil
}

// nearbyQuery builds the ST_DWithin select for f with positional args.
func nearbyQuery(f models.Filter) (string, []any) {
	query := `SELECT ` + issueColumns + ` FROM issues
	WHERE ST_DWithin(location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)`
	args := []any{f.Longitude, f.Latitude, f.RadiusMeters()}

	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	return query + " ORDER BY created_at DESC", args
}
