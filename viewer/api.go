package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civictrack/models"
)

// MaxSuggestions caps the suggestion list.
const MaxSuggestions = 5

// Suggestion is one geocoding result offered while typing an address.
type Suggestion struct {
	Label    string
	Position LatLng
}

// CreateIssueRequest is the body of POST /api/issues.
type CreateIssueRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    models.IssueCategory `json:"category"`
	Latitude    float64              `json:"latitude"`
	Longitude   float64              `json:"longitude"`
	Address     string               `json:"address"`
}

//go:generate mockgen -source=api.go -destination=../mocks/mock_backend.go -package=mocks

// Backend is everything the viewer needs from the server.
type Backend interface {
	FetchIssues(ctx context.Context, query url.Values) ([]Issue, error)
	CreateIssue(ctx context.Context, req CreateIssueRequest) (Issue, error)
	SearchAddress(ctx context.Context, query string) ([]Suggestion, error)
	ReverseGeocode(ctx context.Context, at LatLng) (Suggestion, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// APIClient talks to the civictrack HTTP API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient returns a client for the server at baseURL. Requests carry
// no deadline of their own; callers bound them through ctx.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// LiveURL is the address of the server's live event stream.
func (c *APIClient) LiveURL() string {
	return c.baseURL + "/api/live"
}

func (c *APIClient) FetchIssues(ctx context.Context, query url.Values) ([]Issue, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/issues?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeIssues(body)
}

func (c *APIClient) CreateIssue(ctx context.Context, req CreateIssueRequest) (Issue, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Issue{}, err
	}

	body, err := c.do(ctx, http.MethodPost, "/api/issues", payload)
	if err != nil {
		return Issue{}, err
	}

	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return Issue{}, fmt.Errorf("failed to parse created issue: %w", err)
	}
	return issue, nil
}

type place struct {
	DisplayName string     `json:"display_name"`
	Lat         Coordinate `json:"lat"`
	Lon         Coordinate `json:"lon"`
}

func (p place) suggestion() (Suggestion, bool) {
	if p.DisplayName == "" || !p.Lat.Valid || !p.Lon.Valid {
		return Suggestion{}, false
	}
	return Suggestion{Label: p.DisplayName, Position: LatLng{Lat: p.Lat.Value, Lng: p.Lon.Value}}, true
}

func (c *APIClient) SearchAddress(ctx context.Context, query string) ([]Suggestion, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/geocode?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	suggestions := make([]Suggestion, 0, MaxSuggestions)
	for _, p := range places {
		if len(suggestions) == MaxSuggestions {
			break
		}
		if s, ok := p.suggestion(); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions, nil
}

var errNoAddress = errors.New("no address at this point")

func (c *APIClient) ReverseGeocode(ctx context.Context, at LatLng) (Suggestion, error) {
	query := url.Values{"lat": {formatFloat(at.Lat)}, "lng": {formatFloat(at.Lng)}}
	body, err := c.do(ctx, http.MethodGet, "/api/geocode/reverse?"+query.Encode(), nil)
	if err != nil {
		return Suggestion{}, err
	}

	var p place
	if err := json.Unmarshal(body, &p); err != nil {
		return Suggestion{}, fmt.Errorf("failed to parse address: %w", err)
	}
	s, ok := p.suggestion()
	if !ok {
		return Suggestion{}, errNoAddress
	}
	return s, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return nil, &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	return body, nil
}
