package viewer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"civictrack/models"
)

// LatLng is a map coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// IssueID is the store-assigned identifier. The wire form may be a JSON
// string or number; both decode to the same textual id.
type IssueID string

func (id *IssueID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = IssueID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = IssueID(n.String())
	return nil
}

// Coordinate is a latitude or longitude as received from the server. Valid
// is false when the value was missing, null, unparseable or not finite.
type Coordinate struct {
	Value float64
	Valid bool
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	*c = Coordinate{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return nil
		}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*c = Coordinate{Value: v, Valid: true}
	return nil
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// Issue is the client-side copy of a server issue.
type Issue struct {
	ID          IssueID              `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    models.IssueCategory `json:"category"`
	Latitude    Coordinate           `json:"latitude"`
	Longitude   Coordinate           `json:"longitude"`
	Address     string               `json:"address,omitempty"`
	Status      models.IssueStatus   `json:"status"`
	CreatedAt   *time.Time           `json:"created_at,omitempty"`
}

// Position returns the issue location and whether it can be placed on a map.
func (i Issue) Position() (LatLng, bool) {
	if !i.Latitude.Valid || !i.Longitude.Valid {
		return LatLng{}, false
	}
	return LatLng{Lat: i.Latitude.Value, Lng: i.Longitude.Value}, true
}

// decodeIssues decodes a JSON array leniently: elements that are not issue
// objects are dropped instead of failing the whole response.
func decodeIssues(data []byte) ([]Issue, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(raw))
	for _, element := range raw {
		var issue Issue
		if err := json.Unmarshal(element, &issue); err != nil {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
