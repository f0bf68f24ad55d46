package viewer

import "sort"

// Marker is an issue placed on the map.
type Marker struct {
	Issue    Issue
	Position LatLng
	Color    string
}

// MarkerSet holds at most one marker per issue id. It is not safe for
// concurrent use; Viewer guards it.
type MarkerSet struct {
	byID  map[IssueID]Marker
	order []IssueID
}

func NewMarkerSet() *MarkerSet {
	return &MarkerSet{byID: make(map[IssueID]Marker)}
}

func newMarker(issue Issue) (Marker, bool) {
	pos, ok := issue.Position()
	if !ok {
		return Marker{}, false
	}
	return Marker{Issue: issue, Position: pos, Color: issue.Category.Color()}, true
}

// Upsert inserts or replaces the marker for issue. Issues without a usable
// position are skipped and Upsert reports false.
func (s *MarkerSet) Upsert(issue Issue) bool {
	m, ok := newMarker(issue)
	if !ok {
		return false
	}
	if _, exists := s.byID[issue.ID]; !exists {
		s.order = append(s.order, issue.ID)
	}
	s.byID[issue.ID] = m
	return true
}

// ReplaceAll clears the set and renders issues, returning how many were
// placed.
func (s *MarkerSet) ReplaceAll(issues []Issue) int {
	s.byID = make(map[IssueID]Marker, len(issues))
	s.order = s.order[:0]
	for _, issue := range issues {
		s.Upsert(issue)
	}
	return len(s.byID)
}

func (s *MarkerSet) Get(id IssueID) (Marker, bool) {
	m, ok := s.byID[id]
	return m, ok
}

func (s *MarkerSet) Len() int {
	return len(s.byID)
}

// List returns markers in first-rendered order.
func (s *MarkerSet) List() []Marker {
	out := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Nearest returns the marker closest to p, for hit-testing clicks.
func (s *MarkerSet) Nearest(p LatLng) (Marker, bool) {
	markers := s.List()
	if len(markers) == 0 {
		return Marker{}, false
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return sqDist(markers[i].Position, p) < sqDist(markers[j].Position, p)
	})
	return markers[0], true
}

func sqDist(a, b LatLng) float64 {
	dLat, dLng := a.Lat-b.Lat, a.Lng-b.Lng
	return dLat*dLat + dLng*dLng
}
