package viewer

// Theme is the persisted color scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps stored text to a Theme, defaulting to dark.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeStore persists the theme across sessions.
type ThemeStore interface {
	LoadTheme() (Theme, error)
	SaveTheme(Theme) error
}

// TourSteps is the onboarding walkthrough, one hint per step.
var TourSteps = []string{
	"Issues near the map center are shown as colored markers.",
	"Type an address to jump the map there.",
	"Fill in title, description and category, then submit to report an issue.",
	"Narrow the map with status and category filters.",
	"New reports from other people appear live.",
}

// SessionState is the per-session UI state shared by the workflows.
type SessionState struct {
	Theme            Theme
	SelectedMarkerID IssueID
	TourIndex        int
}

// TourActive reports whether the onboarding tour still has steps to show.
func (s SessionState) TourActive() bool {
	return s.TourIndex < len(TourSteps)
}

// TourStep returns the current hint, or "" once the tour is over.
func (s SessionState) TourStep() string {
	if !s.TourActive() {
		return ""
	}
	return TourSteps[s.TourIndex]
}
