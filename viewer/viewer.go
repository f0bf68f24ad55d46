package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"civictrack/models"
)

const (
	// SelectionZoom is the close zoom used after jumping to an address.
	SelectionZoom   = 16
	DefaultZoom     = 13
	DefaultRadiusKm = 5.0
	// DefaultDebounce is the quiet period before an address search is sent.
	DefaultDebounce = 300 * time.Millisecond
)

var ErrIncompleteForm = errors.New("title, description and category are required")

// Config tunes a Viewer. Zero values select the defaults.
type Config struct {
	RadiusKm float64
	Status   models.IssueStatus
	Category models.IssueCategory
	Debounce time.Duration
	// Themes persists the theme preference; nil keeps it in memory only.
	Themes ThemeStore
}

// FilterSettings are the user-adjustable parts of a Filter.
type FilterSettings struct {
	RadiusKm float64
	Status   models.IssueStatus
	Category models.IssueCategory
}

// Viewer owns the client-side state of the issue map and runs the fetch,
// submit and address-suggestion workflows against a Backend. All methods are
// safe for concurrent use; no lock is held across a network call.
type Viewer struct {
	backend  Backend
	events   *Dispatcher
	themes   ThemeStore
	debounce time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu                 sync.Mutex
	center             *LatLng
	zoom               int
	settings           FilterSettings
	pendingFetch       bool
	fetchSeq           uint64
	inFlight           int
	markers            *MarkerSet
	form               Form
	selectedAddress    string
	suggestions        []Suggestion
	suggestionsVisible bool
	suggestGen         uint64
	suggestTimer       *time.Timer
	message            *Message
	session            SessionState
	liveState          LiveState
}

func New(backend Backend, cfg Config) *Viewer {
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = DefaultRadiusKm
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Viewer{
		backend:  backend,
		events:   NewDispatcher(),
		themes:   cfg.Themes,
		debounce: cfg.Debounce,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		zoom:     DefaultZoom,
		settings: FilterSettings{RadiusKm: cfg.RadiusKm, Status: cfg.Status, Category: cfg.Category},
		markers:  NewMarkerSet(),
		session:  SessionState{Theme: ThemeDark},
	}

	if v.themes != nil {
		theme, err := v.themes.LoadTheme()
		if err != nil {
			logger.Warn().Err(err).Msg("Could not load theme preference")
		}
		v.session.Theme = ParseTheme(string(theme))
	}
	return v
}

// Events exposes the dispatcher the presentation layer subscribes to.
func (v *Viewer) Events() *Dispatcher {
	return v.events
}

// Close cancels background work such as pending address searches.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.suggestTimer != nil {
		v.suggestTimer.Stop()
	}
	v.mu.Unlock()
	v.cancel()
}

// SetCenter positions the map. The first call runs a fetch that was
// deferred because the map had no center yet.
func (v *Viewer) SetCenter(ctx context.Context, p LatLng, zoom int) error {
	v.mu.Lock()
	runPending := v.setCenterLocked(p, zoom)
	v.mu.Unlock()

	if runPending {
		return v.Refresh(ctx)
	}
	return nil
}

func (v *Viewer) setCenterLocked(p LatLng, zoom int) bool {
	v.center = &p
	if zoom > 0 {
		v.zoom = zoom
	}
	runPending := v.pendingFetch
	v.pendingFetch = false
	return runPending
}

// ApplyFilters stores new filter settings and refetches.
func (v *Viewer) ApplyFilters(ctx context.Context, settings FilterSettings) error {
	v.mu.Lock()
	v.settings = settings
	v.mu.Unlock()

	v.events.Emit(Event{Kind: FiltersApplied})
	return v.Refresh(ctx)
}

func (v *Viewer) filterLocked() Filter {
	f := Filter{RadiusKm: v.settings.RadiusKm, Status: v.settings.Status, Category: v.settings.Category}
	if v.center != nil {
		c := *v.center
		f.Center = &c
	}
	return f
}

// Refresh fetches the issues matching the current filter and redraws every
// marker. Only the response to the most recently issued fetch is applied.
func (v *Viewer) Refresh(ctx context.Context) error {
	v.mu.Lock()
	query, err := BuildQuery(v.filterLocked())
	if errors.Is(err, ErrMapNotReady) {
		v.pendingFetch = true
		v.mu.Unlock()
		return err
	}
	if err != nil {
		v.mu.Unlock()
		v.showMessage(&Message{Kind: MessageValidation, Text: "Invalid filter: " + err.Error()})
		return err
	}
	v.fetchSeq++
	seq := v.fetchSeq
	v.mu.Unlock()

	v.beginLoading()
	defer v.endLoading()

	issues, err := v.backend.FetchIssues(ctx, query)

	v.mu.Lock()
	if seq != v.fetchSeq {
		v.mu.Unlock()
		logger.Debug().Uint64("seq", seq).Msg("Discarding stale fetch result")
		return nil
	}
	if err != nil {
		v.mu.Unlock()
		logger.Warn().Err(err).Msg("Failed to load issues")
		v.showMessage(&Message{Kind: MessageError, Text: "Failed to load issues", Persistent: true, Retry: v.Refresh})
		return err
	}
	count := v.markers.ReplaceAll(issues)
	if _, ok := v.markers.Get(v.session.SelectedMarkerID); !ok {
		v.session.SelectedMarkerID = ""
	}
	v.mu.Unlock()

	v.events.Emit(Event{Kind: IssuesLoaded, Count: count})
	v.showMessage(&Message{Kind: MessageSuccess, Text: fmt.Sprintf("Loaded %d issues", count)})
	return nil
}

func (v *Viewer) SetTitle(title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.Title = title
}

func (v *Viewer) SetDescription(description string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.Description = description
}

func (v *Viewer) SetCategory(category models.IssueCategory) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.Category = category
}

// Submit validates the form and reports a new issue at the map center.
// Incomplete forms are rejected without any network call. On failure the
// form is kept so the retry action resubmits the same input.
func (v *Viewer) Submit(ctx context.Context) error {
	v.mu.Lock()
	form := v.form
	if !form.Complete() {
		v.mu.Unlock()
		v.showMessage(&Message{Kind: MessageValidation, Text: "Please fill in title, description and category"})
		return ErrIncompleteForm
	}
	if v.center == nil {
		v.mu.Unlock()
		v.showMessage(&Message{Kind: MessageValidation, Text: "The map is not ready yet"})
		return ErrMapNotReady
	}
	req := CreateIssueRequest{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Category:    models.IssueCategory(strings.TrimSpace(string(form.Category))),
		Latitude:    v.center.Lat,
		Longitude:   v.center.Lng,
		Address:     v.selectedAddress,
	}
	v.mu.Unlock()

	v.beginLoading()
	defer v.endLoading()

	issue, err := v.backend.CreateIssue(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to submit issue")
		v.showMessage(&Message{Kind: MessageError, Text: "Failed to submit issue", Persistent: true, Retry: v.Submit})
		return err
	}

	v.mu.Lock()
	if v.markers.Upsert(issue) {
		v.session.SelectedMarkerID = issue.ID
	}
	v.form = Form{}
	v.selectedAddress = ""
	v.mu.Unlock()

	v.events.Emit(Event{Kind: IssueCreated, Issue: &issue, Source: SourceLocal})
	v.showMessage(&Message{Kind: MessageSuccess, Text: "Issue reported successfully!"})
	return nil
}

// HandleLiveIssue renders an issue pushed by the live channel. An issue
// already on the map (for example one this client just submitted) is
// replaced rather than duplicated.
func (v *Viewer) HandleLiveIssue(issue Issue) {
	v.mu.Lock()
	placed := v.markers.Upsert(issue)
	if placed {
		v.session.SelectedMarkerID = issue.ID
	}
	v.mu.Unlock()

	if !placed {
		logger.Warn().Str("issue_id", string(issue.ID)).Msg("Ignoring live issue without a valid location")
		return
	}

	v.events.Emit(Event{Kind: IssueCreated, Issue: &issue, Source: SourceLive})
	v.showNotice(&Message{Kind: MessageInfo, Text: "New issue reported: " + issue.Title})
}

// OpenPopup shows the detail popup for id, closing any other.
func (v *Viewer) OpenPopup(id IssueID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.markers.Get(id); !ok {
		return false
	}
	v.session.SelectedMarkerID = id
	return true
}

func (v *Viewer) ClosePopup() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.session.SelectedMarkerID = ""
}

func (v *Viewer) beginLoading() {
	v.mu.Lock()
	v.inFlight++
	show := v.inFlight == 1
	v.mu.Unlock()

	if show {
		v.events.Emit(Event{Kind: LoadingChanged, Loading: true})
	}
}

func (v *Viewer) endLoading() {
	v.mu.Lock()
	v.inFlight--
	hide := v.inFlight == 0
	v.mu.Unlock()

	if hide {
		v.events.Emit(Event{Kind: LoadingChanged, Loading: false})
	}
}

func (v *Viewer) showMessage(m *Message) {
	m.ShownAt = v.now()

	v.mu.Lock()
	v.message = m
	v.mu.Unlock()

	v.events.Emit(Event{Kind: MessageShown, Message: m})
}

// showNotice is showMessage for notices nobody asked for. A persistent
// banner stays until the user dismisses or retries it.
func (v *Viewer) showNotice(m *Message) {
	v.mu.Lock()
	blocked := v.message != nil && v.message.Persistent
	v.mu.Unlock()

	if blocked {
		logger.Debug().Str("text", m.Text).Msg("Notice suppressed by persistent message")
		return
	}
	v.showMessage(m)
}

// Message returns the current banner, or nil once a transient one expired.
func (v *Viewer) Message() *Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.message != nil && v.message.Expired(v.now()) {
		v.message = nil
	}
	return v.message
}

func (v *Viewer) DismissMessage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = nil
}

// Retry dismisses the current banner and re-runs its failed workflow.
func (v *Viewer) Retry(ctx context.Context) error {
	v.mu.Lock()
	m := v.message
	if m == nil || m.Retry == nil {
		v.mu.Unlock()
		return nil
	}
	v.message = nil
	v.mu.Unlock()

	return m.Retry(ctx)
}

// ToggleTheme flips between dark and light and persists the choice.
func (v *Viewer) ToggleTheme() (Theme, error) {
	v.mu.Lock()
	if v.session.Theme == ThemeDark {
		v.session.Theme = ThemeLight
	} else {
		v.session.Theme = ThemeDark
	}
	theme := v.session.Theme
	v.mu.Unlock()

	v.events.Emit(Event{Kind: ThemeChanged, Theme: theme})

	if v.themes == nil {
		return theme, nil
	}
	if err := v.themes.SaveTheme(theme); err != nil {
		logger.Warn().Err(err).Msg("Could not save theme preference")
		return theme, err
	}
	return theme, nil
}

// NextTourStep advances the onboarding tour and reports whether it is
// still running.
func (v *Viewer) NextTourStep() bool {
	v.mu.Lock()
	if v.session.TourActive() {
		v.session.TourIndex++
	}
	index, active := v.session.TourIndex, v.session.TourActive()
	v.mu.Unlock()

	v.events.Emit(Event{Kind: TourAdvanced, TourIndex: index})
	return active
}

func (v *Viewer) SkipTour() {
	v.mu.Lock()
	v.session.TourIndex = len(TourSteps)
	v.mu.Unlock()

	v.events.Emit(Event{Kind: TourAdvanced, TourIndex: len(TourSteps)})
}

func (v *Viewer) setLiveState(s LiveState) {
	v.mu.Lock()
	changed := v.liveState != s
	v.liveState = s
	v.mu.Unlock()

	if changed {
		v.events.Emit(Event{Kind: LiveStateChanged, LiveState: s})
	}
}

// Snapshot is a consistent copy of the viewer state for rendering.
type Snapshot struct {
	Center             *LatLng
	Zoom               int
	Filter             Filter
	Markers            []Marker
	Loading            bool
	Message            *Message
	Suggestions        []Suggestion
	SuggestionsVisible bool
	Form               Form
	SelectedAddress    string
	Session            SessionState
	LiveState          LiveState
}

func (v *Viewer) Snapshot() Snapshot {
	message := v.Message()

	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Zoom:               v.zoom,
		Filter:             v.filterLocked(),
		Markers:            v.markers.List(),
		Loading:            v.inFlight > 0,
		Message:            message,
		Suggestions:        append([]Suggestion(nil), v.suggestions...),
		SuggestionsVisible: v.suggestionsVisible,
		Form:               v.form,
		SelectedAddress:    v.selectedAddress,
		Session:            v.session,
		LiveState:          v.liveState,
	}
	if v.center != nil {
		c := *v.center
		s.Center = &c
	}
	return s
}
