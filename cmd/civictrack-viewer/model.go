package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"civictrack/models"
	"civictrack/viewer"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCount
)

// panStep is how far, in degrees, one pan key moves the map center.
const panStep = 0.005

var radiusSteps = []float64{1, 2, 5, 10, 25, 50}

const redrawInterval = time.Second

type (
	viewerEventMsg  viewer.Event
	workflowDoneMsg struct{ err error }
	submitDoneMsg   struct{ err error }
	redrawMsg       time.Time
)

type model struct {
	ctx    context.Context
	viewer *viewer.Viewer
	keys   keyMap

	mode          mode
	cursor        int
	suggestCursor int
	formField     int

	search      textinput.Model
	title       textinput.Model
	description textinput.Model
	spinner     spinner.Model

	snap   viewer.Snapshot
	width  int
	height int
}

func newModel(ctx context.Context, v *viewer.Viewer) model {
	search := textinput.New()
	search.Placeholder = "Search an address"
	search.Prompt = "⌕ "

	title := textinput.New()
	title.Placeholder = "What is the problem?"
	title.Prompt = "Title: "

	description := textinput.New()
	description.Placeholder = "Describe it"
	description.Prompt = "Description: "

	return model{
		ctx:         ctx,
		viewer:      v,
		keys:        defaultKeys,
		search:      search,
		title:       title,
		description: description,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		snap:        v.Snapshot(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		redraw(),
		m.run(m.viewer.Refresh),
	)
}

func redraw() tea.Cmd {
	return tea.Tick(redrawInterval, func(t time.Time) tea.Msg { return redrawMsg(t) })
}

// run executes a blocking viewer workflow off the UI goroutine. Its
// outcome reaches the user through viewer events, so the message only
// triggers a redraw.
func (m model) run(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return workflowDoneMsg{err: fn(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case viewerEventMsg:
		m.refreshSnapshot()
		if msg.Kind == viewer.IssueCreated && msg.Issue != nil {
			m.cursorTo(msg.Issue.ID)
		}
		return m, nil

	case workflowDoneMsg:
		m.refreshSnapshot()
		return m, nil

	case submitDoneMsg:
		m.refreshSnapshot()
		if msg.err == nil {
			m.leaveForm()
			m.title.SetValue("")
			m.description.SetValue("")
		}
		return m, nil

	case redrawMsg:
		m.refreshSnapshot()
		return m, redraw()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeForm:
			return m.handleFormKeys(msg)
		default:
			return m.handleBrowseKeys(msg)
		}
	}

	return m.forwardToInput(msg)
}

func (m *model) refreshSnapshot() {
	m.snap = m.viewer.Snapshot()
	if m.cursor >= len(m.snap.Markers) {
		m.cursor = max(len(m.snap.Markers)-1, 0)
	}
	if m.suggestCursor >= len(m.snap.Suggestions) {
		m.suggestCursor = 0
	}
}

func (m *model) cursorTo(id viewer.IssueID) {
	for i, marker := range m.snap.Markers {
		if marker.Issue.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.snap.Markers)-1 {
			m.cursor++
		}
	case key.Matches(msg, k.Open):
		if m.cursor < len(m.snap.Markers) {
			m.viewer.OpenPopup(m.snap.Markers[m.cursor].Issue.ID)
		}
	case key.Matches(msg, k.Cancel):
		if m.snap.Session.SelectedMarkerID != "" {
			m.viewer.ClosePopup()
		} else {
			m.viewer.DismissMessage()
		}

	case key.Matches(msg, k.PanNorth):
		return m, m.pan(panStep, 0)
	case key.Matches(msg, k.PanSouth):
		return m, m.pan(-panStep, 0)
	case key.Matches(msg, k.PanWest):
		return m, m.pan(0, -panStep)
	case key.Matches(msg, k.PanEast):
		return m, m.pan(0, panStep)
	case key.Matches(msg, k.PickHere):
		if m.snap.Center != nil {
			at := *m.snap.Center
			return m, m.run(func(ctx context.Context) error { return m.viewer.ClickMap(ctx, at) })
		}

	case key.Matches(msg, k.Refresh):
		return m, m.run(m.viewer.Refresh)
	case key.Matches(msg, k.Retry):
		return m, m.run(m.viewer.Retry)
	case key.Matches(msg, k.CycleStatus):
		settings := m.settings()
		settings.Status = nextStatus(settings.Status)
		return m, m.applyFilters(settings)
	case key.Matches(msg, k.CycleCategory):
		settings := m.settings()
		settings.Category = nextCategory(settings.Category, true)
		return m, m.applyFilters(settings)
	case key.Matches(msg, k.RadiusUp):
		settings := m.settings()
		settings.RadiusKm = stepRadius(settings.RadiusKm, 1)
		return m, m.applyFilters(settings)
	case key.Matches(msg, k.RadiusDown):
		settings := m.settings()
		settings.RadiusKm = stepRadius(settings.RadiusKm, -1)
		return m, m.applyFilters(settings)

	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		m.search.SetValue(m.snap.Form.Address)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, k.Report):
		m.mode = modeForm
		m.formField = fieldTitle
		m.title.SetValue(m.snap.Form.Title)
		m.description.SetValue(m.snap.Form.Description)
		m.description.Blur()
		cmd := m.title.Focus()
		return m, cmd

	case key.Matches(msg, k.ToggleTheme):
		_, _ = m.viewer.ToggleTheme()
	case key.Matches(msg, k.NextTourStep):
		m.viewer.NextTourStep()
	case key.Matches(msg, k.SkipTour):
		m.viewer.SkipTour()
	}

	m.refreshSnapshot()
	return m, nil
}

func (m model) settings() viewer.FilterSettings {
	f := m.snap.Filter
	return viewer.FilterSettings{RadiusKm: f.RadiusKm, Status: f.Status, Category: f.Category}
}

func (m model) applyFilters(settings viewer.FilterSettings) tea.Cmd {
	return m.run(func(ctx context.Context) error {
		return m.viewer.ApplyFilters(ctx, settings)
	})
}

func (m model) pan(dLat, dLng float64) tea.Cmd {
	if m.snap.Center == nil {
		return nil
	}
	to := viewer.LatLng{Lat: m.snap.Center.Lat + dLat, Lng: m.snap.Center.Lng + dLng}
	return m.run(func(ctx context.Context) error {
		if err := m.viewer.SetCenter(ctx, to, 0); err != nil {
			return err
		}
		return m.viewer.Refresh(ctx)
	})
}

func (m model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.viewer.ClickOutside()
		m.search.Blur()
		m.mode = modeBrowse
		m.refreshSnapshot()
		return m, nil
	case msg.Type == tea.KeyUp:
		if m.suggestCursor > 0 {
			m.suggestCursor--
		}
		return m, nil
	case msg.Type == tea.KeyDown:
		if m.suggestCursor < len(m.snap.Suggestions)-1 {
			m.suggestCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if !m.snap.SuggestionsVisible {
			return m, nil
		}
		index := m.suggestCursor
		m.search.Blur()
		m.mode = modeBrowse
		m.suggestCursor = 0
		return m, m.run(func(ctx context.Context) error {
			return m.viewer.SelectSuggestion(ctx, index)
		})
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.viewer.TypeAddress(after)
		m.suggestCursor = 0
	}
	m.refreshSnapshot()
	return m, cmd
}

func (m model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, k.Cancel):
		m.leaveForm()
		return m, nil
	case key.Matches(msg, k.NextTab):
		m.formField = (m.formField + 1) % fieldCount
		var cmd tea.Cmd
		if m.formField == fieldTitle {
			m.description.Blur()
			cmd = m.title.Focus()
		} else {
			m.title.Blur()
			cmd = m.description.Focus()
		}
		return m, cmd
	case key.Matches(msg, k.PrevCategory):
		m.viewer.SetCategory(nextCategory(m.snap.Form.Category, false))
		m.refreshSnapshot()
		return m, nil
	case key.Matches(msg, k.NextCategory):
		m.viewer.SetCategory(nextCategory(m.snap.Form.Category, true))
		m.refreshSnapshot()
		return m, nil
	case key.Matches(msg, k.Submit):
		v, ctx := m.viewer, m.ctx
		return m, func() tea.Msg {
			return submitDoneMsg{err: v.Submit(ctx)}
		}
	}

	var cmd tea.Cmd
	if m.formField == fieldTitle {
		m.title, cmd = m.title.Update(msg)
		m.viewer.SetTitle(m.title.Value())
	} else {
		m.description, cmd = m.description.Update(msg)
		m.viewer.SetDescription(m.description.Value())
	}
	m.refreshSnapshot()
	return m, cmd
}

func (m *model) leaveForm() {
	m.title.Blur()
	m.description.Blur()
	m.mode = modeBrowse
}

// forwardToInput passes non-key messages such as cursor blinks to the
// focused input.
func (m model) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.mode == modeSearch:
		m.search, cmd = m.search.Update(msg)
	case m.mode == modeForm && m.formField == fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case m.mode == modeForm:
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func nextStatus(s models.IssueStatus) models.IssueStatus {
	if s == "" {
		return models.Statuses[0]
	}
	for i, status := range models.Statuses {
		if status == s && i+1 < len(models.Statuses) {
			return models.Statuses[i+1]
		}
	}
	return ""
}

// nextCategory cycles through the categories and the empty "any" value.
func nextCategory(c models.IssueCategory, forward bool) models.IssueCategory {
	cycle := append([]models.IssueCategory{""}, models.Categories...)
	index := 0
	for i, category := range cycle {
		if category == c {
			index = i
		}
	}
	if forward {
		index = (index + 1) % len(cycle)
	} else {
		index = (index - 1 + len(cycle)) % len(cycle)
	}
	return cycle[index]
}

func stepRadius(current float64, direction int) float64 {
	if direction > 0 {
		for _, r := range radiusSteps {
			if r > current {
				return r
			}
		}
		return radiusSteps[len(radiusSteps)-1]
	}
	for i := len(radiusSteps) - 1; i >= 0; i-- {
		if radiusSteps[i] < current {
			return radiusSteps[i]
		}
	}
	return radiusSteps[0]
}

type palette struct {
	text   lipgloss.Color
	dim    lipgloss.Color
	accent lipgloss.Color
	border lipgloss.Color
}

var palettes = map[viewer.Theme]palette{
	viewer.ThemeDark:  {text: "#e6e6e6", dim: "#808080", accent: "#61afef", border: "#3e4451"},
	viewer.ThemeLight: {text: "#1f2328", dim: "#6e7781", accent: "#0969da", border: "#d0d7de"},
}

var messageColors = map[viewer.MessageKind]lipgloss.Color{
	viewer.MessageInfo:       "#61afef",
	viewer.MessageSuccess:    "#7cb342",
	viewer.MessageValidation: "#ffd23f",
	viewer.MessageError:      "#e53935",
}

func (m model) View() string {
	p := palettes[m.snap.Session.Theme]
	text := lipgloss.NewStyle().Foreground(p.text)
	dim := lipgloss.NewStyle().Foreground(p.dim)

	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render("CivicTrack")
	status := dim.Render(fmt.Sprintf("  live: %s  theme: %s", m.snap.LiveState, m.snap.Session.Theme))
	if m.snap.Loading {
		status += "  " + m.spinner.View()
	}
	b.WriteString(header + status + "\n")
	b.WriteString(dim.Render(describeFilter(m.snap)) + "\n")

	if tip := m.snap.Session.TourStep(); tip != "" {
		b.WriteString(lipgloss.NewStyle().Italic(true).Foreground(p.accent).
			Render(fmt.Sprintf("Tip %d/%d: %s", m.snap.Session.TourIndex+1, len(viewer.TourSteps), tip)) + "\n")
	}

	if msg := m.snap.Message; msg != nil {
		banner := msg.Text
		if msg.CanRetry() {
			banner += "  [x] retry  [esc] dismiss"
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(messageColors[msg.Kind]).Render(banner) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderMarkers(text, dim))

	if marker, ok := m.selectedMarker(); ok {
		b.WriteString(m.renderPopup(marker, p) + "\n")
	}

	switch m.mode {
	case modeSearch:
		b.WriteString("\n" + m.search.View() + "\n")
		b.WriteString(m.renderSuggestions(text, dim))
	case modeForm:
		b.WriteString("\n" + m.renderForm(dim))
	}

	b.WriteString("\n" + dim.Render(m.helpLine()))
	return b.String()
}

func describeFilter(s viewer.Snapshot) string {
	center := "locating…"
	if s.Center != nil {
		center = fmt.Sprintf("%.4f, %.4f", s.Center.Lat, s.Center.Lng)
	}
	status, category := "any", "any"
	if s.Filter.Status != "" {
		status = string(s.Filter.Status)
	}
	if s.Filter.Category != "" {
		category = string(s.Filter.Category)
	}
	return fmt.Sprintf("center %s · radius %g km · status %s · category %s", center, s.Filter.RadiusKm, status, category)
}

func (m model) visibleRows() int {
	if m.height <= 0 {
		return 10
	}
	return max(m.height-16, 3)
}

func (m model) renderMarkers(text, dim lipgloss.Style) string {
	if len(m.snap.Markers) == 0 {
		return dim.Render("No issues in this area.") + "\n"
	}

	rows := m.visibleRows()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.snap.Markers))

	var b strings.Builder
	for i := start; i < end; i++ {
		marker := m.snap.Markers[i]
		pointer := "  "
		if i == m.cursor && m.mode == modeBrowse {
			pointer = "> "
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(marker.Color)).Render("●")
		row := fmt.Sprintf("%s%s %s", pointer, dot, text.Render(marker.Issue.Title))
		row += dim.Render(fmt.Sprintf("  %s · %s", categoryLabel(marker.Issue.Category), marker.Issue.Status))
		b.WriteString(row + "\n")
	}
	if end < len(m.snap.Markers) {
		b.WriteString(dim.Render(fmt.Sprintf("  … %d more", len(m.snap.Markers)-end)) + "\n")
	}
	return b.String()
}

func categoryLabel(c models.IssueCategory) string {
	if c == "" {
		return "uncategorized"
	}
	return string(c)
}

func (m model) selectedMarker() (viewer.Marker, bool) {
	id := m.snap.Session.SelectedMarkerID
	if id == "" {
		return viewer.Marker{}, false
	}
	for _, marker := range m.snap.Markers {
		if marker.Issue.ID == id {
			return marker, true
		}
	}
	return viewer.Marker{}, false
}

func (m model) renderPopup(marker viewer.Marker, p palette) string {
	issue := marker.Issue
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(marker.Color)).Render(issue.Title),
		issue.Description,
		fmt.Sprintf("%s · %s", categoryLabel(issue.Category), issue.Status),
		fmt.Sprintf("%.5f, %.5f", marker.Position.Lat, marker.Position.Lng),
	}
	if issue.Address != "" {
		lines = append(lines, issue.Address)
	}
	if issue.CreatedAt != nil {
		lines = append(lines, "reported "+issue.CreatedAt.Local().Format("2 Jan 2006 15:04"))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Foreground(p.text).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m model) renderSuggestions(text, dim lipgloss.Style) string {
	if !m.snap.SuggestionsVisible {
		return ""
	}
	var b strings.Builder
	for i, s := range m.snap.Suggestions {
		if i == m.suggestCursor {
			b.WriteString(text.Reverse(true).Render("  "+s.Label) + "\n")
			continue
		}
		b.WriteString(dim.Render("  "+s.Label) + "\n")
	}
	return b.String()
}

func (m model) renderForm(dim lipgloss.Style) string {
	form := m.snap.Form
	category := dim.Render("choose with C-n / C-p")
	if form.Category != "" {
		category = lipgloss.NewStyle().Foreground(lipgloss.Color(form.Category.Color())).Render(string(form.Category))
	}
	location := "map center"
	if m.snap.SelectedAddress != "" {
		location = m.snap.SelectedAddress
	}

	lines := []string{
		m.title.View(),
		m.description.View() + "  " + dim.Render(form.CharCounter()),
		"Category: " + category,
		"Location: " + location,
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m model) helpLine() string {
	var bindings []key.Binding
	switch m.mode {
	case modeSearch:
		bindings = []key.Binding{m.keys.Open, m.keys.Cancel}
	case modeForm:
		bindings = []key.Binding{m.keys.NextTab, m.keys.NextCategory, m.keys.PrevCategory, m.keys.Submit, m.keys.Cancel}
	default:
		bindings = m.keys.browseHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " · ")
}
