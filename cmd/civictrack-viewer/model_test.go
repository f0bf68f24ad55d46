package main

import (
	"context"
	"testing"

	"civictrack/mocks"
	"civictrack/models"
	"civictrack/viewer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestModel(t *testing.T, backend viewer.Backend) (model, *viewer.Viewer) {
	t.Helper()
	v := viewer.New(backend, viewer.Config{})
	t.Cleanup(v.Close)
	require.NoError(t, v.SetCenter(context.Background(), viewer.LatLng{Lat: 12.9716, Lng: 77.5946}, viewer.DefaultZoom))
	return newModel(context.Background(), v), v
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyCtrlN}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, c := m.Update(msg)
		m, cmd = updated.(model), c
	}
	return m, cmd
}

func issue(id viewer.IssueID, title string) viewer.Issue {
	return viewer.Issue{
		ID: id, Title: title, Category: models.Roads, Status: models.Reported,
		Latitude:  viewer.Coordinate{Value: 12.97, Valid: true},
		Longitude: viewer.Coordinate{Value: 77.59, Valid: true},
	}
}

func TestRefreshKeyFetchesAndRenders(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().FetchIssues(gomock.Any(), gomock.Any()).Return([]viewer.Issue{issue("1", "Pothole")}, nil)

	m, _ := newTestModel(t, backend)
	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)

	updated, _ := m.Update(cmd())
	m = updated.(model)

	view := m.View()
	assert.Contains(t, view, "Pothole")
	assert.Contains(t, view, "Loaded 1 issues")
}

func TestReportFormSubmits(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().
		CreateIssue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req viewer.CreateIssueRequest) (viewer.Issue, error) {
			assert.Equal(t, "Leak", req.Title)
			assert.Equal(t, "Pipe", req.Description)
			assert.Equal(t, models.Roads, req.Category)
			return issue("2", req.Title), nil
		})

	m, v := newTestModel(t, backend)
	m, _ = press(t, m, "n")
	assert.Equal(t, modeForm, m.mode)

	m, _ = press(t, m, "L", "e", "a", "k", "tab", "P", "i", "p", "e", "ctrl+n")
	form := v.Snapshot().Form
	assert.Equal(t, "Leak", form.Title)
	assert.Equal(t, "Pipe", form.Description)
	assert.Equal(t, models.Roads, form.Category)
	assert.Contains(t, m.View(), "4 / 300")

	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	m = updated.(model)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.title.Value())
	assert.Equal(t, viewer.IssueID("2"), v.Snapshot().Session.SelectedMarkerID)
	assert.Contains(t, m.View(), "Issue reported successfully!")
}

func TestIncompleteReportStaysInForm(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, _ := newTestModel(t, mocks.NewMockBackend(ctrl))

	m, _ = press(t, m, "n", "X")
	m, cmd := press(t, m, "ctrl+s")
	updated, _ := m.Update(cmd())
	m = updated.(model)

	assert.Equal(t, modeForm, m.mode)
	assert.Contains(t, m.View(), "Please fill in title, description and category")
}

func TestThemeKeyToggles(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, v := newTestModel(t, mocks.NewMockBackend(ctrl))

	m, _ = press(t, m, "t")
	assert.Equal(t, viewer.ThemeLight, v.Snapshot().Session.Theme)
	assert.Contains(t, m.View(), "theme: light")
}

func TestSearchModeEscapes(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, _ := newTestModel(t, mocks.NewMockBackend(ctrl))

	m, _ = press(t, m, "/")
	assert.Equal(t, modeSearch, m.mode)
	m, _ = press(t, m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
}

func TestCycleHelpers(t *testing.T) {
	assert.Equal(t, models.Reported, nextStatus(""))
	assert.Equal(t, models.InProgress, nextStatus(models.Reported))
	assert.Equal(t, models.IssueStatus(""), nextStatus(models.Resolved))

	assert.Equal(t, models.Roads, nextCategory("", true))
	assert.Equal(t, models.IssueCategory(""), nextCategory(models.Roads, false))
	assert.Equal(t, models.Obstructions, nextCategory("", false))

	assert.Equal(t, 10.0, stepRadius(5, 1))
	assert.Equal(t, 2.0, stepRadius(5, -1))
	assert.Equal(t, 50.0, stepRadius(50, 1))
	assert.Equal(t, 1.0, stepRadius(1, -1))
}
