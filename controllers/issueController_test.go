package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civictrack/mocks"
	"civictrack/models"
	"civictrack/services"
	"civictrack/store"
	"civictrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
}

type recordingPublisher struct {
	issues []models.Issue
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, issue models.Issue) error {
	p.issues = append(p.issues, issue)
	return p.err
}

func (p *recordingPublisher) PublishIssueCreated(_ context.Context, issue models.Issue) error {
	p.issues = append(p.issues, issue)
	return p.err
}

func noLimit(c *gin.Context) { c.Next() }

func newIssueRouter(ic *IssueController) *gin.Engine {
	r := gin.New()
	r.GET("/api/issues", noLimit, ic.ListIssues)
	r.POST("/api/issues", noLimit, ic.CreateIssue)
	r.GET("/api/issues/:id", noLimit, ic.GetIssue)
	r.GET("/api/categories", ic.Categories)
	return r
}

func TestListIssuesDefaults(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockIssueStore(ctrl)
	mockStore.EXPECT().
		FindNearby(gomock.Any(), models.Filter{
			Latitude:  models.DefaultLatitude,
			Longitude: models.DefaultLongitude,
			RadiusKm:  models.DefaultRadiusKm,
		}).
		Return(nil, nil)

	w := httptest.NewRecorder()
	newIssueRouter(&IssueController{Store: mockStore}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/issues", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListIssuesWithFilters(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockIssueStore(ctrl)
	mockStore.EXPECT().
		FindNearby(gomock.Any(), models.Filter{
			Latitude: 12.97, Longitude: 77.59, RadiusKm: 2.5,
			Status: models.Reported, Category: models.Roads,
		}).
		Return([]models.Issue{{ID: "1", Title: "Pothole", Category: models.Roads, Latitude: 12.97, Longitude: 77.59, Status: models.Reported}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/issues?lat=12.97&lng=77.59&radius=2.5&status=reported&category=roads", nil)
	newIssueRouter(&IssueController{Store: mockStore}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var issues []models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "Pothole", issues[0].Title)
}

func TestListIssuesInvalidParameters(t *testing.T) {
	t.Parallel()

	queries := []string{
		"lat=abc",
		"lat=95",
		"lng=NaN",
		"radius=0",
		"radius=-3",
		"status=closed",
		"category=parks",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockStore := mocks.NewMockIssueStore(ctrl)

			w := httptest.NewRecorder()
			newIssueRouter(&IssueController{Store: mockStore}).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/issues?"+query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid parameters"}`, w.Body.String())
		})
	}
}

func TestListIssuesStoreError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockIssueStore(ctrl)
	mockStore.EXPECT().FindNearby(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	w := httptest.NewRecorder()
	newIssueRouter(&IssueController{Store: mockStore}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/issues", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/issues", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateIssue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockIssueStore(ctrl)
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	mockStore.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, issue *models.Issue) error {
			assert.Equal(t, "Broken light", issue.Title)
			assert.Equal(t, models.Lighting, issue.Category)
			assert.Equal(t, models.Reported, issue.Status)
			assert.Equal(t, "MG Road", issue.Address)
			issue.ID = "2"
			issue.CreatedAt = created
			return nil
		})

	broadcaster := &recordingPublisher{}
	events := &recordingPublisher{err: assert.AnError}
	r := newIssueRouter(&IssueController{Store: mockStore, Broadcaster: broadcaster, Events: events})

	w := postJSON(r, `{"title":" Broken light ","description":"Dark street","category":"lighting","latitude":12.97,"longitude":77.59,"address":"MG Road"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var issue models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Equal(t, "2", issue.ID)
	assert.Equal(t, created, issue.CreatedAt)

	require.Len(t, broadcaster.issues, 1)
	assert.Equal(t, "2", broadcaster.issues[0].ID)
	// A failing event export does not fail the request.
	assert.Len(t, events.issues, 1)
}

func TestCreateIssueValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "MissingTitle",
			body:    `{"description":"d","category":"roads","latitude":1,"longitude":2}`,
			wantErr: "Missing required fields",
		},
		{
			name:    "BlankDescription",
			body:    `{"title":"t","description":"   ","category":"roads","latitude":1,"longitude":2}`,
			wantErr: "Missing required fields",
		},
		{
			name:    "MissingLongitude",
			body:    `{"title":"t","description":"d","category":"roads","latitude":1}`,
			wantErr: "Missing required fields",
		},
		{
			name:    "UnknownCategory",
			body:    `{"title":"t","description":"d","category":"parks","latitude":1,"longitude":2}`,
			wantErr: "Invalid category. Must be one of: roads, water, garbage, lighting, safety, obstructions",
		},
		{
			name:    "OutOfRange",
			body:    `{"title":"t","description":"d","category":"roads","latitude":91,"longitude":2}`,
			wantErr: "Coordinates out of valid range (-90 to 90 lat, -180 to 180 lng)",
		},
		{
			name:    "NotJSON",
			body:    `title=t`,
			wantErr: "Invalid request body",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockStore := mocks.NewMockIssueStore(ctrl)
			broadcaster := &recordingPublisher{}

			w := postJSON(newIssueRouter(&IssueController{Store: mockStore, Broadcaster: broadcaster}), testCase.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, testCase.wantErr, body["error"])
			assert.Empty(t, broadcaster.issues)
		})
	}
}

func TestCreateIssueStoreFailureDoesNotBroadcast(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockIssueStore(ctrl)
	mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)
	broadcaster := &recordingPublisher{}

	w := postJSON(newIssueRouter(&IssueController{Store: mockStore, Broadcaster: broadcaster}),
		`{"title":"t","description":"d","category":"roads","latitude":1,"longitude":2}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, broadcaster.issues)
}

func TestGetIssue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockIssueStore(ctrl)
	mockStore.EXPECT().FindByID(gomock.Any(), "abc").Return(&models.Issue{ID: "abc", Title: "Leak"}, nil)
	mockStore.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, store.ErrNotFound)
	r := newIssueRouter(&IssueController{Store: mockStore})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/issues/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Leak"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/issues/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategories(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newIssueRouter(&IssueController{}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Categories []struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		} `json:"categories"`
		DefaultColor string `json:"default_color"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Categories, len(models.Categories))
	assert.Equal(t, "roads", body.Categories[0].Name)
	assert.Equal(t, "#ff7a29", body.Categories[0].Color)
	assert.Equal(t, models.DefaultMarkerColor, body.DefaultColor)
}

var _ services.Broadcaster = (*recordingPublisher)(nil)
var _ services.EventPublisher = (*recordingPublisher)(nil)
