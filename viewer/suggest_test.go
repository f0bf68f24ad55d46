package viewer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"civictrack/mocks"
	"civictrack/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testDebounce = 30 * time.Millisecond

var mgRoad = viewer.Suggestion{Label: "MG Road, Bengaluru", Position: viewer.LatLng{Lat: 12.975, Lng: 77.606}}

func TestTypingIsDebounced(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().SearchAddress(gomock.Any(), "MG Road").Return([]viewer.Suggestion{mgRoad}, nil)

	v := newCentered(t, backend, viewer.Config{Debounce: testDebounce})

	v.TypeAddress("MG")
	v.TypeAddress("MG Ro")
	v.TypeAddress("MG Road")

	waitFor(t, func() bool { return v.Snapshot().SuggestionsVisible })
	assert.Equal(t, []viewer.Suggestion{mgRoad}, v.Snapshot().Suggestions)
}

func TestSuggestionsAreCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	many := make([]viewer.Suggestion, 8)
	for i := range many {
		many[i] = mgRoad
	}
	backend.EXPECT().SearchAddress(gomock.Any(), "MG Road").Return(many, nil)

	v := newCentered(t, backend, viewer.Config{Debounce: testDebounce})
	v.TypeAddress("MG Road")

	waitFor(t, func() bool { return v.Snapshot().SuggestionsVisible })
	assert.Len(t, v.Snapshot().Suggestions, viewer.MaxSuggestions)
}

func TestEmptyAddressHidesWithoutSearching(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().SearchAddress(gomock.Any(), "MG Road").Return([]viewer.Suggestion{mgRoad}, nil)

	v := newCentered(t, backend, viewer.Config{Debounce: testDebounce})
	v.TypeAddress("MG Road")
	waitFor(t, func() bool { return v.Snapshot().SuggestionsVisible })

	v.TypeAddress("   ")
	assert.False(t, v.Snapshot().SuggestionsVisible)
	assert.Empty(t, v.Snapshot().Suggestions)

	time.Sleep(3 * testDebounce)
}

func TestSearchFailureIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	searched := make(chan struct{})
	backend.EXPECT().SearchAddress(gomock.Any(), "nowhere").
		DoAndReturn(func(context.Context, string) ([]viewer.Suggestion, error) {
			defer close(searched)
			return nil, errors.New("geocoder down")
		})

	v := newCentered(t, backend, viewer.Config{Debounce: testDebounce})
	events := record(v)
	v.TypeAddress("nowhere")

	<-searched
	waitFor(t, func() bool { return len(events.of(viewer.SuggestionsUpdated)) == 1 })

	snap := v.Snapshot()
	assert.False(t, snap.SuggestionsVisible)
	assert.Nil(t, snap.Message)
}

func TestSelectSuggestionAttachesAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().SearchAddress(gomock.Any(), "MG Road").Return([]viewer.Suggestion{mgRoad}, nil)
	var submitted viewer.CreateIssueRequest
	backend.EXPECT().CreateIssue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req viewer.CreateIssueRequest) (viewer.Issue, error) {
			submitted = req
			return pothole("4"), nil
		})

	v := newCentered(t, backend, viewer.Config{Debounce: testDebounce})
	events := record(v)
	v.TypeAddress("MG Road")
	waitFor(t, func() bool { return v.Snapshot().SuggestionsVisible })

	require.NoError(t, v.SelectSuggestion(context.Background(), 0))

	snap := v.Snapshot()
	assert.False(t, snap.SuggestionsVisible)
	assert.Equal(t, mgRoad.Label, snap.Form.Address)
	assert.Equal(t, mgRoad.Label, snap.SelectedAddress)
	require.NotNil(t, snap.Center)
	assert.Equal(t, mgRoad.Position, *snap.Center)
	assert.Equal(t, viewer.SelectionZoom, snap.Zoom)
	assert.Len(t, events.of(viewer.SuggestionSelected), 1)

	fillForm(v)
	require.NoError(t, v.Submit(context.Background()))
	assert.Equal(t, mgRoad.Label, submitted.Address)
	assert.Equal(t, mgRoad.Position.Lat, submitted.Latitude)
	assert.Equal(t, mgRoad.Position.Lng, submitted.Longitude)
	assert.Empty(t, v.Snapshot().SelectedAddress)
}

func TestClickOutsideHidesSuggestions(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().SearchAddress(gomock.Any(), "MG Road").Return([]viewer.Suggestion{mgRoad}, nil)

	v := newCentered(t, backend, viewer.Config{Debounce: testDebounce})
	v.TypeAddress("MG Road")
	waitFor(t, func() bool { return v.Snapshot().SuggestionsVisible })

	v.ClickOutside()
	assert.False(t, v.Snapshot().SuggestionsVisible)
	assert.NoError(t, v.SelectSuggestion(context.Background(), 0))
	assert.NotEqual(t, mgRoad.Label, v.Snapshot().SelectedAddress)
}

func TestClickMapFillsAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	at := viewer.LatLng{Lat: 12.98, Lng: 77.6}
	backend.EXPECT().ReverseGeocode(gomock.Any(), at).
		Return(viewer.Suggestion{Label: "Cubbon Park", Position: at}, nil)

	v := newCentered(t, backend, viewer.Config{})
	events := record(v)

	require.NoError(t, v.ClickMap(context.Background(), at))

	snap := v.Snapshot()
	assert.Equal(t, at, *snap.Center)
	assert.Equal(t, "Cubbon Park", snap.Form.Address)
	assert.Equal(t, "Cubbon Park", snap.SelectedAddress)
	assert.Len(t, events.of(viewer.MapClicked), 1)
}

func TestClickMapLookupFailureKeepsAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().ReverseGeocode(gomock.Any(), gomock.Any()).
		Return(viewer.Suggestion{}, errors.New("no address"))

	v := newCentered(t, backend, viewer.Config{})
	v.SetTitle("kept")

	require.NoError(t, v.ClickMap(context.Background(), viewer.LatLng{Lat: 1, Lng: 2}))

	snap := v.Snapshot()
	assert.Empty(t, snap.Form.Address)
	assert.Equal(t, "kept", snap.Form.Title)
	assert.Nil(t, snap.Message)
}

func TestClickMapLooksUpAddressWhenDeferredFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	at := viewer.LatLng{Lat: 12.98, Lng: 77.6}
	backend.EXPECT().FetchIssues(gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))
	backend.EXPECT().ReverseGeocode(gomock.Any(), at).
		Return(viewer.Suggestion{Label: "Cubbon Park", Position: at}, nil)

	v := viewer.New(backend, viewer.Config{})
	t.Cleanup(v.Close)
	assert.ErrorIs(t, v.Refresh(context.Background()), viewer.ErrMapNotReady)

	assert.Error(t, v.ClickMap(context.Background(), at))

	snap := v.Snapshot()
	assert.Equal(t, "Cubbon Park", snap.Form.Address)
	assert.Equal(t, "Cubbon Park", snap.SelectedAddress)
	require.NotNil(t, snap.Message)
	assert.Equal(t, "Failed to load issues", snap.Message.Text)
	assert.True(t, snap.Message.CanRetry())
}
