package viewer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"civictrack/mocks"
	"civictrack/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func liveServer(t *testing.T, payloads ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, ": connected\n\n")
		fmt.Fprint(w, "event:heartbeat\ndata:ignored\n\n")
		for _, p := range payloads {
			fmt.Fprintf(w, "event:new_issue\ndata:%s\n\n", p)
		}
		flusher.Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRelayDeliversNewIssues(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := newCentered(t, mocks.NewMockBackend(ctrl), viewer.Config{})
	events := record(v)

	srv := liveServer(t,
		`{"id":"a1","title":"Flooded underpass","category":"water","latitude":12.96,"longitude":77.58,"status":"reported"}`,
		`{"id":"a1","title":"Flooded underpass","category":"water","latitude":12.96,"longitude":77.58,"status":"in_progress"}`,
		`not json`,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		viewer.NewRelay(srv.URL, v).Run(ctx)
	}()

	waitFor(t, func() bool { return len(events.of(viewer.IssueCreated)) == 2 })

	snap := v.Snapshot()
	require.Len(t, snap.Markers, 1)
	assert.Equal(t, "#2b9bf4", snap.Markers[0].Color)
	assert.Equal(t, "in_progress", string(snap.Markers[0].Issue.Status))
	assert.Equal(t, "New issue reported: Flooded underpass", snap.Message.Text)
	assert.Equal(t, viewer.LiveConnected, snap.LiveState)

	cancel()
	<-done
	assert.Equal(t, viewer.LiveDisconnected, v.Snapshot().LiveState)

	states := events.of(viewer.LiveStateChanged)
	require.GreaterOrEqual(t, len(states), 3)
	assert.Equal(t, viewer.LiveConnecting, states[0].LiveState)
	assert.Equal(t, viewer.LiveConnected, states[1].LiveState)
	assert.Equal(t, viewer.LiveDisconnected, states[len(states)-1].LiveState)
}

func TestRelayStopsWhileUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := newCentered(t, mocks.NewMockBackend(ctrl), viewer.Config{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		viewer.NewRelay(srv.URL, v).Run(ctx)
	}()

	waitFor(t, func() bool { return v.Snapshot().LiveState == viewer.LiveDisconnected })
	cancel()
	<-done

	snap := v.Snapshot()
	assert.Equal(t, viewer.LiveDisconnected, snap.LiveState)
	assert.Nil(t, snap.Message)
	assert.Empty(t, snap.Markers)
}

func TestLiveStateString(t *testing.T) {
	assert.Equal(t, "disconnected", viewer.LiveDisconnected.String())
	assert.Equal(t, "connecting", viewer.LiveConnecting.String())
	assert.Equal(t, "connected", viewer.LiveConnected.String())
}
