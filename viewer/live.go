package viewer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
)

// LiveState is the connection state of the live update relay.
type LiveState int

const (
	LiveDisconnected LiveState = iota
	LiveConnecting
	LiveConnected
)

func (s LiveState) String() string {
	switch s {
	case LiveConnecting:
		return "connecting"
	case LiveConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// newIssueEvent is the SSE event name carrying a freshly created issue.
const newIssueEvent = "new_issue"

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// Relay keeps a connection to the server's live stream and hands every
// new issue to the viewer. Events sent while disconnected are not replayed;
// a later Refresh recovers them.
type Relay struct {
	streamURL  string
	viewer     *Viewer
	httpClient *http.Client
	minDelay   time.Duration
	maxDelay   time.Duration
}

func NewRelay(streamURL string, v *Viewer) *Relay {
	return &Relay{
		streamURL:  streamURL,
		viewer:     v,
		httpClient: &http.Client{},
		minDelay:   minReconnectDelay,
		maxDelay:   maxReconnectDelay,
	}
}

// Run connects and reconnects with exponential backoff until ctx is done.
// Connection failures are only logged.
func (r *Relay) Run(ctx context.Context) {
	delay := r.minDelay
	for {
		connected, err := r.connect(ctx)
		r.viewer.setLiveState(LiveDisconnected)
		if ctx.Err() != nil {
			return
		}
		if connected {
			delay = r.minDelay
		}
		logger.Warn().Err(err).Dur("retry_in", delay).Msg("Live connection lost")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
}

// connect holds one stream open and reports whether it ever got connected.
func (r *Relay) connect(ctx context.Context) (bool, error) {
	r.viewer.setLiveState(LiveConnecting)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.streamURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("live stream returned %d", resp.StatusCode)
	}

	r.viewer.setLiveState(LiveConnected)
	logger.Info().Str("url", r.streamURL).Msg("Live updates connected")

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var block bytes.Buffer
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 {
			block.Write(line)
			block.WriteByte('\n')
			continue
		}
		if block.Len() > 0 {
			r.dispatch(block.Bytes())
			block.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return true, err
	}
	return true, errors.New("live stream closed by server")
}

func (r *Relay) dispatch(block []byte) {
	events, err := sse.Decode(bytes.NewReader(block))
	if err != nil {
		logger.Debug().Err(err).Msg("Skipping undecodable live event")
		return
	}

	for _, e := range events {
		if e.Event != newIssueEvent {
			continue
		}
		data, _ := e.Data.(string)

		var issue Issue
		if err := json.Unmarshal([]byte(data), &issue); err != nil {
			logger.Warn().Err(err).Msg("Skipping malformed new_issue payload")
			continue
		}
		r.viewer.HandleLiveIssue(issue)
	}
}
