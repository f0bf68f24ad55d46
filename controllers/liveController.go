package controllers

import (
	"io"
	"time"

	"civictrack/services"

	"github.com/gin-gonic/gin"
)

// NewIssueEvent is the live-channel event name for freshly created issues.
const NewIssueEvent = "new_issue"

// LiveController streams new issues to connected viewers over SSE.
type LiveController struct {
	Hub       *services.Hub
	Heartbeat time.Duration
}

// Stream holds the connection open and writes one new_issue event per issue
// until the client goes away.
func (lc *LiveController) Stream(c *gin.Context) {
	heartbeat := lc.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}

	id, issues := lc.Hub.Subscribe()
	defer lc.Hub.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	// Flush headers so the client sees the connection as established.
	_, _ = io.WriteString(c.Writer, ": connected\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case issue, ok := <-issues:
			if !ok {
				return false
			}
			c.SSEvent(NewIssueEvent, issue)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
}
