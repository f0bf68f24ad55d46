package viewer

import (
	"context"
	"time"
)

// MessageKind selects how a banner is styled.
type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageSuccess
	MessageValidation
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageSuccess:
		return "success"
	case MessageValidation:
		return "validation"
	case MessageError:
		return "error"
	default:
		return "info"
	}
}

// TransientMessageTTL is how long a non-persistent banner stays visible.
const TransientMessageTTL = 3 * time.Second

// Message is a banner shown to the user. Persistent messages stay until
// dismissed; when Retry is set the banner offers to re-run the failed
// workflow.
type Message struct {
	Kind       MessageKind
	Text       string
	Persistent bool
	Retry      func(ctx context.Context) error
	ShownAt    time.Time
}

// Expired reports whether a transient message has outlived its TTL.
func (m *Message) Expired(now time.Time) bool {
	return !m.Persistent && now.Sub(m.ShownAt) >= TransientMessageTTL
}

// CanRetry reports whether the banner carries a retry action.
func (m *Message) CanRetry() bool {
	return m.Retry != nil
}
