// Package notify delivers lifecycle milestone events to the operator.
//
// Delivery is best effort: a failed notification is logged and dropped,
// it never fails the lifecycle operation that produced it.
package notify

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
)

// Severity classifies an event for the receiving side.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Event is one lifecycle milestone worth telling the operator about.
type Event struct {
	Milestone string            `json:"milestone"` // e.g. "gateway.created"
	Session   string            `json:"session"`
	Detail    string            `json:"detail"`
	Severity  Severity          `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Notifier delivers a single event to one channel.
type Notifier interface {
	Send(ctx context.Context, event Event) error
}

// Multi fans an event out to every configured channel. With no channels
// configured it is a no-op, so callers never need a nil check.
type Multi struct {
	notifiers []Notifier
}

// NewMulti builds a fan-out notifier over the given channels.
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Send delivers the event to all channels. Failures are logged per
// channel and swallowed.
func (m *Multi) Send(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	log := clog.FromContext(ctx)
	for _, n := range m.notifiers {
		if err := n.Send(ctx, event); err != nil {
			log.Error("notification failed", "milestone", event.Milestone, "error", err)
		}
	}
	return nil
}
