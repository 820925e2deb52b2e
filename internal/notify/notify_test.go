package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Send(_ context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMulti_FansOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	multi := NewMulti(a, b)

	err := multi.Send(context.Background(), Event{Milestone: "gateway.created", Session: "demo"})
	require.NoError(t, err)
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "gateway.created", a.events[0].Milestone)
}

func TestMulti_DefaultsSeverityAndTimestamp(t *testing.T) {
	a := &recordingNotifier{}
	multi := NewMulti(a)

	require.NoError(t, multi.Send(context.Background(), Event{Milestone: "gateway.created"}))
	require.Len(t, a.events, 1)
	assert.Equal(t, SeverityInfo, a.events[0].Severity)
	assert.False(t, a.events[0].Timestamp.IsZero())
}

func TestMulti_SwallowsChannelFailures(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("smtp down")}
	working := &recordingNotifier{}
	multi := NewMulti(failing, working)

	err := multi.Send(context.Background(), Event{Milestone: "gateway.deleted"})
	assert.NoError(t, err)
	assert.Len(t, working.events, 1, "later channels must still receive the event")
}

func TestMulti_NoChannels(t *testing.T) {
	multi := NewMulti()
	assert.NoError(t, multi.Send(context.Background(), Event{Milestone: "gateway.created"}))
}

func TestWebhook_PostsJSON(t *testing.T) {
	var received Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hook := NewWebhook(server.URL)
	err := hook.Send(context.Background(), Event{
		Milestone: "gateway.verified",
		Session:   "demo",
		Severity:  SeverityInfo,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]string{"instance": "i-0456"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gateway.verified", received.Milestone)
	assert.Equal(t, "i-0456", received.Fields["instance"])
}

func TestWebhook_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	hook := NewWebhook(server.URL)
	err := hook.Send(context.Background(), Event{Milestone: "gateway.failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFormatBody(t *testing.T) {
	body := formatBody(Event{
		Milestone: "gateway.created",
		Session:   "demo",
		Severity:  SeverityInfo,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Detail:    "instance i-0456 is reachable",
	})
	assert.Contains(t, body, "gateway.created")
	assert.Contains(t, body, "demo")
	assert.Contains(t, body, "i-0456")
}
