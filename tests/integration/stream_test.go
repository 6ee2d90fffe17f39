//go:build integration

package integration

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseEvent is one parsed event from the stream.
type sseEvent struct {
	Type string
	Data string
}

// readSSE reads events from the stream into the channel until the body
// is closed.
func readSSE(body *bufio.Reader, events chan<- sseEvent) {
	var current sseEvent
	for {
		line, err := body.ReadString('\n')
		if err != nil {
			close(events)
			return
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			events <- current
			current = sseEvent{}
		case strings.HasPrefix(line, "event: "):
			current.Type = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.Data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func waitForEvent(t *testing.T, events <-chan sseEvent, eventType string) sseEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("stream closed before %s event", eventType)
			}
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}

func openStream(t *testing.T, slug string) <-chan sseEvent {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, testServer.URL+"/api/v1/pages/"+slug+"/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan sseEvent, 16)
	go readSSE(bufio.NewReader(resp.Body), events)
	return events
}

func TestStream_SnapshotFirst(t *testing.T) {
	client := newTestClient(t)
	_, slug := createTestPage(t, client, "Streaming")
	createTestComponent(t, client, slug, "API")

	events := openStream(t, slug)

	snapshot := waitForEvent(t, events, "snapshot")

	var payload struct {
		Payload struct {
			OverallStatus string                   `json:"overall_status"`
			Components    []map[string]interface{} `json:"components"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(snapshot.Data), &payload))
	assert.Equal(t, "operational", payload.Payload.OverallStatus)
	assert.Len(t, payload.Payload.Components, 1)
}

func TestStream_ReceivesComponentStatusChange(t *testing.T) {
	client := newTestClient(t)
	_, slug := createTestPage(t, client, "Streaming")
	componentID := createTestComponent(t, client, slug, "API")

	events := openStream(t, slug)
	waitForEvent(t, events, "snapshot")

	resp, err := client.PATCH("/api/v1/components/"+componentID+"/status", map[string]interface{}{
		"status": "degraded",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	ev := waitForEvent(t, events, "component_status_changed")
	assert.Contains(t, ev.Data, componentID)
	assert.Contains(t, ev.Data, "degraded")
}

func TestStream_IncidentEvents(t *testing.T) {
	client := newTestClient(t)
	_, slug := createTestPage(t, client, "Streaming")

	events := openStream(t, slug)
	waitForEvent(t, events, "snapshot")

	incidentID := createTestIncident(t, client, slug, "Outage", "critical")

	created := waitForEvent(t, events, "incident_created")
	assert.Contains(t, created.Data, `"major_outage"`)

	resp := appendUpdate(t, client, incidentID, "resolved", "All clear")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	waitForEvent(t, events, "incident_updated")
	resolved := waitForEvent(t, events, "incident_resolved")
	assert.Contains(t, resolved.Data, "All clear")
}

func TestStream_IsolatedPerPage(t *testing.T) {
	client := newTestClient(t)
	_, slugA := createTestPage(t, client, "Page A")
	_, slugB := createTestPage(t, client, "Page B")

	eventsA := openStream(t, slugA)
	waitForEvent(t, eventsA, "snapshot")

	// Activity on page B must not reach page A's stream.
	createTestIncident(t, client, slugB, "B only", "minor")

	select {
	case ev, ok := <-eventsA:
		if ok {
			t.Fatalf("page A stream received %s for page B activity", ev.Type)
		}
	case <-time.After(500 * time.Millisecond):
	}
}

func TestStream_UnknownPage(t *testing.T) {
	resp, err := http.Get(testServer.URL + "/api/v1/pages/does-not-exist/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
