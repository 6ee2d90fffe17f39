// Package realtime provides group-based fan-out of status page events
// to live subscribers.
package realtime

import (
	"time"

	"github.com/statusloops/statusloops/internal/domain"
)

// EventType identifies the kind of a broadcast event.
type EventType string

// Event types.
const (
	EventComponentStatusChanged EventType = "component_status_changed"
	EventIncidentCreated        EventType = "incident_created"
	EventIncidentUpdated        EventType = "incident_updated"
	EventIncidentResolved       EventType = "incident_resolved"

	// EventSnapshot is sent once per stream connection before live
	// events, carrying the full page projection.
	EventSnapshot EventType = "snapshot"
)

// Event is a single broadcast message scoped to one status page.
type Event struct {
	Type        EventType `json:"type"`
	PageID      string    `json:"page_id"`
	Payload     any       `json:"payload"`
	PublishedAt time.Time `json:"published_at"`
}

// ComponentStatusPayload carries a component status change.
type ComponentStatusPayload struct {
	ComponentID string                 `json:"component_id"`
	Status      domain.ComponentStatus `json:"status"`
	ChangedAt   time.Time              `json:"changed_at"`
}

// IncidentPayload carries an incident lifecycle event together with the
// page's recomputed overall status, so viewers stay current without
// repolling.
type IncidentPayload struct {
	Incident      *domain.Incident  `json:"incident"`
	OverallStatus domain.PageStatus `json:"overall_status"`
	Message       string            `json:"message,omitempty"`
}

// NewComponentStatusChanged builds a component_status_changed event.
func NewComponentStatusChanged(c *domain.Component) Event {
	return Event{
		Type:   EventComponentStatusChanged,
		PageID: c.PageID,
		Payload: ComponentStatusPayload{
			ComponentID: c.ID,
			Status:      c.Status,
			ChangedAt:   c.UpdatedAt,
		},
		PublishedAt: time.Now(),
	}
}

// NewIncidentCreated builds an incident_created event.
func NewIncidentCreated(inc *domain.Incident, overall domain.PageStatus) Event {
	return Event{
		Type:        EventIncidentCreated,
		PageID:      inc.PageID,
		Payload:     IncidentPayload{Incident: inc, OverallStatus: overall},
		PublishedAt: time.Now(),
	}
}

// NewIncidentUpdated builds an incident_updated event.
func NewIncidentUpdated(inc *domain.Incident, overall domain.PageStatus) Event {
	return Event{
		Type:        EventIncidentUpdated,
		PageID:      inc.PageID,
		Payload:     IncidentPayload{Incident: inc, OverallStatus: overall},
		PublishedAt: time.Now(),
	}
}

// NewSnapshot builds the snapshot event sent once per stream
// connection before live events.
func NewSnapshot(pageID string, payload any) Event {
	return Event{
		Type:        EventSnapshot,
		PageID:      pageID,
		Payload:     payload,
		PublishedAt: time.Now(),
	}
}

// NewIncidentResolved builds an incident_resolved event carrying the
// resolution message. It is emitted in addition to incident_updated
// when a transition enters the resolved state.
func NewIncidentResolved(inc *domain.Incident, overall domain.PageStatus, message string) Event {
	return Event{
		Type:        EventIncidentResolved,
		PageID:      inc.PageID,
		Payload:     IncidentPayload{Incident: inc, OverallStatus: overall, Message: message},
		PublishedAt: time.Now(),
	}
}
