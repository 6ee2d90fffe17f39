package domain

import "time"

// IncidentStatus represents the lifecycle status of an incident.
type IncidentStatus string

// Incident statuses. The canonical workflow runs from investigating
// through identified and monitoring to resolved, but out-of-order
// transitions are accepted.
const (
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusIdentified    IncidentStatus = "identified"
	IncidentStatusMonitoring    IncidentStatus = "monitoring"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusInvestigating, IncidentStatusIdentified,
		IncidentStatusMonitoring, IncidentStatusResolved:
		return true
	}
	return false
}

// IsResolved checks if the status represents a resolved state.
func (s IncidentStatus) IsResolved() bool {
	return s == IncidentStatusResolved
}

// IncidentSeverity represents the severity of an incident. Severity is
// set once at creation and never changes.
type IncidentSeverity string

// Severity levels.
const (
	SeverityMinor    IncidentSeverity = "minor"
	SeverityMajor    IncidentSeverity = "major"
	SeverityCritical IncidentSeverity = "critical"
)

// IsValid checks if the severity is valid.
func (s IncidentSeverity) IsValid() bool {
	return s == SeverityMinor || s == SeverityMajor || s == SeverityCritical
}

// Incident represents a reported service disruption on a status page.
type Incident struct {
	ID           string           `json:"id"`
	PageID       string           `json:"page_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Severity     IncidentSeverity `json:"severity"`
	Status       IncidentStatus   `json:"status"`
	ComponentIDs []string         `json:"component_ids"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	ResolvedAt   *time.Time       `json:"resolved_at,omitempty"`
	Updates      []IncidentUpdate `json:"updates,omitempty"`
}

// IsActive reports whether the incident still affects the page's
// overall status.
func (i *Incident) IsActive() bool {
	return !i.Status.IsResolved()
}

// IncidentUpdate is an immutable entry in an incident's update log.
// The Status field is a snapshot of the incident's status at the time
// the update was appended.
type IncidentUpdate struct {
	ID         string         `json:"id"`
	IncidentID string         `json:"incident_id"`
	Status     IncidentStatus `json:"status"`
	Message    string         `json:"message"`
	CreatedAt  time.Time      `json:"created_at"`
}
