package domain

import "time"

// ComponentStatus represents the discrete status of a monitored component.
type ComponentStatus string

// Component statuses.
const (
	ComponentStatusOperational   ComponentStatus = "operational"
	ComponentStatusDegraded      ComponentStatus = "degraded"
	ComponentStatusPartialOutage ComponentStatus = "partial_outage"
	ComponentStatusMajorOutage   ComponentStatus = "major_outage"
)

// IsValid checks if the component status is valid.
func (s ComponentStatus) IsValid() bool {
	switch s {
	case ComponentStatusOperational, ComponentStatusDegraded,
		ComponentStatusPartialOutage, ComponentStatusMajorOutage:
		return true
	}
	return false
}

// Component represents a monitored service unit on a status page.
type Component struct {
	ID          string          `json:"id"`
	PageID      string          `json:"page_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	GroupLabel  string          `json:"group_label,omitempty"`
	Status      ComponentStatus `json:"status"`
	Uptime      *float64        `json:"uptime,omitempty"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
