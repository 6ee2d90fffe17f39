package incidents

import (
	"context"

	"github.com/statusloops/statusloops/internal/domain"
)

// Repository defines the interface for incident storage. Multi-step
// writes (incident plus component associations, update plus status
// roll-up) are atomic inside the implementation so the store exposes
// only whole operations.
type Repository interface {
	// CreateIncident persists a new incident together with its affected
	// component associations.
	CreateIncident(ctx context.Context, incident *domain.Incident) error

	// AppendUpdate atomically appends an update to the incident's log
	// and applies the status change to the incident row. The resolved
	// timestamp is stamped once on entering resolved and cleared on
	// leaving it; re-resolving does not re-stamp. Returns the incident
	// as stored after the change.
	AppendUpdate(ctx context.Context, update *domain.IncidentUpdate) (*domain.Incident, error)

	GetIncident(ctx context.Context, id string) (*domain.Incident, error)
	ListIncidentsByPage(ctx context.Context, pageID string, filter Filter) ([]domain.Incident, error)
	ListActiveByPage(ctx context.Context, pageID string) ([]domain.Incident, error)
	ListRecentResolved(ctx context.Context, pageID string, limit int) ([]domain.Incident, error)
	ListUpdates(ctx context.Context, incidentID string) ([]domain.IncidentUpdate, error)
}

// Filter holds filter options for listing incidents.
type Filter struct {
	Status *domain.IncidentStatus
	Limit  int
	Offset int
}
