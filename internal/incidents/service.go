package incidents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/realtime"
)

// Broadcaster publishes events to the subscribers of a status page.
type Broadcaster interface {
	Publish(pageID string, ev realtime.Event)
}

// Service implements incident lifecycle business logic. All status
// changes, including resolution, flow through AppendUpdate: the update
// log is the single writer path, so there is no second mutation path to
// race with.
type Service struct {
	repo        Repository
	broadcaster Broadcaster
}

// NewService creates a new incident service.
func NewService(repo Repository, broadcaster Broadcaster) *Service {
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
	}
}

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	PageID       string
	Title        string
	Description  string
	Severity     domain.IncidentSeverity
	Status       domain.IncidentStatus
	ComponentIDs []string
}

// CreateIncident creates a new incident with an empty update log and
// publishes incident_created with the page's recomputed overall status.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	if !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeverity, input.Severity)
	}

	status := input.Status
	if status == "" {
		status = domain.IncidentStatusInvestigating
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	incident := &domain.Incident{
		PageID:       input.PageID,
		Title:        input.Title,
		Description:  input.Description,
		Severity:     input.Severity,
		Status:       status,
		ComponentIDs: input.ComponentIDs,
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	overall := s.overallStatus(ctx, incident.PageID)
	s.broadcaster.Publish(incident.PageID, realtime.NewIncidentCreated(incident, overall))

	return incident, nil
}

// AppendUpdateInput holds data for appending an incident update.
type AppendUpdateInput struct {
	IncidentID string
	Status     domain.IncidentStatus
	Message    string
}

// AppendUpdate appends an immutable entry to the incident's update log
// and sets the incident's current status. Entering resolved stamps
// resolved_at once (idempotent if already resolved); leaving resolved
// clears it. Publishes incident_updated, plus incident_resolved when
// the transition entered the resolved state.
func (s *Service) AppendUpdate(ctx context.Context, input AppendUpdateInput) (*domain.Incident, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, ErrMessageRequired
	}
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, input.Status)
	}

	// Existence check up front so unknown incidents fail before any
	// write. wasResolved drives the resolved-event decision below.
	before, err := s.repo.GetIncident(ctx, input.IncidentID)
	if err != nil {
		return nil, fmt.Errorf("get incident: %w", err)
	}
	wasResolved := before.Status.IsResolved()

	update := &domain.IncidentUpdate{
		IncidentID: input.IncidentID,
		Status:     input.Status,
		Message:    input.Message,
	}

	incident, err := s.repo.AppendUpdate(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("append update: %w", err)
	}

	overall := s.overallStatus(ctx, incident.PageID)
	s.broadcaster.Publish(incident.PageID, realtime.NewIncidentUpdated(incident, overall))

	if incident.Status.IsResolved() && !wasResolved {
		s.broadcaster.Publish(incident.PageID, realtime.NewIncidentResolved(incident, overall, input.Message))
	}

	return incident, nil
}

// GetIncident retrieves an incident by ID, including its update log.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	updates, err := s.repo.ListUpdates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	incident.Updates = updates

	return incident, nil
}

// ListIncidents retrieves a page's incidents with optional filters.
func (s *Service) ListIncidents(ctx context.Context, pageID string, filter Filter) ([]domain.Incident, error) {
	return s.repo.ListIncidentsByPage(ctx, pageID, filter)
}

// ListActiveByPage returns the page's non-resolved incidents. Input to
// the overall-status derivation and the public overview.
func (s *Service) ListActiveByPage(ctx context.Context, pageID string) ([]domain.Incident, error) {
	return s.repo.ListActiveByPage(ctx, pageID)
}

// ListRecentResolved returns the page's most recently resolved
// incidents for the public overview.
func (s *Service) ListRecentResolved(ctx context.Context, pageID string, limit int) ([]domain.Incident, error) {
	return s.repo.ListRecentResolved(ctx, pageID, limit)
}

// ListUpdates retrieves an incident's update log in append order.
func (s *Service) ListUpdates(ctx context.Context, incidentID string) ([]domain.IncidentUpdate, error) {
	if _, err := s.repo.GetIncident(ctx, incidentID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, incidentID)
}

// overallStatus recomputes the page's derived status after a mutation.
// A failed read degrades to operational rather than failing the write:
// the mutation has already committed and the broadcast must not unwind
// it.
func (s *Service) overallStatus(ctx context.Context, pageID string) domain.PageStatus {
	active, err := s.repo.ListActiveByPage(ctx, pageID)
	if err != nil {
		slog.Error("recompute overall status", "page_id", pageID, "error", err)
		return domain.PageStatusOperational
	}
	return domain.DeriveOverallStatus(active)
}
