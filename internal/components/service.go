package components

import (
	"context"
	"fmt"

	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/pkg/slug"
	"github.com/statusloops/statusloops/internal/realtime"
)

// Broadcaster publishes events to the subscribers of a status page.
type Broadcaster interface {
	Publish(pageID string, ev realtime.Event)
}

// Service implements component registry business logic.
type Service struct {
	repo        Repository
	broadcaster Broadcaster
}

// NewService creates a new component service.
func NewService(repo Repository, broadcaster Broadcaster) *Service {
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
	}
}

// CreateComponentInput holds data for creating a component.
type CreateComponentInput struct {
	PageID      string
	Name        string
	Slug        string
	Description string
	GroupLabel  string
	Status      domain.ComponentStatus
	Order       int
}

// CreateComponent creates a new component on a status page. The status
// defaults to operational; the slug is derived from the name when not
// supplied.
func (s *Service) CreateComponent(ctx context.Context, input CreateComponentInput) (*domain.Component, error) {
	status := input.Status
	if status == "" {
		status = domain.ComponentStatusOperational
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	componentSlug := input.Slug
	if componentSlug == "" {
		componentSlug = slug.Make(input.Name)
	}

	component := &domain.Component{
		PageID:      input.PageID,
		Name:        input.Name,
		Slug:        componentSlug,
		Description: input.Description,
		GroupLabel:  input.GroupLabel,
		Status:      status,
		Order:       input.Order,
	}

	if err := s.repo.CreateComponent(ctx, component); err != nil {
		return nil, fmt.Errorf("create component: %w", err)
	}

	return component, nil
}

// GetComponent retrieves a component by ID.
func (s *Service) GetComponent(ctx context.Context, id string) (*domain.Component, error) {
	return s.repo.GetComponentByID(ctx, id)
}

// ListByPage returns all components belonging to a status page.
func (s *Service) ListByPage(ctx context.Context, pageID string) ([]domain.Component, error) {
	return s.repo.ListComponentsByPage(ctx, pageID)
}

// UpdateComponentInput holds data for updating a component's metadata.
type UpdateComponentInput struct {
	Name        string
	Description string
	GroupLabel  string
	Uptime      *float64
	Order       int
}

// UpdateComponent updates a component's descriptive fields. Status is
// not touched here; status changes go through UpdateComponentStatus so
// there is a single path that emits events.
func (s *Service) UpdateComponent(ctx context.Context, id string, input UpdateComponentInput) (*domain.Component, error) {
	component, err := s.repo.GetComponentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get component: %w", err)
	}

	component.Name = input.Name
	component.Description = input.Description
	component.GroupLabel = input.GroupLabel
	component.Uptime = input.Uptime
	component.Order = input.Order

	if err := s.repo.UpdateComponent(ctx, component); err != nil {
		return nil, fmt.Errorf("update component: %w", err)
	}

	return component, nil
}

// UpdateComponentStatus replaces the component's status and publishes a
// component_status_changed event to the page's subscribers. The page
// overall status is not recomputed: aggregation is incident-driven.
func (s *Service) UpdateComponentStatus(ctx context.Context, id string, status domain.ComponentStatus) (*domain.Component, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	component, err := s.repo.UpdateComponentStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update component status: %w", err)
	}

	s.broadcaster.Publish(component.PageID, realtime.NewComponentStatusChanged(component))

	return component, nil
}

// DeleteComponent removes a component from its page.
func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	return s.repo.DeleteComponent(ctx, id)
}
