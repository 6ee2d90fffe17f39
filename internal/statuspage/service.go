// Package statuspage manages status pages themselves and projects the
// public view: overall status, components, and incident history.
package statuspage

import (
	"context"
	"fmt"

	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/pkg/slug"
)

// RecentIncidentLimit caps how many recently resolved incidents the
// public overview carries.
const RecentIncidentLimit = 10

// ComponentLister supplies a page's components for the overview.
type ComponentLister interface {
	ListByPage(ctx context.Context, pageID string) ([]domain.Component, error)
}

// IncidentLister supplies a page's incidents for the overview and the
// overall-status derivation.
type IncidentLister interface {
	ListActiveByPage(ctx context.Context, pageID string) ([]domain.Incident, error)
	ListRecentResolved(ctx context.Context, pageID string, limit int) ([]domain.Incident, error)
}

// Service implements status page business logic.
type Service struct {
	repo       Repository
	components ComponentLister
	incidents  IncidentLister
}

// NewService creates a new status page service.
func NewService(repo Repository, components ComponentLister, incidents IncidentLister) *Service {
	return &Service{
		repo:       repo,
		components: components,
		incidents:  incidents,
	}
}

// CreatePageInput holds data for creating a status page.
type CreatePageInput struct {
	Name        string
	Slug        string
	Description string
}

// CreatePage creates a new status page. The slug is derived from the
// name when not supplied.
func (s *Service) CreatePage(ctx context.Context, input CreatePageInput) (*domain.StatusPage, error) {
	pageSlug := input.Slug
	if pageSlug == "" {
		pageSlug = slug.Make(input.Name)
	}

	page := &domain.StatusPage{
		Name:        input.Name,
		Slug:        pageSlug,
		Description: input.Description,
	}

	if err := s.repo.CreatePage(ctx, page); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	return page, nil
}

// GetPage retrieves a status page by slug.
func (s *Service) GetPage(ctx context.Context, slug string) (*domain.StatusPage, error) {
	return s.repo.GetPageBySlug(ctx, slug)
}

// ListPages retrieves all status pages.
func (s *Service) ListPages(ctx context.Context) ([]domain.StatusPage, error) {
	return s.repo.ListPages(ctx)
}

// DeletePage removes a page and everything it owns.
func (s *Service) DeletePage(ctx context.Context, slug string) error {
	page, err := s.repo.GetPageBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}
	return s.repo.DeletePage(ctx, page.ID)
}

// PageIDBySlug resolves a page slug to its id.
func (s *Service) PageIDBySlug(ctx context.Context, slug string) (string, error) {
	page, err := s.repo.GetPageBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	return page.ID, nil
}

// Overview is the public projection of a status page.
type Overview struct {
	Page            domain.StatusPage  `json:"page"`
	OverallStatus   domain.PageStatus  `json:"overall_status"`
	Components      []domain.Component `json:"components"`
	ActiveIncidents []domain.Incident  `json:"active_incidents"`
	RecentIncidents []domain.Incident  `json:"recent_incidents"`
}

// Overview builds the public snapshot for a page: derived overall
// status, component list, active incidents, and recently resolved
// incidents. Viewers pull this once, then follow the event stream.
func (s *Service) Overview(ctx context.Context, slug string) (*Overview, error) {
	page, err := s.repo.GetPageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	componentList, err := s.components.ListByPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	active, err := s.incidents.ListActiveByPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}

	recent, err := s.incidents.ListRecentResolved(ctx, page.ID, RecentIncidentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent incidents: %w", err)
	}

	return &Overview{
		Page:            *page,
		OverallStatus:   domain.DeriveOverallStatus(active),
		Components:      componentList,
		ActiveIncidents: active,
		RecentIncidents: recent,
	}, nil
}

// ResolvePage returns the page id and the initial snapshot payload for
// the given slug. Used by the realtime stream handler to prime new
// subscribers.
func (s *Service) ResolvePage(ctx context.Context, slug string) (string, any, error) {
	overview, err := s.Overview(ctx, slug)
	if err != nil {
		return "", nil, err
	}
	return overview.Page.ID, overview, nil
}
