package components

import (
	"context"

	"github.com/statusloops/statusloops/internal/domain"
)

// Repository defines the interface for component storage.
type Repository interface {
	CreateComponent(ctx context.Context, component *domain.Component) error
	GetComponentByID(ctx context.Context, id string) (*domain.Component, error)
	ListComponentsByPage(ctx context.Context, pageID string) ([]domain.Component, error)
	UpdateComponent(ctx context.Context, component *domain.Component) error

	// UpdateComponentStatus replaces the component's status in place and
	// returns the updated row.
	UpdateComponentStatus(ctx context.Context, id string, status domain.ComponentStatus) (*domain.Component, error)

	DeleteComponent(ctx context.Context, id string) error
}
