package statuspage

import (
	"context"

	"github.com/statusloops/statusloops/internal/domain"
)

// Repository defines the interface for status page storage.
type Repository interface {
	CreatePage(ctx context.Context, page *domain.StatusPage) error
	GetPageBySlug(ctx context.Context, slug string) (*domain.StatusPage, error)
	GetPageByID(ctx context.Context, id string) (*domain.StatusPage, error)
	ListPages(ctx context.Context) ([]domain.StatusPage, error)

	// DeletePage removes a page together with its components and
	// incidents (ownership: the page exclusively owns both).
	DeletePage(ctx context.Context, id string) error
}
