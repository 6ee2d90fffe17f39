// Package postgres provides the PostgreSQL implementation of the
// status page repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/statuspage"
)

// Repository implements statuspage.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreatePage creates a new status page in the database.
func (r *Repository) CreatePage(ctx context.Context, page *domain.StatusPage) error {
	query := `
		INSERT INTO status_pages (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		page.Name,
		page.Slug,
		page.Description,
	).Scan(&page.ID, &page.CreatedAt, &page.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return statuspage.ErrSlugTaken
		}
		return fmt.Errorf("create status page: %w", err)
	}
	return nil
}

// GetPageBySlug retrieves a status page by its slug.
func (r *Repository) GetPageBySlug(ctx context.Context, slug string) (*domain.StatusPage, error) {
	return r.getPage(ctx, "slug", slug)
}

// GetPageByID retrieves a status page by its ID.
func (r *Repository) GetPageByID(ctx context.Context, id string) (*domain.StatusPage, error) {
	return r.getPage(ctx, "id", id)
}

func (r *Repository) getPage(ctx context.Context, column, value string) (*domain.StatusPage, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, description, created_at, updated_at
		FROM status_pages
		WHERE %s = $1
	`, column)

	var page domain.StatusPage
	err := r.db.QueryRow(ctx, query, value).Scan(
		&page.ID,
		&page.Name,
		&page.Slug,
		&page.Description,
		&page.CreatedAt,
		&page.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, statuspage.ErrPageNotFound
		}
		return nil, fmt.Errorf("get status page by %s: %w", column, err)
	}
	return &page, nil
}

// ListPages retrieves all status pages ordered by name.
func (r *Repository) ListPages(ctx context.Context) ([]domain.StatusPage, error) {
	query := `
		SELECT id, name, slug, description, created_at, updated_at
		FROM status_pages
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list status pages: %w", err)
	}
	defer rows.Close()

	pages := make([]domain.StatusPage, 0)
	for rows.Next() {
		var page domain.StatusPage
		if err := rows.Scan(
			&page.ID,
			&page.Name,
			&page.Slug,
			&page.Description,
			&page.CreatedAt,
			&page.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan status page: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status pages: %w", err)
	}
	return pages, nil
}

// DeletePage removes a page. Components, incidents and incident updates
// are removed via ON DELETE CASCADE.
func (r *Repository) DeletePage(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM status_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete status page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return statuspage.ErrPageNotFound
	}
	return nil
}
