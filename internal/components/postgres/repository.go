// Package postgres provides the PostgreSQL implementation of the
// components repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statusloops/statusloops/internal/components"
	"github.com/statusloops/statusloops/internal/domain"
)

// Repository implements components.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateComponent creates a new component in the database.
func (r *Repository) CreateComponent(ctx context.Context, component *domain.Component) error {
	query := `
		INSERT INTO components (page_id, name, slug, description, group_label, status, "order")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		component.PageID,
		component.Name,
		component.Slug,
		component.Description,
		component.GroupLabel,
		component.Status,
		component.Order,
	).Scan(&component.ID, &component.CreatedAt, &component.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return components.ErrSlugTaken
		}
		return fmt.Errorf("create component: %w", err)
	}
	return nil
}

// GetComponentByID retrieves a component by ID.
func (r *Repository) GetComponentByID(ctx context.Context, id string) (*domain.Component, error) {
	query := `
		SELECT id, page_id, name, slug, description, group_label, status, uptime, "order", created_at, updated_at
		FROM components
		WHERE id = $1
	`
	component, err := scanComponent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, components.ErrComponentNotFound
		}
		return nil, fmt.Errorf("get component by id: %w", err)
	}
	return component, nil
}

// ListComponentsByPage retrieves all components of a status page ordered
// by display order and name.
func (r *Repository) ListComponentsByPage(ctx context.Context, pageID string) ([]domain.Component, error) {
	query := `
		SELECT id, page_id, name, slug, description, group_label, status, uptime, "order", created_at, updated_at
		FROM components
		WHERE page_id = $1
		ORDER BY "order", name
	`
	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Component, 0)
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		list = append(list, *component)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}
	return list, nil
}

// UpdateComponent updates a component's descriptive fields.
func (r *Repository) UpdateComponent(ctx context.Context, component *domain.Component) error {
	query := `
		UPDATE components
		SET name = $2, description = $3, group_label = $4, uptime = $5, "order" = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		component.ID,
		component.Name,
		component.Description,
		component.GroupLabel,
		component.Uptime,
		component.Order,
	).Scan(&component.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return components.ErrComponentNotFound
		}
		return fmt.Errorf("update component: %w", err)
	}
	return nil
}

// UpdateComponentStatus replaces the component's status in place and
// returns the updated row.
func (r *Repository) UpdateComponentStatus(ctx context.Context, id string, status domain.ComponentStatus) (*domain.Component, error) {
	query := `
		UPDATE components
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, page_id, name, slug, description, group_label, status, uptime, "order", created_at, updated_at
	`
	component, err := scanComponent(r.db.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, components.ErrComponentNotFound
		}
		return nil, fmt.Errorf("update component status: %w", err)
	}
	return component, nil
}

// DeleteComponent removes a component.
func (r *Repository) DeleteComponent(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM components WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return components.ErrComponentNotFound
	}
	return nil
}

func scanComponent(row pgx.Row) (*domain.Component, error) {
	var c domain.Component
	err := row.Scan(
		&c.ID,
		&c.PageID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.GroupLabel,
		&c.Status,
		&c.Uptime,
		&c.Order,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
