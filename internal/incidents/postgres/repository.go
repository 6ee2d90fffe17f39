// Package postgres provides the PostgreSQL implementation of the
// incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/incidents"
)

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `id, page_id, title, description, severity, status, created_at, updated_at, resolved_at`

// CreateIncident persists a new incident and its component
// associations in one transaction.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		INSERT INTO incidents (page_id, title, description, severity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		incident.PageID,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}

	for _, componentID := range incident.ComponentIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO incident_components (incident_id, component_id) VALUES ($1, $2)`,
			incident.ID, componentID,
		)
		if err != nil {
			return fmt.Errorf("associate component %s: %w", componentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if incident.ComponentIDs == nil {
		incident.ComponentIDs = make([]string, 0)
	}
	return nil
}

// AppendUpdate atomically appends an update and applies the status
// change to the incident row. The resolved timestamp transitions are
// handled in SQL so concurrent updates to the same incident serialize
// on the row and resolved_at is stamped at most once per resolution.
func (r *Repository) AppendUpdate(ctx context.Context, update *domain.IncidentUpdate) (*domain.Incident, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	insertQuery := `
		INSERT INTO incident_updates (incident_id, status, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		update.IncidentID,
		update.Status,
		update.Message,
	).Scan(&update.ID, &update.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("create incident update: %w", err)
	}

	// Stamp resolved_at once when entering resolved, keep it on
	// re-resolve, clear it when leaving resolved.
	statusQuery := `
		UPDATE incidents
		SET status = $2,
		    updated_at = now(),
		    resolved_at = CASE
		        WHEN $2 = 'resolved' THEN COALESCE(resolved_at, now())
		        ELSE NULL
		    END
		WHERE id = $1
		RETURNING ` + incidentColumns

	incident, err := scanIncident(tx.QueryRow(ctx, statusQuery, update.IncidentID, update.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("update incident status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if err := r.loadComponentIDs(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// GetIncident retrieves an incident by ID.
func (r *Repository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident by id: %w", err)
	}

	if err := r.loadComponentIDs(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// ListIncidentsByPage retrieves a page's incidents, newest first.
func (r *Repository) ListIncidentsByPage(ctx context.Context, pageID string, filter incidents.Filter) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE page_id = $1`
	args := []any{pageID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.listIncidents(ctx, query, args...)
}

// ListActiveByPage returns a page's non-resolved incidents, newest
// first.
func (r *Repository) ListActiveByPage(ctx context.Context, pageID string) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE page_id = $1 AND status <> 'resolved'
		ORDER BY created_at DESC`
	return r.listIncidents(ctx, query, pageID)
}

// ListRecentResolved returns a page's most recently resolved incidents.
func (r *Repository) ListRecentResolved(ctx context.Context, pageID string, limit int) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE page_id = $1 AND status = 'resolved'
		ORDER BY resolved_at DESC
		LIMIT $2`
	return r.listIncidents(ctx, query, pageID, limit)
}

// ListUpdates retrieves an incident's updates in append order.
func (r *Repository) ListUpdates(ctx context.Context, incidentID string) ([]domain.IncidentUpdate, error) {
	query := `
		SELECT id, incident_id, status, message, created_at
		FROM incident_updates
		WHERE incident_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list incident updates: %w", err)
	}
	defer rows.Close()

	updates := make([]domain.IncidentUpdate, 0)
	for rows.Next() {
		var u domain.IncidentUpdate
		if err := rows.Scan(&u.ID, &u.IncidentID, &u.Status, &u.Message, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan incident update: %w", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident updates: %w", err)
	}
	return updates, nil
}

func (r *Repository) listIncidents(ctx context.Context, query string, args ...any) ([]domain.Incident, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, *incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	for i := range list {
		if err := r.loadComponentIDs(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *Repository) loadComponentIDs(ctx context.Context, incident *domain.Incident) error {
	rows, err := r.db.Query(ctx,
		`SELECT component_id FROM incident_components WHERE incident_id = $1 ORDER BY component_id`,
		incident.ID,
	)
	if err != nil {
		return fmt.Errorf("get incident components: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan component id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate incident components: %w", err)
	}

	incident.ComponentIDs = ids
	return nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID,
		&inc.PageID,
		&inc.Title,
		&inc.Description,
		&inc.Severity,
		&inc.Status,
		&inc.CreatedAt,
		&inc.UpdatedAt,
		&inc.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}
