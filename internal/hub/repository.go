package hub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for hub persistence operations.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a hub by its identifier.
	// Returns ErrHubNotFound if the hub does not exist.
	GetByID(ctx context.Context, id string) (*Hub, error)

	// List retrieves all hubs, local hub first, then by name.
	List(ctx context.Context) ([]Hub, error)

	// Create inserts a new hub.
	// Returns ErrHubExists if a hub with the same ID already exists.
	Create(ctx context.Context, h *Hub) error

	// Update modifies an existing hub.
	// Returns ErrHubNotFound if the hub does not exist.
	Update(ctx context.Context, h *Hub) error

	// Delete removes a hub by ID.
	// Returns ErrHubNotFound if the hub does not exist.
	Delete(ctx context.Context, id string) error

	// SetDefault marks the given hub as default and clears the flag on
	// every other hub, in one transaction.
	SetDefault(ctx context.Context, id string) error

	// UpdateStatus updates only the status of a hub.
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const hubColumns = "id, name, url, type, status, is_default, created_at, updated_at"

// GetByID retrieves a hub by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Hub, error) {
	query := "SELECT " + hubColumns + " FROM hubs WHERE id = ?"

	h, err := scanHub(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHubNotFound
		}
		return nil, fmt.Errorf("querying hub by id: %w", err)
	}
	return h, nil
}

// List retrieves all hubs, local hub first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Hub, error) {
	query := "SELECT " + hubColumns + ` FROM hubs
		ORDER BY CASE id WHEN 'local' THEN 0 ELSE 1 END, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying hubs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var hubs []Hub
	for rows.Next() {
		h, err := scanHub(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning hub row: %w", err)
		}
		hubs = append(hubs, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hub rows: %w", err)
	}
	return hubs, nil
}

// Create inserts a new hub.
func (r *SQLiteRepository) Create(ctx context.Context, h *Hub) error {
	query := `
		INSERT INTO hubs (id, name, url, type, status, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.Name, h.URL, string(h.Type), string(h.Status),
		h.IsDefault, h.CreatedAt.Format(time.RFC3339), h.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrHubExists
		}
		return fmt.Errorf("inserting hub: %w", err)
	}
	return nil
}

// Update modifies an existing hub.
func (r *SQLiteRepository) Update(ctx context.Context, h *Hub) error {
	query := `
		UPDATE hubs
		SET name = ?, url = ?, type = ?, status = ?, is_default = ?, updated_at = ?
		WHERE id = ?`

	h.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		h.Name, h.URL, string(h.Type), string(h.Status),
		h.IsDefault, h.UpdatedAt.Format(time.RFC3339), h.ID)
	if err != nil {
		return fmt.Errorf("updating hub: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a hub by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM hubs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting hub: %w", err)
	}
	return requireRowAffected(result)
}

// SetDefault marks a hub as default and clears all other default flags
// in a single transaction.
func (r *SQLiteRepository) SetDefault(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		"UPDATE hubs SET is_default = 0, updated_at = ? WHERE is_default = 1", now); err != nil {
		return fmt.Errorf("clearing default flags: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE hubs SET is_default = 1, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("setting default flag: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateStatus updates only the status of a hub.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE hubs SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating hub status: %w", err)
	}
	return requireRowAffected(result)
}

// scanner abstracts *sql.Row and *sql.Rows for scanHub.
type scanner interface {
	Scan(dest ...any) error
}

func scanHub(s scanner) (*Hub, error) {
	var h Hub
	var hubType, status, createdAt, updatedAt string
	if err := s.Scan(&h.ID, &h.Name, &h.URL, &hubType, &status,
		&h.IsDefault, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	h.Type = Type(hubType)
	h.Status = Status(status)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		h.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		h.UpdatedAt = t
	}
	return &h, nil
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrHubNotFound
	}
	return nil
}

// isUniqueConstraintError detects SQLite unique constraint violations
// without depending on driver-specific error types.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
