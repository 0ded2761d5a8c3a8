package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for scenario persistence.
type Repository interface {
	// GetByID retrieves a scenario by ID.
	// Returns ErrScenarioNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Scenario, error)

	// List retrieves all scenarios ordered by name.
	List(ctx context.Context) ([]Scenario, error)

	// Create inserts a new scenario.
	// Returns ErrScenarioExists on a duplicate ID.
	Create(ctx context.Context, s *Scenario) error

	// Update modifies an existing scenario.
	// Returns ErrScenarioNotFound if it does not exist.
	Update(ctx context.Context, s *Scenario) error

	// Delete removes a scenario by ID.
	// Returns ErrScenarioNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const scenarioColumns = "id, name, description, actions, enabled, created_at, updated_at"

// GetByID retrieves a scenario by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Scenario, error) {
	query := "SELECT " + scenarioColumns + " FROM scenarios WHERE id = ?"

	s, err := scanScenario(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("querying scenario by id: %w", err)
	}
	return s, nil
}

// List retrieves all scenarios ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Scenario, error) {
	query := "SELECT " + scenarioColumns + " FROM scenarios ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying scenarios: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var scenarios []Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scenario row: %w", err)
		}
		scenarios = append(scenarios, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenario rows: %w", err)
	}
	return scenarios, nil
}

// Create inserts a new scenario.
func (r *SQLiteRepository) Create(ctx context.Context, s *Scenario) error {
	actionsJSON, err := json.Marshal(s.Actions)
	if err != nil {
		return fmt.Errorf("marshalling actions: %w", err)
	}

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `
		INSERT INTO scenarios (id, name, description, actions, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, string(actionsJSON), s.Enabled,
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrScenarioExists
		}
		return fmt.Errorf("inserting scenario: %w", err)
	}
	return nil
}

// Update modifies an existing scenario.
func (r *SQLiteRepository) Update(ctx context.Context, s *Scenario) error {
	actionsJSON, err := json.Marshal(s.Actions)
	if err != nil {
		return fmt.Errorf("marshalling actions: %w", err)
	}
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE scenarios
		SET name = ?, description = ?, actions = ?, enabled = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Description, string(actionsJSON), s.Enabled,
		s.UpdatedAt.Format(time.RFC3339), s.ID)
	if err != nil {
		return fmt.Errorf("updating scenario: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrScenarioNotFound
	}
	return nil
}

// Delete removes a scenario by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrScenarioNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScenario(sc scanner) (*Scenario, error) {
	var s Scenario
	var actionsJSON, createdAt, updatedAt string
	if err := sc.Scan(&s.ID, &s.Name, &s.Description, &actionsJSON,
		&s.Enabled, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(actionsJSON), &s.Actions); err != nil {
		return nil, fmt.Errorf("unmarshalling actions: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		s.UpdatedAt = t
	}
	return &s, nil
}
