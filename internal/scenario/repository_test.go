package scenario

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the scenarios table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE scenarios (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			actions     TEXT NOT NULL DEFAULT '[]',
			enabled     INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	s := &Scenario{
		ID:          "movie_night",
		Name:        "Movie Night",
		Description: "Dim everything",
		Actions:     []string{"lights.living_room.dim:20", "media.tv.on"},
		Enabled:     true,
	}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "movie_night")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != s.Name || got.Description != s.Description || !got.Enabled {
		t.Errorf("GetByID() = %+v", got)
	}
	if len(got.Actions) != 2 || got.Actions[0] != "lights.living_room.dim:20" {
		t.Errorf("actions did not round-trip: %v", got.Actions)
	}

	if err := repo.Create(ctx, s); !errors.Is(err, ErrScenarioExists) {
		t.Errorf("duplicate Create() error = %v, want ErrScenarioExists", err)
	}
}

func TestSQLiteRepository_ActionOrderPreserved(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	actions := []string{"third", "first", "second", "zeta", "alpha"}
	s := &Scenario{ID: "ordered", Name: "Ordered", Actions: actions, Enabled: true}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "ordered")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	for i, a := range actions {
		if got.Actions[i] != a {
			t.Fatalf("action[%d] = %q, want %q (order must survive persistence)", i, got.Actions[i], a)
		}
	}
}

func TestSQLiteRepository_ListOrdersByName(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	for _, s := range []*Scenario{
		{ID: "z", Name: "Zeta", Enabled: true},
		{ID: "a", Name: "Alpha", Enabled: true},
	} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create(%s) error = %v", s.ID, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alpha" || list[1].Name != "Zeta" {
		t.Errorf("List() = %+v", list)
	}
}

func TestSQLiteRepository_UpdateAndDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	s := &Scenario{ID: "s1", Name: "Before", Actions: []string{"a"}, Enabled: true}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	s.Name = "After"
	s.Enabled = false
	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, "s1")
	if got.Name != "After" || got.Enabled {
		t.Errorf("after update: %+v", got)
	}

	if err := repo.Update(ctx, &Scenario{ID: "ghost", Name: "Ghost"}); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("Update(ghost) error = %v, want ErrScenarioNotFound", err)
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, "s1"); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrScenarioNotFound", err)
	}
	if err := repo.Delete(ctx, "s1"); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("second Delete() error = %v, want ErrScenarioNotFound", err)
	}
}
