package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/homedeck/homedeck/internal/notify"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// HubAPI is the slice of the hub client the store needs for execution.
type HubAPI interface {
	ExecuteScenario(ctx context.Context, id string) error
}

// ClientProvider returns the client for the currently selected hub.
type ClientProvider func() HubAPI

// Store manages the gateway's scenario collection.
//
// Scenarios persist in SQLite. Execution is delegated to the current
// hub, which performs the action list itself; the store only reports
// the outcome.
type Store struct {
	repo     Repository
	client   ClientProvider
	notifier *notify.Center
	logger   Logger
}

// NewStore creates a scenario store.
func NewStore(repo Repository, client ClientProvider, notifier *notify.Center) *Store {
	return &Store{
		repo:     repo,
		client:   client,
		notifier: notifier,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Load ensures the collection is usable on startup: when the store is
// empty the built-in scenarios are seeded, enabled.
func (s *Store) Load(ctx context.Context) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading scenarios: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("scenarios loaded", "count", len(existing))
		return nil
	}

	for _, seed := range seedScenarios() {
		seed := seed
		if err := s.repo.Create(ctx, &seed); err != nil {
			return fmt.Errorf("seeding scenario %s: %w", seed.ID, err)
		}
	}
	s.logger.Info("seeded default scenarios", "count", len(seedScenarios()))
	return nil
}

// List retrieves all scenarios.
func (s *Store) List(ctx context.Context) ([]Scenario, error) {
	return s.repo.List(ctx)
}

// Get retrieves a scenario by ID.
func (s *Store) Get(ctx context.Context, id string) (*Scenario, error) {
	return s.repo.GetByID(ctx, id)
}

// Create persists a new scenario, generating a UUID when the caller
// supplied no ID.
func (s *Store) Create(ctx context.Context, sc *Scenario) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sc); err != nil {
		return err
	}
	s.logger.Info("scenario created", "id", sc.ID, "name", sc.Name)
	return nil
}

// Update replaces a scenario's name, description, actions and enabled
// flag.
func (s *Store) Update(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, sc); err != nil {
		return err
	}
	s.logger.Info("scenario updated", "id", sc.ID)
	return nil
}

// Execute runs a scenario through the current hub. An unknown ID is a
// silent no-op: the dashboard may race a deletion, and executing
// nothing is the harmless outcome.
func (s *Store) Execute(ctx context.Context, id string) error {
	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrScenarioNotFound) {
			s.logger.Debug("execute skipped, scenario absent", "id", id)
			return nil
		}
		return err
	}

	if err := s.client().ExecuteScenario(ctx, sc.ID); err != nil {
		s.logger.Warn("scenario execution failed", "id", sc.ID, "error", err)
		s.notifier.Error(fmt.Sprintf("Scenario %q failed", sc.Name))
		return err
	}

	s.logger.Info("scenario executed", "id", sc.ID, "name", sc.Name)
	s.notifier.Success(fmt.Sprintf("Scenario %q executed", sc.Name))
	return nil
}

// Toggle flips a scenario's enabled flag. Nothing else changes.
func (s *Store) Toggle(ctx context.Context, id string) (*Scenario, error) {
	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sc.Enabled = !sc.Enabled
	if err := s.repo.Update(ctx, sc); err != nil {
		return nil, err
	}
	s.logger.Info("scenario toggled", "id", id, "enabled", sc.Enabled)
	return sc, nil
}

// Delete removes a scenario, but only when the caller has confirmed:
// confirmed=false leaves the collection unchanged and reports success.
func (s *Store) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		s.logger.Debug("delete not confirmed", "id", id)
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("scenario deleted", "id", id)
	return nil
}
