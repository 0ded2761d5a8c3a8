package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Registry.
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

// ProbeFunc checks whether the hub at url answers its health endpoint.
// A nil return means the hub is reachable.
type ProbeFunc func(ctx context.Context, url string) error

// SwitchListener is notified after the current hub changes. The hub is
// a copy; listeners may retain it.
type SwitchListener func(h *Hub)

// Registry manages the set of registered hubs and tracks which one is
// current. It wraps a Repository and keeps the current selection in
// memory.
//
// Exactly one hub is current at all times once Load has run, and the
// local hub (id "local") always exists and can never be removed.
//
// All public methods are safe for concurrent use.
type Registry struct {
	repo  Repository
	probe ProbeFunc

	localURL  string
	localName string

	mu        sync.RWMutex
	current   *Hub
	listeners []SwitchListener

	logger Logger
}

// NewRegistry creates a hub registry.
//
// probe is used by Connect to verify a hub before it is persisted.
// localURL and localName describe the built-in local hub seeded on
// first start.
func NewRegistry(repo Repository, probe ProbeFunc, localURL, localName string) *Registry {
	return &Registry{
		repo:      repo,
		probe:     probe,
		localURL:  localURL,
		localName: localName,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// OnSwitch registers a listener invoked whenever the current hub
// changes. Listeners run synchronously in registration order; they
// must not call back into the registry.
func (r *Registry) OnSwitch(fn SwitchListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Load restores the hub set from persistence, seeding the local hub if
// the store is empty, and selects the current hub: the persisted
// default when one exists, otherwise the first entry.
//
// Load is idempotent; calling it again simply re-reads the store.
func (r *Registry) Load(ctx context.Context) error {
	hubs, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading hubs: %w", err)
	}

	if len(hubs) == 0 {
		local := &Hub{
			ID:        LocalHubID,
			Name:      r.localName,
			URL:       r.localURL,
			Type:      TypeLocal,
			Status:    StatusDisconnected,
			IsDefault: true,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.repo.Create(ctx, local); err != nil {
			return fmt.Errorf("seeding local hub: %w", err)
		}
		r.logger.Info("seeded local hub", "url", r.localURL)
		hubs = []Hub{*local}
	}

	selected := &hubs[0]
	for i := range hubs {
		if hubs[i].IsDefault {
			selected = &hubs[i]
			break
		}
	}

	r.mu.Lock()
	r.current = selected.Copy()
	r.mu.Unlock()

	r.logger.Info("hub registry loaded", "count", len(hubs), "current", selected.ID)
	return nil
}

// Connect probes the hub at url and, only if the probe succeeds,
// registers it with status connected. A failed probe leaves the store
// untouched: no row is written, not even a transient "connecting" one.
func (r *Registry) Connect(ctx context.Context, url, name string, hubType Type) (*Hub, error) {
	h := &Hub{
		ID:     uuid.NewString(),
		Name:   name,
		URL:    trimTrailingSlash(url),
		Type:   hubType,
		Status: StatusConnecting,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if err := r.probe(ctx, h.URL); err != nil {
		r.logger.Warn("hub probe failed", "url", h.URL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	h.Status = StatusConnected
	if err := r.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("persisting hub: %w", err)
	}

	r.logger.Info("hub connected", "id", h.ID, "name", h.Name, "url", h.URL)
	return h.Copy(), nil
}

// SetCurrent makes the hub with the given id current and persists the
// selection. Unknown ids return ErrHubNotFound with no state change.
func (r *Registry) SetCurrent(ctx context.Context, id string) error {
	h, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.SetDefault(ctx, id); err != nil {
		return fmt.Errorf("persisting hub selection: %w", err)
	}
	h.IsDefault = true

	r.mu.Lock()
	r.current = h.Copy()
	listeners := make([]SwitchListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	r.logger.Info("switched hub", "id", h.ID, "name", h.Name)
	for _, fn := range listeners {
		fn(h.Copy())
	}
	return nil
}

// Remove deletes a hub. The local hub is protected and returns
// ErrLocalHubProtected. Removing the current hub re-selects the first
// remaining hub, falling back to local.
func (r *Registry) Remove(ctx context.Context, id string) error {
	if id == LocalHubID {
		return ErrLocalHubProtected
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.logger.Info("hub removed", "id", id)

	r.mu.RLock()
	wasCurrent := r.current != nil && r.current.ID == id
	r.mu.RUnlock()
	if !wasCurrent {
		return nil
	}

	remaining, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing hubs after removal: %w", err)
	}
	next := LocalHubID
	if len(remaining) > 0 {
		next = remaining[0].ID
	}
	return r.SetCurrent(ctx, next)
}

// Current returns a copy of the currently selected hub, or nil before
// Load has run.
func (r *Registry) Current() *Hub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Copy()
}

// List retrieves all registered hubs.
func (r *Registry) List(ctx context.Context) ([]Hub, error) {
	return r.repo.List(ctx)
}

// Get retrieves a hub by id.
func (r *Registry) Get(ctx context.Context, id string) (*Hub, error) {
	return r.repo.GetByID(ctx, id)
}

// SetStatus records the latest observed connection status for a hub.
// Used by the poller; unknown ids are ignored silently because the hub
// may have been removed between poll cycles.
func (r *Registry) SetStatus(ctx context.Context, id string, status Status) {
	if err := r.repo.UpdateStatus(ctx, id, status); err != nil {
		r.logger.Debug("status update skipped", "id", id, "error", err)
		return
	}

	r.mu.Lock()
	if r.current != nil && r.current.ID == id {
		r.current.Status = status
	}
	r.mu.Unlock()
}

func trimTrailingSlash(url string) string {
	for len(url) > 0 && url[len(url)-1] == '/' {
		url = url[:len(url)-1]
	}
	return url
}
