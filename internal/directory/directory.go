package directory

import (
	"context"
	"sync"
	"time"

	"github.com/homedeck/homedeck/internal/hubclient"
)

// Logger defines the logging interface used by the Directory.
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

// HubAPI is the slice of the hub client the directory needs.
type HubAPI interface {
	Devices(ctx context.Context) ([]hubclient.Device, error)
	Scan(ctx context.Context) error
}

// ClientProvider returns the client for the currently selected hub.
// The directory resolves it per call so a hub switch takes effect
// without rewiring.
type ClientProvider func() HubAPI

// Counts summarises the directory.
type Counts struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
}

// Directory caches the device list of the current hub.
//
// The cache follows a fail-safe-to-empty policy: any refresh error
// resets it to empty rather than serving a stale list, so a dashboard
// never shows devices from an unreachable hub as controllable.
//
// All public methods are safe for concurrent use.
type Directory struct {
	client    ClientProvider
	scanGrace time.Duration

	mu       sync.RWMutex
	devices  map[string]hubclient.Device
	order    []string // Insertion order of the last refresh.
	scanning bool

	logger Logger
}

// New creates a device directory. scanGrace is how long a scan waits
// after triggering hub discovery before refreshing the list.
func New(client ClientProvider, scanGrace time.Duration) *Directory {
	return &Directory{
		client:    client,
		scanGrace: scanGrace,
		devices:   make(map[string]hubclient.Device),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the directory.
func (d *Directory) SetLogger(logger Logger) {
	d.logger = logger
}

// Refresh replaces the cached device list with the hub's current one.
// On any error the cache resets to empty and the error is returned.
func (d *Directory) Refresh(ctx context.Context) error {
	devices, err := d.client().Devices(ctx)
	if err != nil {
		d.mu.Lock()
		d.devices = make(map[string]hubclient.Device)
		d.order = nil
		d.mu.Unlock()
		d.logger.Warn("device refresh failed, directory emptied", "error", err)
		return err
	}

	byID := make(map[string]hubclient.Device, len(devices))
	order := make([]string, 0, len(devices))
	for _, dev := range devices {
		byID[dev.ID] = dev
		order = append(order, dev.ID)
	}

	d.mu.Lock()
	d.devices = byID
	d.order = order
	d.mu.Unlock()

	d.logger.Debug("device directory refreshed", "count", len(devices))
	return nil
}

// Devices returns the cached device list in hub order.
func (d *Directory) Devices() []hubclient.Device {
	d.mu.RLock()
	defer d.mu.RUnlock()

	devices := make([]hubclient.Device, 0, len(d.order))
	for _, id := range d.order {
		if dev, ok := d.devices[id]; ok {
			devices = append(devices, dev)
		}
	}
	return devices
}

// Get returns a cached device by ID.
func (d *Directory) Get(id string) (hubclient.Device, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	dev, ok := d.devices[id]
	if !ok {
		return hubclient.Device{}, ErrDeviceNotFound
	}
	return dev, nil
}

// Counts returns total/online/offline tallies for the cached list.
func (d *Directory) Counts() Counts {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c := Counts{Total: len(d.devices)}
	for _, dev := range d.devices {
		if dev.IsOnline {
			c.Online++
		} else {
			c.Offline++
		}
	}
	return c
}

// Scan triggers device discovery on the hub, waits the grace window so
// the hub can finish enumerating, then refreshes the directory. A
// second scan while the window is open returns ErrScanInProgress.
func (d *Directory) Scan(ctx context.Context) error {
	d.mu.Lock()
	if d.scanning {
		d.mu.Unlock()
		return ErrScanInProgress
	}
	d.scanning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.scanning = false
		d.mu.Unlock()
	}()

	if err := d.client().Scan(ctx); err != nil {
		return err
	}

	d.logger.Info("device scan triggered", "grace", d.scanGrace)
	select {
	case <-time.After(d.scanGrace):
	case <-ctx.Done():
		return ctx.Err()
	}

	return d.Refresh(ctx)
}

// ApplyStateUpdate records a pushed online/offline transition for a
// single device. Updates for unknown devices are dropped; the next
// full refresh remains authoritative either way.
func (d *Directory) ApplyStateUpdate(id string, isOnline bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dev, ok := d.devices[id]
	if !ok {
		return
	}
	dev.IsOnline = isOnline
	d.devices[id] = dev
}
