package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/homedeck/homedeck/internal/hubclient"
	"github.com/homedeck/homedeck/internal/notify"
)

// Logger defines the logging interface used by the Dispatcher.
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

// HubAPI is the slice of the hub client the dispatcher needs.
type HubAPI interface {
	Action(ctx context.Context, deviceID, command string, params map[string]any) error
}

// ClientProvider returns the client for the currently selected hub.
type ClientProvider func() HubAPI

// Refresher re-reads the device list after a successful command.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Dispatcher sends device commands to the current hub.
//
// There is no optimistic update: device state shown to dashboards only
// changes through a full directory refresh after the hub has accepted
// the command. A failed command leaves the directory untouched.
type Dispatcher struct {
	client    ClientProvider
	directory Refresher
	notifier  *notify.Center
	logger    Logger
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(client ClientProvider, directory Refresher, notifier *notify.Center) *Dispatcher {
	return &Dispatcher{
		client:    client,
		directory: directory,
		notifier:  notifier,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// Control sends a raw command to a device. On success the directory is
// refreshed and a success notification posted; on failure a failure
// notification is posted and the directory is left as-is.
func (d *Dispatcher) Control(ctx context.Context, deviceID, command string, params map[string]any) error {
	if err := d.client().Action(ctx, deviceID, command, params); err != nil {
		d.logger.Warn("device command failed", "device", deviceID, "command", command, "error", err)
		d.notifier.Error(fmt.Sprintf("Command %q failed for %s: %s", command, deviceID, commandErrorText(err)))
		return err
	}

	d.logger.Debug("device command accepted", "device", deviceID, "command", command)
	d.notifier.Success(fmt.Sprintf("Command %q sent to %s", command, deviceID))

	if err := d.directory.Refresh(ctx); err != nil {
		// The command itself succeeded; surface the refresh problem
		// separately rather than failing the control call.
		d.logger.Warn("post-command refresh failed", "error", err)
	}
	return nil
}

// Toggle flips a device on or off.
func (d *Dispatcher) Toggle(ctx context.Context, deviceID string) error {
	return d.Control(ctx, deviceID, "toggle", nil)
}

// SetColor decomposes a #RRGGBB colour and sends it as a "color"
// command with params {color:{r,g,b}}. Invalid input is rejected
// before any request is made.
func (d *Dispatcher) SetColor(ctx context.Context, deviceID, hex string) error {
	rgb, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	return d.Control(ctx, deviceID, "color", map[string]any{"color": rgb})
}

// SetBrightness sends a brightness level in percent. The level is
// range-checked and then forwarded verbatim.
func (d *Dispatcher) SetBrightness(ctx context.Context, deviceID string, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: %d", ErrLevelOutOfRange, level)
	}
	return d.Control(ctx, deviceID, "brightness", map[string]any{"level": level})
}

// SetVolume sends a volume level in percent, range-checked the same
// way as brightness.
func (d *Dispatcher) SetVolume(ctx context.Context, deviceID string, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: %d", ErrLevelOutOfRange, level)
	}
	return d.Control(ctx, deviceID, "volume", map[string]any{"level": level})
}

// commandErrorText renders a dispatch error for a notification,
// preferring the hub's own message when one was extracted.
func commandErrorText(err error) string {
	var apiErr *hubclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if hubclient.IsConnError(err) {
		return "hub unreachable"
	}
	return err.Error()
}
