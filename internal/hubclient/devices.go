package hubclient

import (
	"context"
	"fmt"
	"net/url"
)

// Device is a hub device as reported by GET /devices.
//
// The device list is read-only from the gateway's perspective: the hub
// owns the lifecycle, the gateway only queries and commands.
type Device struct {
	ID           string   `json:"device_id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Protocol     string   `json:"protocol"`
	IsOnline     bool     `json:"is_online"`
	Capabilities []string `json:"capabilities"`
}

// HasCapability reports whether the device carries the capability tag.
func (d Device) HasCapability(capability string) bool {
	for _, c := range d.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Devices fetches the hub's device list.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.do(ctx, "GET", "/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Scan triggers a device discovery scan. The hub treats this as
// fire-and-forget and offers no completion signal.
func (c *Client) Scan(ctx context.Context) error {
	return c.do(ctx, "POST", "/devices/scan", nil, nil)
}

// Action sends a command to a device:
// POST /devices/{id}/action with body {command, params}.
func (c *Client) Action(ctx context.Context, deviceID, command string, params map[string]any) error {
	if deviceID == "" {
		return fmt.Errorf("device id is required")
	}
	body := map[string]any{
		"command": command,
		"params":  params,
	}
	path := "/devices/" + url.PathEscape(deviceID) + "/action"
	return c.do(ctx, "POST", path, body, nil)
}
