package hubclient

import (
	"context"
	"net/url"
)

// HubScenario is a scenario as represented by the hub's own store
// (GET /scenarios). The gateway keeps its own scenario collection;
// these types cover hubs that additionally execute scenarios
// server-side.
type HubScenario struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Enabled     bool     `json:"enabled"`
}

// Scenarios fetches the hub's scenario list.
func (c *Client) Scenarios(ctx context.Context) ([]HubScenario, error) {
	var scenarios []HubScenario
	if err := c.do(ctx, "GET", "/scenarios", nil, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// CreateScenario registers a scenario on the hub.
func (c *Client) CreateScenario(ctx context.Context, s HubScenario) error {
	return c.do(ctx, "POST", "/scenarios", s, nil)
}

// ExecuteScenario asks the hub to run a scenario's action list.
// The hub is trusted to perform the underlying device commands and to
// report partial failure through its response status.
func (c *Client) ExecuteScenario(ctx context.Context, id string) error {
	return c.do(ctx, "POST", "/scenarios/"+url.PathEscape(id)+"/execute", nil, nil)
}

// ToggleScenario flips a scenario's enabled flag on the hub.
func (c *Client) ToggleScenario(ctx context.Context, id string) error {
	return c.do(ctx, "POST", "/scenarios/"+url.PathEscape(id)+"/toggle", nil, nil)
}
