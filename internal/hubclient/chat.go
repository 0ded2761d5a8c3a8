package hubclient

import "context"

// Chat sends a message to the hub's assistant:
// POST /chat with body {message, session_id} returning {response}.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	body := map[string]any{
		"message":    message,
		"session_id": sessionID,
	}
	if err := c.do(ctx, "POST", "/chat", body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// SaveSettings forwards a generic settings blob to the hub.
func (c *Client) SaveSettings(ctx context.Context, settings map[string]any) error {
	return c.do(ctx, "POST", "/settings", settings, nil)
}
