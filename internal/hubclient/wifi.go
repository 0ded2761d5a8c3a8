package hubclient

import "context"

// WiFiStatus describes the hub's current Wi-Fi connection, from
// GET /wifi/status.
type WiFiStatus struct {
	Connected      bool   `json:"connected"`
	SSID           string `json:"ssid"`
	SignalStrength int    `json:"signal_strength"`
	IPAddress      string `json:"ip_address"`
}

// WiFiNetwork is one visible network from GET /wifi/networks.
type WiFiNetwork struct {
	SSID           string `json:"ssid"`
	SignalStrength int    `json:"signal_strength"`
	Security       string `json:"security"`
	Connected      bool   `json:"connected"`
}

// GetWiFiStatus fetches the hub's Wi-Fi connection status.
func (c *Client) GetWiFiStatus(ctx context.Context) (*WiFiStatus, error) {
	var status WiFiStatus
	if err := c.do(ctx, "GET", "/wifi/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ScanWiFiNetworks fetches the list of visible networks. The hub
// wraps the list in a {success, networks} envelope.
func (c *Client) ScanWiFiNetworks(ctx context.Context) ([]WiFiNetwork, error) {
	var out struct {
		Success  bool          `json:"success"`
		Networks []WiFiNetwork `json:"networks"`
	}
	if err := c.do(ctx, "GET", "/wifi/networks", nil, &out); err != nil {
		return nil, err
	}
	return out.Networks, nil
}

// ConnectWiFi asks the hub to join a network:
// POST /wifi/connect with body {ssid, password}.
func (c *Client) ConnectWiFi(ctx context.Context, ssid, password string) error {
	body := map[string]any{"ssid": ssid, "password": password}
	return c.do(ctx, "POST", "/wifi/connect", body, nil)
}

// DisconnectWiFi asks the hub to leave its current network.
func (c *Client) DisconnectWiFi(ctx context.Context) error {
	return c.do(ctx, "POST", "/wifi/disconnect", nil, nil)
}
