package hubclient

import "context"

// SpotifyStatus describes the hub's Spotify integration, from
// GET /spotify/status.
type SpotifyStatus struct {
	Connected bool   `json:"connected"`
	Playing   bool   `json:"playing"`
	Track     string `json:"track"`
	Artist    string `json:"artist"`
	Device    string `json:"device"`
}

// SetupSpotifyAuth starts the OAuth flow on the hub:
// POST /spotify/auth with the application credentials. The response
// carries the authorisation URL the user must visit.
func (c *Client) SetupSpotifyAuth(ctx context.Context, clientID, clientSecret, redirectURI string) (string, error) {
	var out struct {
		AuthURL string `json:"auth_url"`
	}
	body := map[string]any{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"redirect_uri":  redirectURI,
	}
	if err := c.do(ctx, "POST", "/spotify/auth", body, &out); err != nil {
		return "", err
	}
	return out.AuthURL, nil
}

// GetSpotifyStatus fetches the Spotify integration status.
func (c *Client) GetSpotifyStatus(ctx context.Context) (*SpotifyStatus, error) {
	var status SpotifyStatus
	if err := c.do(ctx, "GET", "/spotify/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SpotifyControl is the payload for POST /spotify/control. Volume
// accompanies the volume action, TrackURI the play action; the hub
// ignores the fields otherwise.
type SpotifyControl struct {
	Action   string `json:"action"`
	Volume   *int   `json:"volume,omitempty"`
	TrackURI string `json:"track_uri,omitempty"`
}

// ControlSpotify sends a playback control action
// (play, pause, next, previous, volume).
func (c *Client) ControlSpotify(ctx context.Context, control SpotifyControl) error {
	return c.do(ctx, "POST", "/spotify/control", control, nil)
}

// DisconnectSpotify revokes the hub's Spotify connection.
func (c *Client) DisconnectSpotify(ctx context.Context) error {
	return c.do(ctx, "POST", "/spotify/disconnect", nil, nil)
}
