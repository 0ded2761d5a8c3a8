package hubclient

import "context"

// VoiceStatus describes the hub's voice assistant state, from
// GET /voice/status. A disabled assistant reports enabled=false with
// empty wake words and "none" providers.
type VoiceStatus struct {
	Enabled     bool     `json:"enabled"`
	Listening   bool     `json:"listening"`
	State       string   `json:"state"`
	WakeWords   []string `json:"wake_words"`
	STTProvider string   `json:"stt_provider"`
	TTSProvider string   `json:"tts_provider"`
}

// VoiceSettings is the payload for POST /voice/settings.
type VoiceSettings struct {
	STTProvider string   `json:"stt_provider"`
	TTSProvider string   `json:"tts_provider"`
	WakeWords   []string `json:"wake_words"`
}

// GetVoiceStatus fetches the voice assistant status.
func (c *Client) GetVoiceStatus(ctx context.Context) (*VoiceStatus, error) {
	var status VoiceStatus
	if err := c.do(ctx, "GET", "/voice/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Listen asks the hub to capture one voice command:
// POST /voice/listen with body {timeout} returning {text}.
func (c *Client) Listen(ctx context.Context, timeoutSeconds int) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	body := map[string]any{"timeout": timeoutSeconds}
	if err := c.do(ctx, "POST", "/voice/listen", body, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Speak asks the hub to speak text aloud:
// POST /voice/speak with body {text, blocking}.
func (c *Client) Speak(ctx context.Context, text string, blocking bool) error {
	body := map[string]any{"text": text, "blocking": blocking}
	return c.do(ctx, "POST", "/voice/speak", body, nil)
}

// SaveVoiceSettings persists voice provider settings on the hub.
func (c *Client) SaveVoiceSettings(ctx context.Context, settings VoiceSettings) error {
	return c.do(ctx, "POST", "/voice/settings", settings, nil)
}
