package hubclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

func TestHealthSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error: %v", err)
	}
}

func TestHealthConnError(t *testing.T) {
	// Point at a closed port.
	c := New("http://127.0.0.1:1", testTimeout)
	err := c.Health(context.Background())
	if err == nil {
		t.Fatal("Health() should fail against a closed port")
	}
	if !IsConnError(err) {
		t.Errorf("expected *ConnError, got %T: %v", err, err)
	}
}

func TestAPIErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"error key", `{"error": "device offline"}`, "device offline"},
		{"detail key", `{"detail": "not found"}`, "not found"},
		{"message key", `{"message": "bad input"}`, "bad input"},
		{"no known key", `{"status": "failed"}`, genericErrorMessage},
		{"not json", `<html>oops</html>`, genericErrorMessage},
		{"empty", ``, genericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL, testTimeout)
			err := c.Health(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if apiErr.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", apiErr.StatusCode)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 50*time.Millisecond)
	start := time.Now()
	err := c.Health(context.Background())
	if err == nil {
		t.Fatal("Health() should time out")
	}
	if !IsConnError(err) {
		t.Errorf("timeout should surface as *ConnError, got %T", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %v, expected ~50ms", elapsed)
	}
}

func TestDevicesDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]Device{ //nolint:errcheck
			{ID: "lamp-1", Name: "Lamp", Type: "light", Protocol: "zigbee", IsOnline: true,
				Capabilities: []string{"on_off", "brightness_control"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	devices, err := c.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}
	if len(devices) != 1 || devices[0].ID != "lamp-1" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
	if !devices[0].HasCapability("on_off") {
		t.Error("HasCapability(on_off) = false")
	}
	if devices[0].HasCapability("color_control") {
		t.Error("HasCapability(color_control) = true for device without it")
	}
}

func TestActionRequestShape(t *testing.T) {
	var got struct {
		Command string         `json:"command"`
		Params  map[string]any `json:"params"`
	}
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	err := c.Action(context.Background(), "lamp-1", "brightness", map[string]any{"level": 80})
	if err != nil {
		t.Fatalf("Action() error: %v", err)
	}
	if gotPath != "/devices/lamp-1/action" {
		t.Errorf("path = %q", gotPath)
	}
	if got.Command != "brightness" {
		t.Errorf("command = %q", got.Command)
	}
	if level, ok := got.Params["level"].(float64); !ok || level != 80 {
		t.Errorf("params = %v", got.Params)
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		json.NewDecoder(r.Body).Decode(&in) //nolint:errcheck
		if in["message"] != "turn on the lights" || in["session_id"] != "s1" {
			t.Errorf("unexpected chat body: %v", in)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "done"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	resp, err := c.Chat(context.Background(), "turn on the lights", "s1")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if resp != "done" {
		t.Errorf("response = %q", resp)
	}
}

func TestVoiceStatusDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voice/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"enabled":true,"listening":false,"state":"wake_word",` + //nolint:errcheck
			`"wake_words":["hey assistant","computer"],"stt_provider":"whisper","tts_provider":"piper"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	status, err := c.GetVoiceStatus(context.Background())
	if err != nil {
		t.Fatalf("GetVoiceStatus() error: %v", err)
	}
	if !status.Enabled || status.Listening {
		t.Errorf("enabled=%v listening=%v", status.Enabled, status.Listening)
	}
	if status.State != "wake_word" {
		t.Errorf("state = %q", status.State)
	}
	if len(status.WakeWords) != 2 || status.WakeWords[0] != "hey assistant" {
		t.Errorf("wake words = %v", status.WakeWords)
	}
	if status.STTProvider != "whisper" || status.TTSProvider != "piper" {
		t.Errorf("providers = %q/%q", status.STTProvider, status.TTSProvider)
	}
}

func TestVoiceStatusDisabledShape(t *testing.T) {
	// The hub reports a disabled assistant with empty wake words and
	// "none" providers rather than omitting the fields.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"enabled":false,"listening":false,"state":"disabled",` + //nolint:errcheck
			`"wake_words":[],"stt_provider":"none","tts_provider":"none"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	status, err := c.GetVoiceStatus(context.Background())
	if err != nil {
		t.Fatalf("GetVoiceStatus() error: %v", err)
	}
	if status.Enabled || len(status.WakeWords) != 0 {
		t.Errorf("status = %+v, want disabled with no wake words", status)
	}
	if status.STTProvider != "none" || status.TTSProvider != "none" {
		t.Errorf("providers = %q/%q, want none/none", status.STTProvider, status.TTSProvider)
	}
}

func TestWiFiScanDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wifi/networks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"networks":[` + //nolint:errcheck
			`{"ssid":"Home_Network","signal_strength":95,"security":"WPA2","connected":true},` +
			`{"ssid":"Guest_WiFi","signal_strength":78,"security":"WPA2","connected":false}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	networks, err := c.ScanWiFiNetworks(context.Background())
	if err != nil {
		t.Fatalf("ScanWiFiNetworks() error: %v", err)
	}
	if len(networks) != 2 {
		t.Fatalf("got %d networks, want 2", len(networks))
	}
	if networks[0].SSID != "Home_Network" || networks[0].SignalStrength != 95 || !networks[0].Connected {
		t.Errorf("networks[0] = %+v", networks[0])
	}
	if networks[1].SignalStrength != 78 || networks[1].Connected {
		t.Errorf("networks[1] = %+v", networks[1])
	}
}

func TestWiFiStatusDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"connected":true,"ssid":"Home_Network","signal_strength":95,"ip_address":"192.168.1.100"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	status, err := c.GetWiFiStatus(context.Background())
	if err != nil {
		t.Fatalf("GetWiFiStatus() error: %v", err)
	}
	if !status.Connected || status.SSID != "Home_Network" {
		t.Errorf("status = %+v", status)
	}
	if status.SignalStrength != 95 {
		t.Errorf("signal strength = %d, want 95", status.SignalStrength)
	}
	if status.IPAddress != "192.168.1.100" {
		t.Errorf("ip = %q", status.IPAddress)
	}
}

func TestSpotifyControlRequestShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spotify/control" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, testTimeout)
	volume := 40
	err := c.ControlSpotify(context.Background(), SpotifyControl{Action: "volume", Volume: &volume})
	if err != nil {
		t.Fatalf("ControlSpotify() error: %v", err)
	}

	// The hub expects a flat body: action plus optional volume and
	// track_uri, nothing nested.
	if got["action"] != "volume" {
		t.Errorf("action = %v", got["action"])
	}
	if v, ok := got["volume"].(float64); !ok || v != 40 {
		t.Errorf("volume = %v", got["volume"])
	}
	if _, ok := got["params"]; ok {
		t.Error("body carries a params object, hub expects flat fields")
	}
	if _, ok := got["track_uri"]; ok {
		t.Error("track_uri sent without a value, want it omitted")
	}
}

func TestBaseURLNormalisation(t *testing.T) {
	c := New("http://example.local:8000///", testTimeout)
	if c.BaseURL() != "http://example.local:8000" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}
