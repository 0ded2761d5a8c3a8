package mqtt

import "testing"

func TestTopicDeviceState(t *testing.T) {
	got := TopicDeviceState("local", "lamp-1")
	want := "homedeck/hub/local/device/lamp-1/state"
	if got != want {
		t.Errorf("TopicDeviceState = %q, want %q", got, want)
	}
}

func TestTopicAllDeviceStates(t *testing.T) {
	got := TopicAllDeviceStates("local")
	want := "homedeck/hub/local/device/+/state"
	if got != want {
		t.Errorf("TopicAllDeviceStates = %q, want %q", got, want)
	}
}

func TestParseDeviceStateTopic(t *testing.T) {
	tests := []struct {
		topic      string
		wantHub    string
		wantDevice string
		wantOK     bool
	}{
		{"homedeck/hub/local/device/lamp-1/state", "local", "lamp-1", true},
		{"homedeck/hub/cloud-2/device/plug/state", "cloud-2", "plug", true},
		{"homedeck/gateway/status", "", "", false},
		{"other/hub/local/device/lamp/state", "", "", false},
		{"homedeck/hub//device/lamp/state", "", "", false},
		{"homedeck/hub/local/device/lamp/command", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		hub, device, ok := ParseDeviceStateTopic(tt.topic)
		if hub != tt.wantHub || device != tt.wantDevice || ok != tt.wantOK {
			t.Errorf("ParseDeviceStateTopic(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.topic, hub, device, ok, tt.wantHub, tt.wantDevice, tt.wantOK)
		}
	}
}
