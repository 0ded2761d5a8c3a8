package directory

import "github.com/homedeck/homedeck/internal/hubclient"

// ControlKind is the primary control surface a dashboard renders for a
// device, projected from its capability list.
type ControlKind string

const (
	// ControlToggle is an on/off switch.
	ControlToggle ControlKind = "toggle"
	// ControlSlider is a 0-100 level control.
	ControlSlider ControlKind = "slider"
	// ControlColor is an RGB colour picker.
	ControlColor ControlKind = "color"
	// ControlNone means the device exposes no direct control.
	ControlNone ControlKind = "none"
)

// ControlFor projects a device's capabilities onto its richest control:
// colour beats slider beats toggle. Both "on_off" and "power_control"
// grant the toggle.
func ControlFor(d hubclient.Device) ControlKind {
	switch {
	case d.HasCapability("color_control"):
		return ControlColor
	case d.HasCapability("brightness_control"):
		return ControlSlider
	case d.HasCapability("on_off"), d.HasCapability("power_control"):
		return ControlToggle
	}
	return ControlNone
}
