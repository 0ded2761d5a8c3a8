package scenario

import (
	"strings"
	"time"
)

// Scenario is a named, ordered list of actions executed as a unit.
// Actions are opaque strings interpreted by the hub.
type Scenario struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Actions     []string  `json:"actions"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Copy returns an independent copy of the scenario.
func (s *Scenario) Copy() *Scenario {
	if s == nil {
		return nil
	}
	c := *s
	c.Actions = append([]string(nil), s.Actions...)
	return &c
}

// Validate checks the fields required before a scenario can be
// persisted.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return ErrInvalidScenario
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// seedScenarios are installed when the store is empty on first load.
func seedScenarios() []Scenario {
	return []Scenario{
		{
			ID:          "good_morning",
			Name:        "Good Morning",
			Description: "Open the day: lights up, blinds open, morning playlist.",
			Actions: []string{
				"lights.living_room.on",
				"blinds.all.open",
				"media.kitchen.play:morning",
			},
			Enabled: true,
		},
		{
			ID:          "good_night",
			Name:        "Good Night",
			Description: "Wind down: lights off, doors locked, thermostat to night mode.",
			Actions: []string{
				"lights.all.off",
				"locks.all.lock",
				"climate.all.night",
			},
			Enabled: true,
		},
		{
			ID:          "away_mode",
			Name:        "Away Mode",
			Description: "Leaving home: everything off, cameras armed.",
			Actions: []string{
				"lights.all.off",
				"media.all.stop",
				"security.cameras.arm",
			},
			Enabled: true,
		},
	}
}
