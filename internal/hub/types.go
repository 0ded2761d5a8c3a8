package hub

import (
	"strings"
	"time"
)

// Type classifies where a hub lives relative to the gateway.
type Type string

const (
	// TypeLocal is the hub running alongside the gateway on the LAN.
	TypeLocal Type = "local"
	// TypeCloud is a hub reached through a cloud relay.
	TypeCloud Type = "cloud"
	// TypeRemote is a hub on another network reached directly.
	TypeRemote Type = "remote"
)

// Status is the connection state of a hub as last observed.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusError        Status = "error"
)

// LocalHubID is the fixed identifier of the built-in local hub. The
// local hub always exists and can never be removed.
const LocalHubID = "local"

// Hub is a registered automation hub.
type Hub struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Copy returns an independent copy of the hub.
func (h *Hub) Copy() *Hub {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

// ValidType reports whether t is a recognised hub type.
func ValidType(t Type) bool {
	switch t {
	case TypeLocal, TypeCloud, TypeRemote:
		return true
	}
	return false
}

// Validate checks the fields required before a hub can be persisted.
func (h *Hub) Validate() error {
	if h.ID == "" {
		return ErrInvalidHub
	}
	if strings.TrimSpace(h.Name) == "" {
		return ErrInvalidName
	}
	if !strings.HasPrefix(h.URL, "http://") && !strings.HasPrefix(h.URL, "https://") {
		return ErrInvalidURL
	}
	if !ValidType(h.Type) {
		return ErrInvalidType
	}
	return nil
}
