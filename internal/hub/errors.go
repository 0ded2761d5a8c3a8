package hub

import "errors"

// Domain errors for the hub package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, hub.ErrHubNotFound) {
//	    // handle not found case
//	}
var (
	// ErrHubNotFound is returned when a hub ID does not exist.
	ErrHubNotFound = errors.New("hub: not found")

	// ErrHubExists is returned when registering a hub whose ID already exists.
	ErrHubExists = errors.New("hub: already exists")

	// ErrLocalHubProtected is returned when attempting to remove the local hub.
	ErrLocalHubProtected = errors.New("hub: local hub cannot be removed")

	// ErrInvalidHub is returned when a hub fails basic validation.
	ErrInvalidHub = errors.New("hub: invalid")

	// ErrInvalidName is returned when a hub name is empty.
	ErrInvalidName = errors.New("hub: invalid name")

	// ErrInvalidURL is returned when a hub URL is not an http(s) URL.
	ErrInvalidURL = errors.New("hub: invalid url")

	// ErrInvalidType is returned when a hub type is not recognised.
	ErrInvalidType = errors.New("hub: invalid type")

	// ErrProbeFailed is returned when a hub's health endpoint could not be
	// reached or rejected the probe. The underlying client error is wrapped.
	ErrProbeFailed = errors.New("hub: health probe failed")
)
