package command

import "errors"

// Domain errors for the command package. These are validation
// failures: the command never reached the hub.
var (
	// ErrInvalidColor is returned when a colour is not #RRGGBB.
	ErrInvalidColor = errors.New("command: invalid color, expected #RRGGBB")

	// ErrLevelOutOfRange is returned when a brightness or volume level
	// is outside 0-100.
	ErrLevelOutOfRange = errors.New("command: level out of range 0-100")
)
