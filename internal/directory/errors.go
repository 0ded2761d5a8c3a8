package directory

import "errors"

// Domain errors for the directory package.
var (
	// ErrDeviceNotFound is returned when a device ID is not in the directory.
	ErrDeviceNotFound = errors.New("directory: device not found")

	// ErrScanInProgress is returned when a scan is requested while another
	// scan's grace window is still open.
	ErrScanInProgress = errors.New("directory: scan already in progress")
)
