package scenario

import "errors"

// Domain errors for the scenario package.
var (
	// ErrScenarioNotFound is returned when a scenario ID does not exist.
	ErrScenarioNotFound = errors.New("scenario: not found")

	// ErrScenarioExists is returned when creating a scenario whose ID
	// already exists.
	ErrScenarioExists = errors.New("scenario: already exists")

	// ErrInvalidScenario is returned when a scenario fails validation.
	ErrInvalidScenario = errors.New("scenario: invalid")

	// ErrInvalidName is returned when a scenario name is empty.
	ErrInvalidName = errors.New("scenario: invalid name")
)
