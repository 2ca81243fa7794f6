package harvester

import "errors"

var (
	// ErrInvalidSchedule indicates a schedule that does not parse.
	ErrInvalidSchedule = errors.New("harvester: invalid schedule")

	// ErrAlreadyStarted indicates Start was called on a running harvester.
	ErrAlreadyStarted = errors.New("harvester: already started")
)
