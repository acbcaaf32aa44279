package services

import "errors"

// Workflow error taxonomy. Services detect these before or while mutating;
// handlers map them onto HTTP statuses. Store failures are not sentinels:
// they propagate wrapped with the name of the step that failed.
var (
	// ErrNotFound means an entity id did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is not permitted for the entity/action.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means the entity is not in the required state for the
	// requested operation.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition means the requested milestone transition is not
	// on the forward path of the state machine.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrValidation means the input was missing or malformed. Detected
	// before any mutation.
	ErrValidation = errors.New("validation failed")
)
