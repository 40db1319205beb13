package workflow

import "errors"

// Workflow failures are typed so callers can map them to responses with
// errors.Is. A failed action never touches the issue.
var (
	// ErrUnauthorized means the actor's role is not eligible for the issue,
	// or a personal-queue issue is assigned to someone else.
	ErrUnauthorized = errors.New("actor not authorized for this action")

	// ErrInvalidState means the action does not apply to the issue's
	// current status.
	ErrInvalidState = errors.New("action not valid in current status")

	// ErrInvalidPayload means a required field for the action is missing
	// or invalid.
	ErrInvalidPayload = errors.New("invalid action payload")
)
