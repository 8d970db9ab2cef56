package chat

import "errors"

// Business-rule failures surfaced to the transport layer. The handler maps
// them onto HTTP status codes.
var (
	// ErrForbidden means the caller's identity is valid but lacks rights:
	// not a room member, or not the author of the message.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the referenced room, message or join code does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the request body was empty or malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// PolicyError is a time-window or state-machine violation. Reason is a
// user-displayable string.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

func policyViolation(reason string) error {
	return &PolicyError{Reason: reason}
}
