package ticketing

import "errors"

var (
	// ErrInvalidScope is returned for an unknown branch or service.
	ErrInvalidScope = errors.New("invalid branch or service")
	// ErrNotFound is returned when a referenced token does not exist.
	ErrNotFound = errors.New("token not found")
	// ErrAlreadyTerminal is returned when a transition targets a token
	// that is no longer waiting.
	ErrAlreadyTerminal = errors.New("token is not waiting")
	// ErrDuplicateTokenNumber is returned by a Store when the token number
	// is already taken.  Issue retries it before giving up.
	ErrDuplicateTokenNumber = errors.New("duplicate token number")
	// ErrEmptyQueue is returned by ServeNext when no token is waiting.
	ErrEmptyQueue = errors.New("no waiting tokens")
)

// Machine-readable error kinds reported to API clients.
const (
	KindInvalidScope    = "invalid_scope"
	KindNotFound        = "not_found"
	KindAlreadyTerminal = "already_terminal"
	KindDuplicateNumber = "duplicate_token_number"
	KindEmptyQueue      = "empty_queue"
	KindInternal        = "internal"
)

// KindOf classifies err into one of the Kind constants.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidScope):
		return KindInvalidScope
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyTerminal):
		return KindAlreadyTerminal
	case errors.Is(err, ErrDuplicateTokenNumber):
		return KindDuplicateNumber
	case errors.Is(err, ErrEmptyQueue):
		return KindEmptyQueue
	default:
		return KindInternal
	}
}
