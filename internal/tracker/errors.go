package tracker

import "errors"

// Errors returned to operators (CLI, HTTP). The statistics engine itself never fails.
var (
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionActive   = errors.New("a session is already active")
	ErrUnknownProduct  = errors.New("unknown donation product")
	ErrInvalidProvider = errors.New("invalid sign-in provider")
)
