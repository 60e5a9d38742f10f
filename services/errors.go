package services

import "errors"

// Errors shared across services and the HTTP error mapping. Engine
// precondition failures (brackets.Err*) pass through the service layer
// unchanged so callers can match on them directly.
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTournamentNameConflict = errors.New("tournament name already in use by this organizer")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNotRunning   = errors.New("tournament has no live bracket")
	ErrTournamentCompleted    = errors.New("tournament is already completed")
	ErrParticipantConflict    = errors.New("participant is already registered for this tournament")
	ErrParticipantNotFound    = errors.New("participant registration not found")
	ErrHandleRequired         = errors.New("participant handle is required")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrAuthNicknameTaken      = errors.New("nickname is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
)
