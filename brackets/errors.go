package brackets

import "errors"

// Precondition failures reported by the round-robin engine. Callers are
// expected to check these with errors.Is; a rejected call never mutates
// engine state.
var (
	ErrBracketFrozen      = errors.New("bracket is already frozen")
	ErrBracketNotFrozen   = errors.New("bracket is not frozen yet")
	ErrInvalidMatchResult = errors.New("invalid match result")
	ErrUserNotAdded       = errors.New("participant is not in the bracket")
	ErrInvalidMatch       = errors.New("no such match is available")
	ErrTournamentNotEnded = errors.New("tournament has not ended yet")
)
