package exam

import "errors"

// Rejections are normal negative results: they are detected before any
// mutation and matched with errors.Is by callers.
var (
	ErrUnregistered    = errors.New("student not found in the students list")
	ErrSessionActive   = errors.New("an examination session is already active")
	ErrSessionClosed   = errors.New("examination session is closed, reset to start again")
	ErrNoActiveSession = errors.New("no active examination session")
	ErrEmailMismatch   = errors.New("email mismatch with current session")
)
