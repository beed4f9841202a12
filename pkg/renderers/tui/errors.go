package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoFields is returned when an action needs a field and the list is
	// empty.
	ErrNoFields = errors.New("tui: no fields")
)
