package room

import "errors"

// ErrMatchNotFound is returned when no match has the ID
var ErrMatchNotFound = errors.New("match not found")

// ErrMatchExists is returned when a match is created with an ID in use
var ErrMatchExists = errors.New("match already exists")

// ErrMatchClosed is returned for work sent to a match after it was disposed
var ErrMatchClosed = errors.New("match is closed")

// ErrEngineClosed is returned when a match is created after Shutdown
var ErrEngineClosed = errors.New("engine is shut down")

// ErrStartFromSeat is returned when a seated player sends start_match
var ErrStartFromSeat = errors.New("matches cannot be started from a seat")

// ErrPanic wraps a recovered panic
var ErrPanic = errors.New("recovered panic")

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}
