package model

import "errors"

// ErrMatchNotFound is returned when no match was recorded with the ID
var ErrMatchNotFound = errors.New("match not found")

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}
