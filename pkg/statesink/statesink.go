// Package statesink stores and publishes match state outside the match run loop
package statesink

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotSupported is returned by sinks that cannot serve an operation
var ErrNotSupported = errors.New("operation not supported by sink")

// State is the stored key-value state of a match
// Values are JSON encoded
type State map[string]json.RawMessage

// Event is a discrete occurrence in a match (i.e., an action error or the end of the game)
type Event struct {
	Kind     string                 `json:"kind"`
	PlayerID string                 `json:"playerId,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Time     time.Time              `json:"time"`
}

// Sink receives match state
type Sink interface {
	// Merge updates the given keys and leaves the rest of the state untouched
	Merge(ctx context.Context, matchID string, updates map[string]interface{}) error
	// Get returns the stored state of the match
	Get(ctx context.Context, matchID string) (State, error)
	// Publish sends a match event
	Publish(ctx context.Context, matchID string, event Event) error
	// Delete removes the state of the match
	Delete(ctx context.Context, matchID string) error
	Close() error
}

// Encode returns the JSON encoding of every update
func Encode(updates map[string]interface{}) (State, error) {
	st := make(State, len(updates))
	for key, val := range updates {
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}

		st[key] = b
	}

	return st, nil
}
