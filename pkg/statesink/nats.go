package statesink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS publishes state updates and events, it does not store anything
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server at url
func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("recall-server"))
	if err != nil {
		return nil, fmt.Errorf("could not connect to nats: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// StateSubject is the subject state updates are published on
func StateSubject(matchID string) string {
	return fmt.Sprintf("recall.match.%s.state", matchID)
}

// EventSubject is the subject events are published on
func EventSubject(matchID string) string {
	return fmt.Sprintf("recall.match.%s.events", matchID)
}

// Merge publishes the updates as one JSON object
func (n *NATS) Merge(_ context.Context, matchID string, updates map[string]interface{}) error {
	b, err := json.Marshal(updates)
	if err != nil {
		return err
	}

	return n.conn.Publish(StateSubject(matchID), b)
}

// Get is not supported
func (n *NATS) Get(context.Context, string) (State, error) {
	return nil, ErrNotSupported
}

// Publish publishes the JSON encoded event
func (n *NATS) Publish(_ context.Context, matchID string, event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.conn.Publish(EventSubject(matchID), b)
}

// Delete is a no-op
func (n *NATS) Delete(context.Context, string) error {
	return nil
}

// Close drains the connection
func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}

	return n.conn.Drain()
}
