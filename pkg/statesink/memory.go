package statesink

import (
	"context"
	"sync"
)

// MessageKind is the type of a Message
type MessageKind string

// Message kinds
const (
	MessageState MessageKind = "state"
	MessageEvent MessageKind = "event"
)

// Message is what a Memory subscriber receives
type Message struct {
	MatchID string      `json:"matchId"`
	Kind    MessageKind `json:"kind"`
	State   State       `json:"state,omitempty"`
	Event   *Event      `json:"event,omitempty"`
}

const subscriberBuffer = 64

// Memory is an in-process sink
type Memory struct {
	mu          sync.RWMutex
	matches     map[string]State
	subscribers map[string]map[chan Message]bool
}

// NewMemory returns an empty in-process sink
func NewMemory() *Memory {
	return &Memory{
		matches:     make(map[string]State),
		subscribers: make(map[string]map[chan Message]bool),
	}
}

// Merge stores the updates and sends them to the match's subscribers
func (m *Memory) Merge(_ context.Context, matchID string, updates map[string]interface{}) error {
	encoded, err := Encode(updates)
	if err != nil {
		return err
	}

	m.mu.Lock()
	st, ok := m.matches[matchID]
	if !ok {
		st = make(State)
		m.matches[matchID] = st
	}

	for key, val := range encoded {
		st[key] = val
	}
	m.mu.Unlock()

	m.broadcast(Message{MatchID: matchID, Kind: MessageState, State: encoded})
	return nil
}

// Get returns a copy of the match's state
// A match that was never updated has an empty state
func (m *Memory) Get(_ context.Context, matchID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := make(State, len(m.matches[matchID]))
	for key, val := range m.matches[matchID] {
		st[key] = val
	}

	return st, nil
}

// Publish sends the event to the match's subscribers
func (m *Memory) Publish(_ context.Context, matchID string, event Event) error {
	m.broadcast(Message{MatchID: matchID, Kind: MessageEvent, Event: &event})
	return nil
}

// Delete removes the match's state and closes its subscriptions
func (m *Memory) Delete(_ context.Context, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.matches, matchID)
	for ch := range m.subscribers[matchID] {
		close(ch)
	}

	delete(m.subscribers, matchID)
	return nil
}

// Subscribe returns a channel of every state update and event of the match
// Messages are dropped for subscribers that do not keep up
func (m *Memory) Subscribe(matchID string) (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)

	m.mu.Lock()
	subs, ok := m.subscribers[matchID]
	if !ok {
		subs = make(map[chan Message]bool)
		m.subscribers[matchID] = subs
	}
	subs[ch] = true
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			if subs, ok := m.subscribers[matchID]; ok && subs[ch] {
				delete(subs, ch)
				close(ch)
			}
		})
	}
}

func (m *Memory) broadcast(msg Message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subscribers[msg.MatchID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Close closes every subscription
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for matchID, subs := range m.subscribers {
		for ch := range subs {
			close(ch)
		}

		delete(m.subscribers, matchID)
	}

	return nil
}
