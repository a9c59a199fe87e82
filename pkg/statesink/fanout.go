package statesink

import (
	"context"
	"errors"
	"fmt"
)

// Fanout writes to every sink and reads from the first one that can serve the read
type Fanout []Sink

func (f Fanout) each(fn func(s Sink) error) error {
	var errs []error
	for i, s := range f {
		if err := fn(s); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// Merge merges into every sink
func (f Fanout) Merge(ctx context.Context, matchID string, updates map[string]interface{}) error {
	return f.each(func(s Sink) error {
		return s.Merge(ctx, matchID, updates)
	})
}

// Get returns the state of the first sink that supports reads
func (f Fanout) Get(ctx context.Context, matchID string) (State, error) {
	for _, s := range f {
		st, err := s.Get(ctx, matchID)
		if errors.Is(err, ErrNotSupported) {
			continue
		}

		return st, err
	}

	return nil, ErrNotSupported
}

// Publish publishes to every sink
func (f Fanout) Publish(ctx context.Context, matchID string, event Event) error {
	return f.each(func(s Sink) error {
		return s.Publish(ctx, matchID, event)
	})
}

// Delete deletes from every sink
func (f Fanout) Delete(ctx context.Context, matchID string) error {
	return f.each(func(s Sink) error {
		return s.Delete(ctx, matchID)
	})
}

// Close closes every sink
func (f Fanout) Close() error {
	return f.each(func(s Sink) error {
		return s.Close()
	})
}
