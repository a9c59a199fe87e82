package room

import (
	"time"
)

// loopScheduler runs timer callbacks on the match's run loop
type loopScheduler struct {
	m *Match
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		s.m.post(fn)
	})

	return func() {
		t.Stop()
	}
}
