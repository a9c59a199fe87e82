package recall

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs fn after d
// The returned function cancels the task if it has not run yet
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type manualTask struct {
	seq       int
	at        time.Duration
	fn        func()
	cancelled bool
}

// ManualScheduler is a virtual clock
// Tasks only run when the clock is advanced
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

// NewManualScheduler returns a scheduler at virtual time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc queues fn to run once the clock passes d
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	task := &manualTask{seq: m.seq, at: m.now + d, fn: fn}
	m.tasks = append(m.tasks, task)

	return func() {
		m.mu.Lock()
		task.cancelled = true
		m.mu.Unlock()
	}
}

// Now returns the virtual time
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Pending returns the number of tasks that have not run or been cancelled
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}

	return n
}

// Advance moves the clock forward by d and runs every task due
// Tasks scheduled while advancing run too if they fall due
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	until := m.now + d
	m.mu.Unlock()

	for {
		task := m.next(until)
		if task == nil {
			break
		}

		task.fn()
	}

	m.mu.Lock()
	if m.now < until {
		m.now = until
	}
	m.mu.Unlock()
}

// RunNext advances the clock to the next task and runs it
// It returns false when nothing is queued
func (m *ManualScheduler) RunNext() bool {
	task := m.next(-1)
	if task == nil {
		return false
	}

	task.fn()
	return true
}

// Flush runs tasks until the queue is empty or limit tasks have run
// It returns the number of tasks run
func (m *ManualScheduler) Flush(limit int) int {
	n := 0
	for n < limit && m.RunNext() {
		n++
	}

	return n
}

// next pops the earliest live task due by until, or any task if until is negative
func (m *ManualScheduler) next(until time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live

	if len(m.tasks) == 0 {
		return nil
	}

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at == m.tasks[j].at {
			return m.tasks[i].seq < m.tasks[j].seq
		}

		return m.tasks[i].at < m.tasks[j].at
	})

	task := m.tasks[0]
	if until >= 0 && task.at > until {
		return nil
	}

	m.tasks = m.tasks[1:]
	if task.at > m.now {
		m.now = task.at
	}

	return task
}
