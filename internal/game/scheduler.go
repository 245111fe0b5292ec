package game

import (
	"sync"
	"time"
)

// Scheduler runs fn every period until the returned cancel is called. Cancel
// never blocks and may be called from inside fn.
type Scheduler interface {
	Every(period time.Duration, fn func()) (cancel func())
}

type TickerScheduler struct{}

func (TickerScheduler) Every(period time.Duration, fn func()) func() {
	ticker := time.NewTicker(period)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ManualScheduler only ticks when told to.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks map[int]func()
	next  int
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

func (m *ManualScheduler) Every(period time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.tasks[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, id)
	}
}

// Tick fires every active task n times. Tasks cancelled during a round do not
// fire in later rounds.
func (m *ManualScheduler) Tick(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.tasks))
		for _, fn := range m.tasks {
			fns = append(fns, fn)
		}
		m.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
