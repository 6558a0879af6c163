// Package stats serves the visit counter and build metadata shown on the
// front page.
package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Info is the build metadata reported by the root endpoint.
type Info struct {
	GitHash string
	Version string
}

// Stats counts visits since process start and fans each new count out to
// websocket subscribers.
type Stats struct {
	info    Info
	start   time.Time
	counter atomic.Int64

	mu   sync.Mutex
	subs map[chan int64]struct{}
}

// New starts counting from zero.
func New(info Info) *Stats {
	return &Stats{
		info:  info,
		start: time.Now().UTC(),
		subs:  make(map[chan int64]struct{}),
	}
}

// Start returns when counting began.
func (s *Stats) Start() time.Time { return s.start }

// Count returns the current visit count.
func (s *Stats) Count() int64 { return s.counter.Load() }

// Visit records a visit and returns the new count.
func (s *Stats) Visit() int64 {
	n := s.counter.Add(1)
	s.publish(n)
	return n
}

// Subscribe returns a channel that always holds the most recent count not
// yet received. The returned func unsubscribes.
func (s *Stats) Subscribe() (<-chan int64, func()) {
	ch := make(chan int64, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

func (s *Stats) publish(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		// Slow readers only need the latest value.
		select {
		case <-ch:
		default:
		}
		ch <- n
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Stats) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
