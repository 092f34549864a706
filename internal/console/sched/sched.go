// Package sched provides a cancellable repeating scheduler. The
// orchestrator uses it so "exactly one armed timer" is a checked
// invariant rather than a side effect of clearing a handle.
package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Token identifies one armed repetition. Cancelling it guarantees no
// further runs are scheduled; a run already in flight completes.
type Token struct {
	done chan struct{}
	once sync.Once
}

type Scheduler struct {
	mu     sync.Mutex
	active map[*Token]struct{}
}

func New() *Scheduler {
	return &Scheduler{active: map[*Token]struct{}{}}
}

// Schedule arms a repeating timer that runs task every interval. A tick
// that fires while the previous run is still busy is skipped.
func (s *Scheduler) Schedule(interval time.Duration, task func()) *Token {
	token := &Token{done: make(chan struct{})}

	s.mu.Lock()
	s.active[token] = struct{}{}
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var busy atomic.Bool
		for {
			select {
			case <-token.done:
				return
			case <-ticker.C:
				if !busy.CompareAndSwap(false, true) {
					continue
				}
				go func() {
					defer busy.Store(false)
					task()
				}()
			}
		}
	}()
	return token
}

// Cancel is idempotent; cancelling a nil or already-cancelled token is a
// no-op.
func (s *Scheduler) Cancel(token *Token) {
	if token == nil {
		return
	}
	token.once.Do(func() {
		close(token.done)
		s.mu.Lock()
		delete(s.active, token)
		s.mu.Unlock()
	})
}

// Active reports how many timers are currently armed.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
