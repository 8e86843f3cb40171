// Package services hosts the background loops that keep game state honest
// without relying on a connected client: the deadline sweep and timer expiry.
package services

import (
	"log"
	"sync"
	"time"

	"studyquest/store"
)

const (
	// DefaultSweepInterval is how often deadlines are re-checked.
	DefaultSweepInterval = time.Minute
	// DefaultTimerInterval is how often running timers are checked for expiry.
	DefaultTimerInterval = time.Second
)

// Sweeper periodically runs the deadline sweep and timer-expiry check over
// every live store. It owns timer expiry so correctness does not depend on
// whichever client happens to be polling.
type Sweeper struct {
	stores        *store.Manager
	sweepInterval time.Duration
	timerInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSweeper(stores *store.Manager) *Sweeper {
	return &Sweeper{
		stores:        stores,
		sweepInterval: DefaultSweepInterval,
		timerInterval: DefaultTimerInterval,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the background loops. Call Stop to tear them down.
func (s *Sweeper) Start() {
	s.wg.Add(2)
	go s.runDeadlineSweep()
	go s.runTimerExpiry()
	log.Printf("Sweeper started (deadlines every %s, timers every %s)", s.sweepInterval, s.timerInterval)
}

// Stop halts both loops and waits for them to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Sweeper) runDeadlineSweep() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.stores.ForEach(func(st *store.Store) {
				st.SweepDeadlines(now)
			})
		}
	}
}

func (s *Sweeper) runTimerExpiry() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.timerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.stores.ForEach(func(st *store.Store) {
				st.ExpireTimers(now)
			})
		}
	}
}
