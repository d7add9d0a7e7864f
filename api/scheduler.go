/*
scheduler.go - Background purge of expired past employees

PURPOSE:
  A past employee stays recoverable for 120 days, then the record is
  removed for good. This scheduler runs the sweep periodically so purging
  does not depend on anyone opening the past-employees view.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Sweeps immediately on start, then on every tick
  - Saves state only when something was actually removed

USAGE:
  sweeper := NewExpirySweeper(store, logger)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - roster/roster.go: SweepExpired
  - handlers.go: The manual /api/employees/sweep endpoint
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gravity/hrm-engine/hrm"
	"github.com/gravity/hrm-engine/roster"
)

// ExpirySweeper periodically purges expired past employees.
type ExpirySweeper struct {
	Store         *hrm.Store
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewExpirySweeper creates a sweeper with the default one-minute interval.
func NewExpirySweeper(store *hrm.Store, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		Store:         store,
		Logger:        logger,
		CheckInterval: time.Minute,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the sweeper.
func (s *ExpirySweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("expiry sweeper disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Logger.Info("expiry sweeper started", "interval", s.CheckInterval)
}

// Stop stops the sweeper and waits for the in-flight sweep.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Logger.Info("expiry sweeper stopped")
	}
}

func (s *ExpirySweeper) run() {
	defer s.wg.Done()

	// Sweep immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *ExpirySweeper) sweep() {
	ctx := context.Background()

	st, err := s.Store.LoadState(ctx)
	if err != nil {
		s.Logger.Error("sweep: failed to load state", "error", err)
		return
	}

	removed := roster.SweepExpired(st, time.Now())
	if removed == 0 {
		return
	}

	if err := s.Store.SaveState(ctx, st); err != nil {
		s.Logger.Error("sweep: failed to save state", "error", err)
		return
	}
	s.Logger.Info("purged expired past employees", "removed", removed)
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *ExpirySweeper) RunNow() {
	s.sweep()
}
