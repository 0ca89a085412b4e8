// Package scheduler runs the periodic background sync for connected
// storefront accounts.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/controllers"
)

// Scheduler re-imports connected Steam libraries on a fixed cadence.
// Applies are idempotent, so an overlapping manual import is harmless.
type Scheduler struct {
	importCtrl *controllers.ImportController
	interval   time.Duration
	logger     zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a new scheduler.
func NewScheduler(importCtrl *controllers.ImportController, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		importCtrl: importCtrl,
		interval:   interval,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the sync loop. The first sweep runs after one full
// interval, not at startup, so a restart storm does not hammer the
// storefront API.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting background sync scheduler")

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSync(ctx)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sync loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	s.logger.Info().Msg("Background sync scheduler stopped")
}

func (s *Scheduler) runSync(ctx context.Context) {
	s.logger.Info().Msg("Running background library sync")
	if err := s.importCtrl.SyncConnected(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Background library sync failed")
	}
}
