package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Processor runs one batch. Coordinator implements it.
type Processor interface {
	ProcessEvents(ctx context.Context, daysFromToday int) (RunSummary, error)
}

// Scheduler runs batches on an interval and on demand. Runs never overlap
// within a process. Triggers and ticks arriving while a run, including its
// quiet period, is in flight are dropped rather than replayed afterwards.
type Scheduler struct {
	proc     Processor
	interval time.Duration
	days     int
	clock    clockwork.Clock
	logger   *slog.Logger
	trigger  chan int
	active   atomic.Bool
}

// NewScheduler creates a Scheduler that covers days ahead on each interval
// run. A zero interval disables periodic runs. A nil clock uses real time.
func NewScheduler(proc Processor, interval time.Duration, days int, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		proc:     proc,
		interval: interval,
		days:     days,
		clock:    clock,
		logger:   logger,
		trigger:  make(chan int, 1),
	}
}

// Trigger queues a run over days ahead. It reports false when a run is in
// flight or a trigger is already queued.
func (s *Scheduler) Trigger(days int) bool {
	if s.active.Load() {
		return false
	}
	select {
	case s.trigger <- days:
		return true
	default:
		return false
	}
}

// Run processes once at start, then on every tick or trigger until ctx is
// cancelled. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := s.clock.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.Chan()
		s.runOnce(ctx, s.days, "startup", tick)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			s.runOnce(ctx, s.days, "interval", tick)
		case days := <-s.trigger:
			s.runOnce(ctx, days, "trigger", tick)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, days int, reason string, tick <-chan time.Time) {
	s.active.Store(true)
	defer s.active.Store(false)
	defer s.discardPending(tick)

	_, err := s.proc.ProcessEvents(ctx, days)
	switch {
	case err == nil, errors.Is(err, domain.ErrLockUnavailable):
	case ctx.Err() != nil:
		s.logger.Info("run interrupted by shutdown", "reason", reason)
	default:
		s.logger.Error("scheduled run failed", "reason", reason, "days", days, "error", err)
	}
}

// discardPending drops a trigger or tick that slipped in while the run was
// in flight.
func (s *Scheduler) discardPending(tick <-chan time.Time) {
	for {
		select {
		case days := <-s.trigger:
			s.logger.Debug("dropped trigger received during run", "days", days)
		case <-tick:
		default:
			return
		}
	}
}
