package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/couchcryptid/event-weather-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// EventSource lists candidate events starting in [from, to).
type EventSource interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]domain.Event, error)
}

// EventUpdater writes an event's new title and description.
type EventUpdater interface {
	UpdateEvent(ctx context.Context, id, title, description string) error
}

// AnnotationPublisher emits the per-event records of a run.
type AnnotationPublisher interface {
	Publish(ctx context.Context, annotations []domain.Annotation) error
}

// RunSummary reports what one run did.
type RunSummary struct {
	RunID    string
	Window   Window
	Listed   int
	Filtered int
	Updated  int
	Skipped  int
	Failed   int
	Errors   []*domain.EventUpdateError
	Duration time.Duration
}

// Options tunes a Coordinator.
type Options struct {
	LockTimeout time.Duration
	QuietPeriod time.Duration
	// Location anchors "today" for the run window.
	Location *time.Location
	// Filter selects events to annotate. Nil keeps every event.
	Filter EventFilter
}

// Dependencies are the collaborators of a Coordinator. Publisher is
// optional.
type Dependencies struct {
	Events    EventSource
	Updater   EventUpdater
	Annotator *Annotator
	Lock      Lock
	Publisher AnnotationPublisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Coordinator drives batch runs: it takes the run lock, annotates every
// matching event with per-event failure isolation, then holds the lock for
// a quiet period so triggers arriving right after a run are no-ops.
type Coordinator struct {
	events    EventSource
	updater   EventUpdater
	annotator *Annotator
	lock      Lock
	publisher AnnotationPublisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	ready     atomic.Bool
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(d Dependencies, opts Options) *Coordinator {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Filter == nil {
		opts.Filter = All()
	}
	return &Coordinator{
		events:    d.Events,
		updater:   d.Updater,
		annotator: d.Annotator,
		lock:      d.Lock,
		publisher: d.Publisher,
		clock:     d.Clock,
		logger:    d.Logger,
		metrics:   d.Metrics,
		opts:      opts,
	}
}

// CheckReadiness returns nil once a run has completed, or an error
// describing why the service is not yet ready.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("no processing run has completed yet")
	}
	return nil
}

// ProcessEvents runs one batch over events starting between now and
// midnight at the end of the day daysFromToday days ahead. It returns
// domain.ErrLockUnavailable without reading any event when another run
// holds the lock past the timeout. Per-event failures never fail the run.
func (c *Coordinator) ProcessEvents(ctx context.Context, daysFromToday int) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	log := c.logger.With("run_id", summary.RunID)

	ok, err := c.lock.Acquire(ctx, c.opts.LockTimeout)
	if err != nil {
		c.metrics.RunsTotal.WithLabelValues("error").Inc()
		return summary, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		c.metrics.LockFailures.Inc()
		c.metrics.RunsTotal.WithLabelValues("lock_unavailable").Inc()
		log.Warn("run lock unavailable, skipping run", "timeout", c.opts.LockTimeout)
		return summary, domain.ErrLockUnavailable
	}
	defer c.release(log)

	c.metrics.RunInProgress.Set(1)
	defer c.metrics.RunInProgress.Set(0)

	start := c.clock.Now()
	summary.Window = c.window(start, daysFromToday)
	log.Info("run started", "from", summary.Window.From, "to", summary.Window.To)

	if err := c.run(ctx, &summary, log); err != nil {
		c.metrics.RunsTotal.WithLabelValues("error").Inc()
		log.Error("run failed", "error", err)
		return summary, err
	}

	summary.Duration = c.clock.Since(start)
	c.metrics.RunsTotal.WithLabelValues("success").Inc()
	c.metrics.RunDuration.Observe(summary.Duration.Seconds())
	c.metrics.LastRunTimestamp.Set(float64(c.clock.Now().Unix()))
	c.ready.Store(true)
	log.Info("run finished",
		"listed", summary.Listed,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)

	c.holdQuietPeriod(ctx, c.opts.QuietPeriod)
	return summary, nil
}

func (c *Coordinator) run(ctx context.Context, summary *RunSummary, log *slog.Logger) error {
	events, err := c.events.ListEvents(ctx, summary.Window.From, summary.Window.To)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	summary.Listed = len(events)

	cache := NewRunCache()
	annotations := make([]domain.Annotation, 0, len(events))
	for _, ev := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.opts.Filter(ev) {
			summary.Filtered++
			c.metrics.EventsProcessed.WithLabelValues("filtered").Inc()
			continue
		}
		a := c.processEvent(ctx, ev, cache, summary, log.With("event_id", ev.ID))
		c.metrics.EventsProcessed.WithLabelValues(string(a.Outcome)).Inc()
		if a.Outcome != domain.OutcomeSkipped {
			annotations = append(annotations, a)
		}
	}
	c.metrics.EventsPerRun.Observe(float64(summary.Listed - summary.Filtered))

	c.publish(ctx, annotations, log)
	return nil
}

// processEvent annotates one event and writes it back. Nothing it does can
// fail the run.
func (c *Coordinator) processEvent(ctx context.Context, ev domain.Event, cache *RunCache, summary *RunSummary, log *slog.Logger) domain.Annotation {
	res, err := c.annotator.Annotate(ctx, ev, cache, summary.Window)
	switch {
	case errors.Is(err, domain.ErrNoMatchingForecastHour):
		log.Warn("no forecast for event window, skipping event", "error", err)
		summary.Skipped++
		return domain.NewAnnotation(ev.ID, summary.RunID, domain.OutcomeSkipped)
	case err != nil:
		return c.fail(ctx, ev, err, summary, log)
	}

	if err := c.updater.UpdateEvent(ctx, ev.ID, res.Title, res.Description); err != nil {
		return c.fail(ctx, ev, fmt.Errorf("update event: %w", err), summary, log)
	}

	summary.Updated++
	a := domain.NewAnnotation(ev.ID, summary.RunID, domain.OutcomeUpdated)
	a.Title, a.Description = res.Title, res.Description
	a.Gear = res.Gear
	if res.Decision != nil {
		a.Verdict, a.Score = res.Decision.Verdict, res.Decision.Score
	}
	return a
}

// fail records err on the event as an error block, replacing any earlier
// weather or error block.
func (c *Coordinator) fail(ctx context.Context, ev domain.Event, err error, summary *RunSummary, log *slog.Logger) domain.Annotation {
	updateErr := &domain.EventUpdateError{EventID: ev.ID, Err: err}
	summary.Failed++
	summary.Errors = append(summary.Errors, updateErr)
	log.Warn("event annotation failed", "error", err)

	state := domain.EventTextState{
		Title:       ev.Title,
		Description: ev.Description,
		Delimiters:  c.annotator.Delimiters(),
	}
	title, desc := domain.MergeError(state, err.Error(), c.clock.Now().In(c.opts.Location))
	if werr := c.updater.UpdateEvent(ctx, ev.ID, title, desc); werr != nil {
		log.Error("write error block failed", "error", werr)
	}

	a := domain.NewAnnotation(ev.ID, summary.RunID, domain.OutcomeFailed)
	a.Title, a.Description = title, desc
	a.Error = err.Error()
	return a
}

func (c *Coordinator) publish(ctx context.Context, annotations []domain.Annotation, log *slog.Logger) {
	if c.publisher == nil || len(annotations) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, annotations); err != nil {
		log.Error("publish annotations failed", "error", err, "count", len(annotations))
	}
}

// holdQuietPeriod keeps the lock for d after a run, returning early on
// cancellation.
func (c *Coordinator) holdQuietPeriod(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.Chan():
	}
}

func (c *Coordinator) release(log *slog.Logger) {
	// The run context may already be cancelled; unlocking must still happen.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.lock.Release(ctx); err != nil {
		log.Error("release run lock failed", "error", err)
	}
}

func (c *Coordinator) window(now time.Time, days int) Window {
	now = now.In(c.opts.Location)
	days = max(days, 0)
	y, m, d := now.Date()
	end := time.Date(y, m, d+days+1, 0, 0, 0, 0, c.opts.Location)
	return Window{From: now, To: end}
}
