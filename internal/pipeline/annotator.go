package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ForecastSource returns the hourly forecast for a point over [from, to).
type ForecastSource interface {
	HourlyForecast(ctx context.Context, c domain.Coordinates, from, to time.Time) (domain.Forecast, error)
}

// Window is the time range a run covers.
type Window struct {
	From time.Time
	To   time.Time
}

// Annotator runs the per-event pipeline: coordinates, forecast, solar times,
// then the pure domain annotation.
type Annotator struct {
	resolver        domain.CoordinateResolver
	forecasts       ForecastSource
	cfg             domain.AnnotateConfig
	defaultLocation string
	location        *time.Location
	goNoGo          *regexp.Regexp
	clock           clockwork.Clock
	logger          *slog.Logger
}

// AnnotatorOptions configures an Annotator.
type AnnotatorOptions struct {
	Config          domain.AnnotateConfig
	DefaultLocation string
	// Location is the zone event times are rendered and classified in.
	Location *time.Location
	// GoNoGo selects events that get a go/no-go verdict. Nil disables it.
	GoNoGo *regexp.Regexp
	Clock  clockwork.Clock
}

// NewAnnotator creates an Annotator.
func NewAnnotator(resolver domain.CoordinateResolver, forecasts ForecastSource, opts AnnotatorOptions, logger *slog.Logger) *Annotator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Annotator{
		resolver:        resolver,
		forecasts:       forecasts,
		cfg:             opts.Config,
		defaultLocation: opts.DefaultLocation,
		location:        opts.Location,
		goNoGo:          opts.GoNoGo,
		clock:           opts.Clock,
		logger:          logger,
	}
}

// Delimiters returns the text delimiters in force.
func (a *Annotator) Delimiters() domain.Delimiters {
	return a.cfg.Delimiters
}

// Annotate computes the new title and description for ev. Lookups go
// through cache so events sharing a location cost one upstream call.
func (a *Annotator) Annotate(ctx context.Context, ev domain.Event, cache *RunCache, w Window) (domain.AnnotateResult, error) {
	ev.Start, ev.End = ev.Start.In(a.location), ev.End.In(a.location)

	coords, err := cache.Coordinates(ctx, ev.Location, func(ctx context.Context) (domain.Coordinates, error) {
		return domain.ResolveCoordinates(ctx, a.resolver, ev.Location, a.defaultLocation, a.logger)
	})
	if err != nil {
		return domain.AnnotateResult{}, fmt.Errorf("coordinates: %w", err)
	}

	fc, err := cache.Forecast(ctx, coords, func(ctx context.Context) (domain.Forecast, error) {
		return a.forecasts.HourlyForecast(ctx, coords, w.From, w.To)
	})
	if err != nil {
		return domain.AnnotateResult{}, fmt.Errorf("forecast: %w", err)
	}

	return domain.Annotate(domain.AnnotateInput{
		Event:        ev,
		Forecast:     fc,
		Solar:        cache.SolarLookup(coords),
		WithDecision: a.wantsDecision(ev),
		Now:          a.clock.Now(),
	}, a.cfg)
}

func (a *Annotator) wantsDecision(ev domain.Event) bool {
	if a.goNoGo == nil {
		return false
	}
	s := domain.EventTextState{Title: ev.Title, Delimiters: a.cfg.Delimiters}
	return a.goNoGo.MatchString(s.UserTitle())
}
