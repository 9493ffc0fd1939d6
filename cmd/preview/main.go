// Command preview renders the annotated title and description for one event
// from a saved forecast, without touching the event store or any upstream
// API.
//
// Usage:
//
//	go run ./cmd/preview \
//	  -forecast testdata/metno_compact.json -format metno \
//	  -title "Morning Run" -start 2024-05-01T06:00:00-05:00 -duration 1h \
//	  -lat 30.2669 -lon -97.7729 -tz America/Chicago
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/adapter/metno"
	"github.com/couchcryptid/event-weather-service/internal/config"
	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/couchcryptid/event-weather-service/internal/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	forecastPath := fs.String("forecast", "", "forecast JSON file (required)")
	format := fs.String("format", "domain", "forecast file format: domain or metno")
	title := fs.String("title", "", "event title, may already carry a weather suffix")
	description := fs.String("description", "", "event description")
	startRaw := fs.String("start", "", "event start, RFC 3339 (required)")
	duration := fs.Duration("duration", time.Hour, "event length")
	lat := fs.Float64("lat", 0, "latitude for solar times")
	lon := fs.Float64("lon", 0, "longitude for solar times")
	tz := fs.String("tz", "UTC", "IANA zone to render times in")
	gearPath := fs.String("gear", "", "gear rules YAML file; defaults to the built-in table")
	goNoGo := fs.String("go-no-go", "", "title pattern that adds a go/no-go verdict")
	threshold := fs.Float64("go-threshold", 70, "score required for GO")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *forecastPath == "" || *startRaw == "" {
		fs.Usage()
		return fmt.Errorf("-forecast and -start are required")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}
	start, err := time.Parse(time.RFC3339, *startRaw)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	rules, err := config.LoadGearRules(*gearPath)
	if err != nil {
		return err
	}
	forecast, err := readForecast(*forecastPath, *format)
	if err != nil {
		return err
	}

	withDecision := false
	if *goNoGo != "" {
		re, err := regexp.Compile(*goNoGo)
		if err != nil {
			return fmt.Errorf("invalid -go-no-go: %w", err)
		}
		withDecision = re.MatchString(*title)
	}

	cfg := previewConfig(rules, *threshold)
	ev := domain.Event{
		ID:          "preview",
		Start:       start.In(loc),
		End:         start.Add(*duration).In(loc),
		Title:       *title,
		Description: *description,
	}
	cache := pipeline.NewRunCache()
	res, err := domain.Annotate(domain.AnnotateInput{
		Event:        ev,
		Forecast:     forecast,
		Solar:        cache.SolarLookup(domain.Coordinates{Lat: *lat, Lon: *lon}),
		WithDecision: withDecision,
		Now:          time.Now().In(loc),
	}, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Title)
	fmt.Fprintln(out, strings.Repeat("=", len([]rune(res.Title))))
	fmt.Fprintln(out, res.Description)
	return nil
}

// previewConfig mirrors the service defaults.
func previewConfig(rules []domain.GearRule, threshold float64) domain.AnnotateConfig {
	return domain.AnnotateConfig{
		DawnMinutes: 30,
		DuskMinutes: 30,
		Render:      domain.RenderOptions{HumidDewpointMinF: 65, LightWindMaxMph: 10},
		Delimiters: domain.Delimiters{
			Title:            " | ",
			Description:      "\n----- weather -----",
			ErrorTitle:       " | ⚠",
			ErrorDescription: "\n----- weather error -----",
		},
		GearRules:         rules,
		DecisionLimits:    domain.DefaultOutdoorLimits(),
		DecisionThreshold: threshold,
		Activities:        domain.DefaultActivities(),
	}
}

func readForecast(path, format string) (domain.Forecast, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Forecast{}, err
	}
	defer f.Close()

	switch format {
	case "metno":
		return metno.ParseCompact(f)
	case "domain":
		var fc domain.Forecast
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return domain.Forecast{}, fmt.Errorf("decode forecast: %w", err)
		}
		return fc, nil
	default:
		return domain.Forecast{}, fmt.Errorf("unknown -format %q", format)
	}
}
