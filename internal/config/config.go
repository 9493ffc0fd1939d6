package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// MaxDaysAhead is the forecast horizon of the weather provider. The
// DAYS_AHEAD validation tag repeats it.
const MaxDaysAhead = 9

// Config holds all service settings, populated from environment variables.
// The env tag names the variable each field is read from; validation errors
// report that name.
type Config struct {
	DawnMinutes       int     `env:"DAWN_LENGTH_MINUTES" validate:"gte=0,lte=180"`
	DuskMinutes       int     `env:"DUSK_LENGTH_MINUTES" validate:"gte=0,lte=180"`
	HumidDewpointMinF float64 `env:"HUMID_DEWPOINT_MIN_F"`
	LightWindMaxMph   float64 `env:"LIGHT_WIND_MAX_MPH" validate:"gte=0"`

	TitleDelimiter            string `env:"TITLE_DELIMITER" validate:"required"`
	DescriptionDelimiter      string `env:"DESCRIPTION_DELIMITER" validate:"required"`
	ErrorTitleDelimiter       string `env:"ERROR_TITLE_DELIMITER" validate:"required"`
	ErrorDescriptionDelimiter string `env:"ERROR_DESCRIPTION_DELIMITER" validate:"required"`

	LockBackend string        `env:"LOCK_BACKEND" validate:"oneof=memory postgres"`
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" validate:"gt=0"`
	QuietPeriod time.Duration `env:"QUIET_PERIOD" validate:"gte=0"`

	DefaultCity  string         `env:"DEFAULT_CITY"`
	DefaultState string         `env:"DEFAULT_STATE"`
	Location     *time.Location `env:"TIMEZONE" validate:"required"`

	DaysAhead   int           `env:"DAYS_AHEAD" validate:"gte=0,lte=9"`
	RunInterval time.Duration `env:"RUN_INTERVAL" validate:"gt=0"`

	GoThreshold   float64        `env:"GO_THRESHOLD" validate:"gte=0,lte=100"`
	GoNoGoPattern *regexp.Regexp `env:"GO_NO_GO_PATTERN"`
	// Activities enables built-in decision profiles, matched by title keyword.
	Activities    []string       `env:"ACTIVITIES" validate:"dive,oneof=running cycling astronomy solar_observation"`
	GearRulesFile string         `env:"GEAR_RULES_FILE"`

	// Event selection.
	CalendarIDs     []string       `env:"CALENDAR_IDS"`
	ColorIDs        []string       `env:"COLOR_IDS"`
	TitlePattern    *regexp.Regexp `env:"TITLE_PATTERN"`
	RequireLocation bool           `env:"REQUIRE_LOCATION"`
	SkipAllDay      bool           `env:"SKIP_ALL_DAY"`
	AcceptedOnly    bool           `env:"ACCEPTED_ONLY"`

	DatabaseURL string `env:"DATABASE_URL" validate:"required"`

	// Mapbox geocoding configuration.
	MapboxToken     string        `env:"MAPBOX_TOKEN" validate:"required"`
	MapboxTimeout   time.Duration `env:"MAPBOX_TIMEOUT" validate:"gt=0"`
	MapboxCacheSize int           `env:"MAPBOX_CACHE_SIZE" validate:"gt=0"`

	MetnoUserAgent string        `env:"METNO_USER_AGENT" validate:"required"`
	MetnoTimeout   time.Duration `env:"METNO_TIMEOUT" validate:"gt=0"`

	// Annotation publishing is disabled when no brokers are set.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" validate:"required_with=KafkaBrokers"`

	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Load reads configuration from a .env file, if present, and environment
// variables, applying defaults where unset. Variables already in the
// environment win over the .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	p := &parser{}
	cfg := &Config{
		DawnMinutes:       p.integer("DAWN_LENGTH_MINUTES", "30"),
		DuskMinutes:       p.integer("DUSK_LENGTH_MINUTES", "30"),
		HumidDewpointMinF: p.number("HUMID_DEWPOINT_MIN_F", "65"),
		LightWindMaxMph:   p.number("LIGHT_WIND_MAX_MPH", "10"),

		TitleDelimiter:            p.text("TITLE_DELIMITER", " | "),
		DescriptionDelimiter:      p.text("DESCRIPTION_DELIMITER", `\n----- weather -----`),
		ErrorTitleDelimiter:       p.text("ERROR_TITLE_DELIMITER", " | ⚠"),
		ErrorDescriptionDelimiter: p.text("ERROR_DESCRIPTION_DELIMITER", `\n----- weather error -----`),

		LockBackend: sharedcfg.EnvOrDefault("LOCK_BACKEND", "memory"),
		LockTimeout: p.duration("LOCK_TIMEOUT", "30s"),
		QuietPeriod: p.duration("QUIET_PERIOD", "60s"),

		DefaultCity:  sharedcfg.EnvOrDefault("DEFAULT_CITY", ""),
		DefaultState: sharedcfg.EnvOrDefault("DEFAULT_STATE", ""),
		Location:     p.location("TIMEZONE", "UTC"),

		DaysAhead:   p.integer("DAYS_AHEAD", "7"),
		RunInterval: p.duration("RUN_INTERVAL", "15m"),

		GoThreshold:   p.number("GO_THRESHOLD", "70"),
		GoNoGoPattern: p.pattern("GO_NO_GO_PATTERN"),
		Activities:    p.listOr("ACTIVITIES", "running,cycling,astronomy,solar_observation"),
		GearRulesFile: sharedcfg.EnvOrDefault("GEAR_RULES_FILE", ""),

		CalendarIDs:     p.list("CALENDAR_IDS"),
		ColorIDs:        p.list("COLOR_IDS"),
		TitlePattern:    p.pattern("TITLE_PATTERN"),
		RequireLocation: p.flag("REQUIRE_LOCATION", "false"),
		SkipAllDay:      p.flag("SKIP_ALL_DAY", "true"),
		AcceptedOnly:    p.flag("ACCEPTED_ONLY", "true"),

		DatabaseURL: sharedcfg.EnvOrDefault("DATABASE_URL", ""),

		MapboxToken:     sharedcfg.EnvOrDefault("MAPBOX_TOKEN", ""),
		MapboxTimeout:   p.duration("MAPBOX_TIMEOUT", "5s"),
		MapboxCacheSize: p.integer("MAPBOX_CACHE_SIZE", "1000"),

		MetnoUserAgent: sharedcfg.EnvOrDefault("METNO_USER_AGENT", ""),
		MetnoTimeout:   p.duration("METNO_TIMEOUT", "10s"),

		KafkaBrokers: p.list("KAFKA_BROKERS"),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "event-annotations"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultLocation is the "City, State" fallback for unresolvable events.
func (c *Config) DefaultLocation() string {
	return domain.DefaultLocation(c.DefaultCity, c.DefaultState)
}

// Delimiters returns the configured text delimiters.
func (c *Config) Delimiters() domain.Delimiters {
	return domain.Delimiters{
		Title:            c.TitleDelimiter,
		Description:      c.DescriptionDelimiter,
		ErrorTitle:       c.ErrorTitleDelimiter,
		ErrorDescription: c.ErrorDescriptionDelimiter,
	}
}

// AnnotateConfig assembles the domain configuration around rules.
func (c *Config) AnnotateConfig(rules []domain.GearRule) domain.AnnotateConfig {
	return domain.AnnotateConfig{
		DawnMinutes: c.DawnMinutes,
		DuskMinutes: c.DuskMinutes,
		Render: domain.RenderOptions{
			HumidDewpointMinF: c.HumidDewpointMinF,
			LightWindMaxMph:   c.LightWindMaxMph,
		},
		Delimiters:        c.Delimiters(),
		GearRules:         rules,
		DecisionLimits:    domain.DefaultOutdoorLimits(),
		DecisionThreshold: c.GoThreshold,
		Activities:        domain.ActivitiesNamed(c.Activities),
	}
}

// PublishEnabled reports whether annotations go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("invalid %s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// parser reads typed variables, keeping the first error so Load can report
// it after building the struct.
type parser struct {
	err error
}

func (p *parser) fail(name string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", name, err)
	}
}

func (p *parser) integer(name, def string) int {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(name, def))
	if err != nil {
		p.fail(name, err)
	}
	return n
}

func (p *parser) number(name, def string) float64 {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(name, def), 64)
	if err != nil {
		p.fail(name, err)
	}
	return f
}

func (p *parser) flag(name, def string) bool {
	b, err := strconv.ParseBool(sharedcfg.EnvOrDefault(name, def))
	if err != nil {
		p.fail(name, err)
	}
	return b
}

func (p *parser) duration(name, def string) time.Duration {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil {
		p.fail(name, err)
	}
	return d
}

// text reads a delimiter-like value, expanding \n and \t escapes since
// environment files cannot hold literal newlines.
func (p *parser) text(name, def string) string {
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t")
	return r.Replace(sharedcfg.EnvOrDefault(name, def))
}

func (p *parser) location(name, def string) *time.Location {
	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault(name, def))
	if err != nil {
		p.fail(name, err)
		return nil
	}
	return loc
}

func (p *parser) pattern(name string) *regexp.Regexp {
	s := sharedcfg.EnvOrDefault(name, "")
	if s == "" {
		return nil
	}
	re, err := regexp.Compile(s)
	if err != nil {
		p.fail(name, err)
		return nil
	}
	return re
}

func (p *parser) list(name string) []string {
	return p.listOr(name, "")
}

func (p *parser) listOr(name, def string) []string {
	s := sharedcfg.EnvOrDefault(name, def)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}
