package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// gearFile is the on-disk shape of a gear rule table:
//
//	rules:
//	  - category: head
//	    item: Beanie
//	    max_temp_f: 40
//	    feels_like: true
//	    priority: 8
type gearFile struct {
	Rules []domain.GearRule `yaml:"rules" validate:"required,min=1,dive"`
}

// LoadGearRules returns the rule table at path, or the built-in table when
// path is empty.
func LoadGearRules(path string) ([]domain.GearRule, error) {
	if path == "" {
		return domain.DefaultGearRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gear rules: %w", err)
	}
	return ParseGearRules(data)
}

// ParseGearRules decodes and validates a YAML gear rule table. Unknown keys
// are rejected so typos do not silently disable a rule.
func ParseGearRules(data []byte) ([]domain.GearRule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f gearFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode gear rules: %w", err)
	}

	v := validator.New()
	v.RegisterStructValidation(validateGearRule, domain.GearRule{})
	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("invalid gear rules: %s failed %s", fe.Namespace(), fe.Tag())
		}
		return nil, fmt.Errorf("invalid gear rules: %w", err)
	}
	return f.Rules, nil
}

func validateGearRule(sl validator.StructLevel) {
	r := sl.Current().Interface().(domain.GearRule)
	if r.Category != "" && !slices.Contains(domain.GearCategories, r.Category) {
		sl.ReportError(r.Category, "Category", "Category", "gear_category", "")
	}
	if r.MinTempF != nil && r.MaxTempF != nil && *r.MinTempF > *r.MaxTempF {
		sl.ReportError(r.MinTempF, "MinTempF", "MinTempF", "lte_max_temp", "")
	}
}
