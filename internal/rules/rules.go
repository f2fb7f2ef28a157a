package rules

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRules = errors.New("invalid rule set")

type TypeTag string

const (
	TypeString TypeTag = "string"
	TypeInt    TypeTag = "int"
	TypeFloat  TypeTag = "float"
	TypeBool   TypeTag = "bool"
	TypeList   TypeTag = "list"
	TypeDict   TypeTag = "dict"
)

var TypeTags = []TypeTag{TypeString, TypeInt, TypeFloat, TypeBool, TypeList, TypeDict}

func (t TypeTag) Valid() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeList, TypeDict:
		return true
	}
	return false
}

// Range bounds a numeric field. A nil bound is unbounded on that side.
type Range struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

func (r Range) Lower() float64 {
	if r.Min == nil {
		return math.Inf(-1)
	}
	return *r.Min
}

func (r Range) Upper() float64 {
	if r.Max == nil {
		return math.Inf(1)
	}
	return *r.Max
}

type CollectionRule struct {
	ExpectedCount  *int64               `yaml:"expected_count" validate:"omitempty,min=0"`
	RequiredFields []string             `yaml:"required_fields" validate:"dive,required"`
	DataTypes      OrderedMap[TypeTag]  `yaml:"data_types" validate:"dive"`
	Categories     OrderedMap[[]any]    `yaml:"categories" validate:"dive"`
	NumericRanges  OrderedMap[Range]    `yaml:"numeric_ranges" validate:"dive"`
	Keywords       OrderedMap[[]string] `yaml:"keywords" validate:"dive"`
}

type Connection struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RuleSet struct {
	Connection  Connection                 `yaml:"database_connection"`
	Collections OrderedMap[CollectionRule] `yaml:"collections" validate:"required,min=1,dive"`
}

// Load reads and validates a rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rule file %s: %w", ErrInvalidRules, path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*RuleSet, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: failed to parse rules: %w", ErrInvalidRules, err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks the structure of the rule set and the semantics the
// struct tags cannot express. Every problem found is reported.
func (s *RuleSet) Validate() error {
	var errs []error
	if err := validator.New().Struct(s); err != nil {
		errs = append(errs, err)
	}

	for _, coll := range s.Collections {
		for _, dt := range coll.Value.DataTypes {
			if !dt.Value.Valid() {
				errs = append(errs, fmt.Errorf("collection %q: field %q: unknown type %q (expected one of %v)",
					coll.Key, dt.Key, dt.Value, TypeTags))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRules, errors.Join(errs...))
	}
	return nil
}
