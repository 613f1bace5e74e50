package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	validation "github.com/jellydator/validation"
	"gopkg.in/yaml.v3"

	apperrors "github.com/allisson/reelcast/internal/errors"
	customValidation "github.com/allisson/reelcast/internal/validation"
)

// ErrInvalidRules indicates a mapping file that cannot be parsed or fails validation.
var ErrInvalidRules = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid mapping rules")

// PresetConfig is the YAML form of a Preset.
type PresetConfig struct {
	Avatar          string `yaml:"avatar"`
	Voice           string `yaml:"voice"`
	DurationSeconds int    `yaml:"duration_seconds"`
}

// Validate implements validation.Validatable.
func (p PresetConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Avatar, validation.Required, customValidation.NotBlank),
		validation.Field(&p.Voice, validation.Required, customValidation.NotBlank),
		validation.Field(&p.DurationSeconds, validation.Required, validation.Min(5), validation.Max(600)),
	)
}

func (p PresetConfig) preset() Preset {
	return Preset{Avatar: p.Avatar, Voice: p.Voice, DurationSeconds: p.DurationSeconds}
}

// RuleConfig is one YAML rule. Exactly one of Keywords or Pattern must be set.
type RuleConfig struct {
	Name         string   `yaml:"name"`
	Keywords     []string `yaml:"keywords"`
	Pattern      string   `yaml:"pattern"`
	PresetConfig `yaml:",inline"`
}

// Validate implements validation.Validatable.
func (r RuleConfig) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Keywords, validation.When(r.Pattern == "", validation.Required), customValidation.NonEmptyStrings),
		validation.Field(&r.Pattern, validation.When(len(r.Keywords) > 0, validation.Empty), customValidation.Regexp),
	); err != nil {
		return err
	}
	return r.PresetConfig.Validate()
}

// File is the YAML document holding the ordered rules and the default preset.
type File struct {
	Default PresetConfig `yaml:"default"`
	Rules   []RuleConfig `yaml:"rules"`
}

// Validate implements validation.Validatable.
func (f File) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Default),
		validation.Field(&f.Rules),
	)
}

// Build compiles a validated file into a Mapper preserving rule order.
func (f File) Build() (*Mapper, error) {
	if err := f.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidRules, customValidation.WrapValidationError(err))
	}

	rules := make([]Rule, 0, len(f.Rules))
	for _, rc := range f.Rules {
		if rc.Pattern != "" {
			rule, err := NewPatternRule(rc.Name, rc.Pattern, rc.preset())
			if err != nil {
				return nil, errors.Join(ErrInvalidRules, err)
			}
			rules = append(rules, rule)
			continue
		}
		rules = append(rules, NewKeywordRule(rc.Name, rc.Keywords, rc.preset()))
	}
	return New(rules, f.Default.preset()), nil
}

// Parse decodes a YAML mapping document. Unknown keys are rejected.
func Parse(data []byte) (*Mapper, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		return nil, errors.Join(ErrInvalidRules, fmt.Errorf("failed to parse mapping file: %w", err))
	}
	return file.Build()
}

// Load reads the mapping file at path. A missing file yields the built-in rules and
// builtin reports true.
func Load(path string) (mapper *Mapper, builtin bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), true, nil
		}
		return nil, false, fmt.Errorf("failed to read mapping file: %w", err)
	}

	mapper, err = Parse(data)
	if err != nil {
		return nil, false, err
	}
	return mapper, false, nil
}
