package service

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	validation "github.com/jellydator/validation"
	"gopkg.in/yaml.v3"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
	customValidation "github.com/allisson/reelcast/internal/validation"
)

// File is the YAML document listing distribution platforms.
type File struct {
	Platforms []distributionDomain.PlatformConfig `yaml:"platforms"`
}

// ValidatePlatform validates one platform definition.
func ValidatePlatform(p distributionDomain.PlatformConfig) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, customValidation.NotBlank, customValidation.NoWhitespace),
		validation.Field(&p.Kind, validation.Required, validation.In(
			distributionDomain.KindNativeUpload,
			distributionDomain.KindURLReference,
			distributionDomain.KindLink,
		)),
		validation.Field(&p.Endpoint, validation.Required, customValidation.HTTPURL),
		validation.Field(&p.PublishEndpoint,
			validation.When(p.Kind == distributionDomain.KindURLReference, validation.Required),
			customValidation.HTTPURL,
		),
		validation.Field(&p.MaxAttempts, validation.Min(0), validation.Max(10)),
		validation.Field(&p.InitialBackoff, validation.Min(0)),
		validation.Field(&p.MaxBackoff, validation.Min(0)),
		validation.Field(&p.Timeout, validation.Min(0)),
		validation.Field(&p.RatePerMinute, validation.Min(0)),
		validation.Field(&p.MaxCaption, validation.Min(0)),
		validation.Field(&p.Hashtags, customValidation.NonEmptyStrings),
	)
}

// Validate checks every platform and rejects duplicate names.
func (f File) Validate() error {
	seen := make(map[string]bool, len(f.Platforms))
	for i, platform := range f.Platforms {
		if err := ValidatePlatform(platform); err != nil {
			return fmt.Errorf("platforms[%d]: %w", i, err)
		}
		if seen[platform.Name] {
			return fmt.Errorf("platforms[%d]: duplicate name %q", i, platform.Name)
		}
		seen[platform.Name] = true
	}
	return nil
}

// Enabled returns the enabled platforms with defaults applied, in file order.
func (f File) Enabled() []distributionDomain.PlatformConfig {
	var enabled []distributionDomain.PlatformConfig
	for _, platform := range f.Platforms {
		if platform.IsEnabled() {
			enabled = append(enabled, platform.WithDefaults())
		}
	}
	return enabled
}

// Parse decodes and validates a platforms document. Unknown keys are rejected.
func Parse(data []byte) ([]distributionDomain.PlatformConfig, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		return nil, errors.Join(
			distributionDomain.ErrInvalidPlatformConfig,
			fmt.Errorf("failed to parse platforms file: %w", err),
		)
	}
	if err := file.Validate(); err != nil {
		return nil, errors.Join(distributionDomain.ErrInvalidPlatformConfig, customValidation.WrapValidationError(err))
	}

	enabled := file.Enabled()
	if len(enabled) == 0 {
		return nil, distributionDomain.ErrNoPlatforms
	}
	return enabled, nil
}

// Load reads and parses the platforms file at path.
func Load(path string) ([]distributionDomain.PlatformConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(distributionDomain.ErrNoPlatforms, err)
		}
		return nil, fmt.Errorf("failed to read platforms file: %w", err)
	}
	return Parse(data)
}
