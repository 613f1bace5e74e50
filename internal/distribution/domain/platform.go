package domain

import (
	"time"
)

// Kind selects the payload shape an adapter uses.
type Kind string

const (
	// KindNativeUpload downloads the asset and uploads it as multipart form data.
	KindNativeUpload Kind = "native_upload"
	// KindURLReference creates a media container from the asset URL, then publishes it.
	KindURLReference Kind = "url_reference"
	// KindLink posts the caption with the asset URL as a link.
	KindLink Kind = "link"
)

// PlatformConfig defines one distribution target.
type PlatformConfig struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	// Endpoint receives the upload, container creation, or link post. Credential values
	// may be interpolated with {key} placeholders.
	Endpoint string `yaml:"endpoint"`
	// PublishEndpoint is required for KindURLReference.
	PublishEndpoint string `yaml:"publish_endpoint"`
	Enabled         *bool  `yaml:"enabled"`
	// MaxAttempts bounds attempts including the first one.
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	// Timeout bounds a single attempt.
	Timeout       time.Duration `yaml:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute"`
	// Credentials maps credential names to references (literal, env:NAME or enc:...).
	Credentials map[string]string `yaml:"credentials"`
	MaxCaption  int               `yaml:"max_caption"`
	Hashtags    []string          `yaml:"hashtags"`
}

// Platform defaults applied when a field is left zero.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 2 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultTimeout        = 2 * time.Minute
	DefaultMaxCaption     = 2200
)

// IsEnabled reports whether the platform takes part in distribution. Missing means enabled.
func (c PlatformConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// WithDefaults returns a copy with zero tunables replaced by defaults.
func (c PlatformConfig) WithDefaults() PlatformConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxCaption <= 0 {
		c.MaxCaption = DefaultMaxCaption
	}
	return c
}
