package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWith(outcomes map[string]Outcome) *Result {
	result := NewResult("SKU-1", false)
	for name, outcome := range outcomes {
		result.Platforms[name] = &PlatformResult{Platform: name, Outcome: outcome, ExternalID: name + "-id", Error: "boom"}
	}
	return result
}

func TestResult_Distributed(t *testing.T) {
	tests := []struct {
		name     string
		outcomes map[string]Outcome
		policy   Policy
		want     bool
	}{
		{name: "any with one success", outcomes: map[string]Outcome{"a": OutcomeSuccess, "b": OutcomeTerminalFailure}, policy: PolicyAny, want: true},
		{name: "any with none", outcomes: map[string]Outcome{"a": OutcomeTerminalFailure}, policy: PolicyAny, want: false},
		{name: "all with one failure", outcomes: map[string]Outcome{"a": OutcomeSuccess, "b": OutcomeTerminalFailure}, policy: PolicyAll, want: false},
		{name: "all with every success", outcomes: map[string]Outcome{"a": OutcomeSuccess, "b": OutcomeSuccess}, policy: PolicyAll, want: true},
		{name: "empty", outcomes: map[string]Outcome{}, policy: PolicyAny, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultWith(tt.outcomes).Distributed(tt.policy))
		})
	}
}

func TestResult_SummaryAndNames(t *testing.T) {
	result := resultWith(map[string]Outcome{"tiktok": OutcomeSuccess, "instagram": OutcomeTerminalFailure})

	assert.Equal(t, []string{"instagram", "tiktok"}, result.Names())
	assert.Equal(t, []string{"tiktok"}, result.Successes())
	assert.Equal(t, []string{"instagram"}, result.Failures())
	assert.Equal(t, map[string]string{
		"tiktok":    "tiktok-id",
		"instagram": "terminal_failure: boom",
	}, result.Summary())
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy(" ALL ")
	require.NoError(t, err)
	assert.Equal(t, PolicyAll, policy)

	policy, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAny, policy)

	_, err = ParsePolicy("most")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestIsRetryable(t *testing.T) {
	base := errors.New("503")

	assert.True(t, IsRetryable(Retryable(base)))
	assert.False(t, IsRetryable(Terminal(base)))
	assert.False(t, IsRetryable(base))
	assert.ErrorIs(t, Retryable(base), base)
	assert.NoError(t, Retryable(nil))
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 425, 429, 500, 502, 503, 504} {
		assert.True(t, RetryableStatus(code), code)
	}
	for _, code := range []int{400, 401, 403, 404, 413, 422, 501} {
		assert.False(t, RetryableStatus(code), code)
	}
}

func TestPlatformConfig_WithDefaults(t *testing.T) {
	cfg := PlatformConfig{Name: "tiktok", InitialBackoff: time.Minute}.WithDefaults()

	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.MaxBackoff)
	assert.Equal(t, DefaultMaxCaption, cfg.MaxCaption)
	assert.True(t, cfg.IsEnabled())

	disabled := false
	assert.False(t, PlatformConfig{Enabled: &disabled}.IsEnabled())
}
