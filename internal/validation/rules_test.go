package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/reelcast/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("name: cannot be blank"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name: cannot be blank")
}

func TestStringRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      validation.Rule
		value     string
		shouldErr bool
	}{
		{name: "not blank ok", rule: NotBlank, value: "kelp"},
		{name: "not blank spaces", rule: NotBlank, value: "   ", shouldErr: true},
		{name: "no whitespace ok", rule: NoWhitespace, value: "youtube"},
		{name: "no whitespace padded", rule: NoWhitespace, value: " youtube", shouldErr: true},
		{name: "regexp ok", rule: Regexp, value: `(?i)\bkelp\b`},
		{name: "regexp broken", rule: Regexp, value: `([a-z`, shouldErr: true},
		{name: "http url ok", rule: HTTPURL, value: "https://api.example.com/v1/posts"},
		{name: "http url relative", rule: HTTPURL, value: "/v1/posts", shouldErr: true},
		{name: "http url ftp", rule: HTTPURL, value: "ftp://example.com", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, tt.rule)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNonEmptyStrings(t *testing.T) {
	assert.NoError(t, validation.Validate([]string{"kelp", "seaweed"}, NonEmptyStrings))
	assert.Error(t, validation.Validate([]string{"kelp", " "}, NonEmptyStrings))
	assert.Error(t, validation.Validate("kelp", NonEmptyStrings))
}
