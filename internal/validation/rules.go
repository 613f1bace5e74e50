// Package validation provides custom validation rules for configuration files.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/reelcast/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Regexp validates that a string compiles as a regular expression.
var Regexp = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := regexp.Compile(s)
		return err == nil
	},
	validation.NewError("validation_regexp", "must be a valid regular expression"),
)

// HTTPURL validates that a string is an absolute http or https URL.
var HTTPURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_http_url", "must be an absolute http or https URL"),
)

// NonEmptyStrings validates that every element of a string slice is not blank.
var NonEmptyStrings = validation.By(func(value interface{}) error {
	items, ok := value.([]string)
	if !ok {
		return validation.NewError("validation_strings_type", "must be a list of strings")
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return validation.NewError("validation_strings_blank", "must not contain blank entries")
		}
	}
	return nil
})
