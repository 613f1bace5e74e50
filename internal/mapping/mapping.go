// Package mapping selects generation parameters (avatar, voice, duration) from record
// content with an ordered list of rules and an explicit default. Mapping is pure and
// deterministic: the same record and rule set always produce the same parameters.
package mapping

import (
	"regexp"
	"strings"

	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// DefaultReason is the reason recorded when no rule matches.
const DefaultReason = "default"

// Parameters are the generation settings chosen for one record.
type Parameters struct {
	Avatar          string `json:"avatar"`
	Voice           string `json:"voice"`
	DurationSeconds int    `json:"duration_seconds"`
	// Reason is the matched term, or DefaultReason.
	Reason string `json:"reason"`
}

// Preset is the avatar/voice/duration triple a rule or the default yields.
type Preset struct {
	Avatar          string
	Voice           string
	DurationSeconds int
}

func (p Preset) with(reason string) Parameters {
	return Parameters{
		Avatar:          p.Avatar,
		Voice:           p.Voice,
		DurationSeconds: p.DurationSeconds,
		Reason:          reason,
	}
}

// Rule is one variant in the ordered rule list. Match returns the term that matched.
type Rule interface {
	Name() string
	Match(text string) (term string, ok bool)
	Preset() Preset
}

// KeywordRule matches when any keyword occurs in the searchable text as a whole word,
// case-insensitively. Keywords are tried in order and the first hit is the reason.
type KeywordRule struct {
	name     string
	keywords []string
	patterns []*regexp.Regexp
	preset   Preset
}

// NewKeywordRule builds a keyword rule. Keywords may contain spaces.
func NewKeywordRule(name string, keywords []string, preset Preset) *KeywordRule {
	rule := &KeywordRule{name: name, preset: preset}
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		rule.keywords = append(rule.keywords, keyword)
		rule.patterns = append(rule.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(keyword)+`\b`))
	}
	return rule
}

func (r *KeywordRule) Name() string { return r.name }

func (r *KeywordRule) Preset() Preset { return r.preset }

func (r *KeywordRule) Match(text string) (string, bool) {
	for i, pattern := range r.patterns {
		if pattern.MatchString(text) {
			return r.keywords[i], true
		}
	}
	return "", false
}

// PatternRule matches a regular expression against the searchable text. The reason is
// the matched substring, lowercased.
type PatternRule struct {
	name    string
	pattern *regexp.Regexp
	preset  Preset
}

// NewPatternRule compiles expr case-insensitively.
func NewPatternRule(name, expr string, preset Preset) (*PatternRule, error) {
	pattern, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, err
	}
	return &PatternRule{name: name, pattern: pattern, preset: preset}, nil
}

func (r *PatternRule) Name() string { return r.name }

func (r *PatternRule) Preset() Preset { return r.preset }

func (r *PatternRule) Match(text string) (string, bool) {
	match := r.pattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.ToLower(match), true
}

// Mapper evaluates rules in order against a record. The zero value is not usable; use New.
type Mapper struct {
	rules    []Rule
	fallback Preset
}

// New creates a mapper from an ordered rule list and a default preset.
func New(rules []Rule, fallback Preset) *Mapper {
	return &Mapper{rules: append([]Rule(nil), rules...), fallback: fallback}
}

// Map returns the parameters of the first matching rule or the default. It is total:
// every record yields parameters with a non-empty reason.
func (m *Mapper) Map(record sourceDomain.ProductRecord) Parameters {
	text := SearchableText(record)
	for _, rule := range m.rules {
		if term, ok := rule.Match(text); ok {
			return rule.Preset().with(term)
		}
	}
	return m.fallback.with(DefaultReason)
}

// Rules returns the configured rules in evaluation order.
func (m *Mapper) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}

// SearchableText concatenates, lowercased, the record fields rules look at in their fixed
// preference order: title, name, description, short description.
func SearchableText(record sourceDomain.ProductRecord) string {
	fields := []string{
		record.Title,
		record.Attribute("name", "product name"),
		record.Description,
		record.Attribute("short description", "summary"),
	}

	parts := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, value := range fields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		parts = append(parts, value)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
