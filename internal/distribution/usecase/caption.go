package usecase

import (
	"strings"
	"unicode/utf8"

	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

const (
	snippetLength = 140
	ellipsis      = "…"
)

// BuildCaption joins the title, a description snippet and the hashtags, then truncates
// the result to maxLength runes. A non-positive maxLength disables truncation.
func BuildCaption(record sourceDomain.ProductRecord, hashtags []string, maxLength int) string {
	parts := make([]string, 0, 3)
	if title := strings.TrimSpace(record.Title); title != "" {
		parts = append(parts, title)
	}

	description := record.Attribute("short description", "summary")
	if description == "" {
		description = record.Description
	}
	if snippet := snippet(description, snippetLength); snippet != "" {
		parts = append(parts, snippet)
	}

	if tags := formatHashtags(hashtags); tags != "" {
		parts = append(parts, tags)
	}

	return truncate(strings.Join(parts, "\n\n"), maxLength)
}

// snippet shortens text to at most limit runes, cutting at a word boundary.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	cut := string([]rune(text)[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}

func formatHashtags(hashtags []string) string {
	tags := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		tag = strings.Join(strings.Fields(strings.TrimPrefix(strings.TrimSpace(tag), "#")), "")
		if tag != "" {
			tags = append(tags, "#"+tag)
		}
	}
	return strings.Join(tags, " ")
}

func truncate(text string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	if maxLength == 1 {
		return ellipsis
	}
	return strings.TrimSpace(string([]rune(text)[:maxLength-1])) + ellipsis
}
