package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

func TestBuildCaption(t *testing.T) {
	record := sourceDomain.ProductRecord{
		Title:       "Kelp Meal",
		Description: "Long description that should not be used.",
		RawAttributes: map[string]string{
			"short description": "Ocean-grown   nutrients.",
		},
	}

	t.Run("title, short description and hashtags", func(t *testing.T) {
		caption := BuildCaption(record, []string{"#garden", " organic ", ""}, 0)
		assert.Equal(t, "Kelp Meal\n\nOcean-grown nutrients.\n\n#garden #organic", caption)
	})

	t.Run("falls back to description", func(t *testing.T) {
		caption := BuildCaption(sourceDomain.ProductRecord{Title: "Seeds", Description: "Heirloom tomato."}, nil, 0)
		assert.Equal(t, "Seeds\n\nHeirloom tomato.", caption)
	})

	t.Run("long description is cut at a word boundary", func(t *testing.T) {
		long := strings.Repeat("compost ", 40)
		caption := BuildCaption(sourceDomain.ProductRecord{Description: long}, nil, 0)

		assert.True(t, strings.HasSuffix(caption, "compost…"))
		assert.LessOrEqual(t, utf8.RuneCountInString(caption), snippetLength+1)
	})

	t.Run("truncated to max length", func(t *testing.T) {
		caption := BuildCaption(record, []string{"garden"}, 12)

		assert.LessOrEqual(t, utf8.RuneCountInString(caption), 12)
		assert.True(t, strings.HasPrefix(caption, "Kelp Meal"))
		assert.True(t, strings.HasSuffix(caption, "…"))
	})

	t.Run("empty record", func(t *testing.T) {
		assert.Empty(t, BuildCaption(sourceDomain.ProductRecord{}, nil, 100))
	})
}
