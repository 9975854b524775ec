package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecommendationsThresholds(t *testing.T) {
	neutral := [8]Impact{}

	t.Run("all at threshold", func(t *testing.T) {
		recs := GenerateRecommendations(scoresOf([8]int{90, 90, 100, 90, 100, 90, 90, 90}, neutral))
		assert.Empty(t, recs)
		assert.NotNil(t, recs)
	})

	t.Run("headings and content require 100", func(t *testing.T) {
		recs := GenerateRecommendations(scoresOf([8]int{100, 100, 95, 100, 99, 100, 100, 100}, neutral))
		require.Len(t, recs, 2)
		assert.Equal(t, "heading-structure", recs[0].ID)
		assert.Equal(t, PriorityMedium, recs[0].Impact)
		assert.Equal(t, "content-quality", recs[1].ID)
	})

	t.Run("priority bands", func(t *testing.T) {
		recs := GenerateRecommendations(scoresOf([8]int{69, 70, 100, 89, 100, 100, 100, 100}, neutral))
		require.Len(t, recs, 3)
		assert.Equal(t, PriorityHigh, recs[0].Impact)
		assert.Equal(t, PriorityMedium, recs[1].Impact)
		assert.Equal(t, PriorityMedium, recs[2].Impact)
	})
}

func TestGenerateRecommendationsOrderAndIDs(t *testing.T) {
	recs := GenerateRecommendations(scoresOf([8]int{0, 0, 0, 0, 0, 0, 0, 0}, [8]Impact{}))

	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
		assert.Equal(t, PriorityHigh, r.Impact)
		assert.NotEmpty(t, r.Steps)
		assert.NotEmpty(t, r.AdditionalContext)
		assert.Equal(t, "ctx", r.Description)
	}
	assert.Equal(t, []string{
		"title-optimization",
		"meta-description-optimization",
		"heading-structure",
		"image-alt-text",
		"content-quality",
		"technical-seo",
		"mobile-friendliness",
		"internal-linking",
	}, ids)
}

func TestGenerateRecommendationsIdempotent(t *testing.T) {
	scores := scoresOf([8]int{0, 80, 90, 60, 70, 75, 50, 70}, [8]Impact{})

	first := GenerateRecommendations(scores)
	second := GenerateRecommendations(scores)
	assert.Equal(t, first, second)

	first[0].Steps[0] = "changed"
	assert.NotEqual(t, "changed", GenerateRecommendations(scores)[0].Steps[0], "steps are copied per call")
}

func TestGenerateRecommendationsFallbackDescription(t *testing.T) {
	scores := scoresOf([8]int{0, 100, 100, 100, 100, 100, 100, 100}, [8]Impact{})
	scores.Title.Context = ""

	recs := GenerateRecommendations(scores)
	require.Len(t, recs, 1)
	assert.Equal(t, "The page title needs attention.", recs[0].Description)
}
