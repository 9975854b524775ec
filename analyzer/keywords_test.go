package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	assert.Equal(t, []string{"practical", "guide", "baking", "sourdough", "home"},
		ExtractKeywords("A Practical Guide to Baking Sourdough at Home"))
	assert.Equal(t, []string{"welcome", "bakery"}, ExtractKeywords("Welcome! Welcome to our Bakery."))
	assert.Empty(t, ExtractKeywords("a to of the"))
	assert.Empty(t, ExtractKeywords(""))
}

func TestContainsAnyKeyword(t *testing.T) {
	kws := []string{"bake", "bread"}

	assert.True(t, ContainsAnyKeyword("How to BAKE at home", kws))
	assert.True(t, ContainsAnyKeyword("fresh bread.", kws))
	assert.False(t, ContainsAnyKeyword("the bakery is open", kws), "partial words do not count")
	assert.False(t, ContainsAnyKeyword("breadcrumbs", kws))
	assert.False(t, ContainsAnyKeyword("anything", nil))
}

func TestCountWholeWord(t *testing.T) {
	assert.Equal(t, 2, countWholeWord("bread, more bread and breadsticks", "bread"))
	assert.Equal(t, 1, countWholeWord("crème brûlée", "brûlée"))
	assert.Equal(t, 0, countWholeWord("", "bread"))
}
