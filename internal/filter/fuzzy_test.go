package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDamerauLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"climate", "climate", 0},
		{"climate", "cliamte", 1},
		{"climate", "climat", 1},
		{"kitten", "sitting", 3},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, DamerauLevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("park", "park"))
	assert.InDelta(t, 0.857, Similarity("climate", "cliamte"), 0.001)
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		pass  bool
	}{
		{"substring", "tree", "Community tree planting", true},
		{"case-insensitive substring", "TREE", "community tree planting", true},
		{"typo in one word", "plantng", "Community tree planting", true},
		{"transposed letters", "cliamte", "Climate town hall", true},
		{"two-word window", "town hal", "Climate town hall meeting", true},
		{"unrelated", "housing", "Climate town hall", false},
		{"empty text", "x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := BestMatch(tt.query, tt.text)
			if tt.pass {
				assert.GreaterOrEqual(t, score, DefaultThreshold)
			} else {
				assert.Less(t, score, DefaultThreshold)
			}
		})
	}
}

func TestBestMatch_BlankQueryMatchesEverything(t *testing.T) {
	assert.Equal(t, 1.0, BestMatch("  ", "anything"))
}
