package filter

import "strings"

// DefaultThreshold is the minimum similarity for a free-text match.
const DefaultThreshold = 0.7

// DamerauLevenshteinDistance counts the single-rune insertions, deletions,
// substitutions and adjacent transpositions needed to turn a into b.
func DamerauLevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}
	return d[len(ra)][len(rb)]
}

// Similarity maps edit distance onto [0,1]; 1 means identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(DamerauLevenshteinDistance(a, b))/float64(maxLen)
}

// BestMatch scores query against text. A case-insensitive substring hit
// scores 1. Otherwise the query is compared with every run of the same
// number of words in text and the best similarity wins.
func BestMatch(query, text string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(text)
	if q == "" {
		return 1.0
	}
	if strings.Contains(t, q) {
		return 1.0
	}

	qWords := strings.Fields(q)
	tWords := strings.Fields(t)
	if len(tWords) == 0 {
		return 0
	}
	q = strings.Join(qWords, " ")
	if len(tWords) <= len(qWords) {
		return Similarity(q, strings.Join(tWords, " "))
	}

	best := 0.0
	for i := 0; i+len(qWords) <= len(tWords); i++ {
		s := Similarity(q, strings.Join(tWords[i:i+len(qWords)], " "))
		if s > best {
			best = s
			if best == 1.0 {
				break
			}
		}
	}
	return best
}
