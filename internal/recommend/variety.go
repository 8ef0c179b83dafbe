package recommend

import (
	"math/rand/v2"

	"github.com/alexanderramin/civic/internal/domain"
)

// Diversify shuffles runs of adjacent actions whose engagement and relevance
// scores are identical, using a generator seeded by the caller. Actions with
// distinct scores never change relative order. Fallback actions are left in
// place. A nil rng leaves the slice untouched.
func Diversify(actions []domain.Action, rng *rand.Rand) {
	if rng == nil {
		return
	}
	for start := 0; start < len(actions); {
		end := start + 1
		for end < len(actions) && sameRank(&actions[start], &actions[end]) {
			end++
		}
		if run := actions[start:end]; len(run) > 1 {
			rng.Shuffle(len(run), func(i, j int) { run[i], run[j] = run[j], run[i] })
		}
		start = end
	}
}

// NewVarietySource returns a deterministic generator for Diversify.
func NewVarietySource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func sameRank(a, b *domain.Action) bool {
	return !a.Fallback && !b.Fallback &&
		a.EngagementScore == b.EngagementScore &&
		a.RelevanceScore == b.RelevanceScore
}
