package recommend

import (
	"sort"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
)

// Result-size defaults.
const (
	DefaultMinResults = 3
	DefaultMaxResults = 10
)

// AssembleInput bundles everything one assembly pass reads.
type AssembleInput struct {
	Context      domain.IntentContext
	Personalized []*domain.ActionRecord
	Popular      []*domain.ActionRecord
	Preferences  *domain.PreferenceState
	MinResults   int
	MaxResults   int
	Now          time.Time
}

// Result is the ranked action list plus counts useful for diagnostics.
type Result struct {
	Actions        []domain.Action
	CatalogCount   int
	DuplicateCount int
	FallbackCount  int
}

type candidate struct {
	action domain.Action
	order  int
}

// Assemble merges both pools, dedups by id (personalized first), scores and
// ranks the survivors, tops up with fallback actions when short, and truncates.
func Assemble(in AssembleInput) Result {
	minResults, maxResults := resultBounds(in.MinResults, in.MaxResults)

	seen := make(map[string]struct{}, len(in.Personalized)+len(in.Popular))
	var (
		candidates []candidate
		res        Result
	)
	for _, pool := range [][]*domain.ActionRecord{in.Personalized, in.Popular} {
		for _, rec := range pool {
			if rec == nil {
				continue
			}
			a := Normalize(rec, in.Context, in.Now)
			if _, dup := seen[a.ID]; dup {
				res.DuplicateCount++
				continue
			}
			seen[a.ID] = struct{}{}
			Score(&a, in.Context, in.Preferences).Apply(&a)
			candidates = append(candidates, candidate{action: a, order: len(candidates)})
		}
	}
	rank(candidates)

	actions := make([]domain.Action, 0, max(len(candidates), minResults))
	for _, c := range candidates {
		actions = append(actions, c.action)
	}
	res.CatalogCount = len(actions)

	if len(actions) < minResults {
		for _, fb := range GenerateFallback(in.Context, in.Now) {
			if _, dup := seen[fb.ID]; dup {
				continue
			}
			seen[fb.ID] = struct{}{}
			Score(&fb, in.Context, in.Preferences).Apply(&fb)
			actions = append(actions, fb)
			res.FallbackCount++
		}
	}

	if len(actions) > maxResults {
		actions = actions[:maxResults]
		res.CatalogCount = min(res.CatalogCount, maxResults)
		res.FallbackCount = len(actions) - res.CatalogCount
	}
	res.Actions = actions
	return res
}

// rank orders candidates by engagement, then relevance, then pool order.
func rank(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.action.EngagementScore != b.action.EngagementScore {
			return a.action.EngagementScore > b.action.EngagementScore
		}
		if a.action.RelevanceScore != b.action.RelevanceScore {
			return a.action.RelevanceScore > b.action.RelevanceScore
		}
		return a.order < b.order
	})
}

// resultBounds applies defaults and keeps max >= min >= the fallback floor.
func resultBounds(minResults, maxResults int) (int, int) {
	if minResults <= 0 {
		minResults = DefaultMinResults
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	minResults = max(minResults, MinFallbackActions)
	maxResults = max(maxResults, minResults)
	return minResults, maxResults
}
