// Package filter narrows a recommended action set by free text and facets.
// It is a pure projection: no state, no I/O, safe to call on every keystroke.
package filter

import (
	"slices"
	"strings"

	"github.com/alexanderramin/civic/internal/domain"
)

// Apply returns the actions that pass every active axis of state, in their
// original order. An empty state returns a copy of actions.
func Apply(actions []domain.Action, state domain.FilterState) []domain.Action {
	out := make([]domain.Action, 0, len(actions))
	for i := range actions {
		if Matches(&actions[i], state) {
			out = append(out, actions[i])
		}
	}
	return out
}

// Matches reports whether a passes every active axis, applied in order:
// free text, tags, urgency, impact, time commitment.
func Matches(a *domain.Action, state domain.FilterState) bool {
	return matchesQuery(a, state.SearchQuery) &&
		matchesAllTags(a, state.Tags) &&
		matchesLevel(a.Urgency, state.Urgency) &&
		matchesLevel(a.Impact, state.Impact) &&
		matchesTime(a.TimeCommitment, state.TimeCommitment)
}

// SearchFields lists the text a free-text query is matched against.
func SearchFields(a *domain.Action) []string {
	fields := make([]string, 0, 3+len(a.Tags))
	fields = append(fields, a.Title, a.Description, a.OrganizationName)
	return append(fields, a.Tags...)
}

func matchesQuery(a *domain.Action, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	for _, field := range SearchFields(a) {
		if strings.TrimSpace(field) == "" {
			continue
		}
		if BestMatch(query, field) >= DefaultThreshold {
			return true
		}
	}
	return false
}

// matchesAllTags requires every selected tag.
func matchesAllTags(a *domain.Action, tags []string) bool {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if !a.HasTag(tag) {
			return false
		}
	}
	return true
}

// matchesLevel requires membership in the selected set.
func matchesLevel(v int, selected []int) bool {
	return len(selected) == 0 || slices.Contains(selected, v)
}

// matchesTime requires the estimate to contain at least one selected value.
func matchesTime(estimate string, selected []string) bool {
	estimate = strings.ToLower(estimate)
	constrained := false
	for _, s := range selected {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		constrained = true
		if strings.Contains(estimate, s) {
			return true
		}
	}
	return !constrained
}

// Tags returns the distinct tags across actions in first-seen order, for
// building a tag picker.
func Tags(actions []domain.Action) []string {
	var out []string
	for _, a := range actions {
		for _, t := range a.Tags {
			if !domain.ContainsFold(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}
