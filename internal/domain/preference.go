package domain

import (
	"maps"
	"slices"
	"time"
)

// DefaultPreferenceListCap bounds each preferred-* list.
const DefaultPreferenceListCap = 10

// PositiveRating is the lowest rating (on a 1-5 scale) that counts as positive feedback.
const PositiveRating = 4

// Rating is a user's 1-5 rating of one action.
type Rating struct {
	Value    int       `json:"value"`
	Feedback string    `json:"feedback,omitempty"`
	RatedAt  time.Time `json:"ratedAt"`
}

// PreferenceState is the user's long-lived engagement signal.
// Counters never decrease and list fields never exceed their cap.
type PreferenceState struct {
	UserID                string            `json:"userId"`
	PreferredIntents      []string          `json:"preferredIntents"`
	PreferredTopics       []string          `json:"preferredTopics"`
	PreferredLocations    []string          `json:"preferredLocations"`
	TotalActionsViewed    int64             `json:"totalActionsViewed"`
	ActionsCompleted      int64             `json:"actionsCompleted"`
	ActionsSaved          int64             `json:"actionsSaved"`
	TotalTimeSpentSeconds int64             `json:"totalTimeSpentSeconds"`
	LastEngagementAt      *time.Time        `json:"lastEngagementAt"`
	Ratings               map[string]Rating `json:"ratings"`
}

// NewPreferenceState returns an empty state for userID.
func NewPreferenceState(userID string) *PreferenceState {
	return &PreferenceState{
		UserID:             userID,
		PreferredIntents:   []string{},
		PreferredTopics:    []string{},
		PreferredLocations: []string{},
		Ratings:            map[string]Rating{},
	}
}

// Clone returns a deep copy safe to hand to readers outside the owning store.
func (p *PreferenceState) Clone() *PreferenceState {
	if p == nil {
		return nil
	}
	c := *p
	c.PreferredIntents = slices.Clone(p.PreferredIntents)
	c.PreferredTopics = slices.Clone(p.PreferredTopics)
	c.PreferredLocations = slices.Clone(p.PreferredLocations)
	if p.LastEngagementAt != nil {
		t := *p.LastEngagementAt
		c.LastEngagementAt = &t
	}
	c.Ratings = maps.Clone(p.Ratings)
	if c.Ratings == nil {
		c.Ratings = map[string]Rating{}
	}
	return &c
}

// PrefersIntent reports whether intent is among the preferred intents.
func (p *PreferenceState) PrefersIntent(intent string) bool {
	return p != nil && ContainsFold(p.PreferredIntents, intent)
}

// PrefersTopic reports whether topic is among the preferred topics.
func (p *PreferenceState) PrefersTopic(topic string) bool {
	return p != nil && ContainsFold(p.PreferredTopics, topic)
}

// PrefersLocation reports whether location is among the preferred locations.
func (p *PreferenceState) PrefersLocation(location string) bool {
	return p != nil && ContainsFold(p.PreferredLocations, location)
}

// PushRecent prepends value to list, removing any earlier case-insensitive
// duplicate and evicting the oldest entries beyond limit. Blank values are ignored.
func PushRecent(list []string, value string, limit int) []string {
	value = trim(value)
	if value == "" {
		return list
	}
	out := make([]string, 0, min(len(list)+1, max(limit, 1)))
	out = append(out, value)
	for _, v := range list {
		if len(out) >= limit {
			break
		}
		if EqualFold(v, value) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ContainsFold reports whether list holds value, ignoring case.
func ContainsFold(list []string, value string) bool {
	if trim(value) == "" {
		return false
	}
	for _, v := range list {
		if EqualFold(v, value) {
			return true
		}
	}
	return false
}
