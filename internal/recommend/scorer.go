package recommend

import (
	"strings"

	"github.com/alexanderramin/civic/internal/domain"
)

// Relevance weights.
const (
	BaseRelevance     = 0.5
	TopicRelevance    = 0.3
	LocationRelevance = 0.2
	MaxRelevance      = 1.0
)

// Engagement weights.
const (
	ImpactWeight           = 20.0
	UrgencyWeight          = 5.0
	PreferredIntentBonus   = 15.0
	PreferredTopicBonus    = 15.0
	PreferredLocationBonus = 10.0
	MaxEngagement          = 100.0
)

// ReasonCode names one contribution to a score.
type ReasonCode string

const (
	ReasonTopicMatch        ReasonCode = "TOPIC_MATCH"
	ReasonLocationMatch     ReasonCode = "LOCATION_MATCH"
	ReasonImpact            ReasonCode = "IMPACT"
	ReasonUrgency           ReasonCode = "URGENCY"
	ReasonPreferredIntent   ReasonCode = "PREFERRED_INTENT"
	ReasonPreferredTopic    ReasonCode = "PREFERRED_TOPIC"
	ReasonPreferredLocation ReasonCode = "PREFERRED_LOCATION"
)

// Reason explains one additive term of a score.
type Reason struct {
	Code  ReasonCode
	Delta float64
}

// Scores is the scorer output for one action.
type Scores struct {
	Relevance  float64
	Engagement float64
	Reasons    []Reason
}

// locationAgnostic lists location values that match any requested location.
var locationAgnostic = []string{"remote", "online", "national", "nationwide", "anywhere", "virtual"}

type relevanceFactor func(a *domain.Action, ic domain.IntentContext) (float64, *Reason)

type engagementFactor func(a *domain.Action, prefs *domain.PreferenceState) (float64, *Reason)

// Score rates a against the request context and a preference snapshot.
// Identical inputs always yield identical scores.
func Score(a *domain.Action, ic domain.IntentContext, prefs *domain.PreferenceState) Scores {
	ic = ic.Normalized()
	var s Scores

	s.Relevance = BaseRelevance
	for _, f := range []relevanceFactor{scoreTopicMatch, scoreLocationMatch} {
		delta, reason := f(a, ic)
		s.Relevance += delta
		if reason != nil {
			s.Reasons = append(s.Reasons, *reason)
		}
	}
	s.Relevance = min(s.Relevance, MaxRelevance)

	for _, f := range []engagementFactor{
		scoreImpact,
		scorePreferredIntent,
		scorePreferredTopic,
		scorePreferredLocation,
		scoreUrgency,
	} {
		delta, reason := f(a, prefs)
		s.Engagement += delta
		if reason != nil {
			s.Reasons = append(s.Reasons, *reason)
		}
	}
	s.Engagement = min(s.Engagement, MaxEngagement)
	return s
}

// Apply writes s onto the action's computed fields.
func (s Scores) Apply(a *domain.Action) {
	a.RelevanceScore = s.Relevance
	a.EngagementScore = s.Engagement
}

func scoreTopicMatch(a *domain.Action, ic domain.IntentContext) (float64, *Reason) {
	if !MatchesTopic(a, ic.Topic) {
		return 0, nil
	}
	return TopicRelevance, &Reason{Code: ReasonTopicMatch, Delta: TopicRelevance}
}

func scoreLocationMatch(a *domain.Action, ic domain.IntentContext) (float64, *Reason) {
	if !MatchesLocation(a.Location, ic.Location) {
		return 0, nil
	}
	return LocationRelevance, &Reason{Code: ReasonLocationMatch, Delta: LocationRelevance}
}

func scoreImpact(a *domain.Action, _ *domain.PreferenceState) (float64, *Reason) {
	delta := float64(a.Impact) * ImpactWeight
	return delta, &Reason{Code: ReasonImpact, Delta: delta}
}

func scoreUrgency(a *domain.Action, _ *domain.PreferenceState) (float64, *Reason) {
	delta := float64(a.Urgency) * UrgencyWeight
	return delta, &Reason{Code: ReasonUrgency, Delta: delta}
}

func scorePreferredIntent(a *domain.Action, prefs *domain.PreferenceState) (float64, *Reason) {
	if !prefs.PrefersIntent(a.Intent) {
		return 0, nil
	}
	return PreferredIntentBonus, &Reason{Code: ReasonPreferredIntent, Delta: PreferredIntentBonus}
}

func scorePreferredTopic(a *domain.Action, prefs *domain.PreferenceState) (float64, *Reason) {
	if !prefs.PrefersTopic(a.Topic) {
		return 0, nil
	}
	return PreferredTopicBonus, &Reason{Code: ReasonPreferredTopic, Delta: PreferredTopicBonus}
}

func scorePreferredLocation(a *domain.Action, prefs *domain.PreferenceState) (float64, *Reason) {
	if !prefs.PrefersLocation(a.Location) {
		return 0, nil
	}
	return PreferredLocationBonus, &Reason{Code: ReasonPreferredLocation, Delta: PreferredLocationBonus}
}

// MatchesTopic reports whether any tag, the title or the description
// contains the requested topic, ignoring case.
func MatchesTopic(a *domain.Action, topic string) bool {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return false
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), topic) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(a.Title), topic) ||
		strings.Contains(strings.ToLower(a.Description), topic)
}

// MatchesLocation reports whether two locations match exactly (ignoring
// case) or either one is location-agnostic.
func MatchesLocation(actionLoc, requested string) bool {
	if IsLocationAgnostic(actionLoc) || IsLocationAgnostic(requested) {
		return true
	}
	if strings.TrimSpace(actionLoc) == "" || strings.TrimSpace(requested) == "" {
		return false
	}
	return domain.EqualFold(actionLoc, requested)
}

// IsLocationAgnostic reports whether loc names no particular place.
func IsLocationAgnostic(loc string) bool {
	return domain.ContainsFold(locationAgnostic, loc)
}
