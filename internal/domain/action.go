package domain

import "time"

// Action is a single recommendable civic-engagement item.
type Action struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	Intent           string     `json:"intent"`
	Topic            string     `json:"topic"`
	Location         string     `json:"location"`
	CTAType          CTAType    `json:"ctaType"`
	CTALabel         string     `json:"ctaLabel"`
	Impact           int        `json:"impact"`
	Urgency          int        `json:"urgency"`
	TimeCommitment   string     `json:"timeCommitment"`
	OrganizationName string     `json:"organizationName,omitempty"`
	Link             string     `json:"link,omitempty"`
	RelevanceScore   float64    `json:"relevanceScore"`
	EngagementScore  float64    `json:"engagementScore"`
	GeneratedAt      time.Time  `json:"generatedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	SavedAt          *time.Time `json:"savedAt,omitempty"`

	// Fallback marks actions synthesized locally rather than read from the catalog.
	Fallback bool `json:"fallback"`
}

// Impact and urgency bounds.
const (
	MinLevel     = 1
	MaxLevel     = 5
	DefaultLevel = 3
)

// HasTag reports whether the action carries tag, ignoring case.
func (a *Action) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IntentContext is the query context a user submits to request actions.
type IntentContext struct {
	Intent   string `json:"intent" validate:"required,max=120"`
	Topic    string `json:"topic" validate:"required,max=120"`
	Location string `json:"location" validate:"max=120"`
}

// Normalized returns a copy with surrounding whitespace trimmed.
func (ic IntentContext) Normalized() IntentContext {
	return IntentContext{
		Intent:   trim(ic.Intent),
		Topic:    trim(ic.Topic),
		Location: trim(ic.Location),
	}
}

// ActionRecord is a raw catalog record before normalization. Every field other
// than the identity may be missing or out of range.
type ActionRecord struct {
	ID               string    `json:"id" yaml:"id"`
	Title            string    `json:"title" yaml:"title"`
	Description      string    `json:"description" yaml:"description"`
	Tags             []string  `json:"tags" yaml:"tags"`
	Intent           string    `json:"intent" yaml:"intent"`
	Topic            string    `json:"topic" yaml:"topic"`
	Location         string    `json:"location" yaml:"location"`
	CTAType          string    `json:"ctaType" yaml:"cta_type"`
	Impact           int       `json:"impact" yaml:"impact"`
	Urgency          int       `json:"urgency" yaml:"urgency"`
	TimeCommitment   string    `json:"timeCommitment" yaml:"time_commitment"`
	OrganizationName string    `json:"organizationName" yaml:"organization_name"`
	Link             string    `json:"link" yaml:"link"`
	CreatedAt        time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt        time.Time `json:"updatedAt" yaml:"-"`
}

// ActionEventKind distinguishes catalog feedback writes.
type ActionEventKind string

const (
	EventStart    ActionEventKind = "start"
	EventComplete ActionEventKind = "complete"
)

// ActionEvent is a start/complete write accepted by the catalog.
type ActionEvent struct {
	ID             string
	UserID         string
	ActionID       string
	Kind           ActionEventKind
	ImpactReported *int
	Feedback       string
	CreatedAt      time.Time
}
