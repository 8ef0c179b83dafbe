package testutil

import (
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/google/uuid"
)

// RecordOption customises a raw catalog record fixture.
type RecordOption func(*domain.ActionRecord)

func WithRecordID(id string) RecordOption {
	return func(r *domain.ActionRecord) { r.ID = id }
}

func WithTags(tags ...string) RecordOption {
	return func(r *domain.ActionRecord) { r.Tags = tags }
}

func WithTopic(topic string) RecordOption {
	return func(r *domain.ActionRecord) { r.Topic = topic }
}

func WithIntent(intent string) RecordOption {
	return func(r *domain.ActionRecord) { r.Intent = intent }
}

func WithLocation(location string) RecordOption {
	return func(r *domain.ActionRecord) { r.Location = location }
}

func WithCTA(cta string) RecordOption {
	return func(r *domain.ActionRecord) { r.CTAType = cta }
}

func WithLevels(impact, urgency int) RecordOption {
	return func(r *domain.ActionRecord) {
		r.Impact = impact
		r.Urgency = urgency
	}
}

func WithDescription(d string) RecordOption {
	return func(r *domain.ActionRecord) { r.Description = d }
}

func WithTimeCommitment(tc string) RecordOption {
	return func(r *domain.ActionRecord) { r.TimeCommitment = tc }
}

func WithOrganization(name string) RecordOption {
	return func(r *domain.ActionRecord) { r.OrganizationName = name }
}

// NewTestRecord returns a well-formed record with impact/urgency 3/3.
func NewTestRecord(title string, opts ...RecordOption) *domain.ActionRecord {
	now := time.Now().UTC()
	r := &domain.ActionRecord{
		ID:          uuid.New().String(),
		Title:       title,
		Description: title + " description",
		Tags:        []string{},
		CTAType:     string(domain.CTALearnMore),
		Impact:      3,
		Urgency:     3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ActionOption customises a normalized action fixture.
type ActionOption func(*domain.Action)

func WithActionTags(tags ...string) ActionOption {
	return func(a *domain.Action) { a.Tags = tags }
}

func WithActionLevels(impact, urgency int) ActionOption {
	return func(a *domain.Action) {
		a.Impact = impact
		a.Urgency = urgency
	}
}

func WithActionTime(tc string) ActionOption {
	return func(a *domain.Action) { a.TimeCommitment = tc }
}

func WithActionDescription(d string) ActionOption {
	return func(a *domain.Action) { a.Description = d }
}

func WithActionOrganization(name string) ActionOption {
	return func(a *domain.Action) { a.OrganizationName = name }
}

func WithActionContext(intent, topic, location string) ActionOption {
	return func(a *domain.Action) {
		a.Intent = intent
		a.Topic = topic
		a.Location = location
	}
}

// NewTestAction returns a normalized action as the filter stage sees it.
func NewTestAction(id, title string, opts ...ActionOption) domain.Action {
	a := domain.Action{
		ID:             id,
		Title:          title,
		Tags:           []string{},
		CTAType:        domain.CTALearnMore,
		CTALabel:       domain.CTALearnMore.Label(),
		Impact:         3,
		Urgency:        3,
		TimeCommitment: domain.CTALearnMore.DefaultTime(),
		GeneratedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}
