// Package recommend turns raw catalog records into ranked actions. Everything
// here is pure and synchronous: no I/O, no clocks, no hidden randomness.
package recommend

import (
	"strings"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/google/uuid"
)

// UntitledAction is the title given to records that arrive without one.
const UntitledAction = "Untitled action"

// actionNamespace seeds the name-based ids derived for records without one.
var actionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("civic:action"))

// Normalize converts one raw record into an Action under the active context.
// It never fails: missing fields are filled from CTA defaults and the context.
func Normalize(rec *domain.ActionRecord, ic domain.IntentContext, now time.Time) domain.Action {
	if rec == nil {
		rec = &domain.ActionRecord{}
	}
	ic = ic.Normalized()

	intent := domain.CoalesceStr(rec.Intent, ic.Intent)
	cta := domain.ParseCTAType(rec.CTAType)
	if strings.TrimSpace(rec.CTAType) == "" {
		cta = domain.CTAForIntent(intent)
	}

	title := domain.CoalesceStr(rec.Title, UntitledAction)
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = derivedID(title, rec.Description, rec.OrganizationName)
	}

	return domain.Action{
		ID:               id,
		Title:            title,
		Description:      strings.TrimSpace(rec.Description),
		Tags:             cleanTags(rec.Tags),
		Intent:           intent,
		Topic:            domain.CoalesceStr(rec.Topic, ic.Topic),
		Location:         domain.CoalesceStr(rec.Location, ic.Location),
		CTAType:          cta,
		CTALabel:         cta.Label(),
		Impact:           domain.ClampLevel(rec.Impact),
		Urgency:          domain.ClampLevel(rec.Urgency),
		TimeCommitment:   domain.CoalesceStr(rec.TimeCommitment, cta.DefaultTime()),
		OrganizationName: strings.TrimSpace(rec.OrganizationName),
		Link:             strings.TrimSpace(rec.Link),
		GeneratedAt:      now.UTC(),
	}
}

func derivedID(parts ...string) string {
	return uuid.NewSHA1(actionNamespace, []byte(strings.ToLower(strings.Join(parts, "\x1f")))).String()
}

// cleanTags trims tags and drops blanks and case-insensitive repeats,
// preserving the first spelling and order for display.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || domain.ContainsFold(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
