package recommend

import (
	"fmt"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
)

// MinFallbackActions is the floor the fallback generator always meets.
const MinFallbackActions = 2

// fallbackSize is how many actions one fallback pass produces.
const fallbackSize = 3

type fallbackTemplate struct {
	cta   domain.CTAType
	title func(topic, place string) string
	desc  func(topic, place string) string
}

var fallbackTemplates = []fallbackTemplate{
	{
		cta:   domain.CTALearnMore,
		title: func(topic, _ string) string { return fmt.Sprintf("Learn more about %s", topic) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Read up on the state of %s %s and the groups already working on it.", topic, place)
		},
	},
	{
		cta:   domain.CTAContactRep,
		title: func(topic, _ string) string { return fmt.Sprintf("Contact your representative about %s", topic) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Tell the officials who represent you %s where you stand on %s.", place, topic)
		},
	},
	{
		cta:   domain.CTAVolunteer,
		title: func(topic, place string) string { return fmt.Sprintf("Volunteer on %s %s", topic, place) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Find an organization %s that needs help with %s and offer a few hours.", place, topic)
		},
	},
	{
		cta:   domain.CTADonate,
		title: func(topic, _ string) string { return fmt.Sprintf("Support %s work with a donation", topic) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Give to a group working on %s %s. Small recurring gifts help most.", topic, place)
		},
	},
	{
		cta:   domain.CTAPetition,
		title: func(topic, _ string) string { return fmt.Sprintf("Sign a petition on %s", topic) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Add your name to an open petition about %s %s.", topic, place)
		},
	},
	{
		cta:   domain.CTAOrganize,
		title: func(topic, _ string) string { return fmt.Sprintf("Organize neighbors around %s", topic) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Host a small meeting %s to plan next steps on %s.", place, topic)
		},
	},
	{
		cta:   domain.CTAGetHelp,
		title: func(topic, _ string) string { return fmt.Sprintf("Find support services for %s", topic) },
		desc: func(topic, place string) string {
			return fmt.Sprintf("Locate services %s that help people affected by %s.", place, topic)
		},
	},
}

// GenerateFallback synthesizes generic on-topic actions for ic. It makes no
// external calls and always returns at least MinFallbackActions entries.
// Ids are derived from the context so repeated calls are stable.
func GenerateFallback(ic domain.IntentContext, now time.Time) []domain.Action {
	ic = ic.Normalized()
	topic := domain.CoalesceStr(ic.Topic, "your community")
	place := "near you"
	if ic.Location != "" {
		if IsLocationAgnostic(ic.Location) {
			place = ic.Location
		} else {
			place = "in " + ic.Location
		}
	}

	templates := orderedTemplates(domain.CTAForIntent(ic.Intent))[:fallbackSize]
	out := make([]domain.Action, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, domain.Action{
			ID:             derivedID("fallback", string(tpl.cta), ic.Intent, ic.Topic, ic.Location),
			Title:          tpl.title(topic, place),
			Description:    tpl.desc(topic, place),
			Tags:           fallbackTags(ic),
			Intent:         ic.Intent,
			Topic:          ic.Topic,
			Location:       ic.Location,
			CTAType:        tpl.cta,
			CTALabel:       tpl.cta.Label(),
			Impact:         domain.DefaultLevel,
			Urgency:        domain.DefaultLevel,
			TimeCommitment: tpl.cta.DefaultTime(),
			GeneratedAt:    now.UTC(),
			Fallback:       true,
		})
	}
	return out
}

// orderedTemplates puts the template matching the user's intent first.
func orderedTemplates(preferred domain.CTAType) []fallbackTemplate {
	out := make([]fallbackTemplate, 0, len(fallbackTemplates))
	for _, tpl := range fallbackTemplates {
		if tpl.cta == preferred {
			out = append(out, tpl)
		}
	}
	for _, tpl := range fallbackTemplates {
		if tpl.cta != preferred {
			out = append(out, tpl)
		}
	}
	return out
}

func fallbackTags(ic domain.IntentContext) []string {
	tags := []string{}
	if ic.Topic != "" {
		tags = append(tags, ic.Topic)
	}
	if ic.Location != "" && !domain.ContainsFold(tags, ic.Location) {
		tags = append(tags, ic.Location)
	}
	return tags
}
