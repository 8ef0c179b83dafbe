package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
)

// FormatPreferences renders the learned preference state.
func FormatPreferences(p *domain.PreferenceState, now time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Preferences for " + p.UserID))
	b.WriteString("\n\n")

	list := func(label string, values []string) {
		v := Dim("--")
		if len(values) > 0 {
			v = StylePurple.Render(strings.Join(values, ", "))
		}
		fmt.Fprintf(&b, "%s %s\n", Dim(label), v)
	}
	list("Intents:   ", p.PreferredIntents)
	list("Topics:    ", p.PreferredTopics)
	list("Locations: ", p.PreferredLocations)
	b.WriteString("\n")

	b.WriteString(RenderTable(
		[]string{"VIEWED", "SAVED", "COMPLETED", "TIME SPENT"},
		[][]string{{
			fmt.Sprint(p.TotalActionsViewed),
			fmt.Sprint(p.ActionsSaved),
			fmt.Sprint(p.ActionsCompleted),
			FormatSeconds(p.TotalTimeSpentSeconds),
		}},
	))

	if p.LastEngagementAt != nil {
		fmt.Fprintf(&b, "\n%s %s\n", Dim("Last active:"), HumanTimestampFrom(*p.LastEngagementAt, now))
	}

	if len(p.Ratings) > 0 {
		ids := make([]string, 0, len(p.Ratings))
		for id := range p.Ratings {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		rows := make([][]string, len(ids))
		for i, id := range ids {
			r := p.Ratings[id]
			rows[i] = []string{TruncID(id), StyleYellow.Render(strings.Repeat("★", r.Value)), Truncate(r.Feedback, 40)}
		}
		b.WriteString("\n" + RenderTable([]string{"ACTION", "RATING", "FEEDBACK"}, rows))
	}
	return b.String()
}
