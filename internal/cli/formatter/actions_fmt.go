package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/civic/internal/domain"
)

const titleWidth = 48

// ActionsSummary carries the counts shown under the action table.
type ActionsSummary struct {
	Context       domain.IntentContext
	CatalogCount  int
	FallbackCount int
	PoolErrors    []string
}

// FormatActions renders the ranked list as a table with a context header.
func FormatActions(actions []domain.Action, sum ActionsSummary) string {
	var b strings.Builder

	ic := sum.Context
	title := "Actions"
	if ic.Topic != "" {
		title = fmt.Sprintf("Actions for %s", ic.Topic)
	}
	b.WriteString(Header(title))
	b.WriteString("\n")
	if line := contextLine(ic); line != "" {
		b.WriteString(Dim(line) + "\n")
	}
	b.WriteString("\n")

	if len(actions) == 0 {
		b.WriteString(Dim("No actions match.") + "\n")
		return b.String()
	}

	rows := make([][]string, len(actions))
	for i, a := range actions {
		titleCell := StyleFg.Render(Truncate(a.Title, titleWidth))
		if a.Fallback {
			titleCell += " " + Dim("(suggested)")
		}
		rows[i] = []string{
			Bold(strconv.Itoa(i + 1)),
			TruncID(a.ID),
			titleCell,
			CTABadge(a.CTAType),
			ImpactPips(a.Impact),
			UrgencyIndicator(a.Urgency),
			Dim(a.TimeCommitment),
			fmt.Sprintf("%.0f", a.EngagementScore),
		}
	}
	b.WriteString(RenderTable(
		[]string{"#", "ID", "TITLE", "ACTION", "IMPACT", "URGENCY", "TIME", "SCORE"},
		rows,
	))

	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%d from catalog, %d suggested", sum.CatalogCount, sum.FallbackCount)))
	b.WriteString("\n")
	if len(sum.PoolErrors) > 0 {
		b.WriteString(StyleYellow.Render("Catalog partly unavailable; showing what we have.") + "\n")
	}
	return b.String()
}

func contextLine(ic domain.IntentContext) string {
	var parts []string
	if ic.Intent != "" {
		parts = append(parts, "intent: "+ic.Intent)
	}
	if ic.Location != "" {
		parts = append(parts, "location: "+ic.Location)
	}
	return strings.Join(parts, "  ·  ")
}

// FormatActionDetail renders one action in a box.
func FormatActionDetail(a domain.Action) string {
	var b strings.Builder
	b.WriteString(Bold(a.Title) + "\n")
	if a.OrganizationName != "" {
		b.WriteString(Dim(a.OrganizationName) + "\n")
	}
	if a.Description != "" {
		b.WriteString("\n" + StyleFg.Render(a.Description) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("Action:    "), CTABadge(a.CTAType))
	fmt.Fprintf(&b, "%s %s\n", Dim("Impact:    "), ImpactPips(a.Impact))
	fmt.Fprintf(&b, "%s %s\n", Dim("Urgency:   "), UrgencyIndicator(a.Urgency))
	fmt.Fprintf(&b, "%s %s\n", Dim("Time:      "), a.TimeCommitment)
	fmt.Fprintf(&b, "%s %s\n", Dim("Tags:      "), TagList(a.Tags))
	fmt.Fprintf(&b, "%s %s\n", Dim("Engagement:"), RenderScoreBar(a.EngagementScore, 100, 20))
	if a.Link != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Link:      "), StyleBlue.Render(a.Link))
	}
	if a.SavedAt != nil {
		b.WriteString(StyleGreen.Render("★ Saved") + "\n")
	}
	if a.CompletedAt != nil {
		b.WriteString(StyleGreen.Render("✔ Completed") + "\n")
	}
	return RenderBox(a.ID, strings.TrimRight(b.String(), "\n"))
}
