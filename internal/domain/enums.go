package domain

import "strings"

// CTAType is the closed set of call-to-action kinds an action can carry.
type CTAType string

const (
	CTAContactRep CTAType = "contact_rep"
	CTAVolunteer  CTAType = "volunteer"
	CTADonate     CTAType = "donate"
	CTAPetition   CTAType = "petition"
	CTALearnMore  CTAType = "learn_more"
	CTAOrganize   CTAType = "organize"
	CTAGetHelp    CTAType = "get_help"
)

// CTAInfo holds the display defaults keyed by CTA type.
type CTAInfo struct {
	Label       string
	DefaultTime string
}

// ctaTable is the single source of CTA defaults. Every CTAType constant must
// have an entry; TestCTATable_Exhaustive enforces it.
var ctaTable = map[CTAType]CTAInfo{
	CTAContactRep: {Label: "Contact Representative", DefaultTime: "15 minutes"},
	CTAVolunteer:  {Label: "Volunteer", DefaultTime: "2-4 hours"},
	CTADonate:     {Label: "Donate", DefaultTime: "5 minutes"},
	CTAPetition:   {Label: "Sign Petition", DefaultTime: "5 minutes"},
	CTALearnMore:  {Label: "Learn More", DefaultTime: "10-20 minutes"},
	CTAOrganize:   {Label: "Organize", DefaultTime: "1-2 hours per week"},
	CTAGetHelp:    {Label: "Get Help", DefaultTime: "30 minutes"},
}

// CTATypes returns every CTA type in a stable display order.
func CTATypes() []CTAType {
	return []CTAType{
		CTAContactRep, CTAVolunteer, CTADonate, CTAPetition,
		CTALearnMore, CTAOrganize, CTAGetHelp,
	}
}

// ParseCTAType maps a raw string to a CTAType. Unknown values fall back to learn_more.
func ParseCTAType(s string) CTAType {
	t := CTAType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ctaTable[t]; ok {
		return t
	}
	return CTALearnMore
}

// Info returns the label and default time estimate for t.
func (t CTAType) Info() CTAInfo {
	if info, ok := ctaTable[t]; ok {
		return info
	}
	return ctaTable[CTALearnMore]
}

// Label returns the call-to-action label shown for t.
func (t CTAType) Label() string { return t.Info().Label }

// DefaultTime returns the time-commitment estimate used when a record has none.
func (t CTAType) DefaultTime() string { return t.Info().DefaultTime }

// intentCTA maps the free-form intent words users pick to the CTA they imply.
var intentCTA = map[string]CTAType{
	"advocate":    CTAContactRep,
	"advocacy":    CTAContactRep,
	"contact":     CTAContactRep,
	"contact_rep": CTAContactRep,
	"volunteer":   CTAVolunteer,
	"donate":      CTADonate,
	"donation":    CTADonate,
	"give":        CTADonate,
	"petition":    CTAPetition,
	"sign":        CTAPetition,
	"learn":       CTALearnMore,
	"learn_more":  CTALearnMore,
	"educate":     CTALearnMore,
	"organize":    CTAOrganize,
	"mobilize":    CTAOrganize,
	"get_help":    CTAGetHelp,
	"help":        CTAGetHelp,
	"support":     CTAGetHelp,
}

// CTAForIntent returns the CTA implied by an intent word, or learn_more.
func CTAForIntent(intent string) CTAType {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(intent)), " ", "_")
	if t, ok := intentCTA[key]; ok {
		return t
	}
	return ParseCTAType(key)
}
