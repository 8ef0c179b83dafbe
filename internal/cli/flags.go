package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/civic/internal/domain"
)

// contextFlags holds the intent context given on the command line.
type contextFlags struct {
	intent   string
	topic    string
	location string
}

func bindContextFlags(fs *pflag.FlagSet, f *contextFlags) {
	fs.StringVarP(&f.intent, "intent", "i", "", "What you want to do (volunteer, donate, advocate, ...)")
	fs.StringVarP(&f.topic, "topic", "t", "", "Issue you care about")
	fs.StringVarP(&f.location, "location", "l", "", "Where you are (city, region)")
}

func (f contextFlags) context() domain.IntentContext {
	return domain.IntentContext{Intent: f.intent, Topic: f.topic, Location: f.location}.Normalized()
}

// filterFlags holds the filter axes given on the command line.
type filterFlags struct {
	search  string
	tags    []string
	urgency []int
	impact  []int
	times   []string
}

func bindFilterFlags(fs *pflag.FlagSet, f *filterFlags) {
	fs.StringVarP(&f.search, "search", "s", "", "Fuzzy search over title, description, organization and tags")
	fs.StringSliceVar(&f.tags, "tag", nil, "Only actions carrying every given tag")
	fs.IntSliceVar(&f.urgency, "urgency", nil, "Only actions with one of these urgency levels (1-5)")
	fs.IntSliceVar(&f.impact, "impact", nil, "Only actions with one of these impact levels (1-5)")
	fs.StringSliceVar(&f.times, "time", nil, "Only actions whose time commitment contains one of these")
}

func (f filterFlags) state() (domain.FilterState, error) {
	for _, levels := range [][]int{f.urgency, f.impact} {
		for _, v := range levels {
			if v < domain.MinLevel || v > domain.MaxLevel {
				return domain.FilterState{}, fmt.Errorf("level %d out of range %d-%d", v, domain.MinLevel, domain.MaxLevel)
			}
		}
	}
	return domain.FilterState{
		SearchQuery:    strings.TrimSpace(f.search),
		Tags:           f.tags,
		Urgency:        f.urgency,
		Impact:         f.impact,
		TimeCommitment: f.times,
	}, nil
}
