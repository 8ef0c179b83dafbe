package domain

// FilterState is the ephemeral, session-local set of display filters.
// An empty set on any axis imposes no restriction on that axis.
type FilterState struct {
	SearchQuery    string   `json:"searchQuery"`
	Tags           []string `json:"tags"`
	Urgency        []int    `json:"urgency"`
	Impact         []int    `json:"impact"`
	TimeCommitment []string `json:"timeCommitment"`
}

// IsEmpty reports whether no axis constrains the result set.
func (f FilterState) IsEmpty() bool {
	return trim(f.SearchQuery) == "" &&
		len(f.Tags) == 0 &&
		len(f.Urgency) == 0 &&
		len(f.Impact) == 0 &&
		len(f.TimeCommitment) == 0
}
