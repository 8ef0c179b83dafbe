package preference

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/goccy/go-json"
)

// requiredExportFields are the top-level keys a snapshot must carry.
var requiredExportFields = []string{
	"userId",
	"preferredIntents",
	"preferredTopics",
	"preferredLocations",
	"totalActionsViewed",
	"actionsCompleted",
	"actionsSaved",
	"totalTimeSpentSeconds",
}

// Export serializes the current snapshot as indented JSON for diagnostics.
func (s *Store) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding preference snapshot: %w", err)
	}
	return data, nil
}

// ValidateExport checks that data is a JSON object carrying every required
// top-level field, and decodes it.
func ValidateExport(data []byte) (*domain.PreferenceState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	var missing []string
	for _, field := range requiredExportFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidExport, strings.Join(missing, ", "))
	}

	var p domain.PreferenceState
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return nil, fmt.Errorf("%w: empty userId", ErrInvalidExport)
	}
	if p.Ratings == nil {
		p.Ratings = map[string]domain.Rating{}
	}
	return &p, nil
}
