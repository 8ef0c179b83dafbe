package service

import (
	"context"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/importer"
)

// Recommendation is the outcome of one GenerateActions call.
type Recommendation struct {
	Generation    uint64
	Context       domain.IntentContext
	Actions       []domain.Action
	CatalogCount  int
	FallbackCount int
	PoolErrors    []string
	// Stale is set when a newer request superseded this one; the actions
	// were returned to the caller but not committed as current.
	Stale bool
}

// ActionEngine is the surface the CLI and HTTP layers drive.
type ActionEngine interface {
	GenerateActions(ctx context.Context, ic domain.IntentContext) *Recommendation
	Current() []domain.Action
	CurrentContext() domain.IntentContext
	Lookup(actionID string) (domain.Action, bool)
	FilterActions(state domain.FilterState) []domain.Action

	RecordView(ctx context.Context, actions []domain.Action)
	RecordSave(ctx context.Context, actionID string)
	RecordCompletion(ctx context.Context, actionID string, impactReported *int, feedback string)
	RecordRating(ctx context.Context, actionID string, rating int, feedback string)
	RecordTimeSpent(ctx context.Context, seconds int64)
	StartAction(ctx context.Context, actionID string)

	Preferences() *domain.PreferenceState
	ExportPreferenceState() ([]byte, error)
}

// ImportResult holds the outcome of a catalog import.
type ImportResult struct {
	Created int
	Updated int
}

// ImportService loads catalog seed files.
type ImportService interface {
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
	ImportSchema(ctx context.Context, schema *importer.CatalogSchema) (*ImportResult, error)
}
