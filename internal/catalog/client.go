// Package catalog is the engine's view of the hosted action catalog: two
// candidate queries and two feedback writes. Every call is fallible.
package catalog

import (
	"context"

	"github.com/alexanderramin/civic/internal/domain"
)

// Client supplies candidate records and accepts feedback writes.
type Client interface {
	PersonalizedActions(ctx context.Context, userID string, limit int) ([]*domain.ActionRecord, error)
	PopularActions(ctx context.Context, limit int) ([]*domain.ActionRecord, error)
	StartAction(ctx context.Context, userID, actionID string) error
	CompleteAction(ctx context.Context, userID, actionID string, impactReported *int, feedback string) error
}

// CompleteRequest is the body of a completion write.
type CompleteRequest struct {
	ImpactReported *int   `json:"impactReported,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback       string `json:"feedback,omitempty" validate:"max=2000"`
}

// ActionsResponse is the body returned by both candidate queries.
type ActionsResponse struct {
	Actions []*domain.ActionRecord `json:"actions"`
}
