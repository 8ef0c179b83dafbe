package repository

import (
	"context"

	"github.com/alexanderramin/civic/internal/domain"
)

// ActionRepo stores raw catalog records.
type ActionRepo interface {
	Upsert(ctx context.Context, rec *domain.ActionRecord) error
	GetByID(ctx context.Context, id string) (*domain.ActionRecord, error)
	List(ctx context.Context, limit int) ([]*domain.ActionRecord, error)
	// ListPersonalized returns records matching the user's stored preferences
	// that the user has not completed, best matches first.
	ListPersonalized(ctx context.Context, userID string, limit int) ([]*domain.ActionRecord, error)
	// ListPopular returns records ordered by recorded engagement.
	ListPopular(ctx context.Context, limit int) ([]*domain.ActionRecord, error)
	Delete(ctx context.Context, id string) error
}

// ActionEventRepo stores start/complete feedback writes.
type ActionEventRepo interface {
	Create(ctx context.Context, e *domain.ActionEvent) error
	ListByUser(ctx context.Context, userID string) ([]*domain.ActionEvent, error)
}

// PreferenceRepo persists per-user preference snapshots.
type PreferenceRepo interface {
	Get(ctx context.Context, userID string) (*domain.PreferenceState, error)
	Save(ctx context.Context, p *domain.PreferenceState) error
}
