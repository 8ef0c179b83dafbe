package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/repository"
	"github.com/google/uuid"
)

// RepoClient serves the catalog from the local SQLite repositories.
type RepoClient struct {
	actions  repository.ActionRepo
	events   repository.ActionEventRepo
	observer Observer
	now      func() time.Time
}

// NewRepoClient creates a Client backed by the given repositories.
func NewRepoClient(actions repository.ActionRepo, events repository.ActionEventRepo, observer Observer) *RepoClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &RepoClient{actions: actions, events: events, observer: observer, now: time.Now}
}

func (c *RepoClient) PersonalizedActions(ctx context.Context, userID string, limit int) ([]*domain.ActionRecord, error) {
	start := c.now()
	recs, err := c.actions.ListPersonalized(ctx, userID, limit)
	c.observe(ctx, OpPersonalized, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return recs, nil
}

func (c *RepoClient) PopularActions(ctx context.Context, limit int) ([]*domain.ActionRecord, error) {
	start := c.now()
	recs, err := c.actions.ListPopular(ctx, limit)
	c.observe(ctx, OpPopular, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return recs, nil
}

func (c *RepoClient) StartAction(ctx context.Context, userID, actionID string) error {
	return c.record(ctx, OpStart, &domain.ActionEvent{
		UserID:   userID,
		ActionID: actionID,
		Kind:     domain.EventStart,
	})
}

func (c *RepoClient) CompleteAction(ctx context.Context, userID, actionID string, impactReported *int, feedback string) error {
	return c.record(ctx, OpComplete, &domain.ActionEvent{
		UserID:         userID,
		ActionID:       actionID,
		Kind:           domain.EventComplete,
		ImpactReported: impactReported,
		Feedback:       feedback,
	})
}

func (c *RepoClient) record(ctx context.Context, op string, e *domain.ActionEvent) error {
	start := c.now()
	err := c.writeEvent(ctx, e)
	c.observe(ctx, op, start, err)
	return err
}

func (c *RepoClient) writeEvent(ctx context.Context, e *domain.ActionEvent) error {
	if _, err := c.actions.GetByID(ctx, e.ActionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownAction, e.ActionID)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	e.ID = uuid.New().String()
	e.CreatedAt = c.now().UTC()
	if err := c.events.Create(ctx, e); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *RepoClient) observe(ctx context.Context, op string, start time.Time, err error) {
	c.observer.OnCallComplete(ctx, CallEvent{
		Op:        op,
		LatencyMs: c.now().Sub(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}
