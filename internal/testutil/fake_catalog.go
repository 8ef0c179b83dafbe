package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
)

// FeedbackCall records one StartAction or CompleteAction call.
type FeedbackCall struct {
	UserID         string
	ActionID       string
	Kind           domain.ActionEventKind
	ImpactReported *int
	Feedback       string
}

// FakeCatalog is an in-memory catalog client with injectable latency and errors.
type FakeCatalog struct {
	mu sync.Mutex

	Personalized    []*domain.ActionRecord
	Popular         []*domain.ActionRecord
	PersonalizedErr error
	PopularErr      error
	FeedbackErr     error

	// PersonalizedDelay and PopularDelay hold the pool fetch until elapsed
	// or the context is done.
	PersonalizedDelay time.Duration
	PopularDelay      time.Duration

	calls    []FeedbackCall
	requests map[string]int
}

func (f *FakeCatalog) PersonalizedActions(ctx context.Context, _ string, limit int) ([]*domain.ActionRecord, error) {
	f.count("personalized")
	if err := wait(ctx, f.PersonalizedDelay); err != nil {
		return nil, err
	}
	if f.PersonalizedErr != nil {
		return nil, f.PersonalizedErr
	}
	return head(f.Personalized, limit), nil
}

func (f *FakeCatalog) PopularActions(ctx context.Context, limit int) ([]*domain.ActionRecord, error) {
	f.count("popular")
	if err := wait(ctx, f.PopularDelay); err != nil {
		return nil, err
	}
	if f.PopularErr != nil {
		return nil, f.PopularErr
	}
	return head(f.Popular, limit), nil
}

func (f *FakeCatalog) StartAction(_ context.Context, userID, actionID string) error {
	return f.feedback(FeedbackCall{UserID: userID, ActionID: actionID, Kind: domain.EventStart})
}

func (f *FakeCatalog) CompleteAction(_ context.Context, userID, actionID string, impactReported *int, feedback string) error {
	return f.feedback(FeedbackCall{
		UserID:         userID,
		ActionID:       actionID,
		Kind:           domain.EventComplete,
		ImpactReported: impactReported,
		Feedback:       feedback,
	})
}

// Calls returns a copy of the recorded feedback writes.
func (f *FakeCatalog) Calls() []FeedbackCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FeedbackCall(nil), f.calls...)
}

// Requests returns how many times the named pool was queried.
func (f *FakeCatalog) Requests(pool string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[pool]
}

func (f *FakeCatalog) feedback(c FeedbackCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.FeedbackErr
}

func (f *FakeCatalog) count(pool string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requests == nil {
		f.requests = map[string]int{}
	}
	f.requests[pool]++
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func head(recs []*domain.ActionRecord, limit int) []*domain.ActionRecord {
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]*domain.ActionRecord, len(recs))
	for i, r := range recs {
		c := *r
		out[i] = &c
	}
	return out
}
