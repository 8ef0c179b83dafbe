package preference

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/repository"
	"github.com/alexanderramin/civic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	mu      sync.Mutex
	saved   []*domain.PreferenceState
	failFor int
}

func (r *recordingSaver) Save(_ context.Context, p *domain.PreferenceState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor > 0 {
		r.failFor--
		return errors.New("store offline")
	}
	r.saved = append(r.saved, p)
	return nil
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *recordingSaver) last() *domain.PreferenceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[len(r.saved)-1]
}

type countingObserver struct {
	mu     sync.Mutex
	events []FlushEvent
}

func (c *countingObserver) OnFlush(_ context.Context, e FlushEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func TestFlusher_FlushCleanIsNoop(t *testing.T) {
	saver := &recordingSaver{}
	f := NewFlusher(newTestStore(), saver, FlusherConfig{}, nil, nil)
	require.NoError(t, f.Flush(context.Background()))
	assert.Zero(t, saver.count())
}

func TestFlusher_FailedFlushKeepsIncrements(t *testing.T) {
	saver := &recordingSaver{failFor: 1}
	obs := &countingObserver{}
	s := newTestStore()
	f := NewFlusher(s, saver, FlusherConfig{}, nil, obs)

	s.RecordCompletion("a")
	require.Error(t, f.Flush(context.Background()))
	assert.True(t, s.Dirty())

	s.RecordCompletion("b")
	require.NoError(t, f.Flush(context.Background()))
	assert.False(t, s.Dirty())
	assert.Equal(t, int64(2), saver.last().ActionsCompleted)
	require.Len(t, obs.events, 2)
	assert.Error(t, obs.events[0].Err)
	assert.NoError(t, obs.events[1].Err)
}

func TestFlusher_ServeDebouncesBurst(t *testing.T) {
	saver := &recordingSaver{}
	s := newTestStore()
	f := NewFlusher(s, saver, FlusherConfig{Delay: 40 * time.Millisecond}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Serve(ctx) }()

	for range 10 {
		s.RecordSave("a")
	}
	require.Eventually(t, func() bool { return saver.count() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, saver.count(), "burst written once")
	assert.Equal(t, int64(10), saver.last().ActionsSaved)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFlusher_ServeRetriesAfterFailure(t *testing.T) {
	saver := &recordingSaver{failFor: 2}
	s := newTestStore()
	f := NewFlusher(s, saver, FlusherConfig{Delay: 10 * time.Millisecond, RetryDelay: 10 * time.Millisecond}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Serve(ctx) }()

	s.RecordTimeSpent(60)
	require.Eventually(t, func() bool { return !s.Dirty() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(60), saver.last().TotalTimeSpentSeconds)
}

func TestFlusher_ServeFlushesOnShutdown(t *testing.T) {
	saver := &recordingSaver{}
	s := newTestStore()
	f := NewFlusher(s, saver, FlusherConfig{Delay: time.Hour}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Serve(ctx) }()

	s.RecordSave("a")
	cancel()
	<-done
	assert.Equal(t, 1, saver.count())
	assert.False(t, s.Dirty())
}

func TestFlusher_PersistsThroughRepository(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePreferenceRepo(database)
	s := newTestStore()
	f := NewFlusher(s, repo, FlusherConfig{}, nil, nil)

	s.RecordView([]domain.Action{ctxAction("a1", "volunteer", "climate", "Denver")})
	require.NoError(t, f.Flush(context.Background()))

	got, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"climate"}, got.PreferredTopics)
	assert.Equal(t, int64(1), got.TotalActionsViewed)
}
