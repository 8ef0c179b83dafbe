package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/filter"
	"github.com/alexanderramin/civic/internal/preference"
	"github.com/alexanderramin/civic/internal/recommend"
)

// Engine defaults.
const (
	DefaultPoolLimit       = 20
	DefaultCatalogTimeout  = 3 * time.Second
	DefaultFeedbackTimeout = 5 * time.Second
)

// EngineConfig tunes one engine.
type EngineConfig struct {
	MinResults      int
	MaxResults      int
	PoolLimit       int
	CatalogTimeout  time.Duration
	FeedbackTimeout time.Duration
	// Variety enables the seeded tie shuffle after ranking.
	Variety     bool
	VarietySeed uint64
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.PoolLimit <= 0 {
		c.PoolLimit = DefaultPoolLimit
	}
	if c.CatalogTimeout <= 0 {
		c.CatalogTimeout = DefaultCatalogTimeout
	}
	if c.FeedbackTimeout <= 0 {
		c.FeedbackTimeout = DefaultFeedbackTimeout
	}
	return c
}

// Engine is the single owning context for one user's recommendation session:
// the catalog client, the preference store, the current result set and the
// request generation counter.
type Engine struct {
	catalog  catalog.Client
	prefs    *preference.Store
	cfg      EngineConfig
	logger   *slog.Logger
	observer UseCaseObserver
	now      func() time.Time

	mu         sync.Mutex
	generation uint64
	cancelPrev context.CancelFunc
	current    []domain.Action
	currentCtx domain.IntentContext
	rng        *rand.Rand

	background sync.WaitGroup
}

// NewEngine wires an engine over a catalog client and a preference store.
func NewEngine(client catalog.Client, prefs *preference.Store, cfg EngineConfig, logger *slog.Logger, observers ...UseCaseObserver) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg = cfg.withDefaults()
	e := &Engine{
		catalog:  client,
		prefs:    prefs,
		cfg:      cfg,
		logger:   logger.With("component", "engine"),
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
	if cfg.Variety {
		e.rng = recommend.NewVarietySource(cfg.VarietySeed)
	}
	return e
}

// WithClock overrides the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// GenerateActions fetches both candidate pools concurrently, ranks them, and
// tops up with fallback actions. It never fails and always returns at least
// two actions. A call superseded by a newer one is cancelled; its result is
// returned but not committed as current.
func (e *Engine) GenerateActions(ctx context.Context, ic domain.IntentContext) *Recommendation {
	startedAt := e.now()
	ic = ic.Normalized()

	e.mu.Lock()
	e.generation++
	gen := e.generation
	if e.cancelPrev != nil {
		e.cancelPrev()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	e.cancelPrev = cancel
	e.mu.Unlock()
	defer cancel()

	snapshot := e.prefs.Snapshot()
	personalized, popular, poolErrs := e.fetchPools(reqCtx, snapshot.UserID)

	res := recommend.Assemble(recommend.AssembleInput{
		Context:      ic,
		Personalized: personalized,
		Popular:      popular,
		Preferences:  snapshot,
		MinResults:   e.cfg.MinResults,
		MaxResults:   e.cfg.MaxResults,
		Now:          e.now(),
	})

	e.mu.Lock()
	if e.rng != nil {
		recommend.Diversify(res.Actions[:res.CatalogCount], e.rng)
	}
	stale := gen != e.generation
	if !stale {
		e.current = slices.Clone(res.Actions)
		e.currentCtx = ic
	}
	e.mu.Unlock()

	if !stale {
		e.prefs.Remember(res.Actions)
	}

	rec := &Recommendation{
		Generation:    gen,
		Context:       ic,
		Actions:       res.Actions,
		CatalogCount:  res.CatalogCount,
		FallbackCount: res.FallbackCount,
		PoolErrors:    poolErrs,
		Stale:         stale,
	}
	e.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      UseCaseGenerate,
		StartedAt: startedAt,
		Duration:  e.now().Sub(startedAt),
		Success:   true,
		Fields: map[string]any{
			"generation":     gen,
			"catalog_count":  res.CatalogCount,
			"fallback_count": res.FallbackCount,
			"duplicates":     res.DuplicateCount,
			"pool_errors":    len(poolErrs),
			"stale":          stale,
		},
	})
	return rec
}

type poolResult struct {
	records []*domain.ActionRecord
	err     error
}

// fetchPools issues both catalog queries at once and waits for both to
// settle. Each is bounded by CatalogTimeout; a failed pool is empty.
func (e *Engine) fetchPools(ctx context.Context, userID string) (personalized, popular []*domain.ActionRecord, errs []string) {
	var (
		wg        sync.WaitGroup
		pers, pop poolResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pers = e.fetchPool(ctx, func(ctx context.Context) ([]*domain.ActionRecord, error) {
			return e.catalog.PersonalizedActions(ctx, userID, e.cfg.PoolLimit)
		})
	}()
	go func() {
		defer wg.Done()
		pop = e.fetchPool(ctx, func(ctx context.Context) ([]*domain.ActionRecord, error) {
			return e.catalog.PopularActions(ctx, e.cfg.PoolLimit)
		})
	}()
	wg.Wait()

	if pers.err != nil {
		e.logger.WarnContext(ctx, "personalized pool unavailable", "error", pers.err)
		errs = append(errs, fmt.Sprintf("%s: %v", catalog.OpPersonalized, pers.err))
	}
	if pop.err != nil {
		e.logger.WarnContext(ctx, "popular pool unavailable", "error", pop.err)
		errs = append(errs, fmt.Sprintf("%s: %v", catalog.OpPopular, pop.err))
	}
	return pers.records, pop.records, errs
}

func (e *Engine) fetchPool(ctx context.Context, fetch func(context.Context) ([]*domain.ActionRecord, error)) poolResult {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CatalogTimeout)
	defer cancel()

	done := make(chan poolResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- poolResult{err: fmt.Errorf("catalog client panic: %v", r)}
			}
		}()
		recs, err := fetch(ctx)
		done <- poolResult{records: recs, err: err}
	}()
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return poolResult{err: catalog.ErrTimeout}
		}
		return poolResult{err: ctx.Err()}
	}
}

// Current returns a copy of the latest committed result set.
func (e *Engine) Current() []domain.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.current)
}

// CurrentContext returns the intent context of the committed result set.
func (e *Engine) CurrentContext() domain.IntentContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentCtx
}

// Lookup finds a held action by id.
func (e *Engine) Lookup(actionID string) (domain.Action, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(actionID); i >= 0 {
		return e.current[i], true
	}
	return domain.Action{}, false
}

// FilterActions projects the current result set through state.
func (e *Engine) FilterActions(state domain.FilterState) []domain.Action {
	return filter.Apply(e.Current(), state)
}

// RecordView counts a batch of viewed actions.
func (e *Engine) RecordView(ctx context.Context, actions []domain.Action) {
	e.prefs.RecordView(actions)
	e.observeRecord(ctx, "view", "", nil)
}

// RecordSave counts a save and stamps SavedAt on the held action.
func (e *Engine) RecordSave(ctx context.Context, actionID string) {
	e.prefs.RecordSave(actionID)
	e.stamp(actionID, func(a *domain.Action, at time.Time) {
		if a.SavedAt == nil {
			a.SavedAt = &at
		}
	})
	e.observeRecord(ctx, "save", actionID, nil)
}

// RecordCompletion counts a completion, stamps CompletedAt on the held
// action and forwards the completion to the catalog in the background.
func (e *Engine) RecordCompletion(ctx context.Context, actionID string, impactReported *int, feedback string) {
	e.prefs.RecordCompletion(actionID)
	e.stamp(actionID, func(a *domain.Action, at time.Time) {
		if a.CompletedAt == nil {
			a.CompletedAt = &at
		}
	})
	e.observeRecord(ctx, "complete", actionID, nil)
	e.forward(ctx, catalog.OpComplete, actionID, func(ctx context.Context, userID string) error {
		return e.catalog.CompleteAction(ctx, userID, actionID, impactReported, feedback)
	})
}

// RecordRating stores a rating. Invalid ratings are logged, not returned.
func (e *Engine) RecordRating(ctx context.Context, actionID string, rating int, feedback string) {
	err := e.prefs.RecordRating(actionID, rating, feedback)
	if err != nil {
		e.logger.WarnContext(ctx, "rating ignored", "action_id", actionID, "rating", rating, "error", err)
	}
	e.observeRecord(ctx, "rate", actionID, err)
}

// RecordTimeSpent adds engagement time.
func (e *Engine) RecordTimeSpent(ctx context.Context, seconds int64) {
	e.prefs.RecordTimeSpent(seconds)
	e.observeRecord(ctx, "time", "", nil)
}

// StartAction forwards a start event to the catalog in the background.
func (e *Engine) StartAction(ctx context.Context, actionID string) {
	e.forward(ctx, catalog.OpStart, actionID, func(ctx context.Context, userID string) error {
		return e.catalog.StartAction(ctx, userID, actionID)
	})
}

// Preferences returns a snapshot of the preference state.
func (e *Engine) Preferences() *domain.PreferenceState {
	return e.prefs.Snapshot()
}

// ExportPreferenceState serializes the preference snapshot for diagnostics.
func (e *Engine) ExportPreferenceState() ([]byte, error) {
	return e.prefs.Export()
}

// Wait blocks until background catalog writes have finished.
func (e *Engine) Wait() {
	e.background.Wait()
}

// forward runs a catalog write detached from the caller's cancellation.
// Synthesized fallback actions exist only locally and are not forwarded.
func (e *Engine) forward(ctx context.Context, op, actionID string, write func(context.Context, string) error) {
	if a, ok := e.Lookup(actionID); ok && a.Fallback {
		e.logger.DebugContext(ctx, "skipping catalog write for fallback action", "op", op, "action_id", actionID)
		return
	}
	userID := e.prefs.UserID()
	detached := context.WithoutCancel(ctx)

	e.background.Add(1)
	go func() {
		defer e.background.Done()
		startedAt := e.now()
		wctx, cancel := context.WithTimeout(detached, e.cfg.FeedbackTimeout)
		defer cancel()

		err := write(wctx, userID)
		if err != nil {
			e.logger.WarnContext(wctx, "catalog feedback write failed", "op", op, "action_id", actionID, "error", err)
		}
		e.observer.ObserveUseCase(wctx, UseCaseEvent{
			Name:      UseCaseFeedback,
			StartedAt: startedAt,
			Duration:  e.now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"op": op, "action_id": actionID},
		})
	}()
}

func (e *Engine) stamp(actionID string, fn func(a *domain.Action, at time.Time)) {
	at := e.now().UTC()
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(actionID); i >= 0 {
		fn(&e.current[i], at)
	}
}

func (e *Engine) indexLocked(actionID string) int {
	return slices.IndexFunc(e.current, func(a domain.Action) bool { return a.ID == actionID })
}

func (e *Engine) observeRecord(ctx context.Context, kind, actionID string, err error) {
	fields := map[string]any{"kind": kind}
	if actionID != "" {
		fields["action_id"] = actionID
	}
	e.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      UseCaseRecord,
		StartedAt: e.now(),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
