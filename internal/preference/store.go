// Package preference owns a user's long-lived engagement signal and its
// write-behind persistence.
package preference

import (
	"sync"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
)

// DefaultIndexCap bounds how many recently seen actions a store remembers
// for rating attribution.
const DefaultIndexCap = 200

// actionContext is what a rating folds into the preferred lists.
type actionContext struct {
	intent   string
	topic    string
	location string
}

// Store is the single owner of one user's PreferenceState. All mutations go
// through its Record methods, which are commutative merges: counter adds and
// capped most-recent-first prepends.
type Store struct {
	mu       sync.Mutex
	state    *domain.PreferenceState
	version  uint64
	flushed  uint64
	listCap  int
	index    map[string]actionContext
	order    []string
	indexCap int
	onChange func()
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for engagement timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithListCap overrides the preferred-list cap.
func WithListCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.listCap = n
		}
	}
}

// WithIndexCap overrides how many actions are remembered for ratings.
func WithIndexCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.indexCap = n
		}
	}
}

// WithChangeHook registers fn to run after every mutation, outside the lock.
func WithChangeHook(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// NewStore wraps initial, or an empty state for userID when initial is nil.
// The store starts clean: the initial state is assumed already persisted.
func NewStore(userID string, initial *domain.PreferenceState, opts ...Option) *Store {
	state := initial.Clone()
	if state == nil {
		state = domain.NewPreferenceState(userID)
	}
	if state.UserID == "" {
		state.UserID = userID
	}
	s := &Store{
		state:    state,
		listCap:  domain.DefaultPreferenceListCap,
		index:    make(map[string]actionContext),
		indexCap: DefaultIndexCap,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.PreferredIntents = capList(s.state.PreferredIntents, s.listCap)
	s.state.PreferredTopics = capList(s.state.PreferredTopics, s.listCap)
	s.state.PreferredLocations = capList(s.state.PreferredLocations, s.listCap)
	return s
}

// SetChangeHook replaces the mutation hook.
func (s *Store) SetChangeHook(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// UserID returns the owning user.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserID
}

// Remember indexes actions for later rating attribution without counting a view.
func (s *Store) Remember(actions []domain.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range actions {
		s.rememberLocked(&actions[i])
	}
}

// RecordView counts a batch of viewed actions and folds their context into
// the preferred lists. The first action of the batch ends up most recent.
func (s *Store) RecordView(actions []domain.Action) {
	if len(actions) == 0 {
		return
	}
	s.mutate(func(p *domain.PreferenceState) {
		p.TotalActionsViewed += int64(len(actions))
		for i := len(actions) - 1; i >= 0; i-- {
			a := &actions[i]
			s.rememberLocked(a)
			s.foldLocked(p, actionContext{intent: a.Intent, topic: a.Topic, location: a.Location})
		}
	})
}

// RecordCompletion counts one completed action.
func (s *Store) RecordCompletion(actionID string) {
	s.mutate(func(p *domain.PreferenceState) {
		p.ActionsCompleted++
	})
}

// RecordSave counts one saved action.
func (s *Store) RecordSave(actionID string) {
	s.mutate(func(p *domain.PreferenceState) {
		p.ActionsSaved++
	})
}

// RecordTimeSpent adds seconds of engagement. Non-positive values are ignored.
func (s *Store) RecordTimeSpent(seconds int64) {
	if seconds <= 0 {
		return
	}
	s.mutate(func(p *domain.PreferenceState) {
		p.TotalTimeSpentSeconds += seconds
	})
}

// RecordRating stores a 1-5 rating. Ratings of PositiveRating or more fold
// the rated action's context into the preferred lists; lower ratings never
// remove anything.
func (s *Store) RecordRating(actionID string, rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	s.mutate(func(p *domain.PreferenceState) {
		p.Ratings[actionID] = domain.Rating{Value: rating, Feedback: feedback, RatedAt: s.now().UTC()}
		if rating < domain.PositiveRating {
			return
		}
		if ctx, ok := s.index[actionID]; ok {
			s.foldLocked(p, ctx)
		}
	})
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *domain.PreferenceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version increases by one on every mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dirty reports whether there are mutations not yet marked flushed.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version > s.flushed
}

// pending returns a snapshot and its version when dirty.
func (s *Store) pending() (*domain.PreferenceState, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version <= s.flushed {
		return nil, s.version, false
	}
	return s.state.Clone(), s.version, true
}

// markFlushed records that everything up to version is persisted.
func (s *Store) markFlushed(version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version > s.flushed {
		s.flushed = version
	}
}

func (s *Store) mutate(fn func(p *domain.PreferenceState)) {
	s.mu.Lock()
	fn(s.state)
	now := s.now().UTC()
	s.state.LastEngagementAt = &now
	s.version++
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (s *Store) foldLocked(p *domain.PreferenceState, c actionContext) {
	p.PreferredIntents = domain.PushRecent(p.PreferredIntents, c.intent, s.listCap)
	p.PreferredTopics = domain.PushRecent(p.PreferredTopics, c.topic, s.listCap)
	p.PreferredLocations = domain.PushRecent(p.PreferredLocations, c.location, s.listCap)
}

func (s *Store) rememberLocked(a *domain.Action) {
	if a.ID == "" {
		return
	}
	if _, ok := s.index[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.index[a.ID] = actionContext{intent: a.Intent, topic: a.Topic, location: a.Location}
	for len(s.order) > s.indexCap {
		delete(s.index, s.order[0])
		s.order = s.order[1:]
	}
}

func capList(list []string, limit int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
