package preference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
)

// Flush timing defaults.
const (
	DefaultFlushDelay   = 5 * time.Second
	DefaultRetryDelay   = 10 * time.Second
	DefaultFlushTimeout = 5 * time.Second
)

// Saver persists a full snapshot. repository.PreferenceRepo satisfies it.
type Saver interface {
	Save(ctx context.Context, p *domain.PreferenceState) error
}

// FlushEvent describes one persistence attempt.
type FlushEvent struct {
	UserID   string
	Version  uint64
	Duration time.Duration
	Err      error
}

// FlushObserver receives flush outcomes.
type FlushObserver interface {
	OnFlush(ctx context.Context, event FlushEvent)
}

// FlusherConfig tunes the write-behind timer.
type FlusherConfig struct {
	// Delay is the batch window opened by the first unflushed change.
	Delay time.Duration
	// RetryDelay re-arms the timer after a failed write.
	RetryDelay time.Duration
	// Timeout bounds one write.
	Timeout time.Duration
}

// Flusher writes a Store's state behind a debounce window. A failed write
// leaves the store dirty and schedules a retry, so no increment is lost.
type Flusher struct {
	store    *Store
	saver    Saver
	cfg      FlusherConfig
	logger   *slog.Logger
	observer FlushObserver
	notify   chan struct{}
}

// NewFlusher creates a Flusher and registers it as store's change hook.
func NewFlusher(store *Store, saver Saver, cfg FlusherConfig, logger *slog.Logger, observer FlushObserver) *Flusher {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultFlushDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFlushTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f := &Flusher{
		store:    store,
		saver:    saver,
		cfg:      cfg,
		logger:   logger.With("component", "preference-flusher"),
		observer: observer,
		notify:   make(chan struct{}, 1),
	}
	store.SetChangeHook(f.Notify)
	return f
}

// Notify signals that the store changed. It never blocks.
func (f *Flusher) Notify() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Flush writes the current snapshot if the store is dirty.
func (f *Flusher) Flush(ctx context.Context) error {
	snap, version, dirty := f.store.pending()
	if !dirty {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := f.saver.Save(ctx, snap)
	if f.observer != nil {
		f.observer.OnFlush(ctx, FlushEvent{
			UserID:   snap.UserID,
			Version:  version,
			Duration: time.Since(start),
			Err:      err,
		})
	}
	if err != nil {
		return fmt.Errorf("flushing preferences for %s: %w", snap.UserID, err)
	}
	f.store.markFlushed(version)
	return nil
}

// Serve runs the debounce loop until ctx is done, then makes a final flush.
func (f *Flusher) Serve(ctx context.Context) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	arm := func(d time.Duration) {
		if timer == nil {
			timer = time.NewTimer(d)
		} else {
			timer.Reset(d)
		}
		timerC = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	if f.store.Dirty() {
		arm(f.cfg.Delay)
	}

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), f.cfg.Timeout)
			if err := f.Flush(final); err != nil {
				f.logger.Error("final preference flush failed", "error", err)
			}
			cancel()
			return ctx.Err()

		case <-f.notify:
			if timerC == nil {
				arm(f.cfg.Delay)
			}

		case <-timerC:
			timerC = nil
			if err := f.Flush(ctx); err != nil {
				f.logger.Warn("preference flush failed, retrying", "error", err, "retry_in", f.cfg.RetryDelay)
				arm(f.cfg.RetryDelay)
				continue
			}
			if f.store.Dirty() {
				arm(f.cfg.Delay)
			}
		}
	}
}

// String names the service in supervisor logs.
func (f *Flusher) String() string {
	return "preference-flusher"
}
