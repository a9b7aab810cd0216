package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/truckdealer/internal/game"
)

// ErrClosed is returned for work submitted after the recorder shut down.
var ErrClosed = errors.New("leaderboard: recorder closed")

// Recorder applies leaderboard updates to a Store through a single ordered
// queue: each read-modify-write finishes before the next begins, so bursts of
// transitions are neither lost nor reordered. It implements game.Observer and
// game.GameEndObserver.
//
// Work runs on the goroutine executing Run. Observe* calls never block the
// game; their errors are logged.
type Recorder struct {
	store  Store
	clock  quartz.Clock
	logger *log.Logger

	mu      sync.Mutex
	queue   []op
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	running bool
}

type op struct {
	name   string
	fn     func(ctx context.Context) error
	result chan error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock sets the clock used for document timestamps.
func WithRecorderClock(clock quartz.Clock) RecorderOption {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// WithRecorderLogger sets the logger.
func WithRecorderLogger(logger *log.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger.WithPrefix("leaderboard")
	}
}

// NewRecorder creates a recorder over store. Call Run to start processing.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ game.Observer        = (*Recorder)(nil)
	_ game.GameEndObserver = (*Recorder)(nil)
)

// Run processes queued work until Close is called or ctx is cancelled. On
// either, work already queued is still applied before Run returns. Run must
// be called at most once.
func (r *Recorder) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("leaderboard: recorder already running")
	}
	r.running = true
	r.mu.Unlock()
	defer close(r.done)

	for {
		batch, closed := r.take()
		for _, o := range batch {
			r.exec(context.WithoutCancel(ctx), o)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-r.wake:
		case <-ctx.Done():
			r.shutdown()
			for _, o := range r.drain() {
				r.exec(context.WithoutCancel(ctx), o)
			}
			return ctx.Err()
		}
	}
}

func (r *Recorder) take() ([]op, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := r.queue
	r.queue = nil
	return batch, r.closed
}

func (r *Recorder) drain() []op {
	batch, _ := r.take()
	return batch
}

func (r *Recorder) shutdown() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting work and waits for queued work to finish. It is a
// no-op wait if Run was never started.
func (r *Recorder) Close() error {
	r.shutdown()
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if running {
		<-r.done
	}
	return nil
}

func (r *Recorder) exec(ctx context.Context, o op) {
	err := o.fn(ctx)
	if err != nil {
		r.logger.Error("leaderboard update failed", "op", o.name, "error", err)
	}
	if o.result != nil {
		o.result <- err
	}
}

func (r *Recorder) enqueue(name string, fn func(ctx context.Context) error, wait bool) <-chan error {
	o := op{name: name, fn: fn}
	if wait {
		o.result = make(chan error, 1)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		if o.result != nil {
			o.result <- ErrClosed
		} else {
			r.logger.Warn("dropping update after close", "op", name)
		}
		return o.result
	}
	r.queue = append(r.queue, o)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return o.result
}

// submit queues fn and waits for it to run.
func (r *Recorder) submit(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	result := r.enqueue(name, fn, true)
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) now() int64 {
	return r.clock.Now().UnixMilli()
}

// ObserveTransition queues the leaderboard change for one reducer transition.
func (r *Recorder) ObserveTransition(prev *game.State, action game.Action, next *game.State) {
	u := TransitionUpdate(prev, action, next)
	if u.IsZero() {
		return
	}
	r.enqueue(action.Type().String(), func(ctx context.Context) error {
		return r.apply(ctx, u)
	}, false)
}

// ObserveGameEnd queues a completed game.
func (r *Recorder) ObserveGameEnd(final *game.State) {
	u := CompletedUpdate(final)
	if u.IsZero() {
		return
	}
	r.enqueue("GAME_END", func(ctx context.Context) error {
		return r.apply(ctx, u)
	}, false)
}

// Apply merges u into both documents and waits for the write.
func (r *Recorder) Apply(ctx context.Context, u Update) error {
	return r.submit(ctx, "APPLY", func(ctx context.Context) error {
		return r.apply(ctx, u)
	})
}

// Profiles returns the leaderboard rows, ordered for display, after all
// previously queued work.
func (r *Recorder) Profiles(ctx context.Context) ([]Profile, error) {
	var list []Profile
	err := r.submit(ctx, "LIST", func(ctx context.Context) error {
		doc, err := LoadDocument(ctx, r.store, r.now())
		if err != nil {
			return err
		}
		list = doc.List()
		return nil
	})
	return list, err
}

// Lifetime returns the device-wide totals after all previously queued work.
func (r *Recorder) Lifetime(ctx context.Context) (*Lifetime, error) {
	var out *Lifetime
	err := r.submit(ctx, "LIFETIME", func(ctx context.Context) error {
		l, err := LoadLifetime(ctx, r.store, r.now())
		out = l
		return err
	})
	return out, err
}

// Reset replaces both documents with empty ones.
func (r *Recorder) Reset(ctx context.Context) error {
	return r.submit(ctx, "RESET", func(ctx context.Context) error {
		now := r.now()
		if err := save(ctx, r.store, ProfilesKey, NewDocument(now)); err != nil {
			return err
		}
		return save(ctx, r.store, LifetimeKey, NewLifetime(now))
	})
}

func (r *Recorder) apply(ctx context.Context, u Update) error {
	now := r.now()

	if len(u.Profiles) > 0 {
		doc, err := LoadDocument(ctx, r.store, now)
		if err != nil {
			return err
		}
		doc.Apply(u.Profiles, now)
		if err := save(ctx, r.store, ProfilesKey, doc); err != nil {
			return err
		}
	}

	if !u.Lifetime.IsZero() {
		life, err := LoadLifetime(ctx, r.store, now)
		if err != nil {
			return err
		}
		life.Apply(u.Lifetime, now)
		if err := save(ctx, r.store, LifetimeKey, life); err != nil {
			return err
		}
	}

	r.logger.Debug("leaderboard updated", "profiles", len(u.Profiles), "drinks", u.Lifetime.DrinksTaken)
	return nil
}

// LoadDocument reads the profile document, returning an empty one when it is
// missing, unreadable or of another version.
func LoadDocument(ctx context.Context, store Store, now int64) (*Document, error) {
	raw, err := store.Get(ctx, ProfilesKey)
	if errors.Is(err, ErrNotFound) {
		return NewDocument(now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return decodeDocument(raw, now), nil
}

// LoadLifetime reads the lifetime totals with the same fallbacks as
// LoadDocument.
func LoadLifetime(ctx context.Context, store Store, now int64) (*Lifetime, error) {
	raw, err := store.Get(ctx, LifetimeKey)
	if errors.Is(err, ErrNotFound) {
		return NewLifetime(now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load lifetime totals: %w", err)
	}
	return decodeLifetime(raw, now), nil
}

func save(ctx context.Context, store Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
