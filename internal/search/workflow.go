// Package search implements the debounced query-to-results workflows
// behind the add-game and invite-users screens: a quiet-period timer that
// restarts on every keystroke, and sequence-numbered fetches so that only
// the response to the most recent query can ever reach the visible
// results.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
)

// State of a search workflow.
type State int

const (
	Idle       State = iota // no active query
	Debouncing              // query present, quiet period running
	Searching               // fetch in flight
	Results                 // fetch returned at least one result
	Empty                   // fetch returned nothing, or failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Searching:
		return "searching"
	case Results:
		return "results"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// ClearPolicy decides what happens when the query is cleared.
type ClearPolicy int

const (
	// ClearToEmpty drops the results (invite-users screen).
	ClearToEmpty ClearPolicy = iota
	// ClearToDefault refetches the unfiltered default list (add-game
	// screen).
	ClearToDefault
)

// Quiet periods observed by the two product workflows.
const (
	UserSearchQuietPeriod = 500 * time.Millisecond
	GameSearchQuietPeriod = time.Second

	// MinQueryLen is the shortest query that triggers a search.
	MinQueryLen = 2
)

// Snapshot is a consistent view of the workflow for rendering.
type Snapshot[T any] struct {
	State   State
	Query   string
	Results []T
	Err     error
}

// Config wires a Workflow. Fetch is required; FetchDefault is required
// only with ClearToDefault. Notify, when set, is invoked (outside the
// workflow lock) after every visible transition; it must be fast and may
// not block on workflow methods of its own goroutine.
type Config[T any] struct {
	QuietPeriod  time.Duration
	Clear        ClearPolicy
	Fetch        func(ctx context.Context, query string) ([]T, error)
	FetchDefault func(ctx context.Context) ([]T, error)
	Notify       func(Snapshot[T])
}

// Workflow is the debounced search state machine. All state is guarded by
// one mutex; fetches run in their own goroutine tagged with the sequence
// number current at launch. Any input bumps the sequence, so a completion
// carrying a stale sequence is discarded — last query wins, exactly.
type Workflow[T any] struct {
	cfg Config[T]

	mu      sync.Mutex
	state   State
	query   string
	results []T
	err     error
	seq     uint64
	timer   *time.Timer
	closed  bool
}

func New[T any](cfg Config[T]) *Workflow[T] {
	if cfg.QuietPeriod == 0 {
		cfg.QuietPeriod = UserSearchQuietPeriod
	}
	return &Workflow[T]{cfg: cfg}
}

// SetQuery feeds one keystroke's worth of input. Queries shorter than
// MinQueryLen fall back per the clear policy; anything else restarts the
// quiet-period timer. The previous pending search, debouncing or already
// in flight, is invalidated either way.
func (w *Workflow[T]) SetQuery(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	w.seq++
	w.query = query
	w.stopTimerLocked()

	if len(query) < MinQueryLen {
		w.err = nil
		if len(query) == 0 && w.cfg.Clear == ClearToDefault && w.cfg.FetchDefault != nil {
			seq := w.seq
			w.state = Idle
			snap := w.snapshotLocked()
			w.mu.Unlock()
			w.notify(snap)
			go w.runDefault(ctx, seq)
			return
		}
		w.state = Idle
		w.results = nil
		snap := w.snapshotLocked()
		w.mu.Unlock()
		w.notify(snap)
		return
	}

	w.state = Debouncing
	seq := w.seq
	w.timer = time.AfterFunc(w.cfg.QuietPeriod, func() {
		w.fire(ctx, seq)
	})
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(snap)
}

// fire runs when the quiet period elapses with no further input.
func (w *Workflow[T]) fire(ctx context.Context, seq uint64) {
	w.mu.Lock()
	if w.closed || seq != w.seq {
		w.mu.Unlock()
		return
	}
	query := w.query
	w.state = Searching
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(snap)

	results, err := w.cfg.Fetch(ctx, query)
	w.complete(seq, results, err, false)
}

func (w *Workflow[T]) runDefault(ctx context.Context, seq uint64) {
	results, err := w.cfg.FetchDefault(ctx)
	w.complete(seq, results, err, true)
}

// complete folds a finished fetch back into the state, unless a newer
// input has superseded it in the meantime.
func (w *Workflow[T]) complete(seq uint64, results []T, err error, isDefault bool) {
	w.mu.Lock()
	if w.closed || seq != w.seq {
		w.mu.Unlock()
		return // stale response, never overwrites newer results
	}

	w.err = err
	switch {
	case err != nil:
		w.results = nil
		w.state = Empty
	case isDefault:
		// The default list renders in the idle state, not as a search
		// outcome.
		w.results = results
		w.state = Idle
	case len(results) == 0:
		w.results = nil
		w.state = Empty
	default:
		w.results = results
		w.state = Results
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(snap)
}

// Snapshot returns the current view.
func (w *Workflow[T]) Snapshot() Snapshot[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Close stops the pending timer and freezes the workflow; no new
// callback is started after Close. Required on unmount so stale timers
// never touch a view that is gone.
func (w *Workflow[T]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.stopTimerLocked()
	w.seq++ // orphan any in-flight fetch
}

func (w *Workflow[T]) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Workflow[T]) snapshotLocked() Snapshot[T] {
	results := make([]T, len(w.results))
	copy(results, w.results)
	return Snapshot[T]{
		State:   w.state,
		Query:   w.query,
		Results: results,
		Err:     w.err,
	}
}

func (w *Workflow[T]) notify(snap Snapshot[T]) {
	if w.cfg.Notify != nil {
		w.cfg.Notify(snap)
	}
}
