package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFetcher records every query that actually reaches the network
// layer and lets a test hold individual fetches open.
type recordingFetcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]string
	block   map[string]chan struct{} // fetch for query blocks until closed
	fetched chan string              // signalled with the query on entry
}

func newRecordingFetcher() *recordingFetcher {
	return &recordingFetcher{
		results: make(map[string][]string),
		block:   make(map[string]chan struct{}),
		fetched: make(chan string, 16),
	}
}

func (f *recordingFetcher) fetch(_ context.Context, query string) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	blocker := f.block[query]
	res := f.results[query]
	f.mu.Unlock()

	f.fetched <- query
	if blocker != nil {
		<-blocker
	}
	return res, nil
}

func (f *recordingFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

// waitFor polls until the workflow's snapshot satisfies cond.
func waitFor[T any](t *testing.T, w *Workflow[T], cond func(Snapshot[T]) bool) Snapshot[T] {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := w.Snapshot()
		if cond(snap) {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached, last snapshot: %+v", w.Snapshot())
	return Snapshot[T]{}
}

const testQuiet = 30 * time.Millisecond

func TestWorkflow_DebounceCollapsesKeystrokes(t *testing.T) {
	f := newRecordingFetcher()
	f.results["abc"] = []string{"match"}
	w := New(Config[string]{QuietPeriod: testQuiet, Fetch: f.fetch})
	defer w.Close()

	ctx := context.Background()
	w.SetQuery(ctx, "ab")
	assert.Equal(t, Debouncing, w.Snapshot().State)

	// Second keystroke lands inside the quiet period: the "ab" timer must
	// be cancelled, leaving exactly one fetch, for "abc".
	time.Sleep(testQuiet / 3)
	w.SetQuery(ctx, "abc")

	snap := waitFor(t, w, func(s Snapshot[string]) bool { return s.State == Results })
	assert.Equal(t, []string{"match"}, snap.Results)
	assert.Equal(t, []string{"abc"}, f.calls())
}

func TestWorkflow_StaleResponseDiscarded(t *testing.T) {
	f := newRecordingFetcher()
	f.results["ab"] = []string{"stale"}
	f.results["abc"] = []string{"fresh"}
	f.block["ab"] = make(chan struct{})
	w := New(Config[string]{QuietPeriod: testQuiet, Fetch: f.fetch})
	defer w.Close()

	ctx := context.Background()
	w.SetQuery(ctx, "ab")

	// Let "ab" get past the debounce and into flight, then supersede it.
	require.Equal(t, "ab", <-f.fetched)
	w.SetQuery(ctx, "abc")
	require.Equal(t, "abc", <-f.fetched)

	snap := waitFor(t, w, func(s Snapshot[string]) bool { return s.State == Results })
	assert.Equal(t, []string{"fresh"}, snap.Results)

	// Now the "ab" response arrives late. It must not replace "abc"'s.
	close(f.block["ab"])
	time.Sleep(3 * testQuiet)
	assert.Equal(t, []string{"fresh"}, w.Snapshot().Results)
	assert.Equal(t, Results, w.Snapshot().State)
}

func TestWorkflow_EmptyResultSet(t *testing.T) {
	f := newRecordingFetcher()
	w := New(Config[string]{QuietPeriod: testQuiet, Fetch: f.fetch})
	defer w.Close()

	w.SetQuery(context.Background(), "zz")
	snap := waitFor(t, w, func(s Snapshot[string]) bool { return s.State == Empty })
	assert.Empty(t, snap.Results)
	assert.NoError(t, snap.Err)
}

func TestWorkflow_ClearToEmpty(t *testing.T) {
	f := newRecordingFetcher()
	f.results["abc"] = []string{"match"}
	w := New(Config[string]{QuietPeriod: testQuiet, Clear: ClearToEmpty, Fetch: f.fetch})
	defer w.Close()

	ctx := context.Background()
	w.SetQuery(ctx, "abc")
	waitFor(t, w, func(s Snapshot[string]) bool { return s.State == Results })

	w.SetQuery(ctx, "")
	snap := w.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Results)
	assert.Equal(t, []string{"abc"}, f.calls(), "clearing must not trigger a fetch")
}

func TestWorkflow_ClearToDefaultRefetchesDefaultList(t *testing.T) {
	f := newRecordingFetcher()
	f.results["abc"] = []string{"match"}
	defaults := []string{"d1", "d2"}
	w := New(Config[string]{
		QuietPeriod: testQuiet,
		Clear:       ClearToDefault,
		Fetch:       f.fetch,
		FetchDefault: func(context.Context) ([]string, error) {
			return defaults, nil
		},
	})
	defer w.Close()

	ctx := context.Background()
	w.SetQuery(ctx, "abc")
	waitFor(t, w, func(s Snapshot[string]) bool { return s.State == Results })

	w.SetQuery(ctx, "")
	snap := waitFor(t, w, func(s Snapshot[string]) bool {
		return s.State == Idle && len(s.Results) == 2
	})
	assert.Equal(t, defaults, snap.Results)
}

func TestWorkflow_SingleCharacterIsIdle(t *testing.T) {
	f := newRecordingFetcher()
	w := New(Config[string]{QuietPeriod: testQuiet, Fetch: f.fetch})
	defer w.Close()

	w.SetQuery(context.Background(), "a")
	time.Sleep(3 * testQuiet)
	assert.Equal(t, Idle, w.Snapshot().State)
	assert.Empty(t, f.calls())
}

func TestWorkflow_CloseCancelsPendingTimer(t *testing.T) {
	f := newRecordingFetcher()
	w := New(Config[string]{QuietPeriod: testQuiet, Fetch: f.fetch})

	w.SetQuery(context.Background(), "abc")
	w.Close()

	time.Sleep(3 * testQuiet)
	assert.Empty(t, f.calls(), "no fetch may fire after Close")
}

func TestWorkflow_NotifySeesTransitions(t *testing.T) {
	f := newRecordingFetcher()
	f.results["abc"] = []string{"match"}

	var mu sync.Mutex
	var states []State
	w := New(Config[string]{
		QuietPeriod: testQuiet,
		Fetch:       f.fetch,
		Notify: func(s Snapshot[string]) {
			mu.Lock()
			states = append(states, s.State)
			mu.Unlock()
		},
	})
	defer w.Close()

	w.SetQuery(context.Background(), "abc")
	waitFor(t, w, func(s Snapshot[string]) bool { return s.State == Results })

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Debouncing, Searching, Results}, states)
}
