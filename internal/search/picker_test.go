package search

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamewish/gamewish/internal/apperror"
	"github.com/gamewish/gamewish/internal/model"
)

func pickerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeUserSearcher struct {
	users []model.User
}

func (f *fakeUserSearcher) Search(_ context.Context, _ string) ([]model.User, error) {
	return f.users, nil
}

type fakeSharer struct {
	calls   atomic.Int64
	entered chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeSharer) Share(_ context.Context, wishlistID, userID string) (*model.Share, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Share{ID: "share-" + userID, User: model.User{ID: userID}}, nil
}

func TestUserPicker_SingleSelection(t *testing.T) {
	p := NewUserPicker(&fakeUserSearcher{}, &fakeSharer{}, pickerLogger(), nil)
	defer p.Close()

	p.Select(model.User{ID: "u1", DisplayName: "ana"})
	p.Select(model.User{ID: "u2", DisplayName: "bo"})

	sel := p.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "u2", sel.ID, "selecting again replaces the previous selection")

	p.ClearSelection()
	assert.Nil(t, p.Selected())
}

func TestUserPicker_InviteWithoutSelection(t *testing.T) {
	sharer := &fakeSharer{}
	p := NewUserPicker(&fakeUserSearcher{}, sharer, pickerLogger(), nil)
	defer p.Close()

	issued, err := p.Invite(context.Background(), "wl1")
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, int64(0), sharer.calls.Load())
}

func TestUserPicker_InviteGuardedWhileInFlight(t *testing.T) {
	sharer := &fakeSharer{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	p := NewUserPicker(&fakeUserSearcher{}, sharer, pickerLogger(), nil)
	defer p.Close()

	p.Select(model.User{ID: "u1", DisplayName: "ana"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		issued, err := p.Invite(context.Background(), "wl1")
		assert.NoError(t, err)
		assert.True(t, issued)
	}()

	<-sharer.entered
	issued, err := p.Invite(context.Background(), "wl1")
	require.NoError(t, err)
	assert.False(t, issued, "second invite for the same target must be suppressed")

	close(sharer.release)
	wg.Wait()

	assert.Equal(t, int64(1), sharer.calls.Load())
	assert.Nil(t, p.Selected(), "successful invite clears the selection")
}

func TestUserPicker_InviteFailureKeepsSelection(t *testing.T) {
	sharer := &fakeSharer{err: apperror.Forbidden("only the owner can share")}
	p := NewUserPicker(&fakeUserSearcher{}, sharer, pickerLogger(), nil)
	defer p.Close()

	p.Select(model.User{ID: "u1", DisplayName: "ana"})

	issued, err := p.Invite(context.Background(), "wl1")
	assert.True(t, issued)
	require.Error(t, err)
	require.NotNil(t, p.Selected(), "failed invite keeps the selection for retry")
}

type fakeGameCatalog struct {
	defaults []model.Game
	matches  []model.Game
}

func (f *fakeGameCatalog) Games(_ context.Context) ([]model.Game, error) {
	return f.defaults, nil
}

func (f *fakeGameCatalog) Search(_ context.Context, _ string) ([]model.Game, error) {
	return f.matches, nil
}

type fakeAdder struct {
	calls   atomic.Int64
	entered chan struct{}
	release chan struct{}
}

func (f *fakeAdder) AddGame(_ context.Context, _, _, _ string) error {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return nil
}

func TestGamePicker_LoadDefault(t *testing.T) {
	catalog := &fakeGameCatalog{defaults: []model.Game{{ID: "g1"}, {ID: "g2"}}}
	p := NewGamePicker(catalog, &fakeAdder{}, pickerLogger(), nil)
	defer p.Close()

	p.LoadDefault(context.Background())
	snap := waitFor(t, p.Workflow, func(s Snapshot[model.Game]) bool {
		return s.State == Idle && len(s.Results) == 2
	})
	assert.Equal(t, "g1", snap.Results[0].ID)
}

func TestGamePicker_AddGuardedWhileInFlight(t *testing.T) {
	adder := &fakeAdder{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	p := NewGamePicker(&fakeGameCatalog{}, adder, pickerLogger(), nil)
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		issued, err := p.Add(context.Background(), "wl1", "g1", "")
		assert.NoError(t, err)
		assert.True(t, issued)
	}()

	<-adder.entered
	issued, err := p.Add(context.Background(), "wl1", "g1", "notes")
	require.NoError(t, err)
	assert.False(t, issued)

	close(adder.release)
	wg.Wait()
	assert.Equal(t, int64(1), adder.calls.Load())
}
