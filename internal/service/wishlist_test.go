package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/gamewish/gamewish/internal/apperror"
	"github.com/gamewish/gamewish/internal/model"
)

// mockWishlistBackend implements WishlistBackend in memory. Call counters
// let tests assert how the coordinator talked to the API (e.g. that
// unshare triggers a refetch and remove-game does not).
type mockWishlistBackend struct {
	wishlists map[string]*model.Wishlist

	createErr  error
	removeErr  error
	unshareErr error

	fetchByIDCalls int
	removeCalls    int
}

func newMockWishlistBackend() *mockWishlistBackend {
	return &mockWishlistBackend{wishlists: make(map[string]*model.Wishlist)}
}

func (m *mockWishlistBackend) Wishlists(_ context.Context) ([]model.Wishlist, error) {
	out := make([]model.Wishlist, 0, len(m.wishlists))
	for _, w := range m.wishlists {
		out = append(out, *w)
	}
	return out, nil
}

func (m *mockWishlistBackend) WishlistByID(_ context.Context, id string) (*model.Wishlist, error) {
	m.fetchByIDCalls++
	w, ok := m.wishlists[id]
	if !ok {
		return nil, apperror.NotFound("wishlist", id)
	}
	copied := *w
	return &copied, nil
}

func (m *mockWishlistBackend) CreateWishlist(_ context.Context, title, description string) (*model.Wishlist, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	w := &model.Wishlist{
		ID:          "wl-created",
		Title:       title,
		Description: description,
		Entries:     []model.WishlistEntry{},
		SharedWith:  []model.Share{},
	}
	m.wishlists[w.ID] = w
	return w, nil
}

func (m *mockWishlistBackend) AddGame(_ context.Context, wishlistID, gameID, notes string) error {
	w, ok := m.wishlists[wishlistID]
	if !ok {
		return apperror.NotFound("wishlist", wishlistID)
	}
	w.Entries = append(w.Entries, model.WishlistEntry{
		ID:     "e-" + gameID,
		GameID: gameID,
		Notes:  notes,
		Game:   model.Game{ID: gameID},
	})
	return nil
}

func (m *mockWishlistBackend) RemoveGame(_ context.Context, wishlistID, gameID, userID string) error {
	m.removeCalls++
	return m.removeErr
}

func (m *mockWishlistBackend) ShareWishlist(_ context.Context, wishlistID, userID string) (*model.Share, error) {
	w, ok := m.wishlists[wishlistID]
	if !ok {
		return nil, apperror.NotFound("wishlist", wishlistID)
	}
	share := model.Share{ID: "share-" + userID, User: model.User{ID: userID}}
	w.SharedWith = append(w.SharedWith, share)
	return &share, nil
}

func (m *mockWishlistBackend) UnshareWishlist(_ context.Context, wishlistID, shareID string) error {
	if m.unshareErr != nil {
		return m.unshareErr
	}
	w, ok := m.wishlists[wishlistID]
	if !ok {
		return apperror.NotFound("wishlist", wishlistID)
	}
	kept := w.SharedWith[:0]
	for _, s := range w.SharedWith {
		if s.ID != shareID {
			kept = append(kept, s)
		}
	}
	w.SharedWith = kept
	return nil
}

func newTestWishlistService(t *testing.T) (*WishlistService, *mockWishlistBackend) {
	t.Helper()
	backend := newMockWishlistBackend()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewWishlistService(backend, logger), backend
}

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestWishlistService(t)

	w, err := svc.Create(context.Background(), "Summer 2024", "beach backlog")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if w.Title != "Summer 2024" {
		t.Errorf("Title = %q, want %q", w.Title, "Summer 2024")
	}
	if len(w.Entries) != 0 {
		t.Errorf("Entries = %d, want empty", len(w.Entries))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestWishlistService(t)

	tests := []struct {
		name  string
		title string
	}{
		{"empty title", ""},
		{"whitespace title", "   "},
		{"title too long", string(make([]byte, MaxTitleLength+1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.title, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create(%q) error = %v, want ErrValidation", tt.title, err)
			}
		})
	}
}

func TestRemoveGame_PrunesOnlyMatchingEntry(t *testing.T) {
	svc, backend := newTestWishlistService(t)

	// Entries whose canonical GameID came from different upstream
	// identifier fields; the coordinator only ever compares GameID.
	w := &model.Wishlist{
		ID: "wl1",
		Entries: []model.WishlistEntry{
			{ID: "e1", GameID: "g-mongo", Game: model.Game{Name: "A"}},
			{ID: "e2", GameID: "g-plain", Game: model.Game{Name: "B"}},
			{ID: "e3", GameID: "e3", Game: model.Game{Name: "C"}}, // id from entry._id
		},
	}

	if err := svc.RemoveGame(context.Background(), w, "g-plain", "u1"); err != nil {
		t.Fatalf("RemoveGame() error = %v", err)
	}

	if backend.removeCalls != 1 {
		t.Errorf("backend remove calls = %d, want 1", backend.removeCalls)
	}
	if len(w.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(w.Entries))
	}
	if w.Entries[0].GameID != "g-mongo" || w.Entries[1].GameID != "e3" {
		t.Errorf("wrong entries survived: %+v", w.Entries)
	}
	if backend.fetchByIDCalls != 0 {
		t.Errorf("RemoveGame must not refetch, got %d fetches", backend.fetchByIDCalls)
	}
}

func TestRemoveGame_FailureLeavesListUntouched(t *testing.T) {
	svc, backend := newTestWishlistService(t)
	backend.removeErr = apperror.Forbidden("only the owner can remove games")

	w := &model.Wishlist{
		ID: "wl1",
		Entries: []model.WishlistEntry{
			{ID: "e1", GameID: "g1"},
			{ID: "e2", GameID: "g2"},
		},
	}

	err := svc.RemoveGame(context.Background(), w, "g1", "u1")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
	if len(w.Entries) != 2 {
		t.Errorf("entries = %d, want 2 (untouched after failure)", len(w.Entries))
	}
}

func TestUnshare_RefetchesWishlist(t *testing.T) {
	svc, backend := newTestWishlistService(t)
	backend.wishlists["wl1"] = &model.Wishlist{
		ID:    "wl1",
		Title: "Shared list",
		SharedWith: []model.Share{
			{ID: "s1", User: model.User{ID: "u2", DisplayName: "bo"}},
			{ID: "s2", User: model.User{ID: "u3", DisplayName: "cy"}},
		},
	}

	fresh, err := svc.Unshare(context.Background(), "wl1", "s1")
	if err != nil {
		t.Fatalf("Unshare() error = %v", err)
	}

	if backend.fetchByIDCalls != 1 {
		t.Errorf("refetch calls = %d, want 1", backend.fetchByIDCalls)
	}
	for _, s := range fresh.SharedWith {
		if s.ID == "s1" {
			t.Error("share s1 still present after unshare")
		}
	}
	if len(fresh.SharedWith) != 1 || fresh.SharedWith[0].ID != "s2" {
		t.Errorf("SharedWith = %+v, want only s2", fresh.SharedWith)
	}
}

func TestUnshare_FailureDoesNotRefetch(t *testing.T) {
	svc, backend := newTestWishlistService(t)
	backend.unshareErr = apperror.Unreachable(errors.New("connection refused"))

	_, err := svc.Unshare(context.Background(), "wl1", "s1")
	if !errors.Is(err, apperror.ErrUnreachable) {
		t.Fatalf("error = %v, want ErrUnreachable", err)
	}
	if backend.fetchByIDCalls != 0 {
		t.Errorf("refetch calls = %d, want 0", backend.fetchByIDCalls)
	}
}
