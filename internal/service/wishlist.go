// Package service is the mutation-coordination layer: it wraps the API
// client behind narrow interfaces, validates inputs, and reconciles the
// in-memory collections after confirmed server outcomes. Local state is
// never flipped ahead of the server — a failed write leaves the caller's
// view exactly as it was.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gamewish/gamewish/internal/apperror"
	"github.com/gamewish/gamewish/internal/model"
)

const (
	MaxTitleLength = 100
	MaxNotesLength = 500
)

// WishlistBackend is the slice of the API client the wishlist service
// needs. *api.Client satisfies it; tests inject an in-memory fake.
type WishlistBackend interface {
	Wishlists(ctx context.Context) ([]model.Wishlist, error)
	WishlistByID(ctx context.Context, id string) (*model.Wishlist, error)
	CreateWishlist(ctx context.Context, title, description string) (*model.Wishlist, error)
	AddGame(ctx context.Context, wishlistID, gameID, notes string) error
	RemoveGame(ctx context.Context, wishlistID, gameID, userID string) error
	ShareWishlist(ctx context.Context, wishlistID, userID string) (*model.Share, error)
	UnshareWishlist(ctx context.Context, wishlistID, shareID string) error
}

type WishlistService struct {
	backend WishlistBackend
	logger  *slog.Logger
}

func NewWishlistService(backend WishlistBackend, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		backend: backend,
		logger:  logger,
	}
}

// List returns every wishlist visible to the caller.
func (s *WishlistService) List(ctx context.Context) ([]model.Wishlist, error) {
	lists, err := s.backend.Wishlists(ctx)
	if err != nil {
		s.logger.Error("failed to list wishlists", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing wishlists: %w", err)
	}
	return lists, nil
}

func (s *WishlistService) Get(ctx context.Context, id string) (*model.Wishlist, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "wishlist ID is required")
	}
	return s.backend.WishlistByID(ctx, id)
}

// Create validates and creates a wishlist, returning the server's
// canonical representation. The caller merges it into any list view.
func (s *WishlistService) Create(ctx context.Context, title, description string) (*model.Wishlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "wishlist title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("wishlist title must be %d characters or less", MaxTitleLength))
	}

	w, err := s.backend.CreateWishlist(ctx, title, strings.TrimSpace(description))
	if err != nil {
		s.logger.Error("failed to create wishlist",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating wishlist: %w", err)
	}

	s.logger.Info("wishlist created",
		slog.String("id", w.ID),
		slog.String("title", w.Title),
	)
	return w, nil
}

func (s *WishlistService) AddGame(ctx context.Context, wishlistID, gameID, notes string) error {
	if strings.TrimSpace(gameID) == "" {
		return apperror.ValidationFailed("gameId", "game ID is required")
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
	}

	if err := s.backend.AddGame(ctx, wishlistID, gameID, notes); err != nil {
		return fmt.Errorf("adding game to wishlist: %w", err)
	}

	s.logger.Info("game added to wishlist",
		slog.String("wishlistId", wishlistID),
		slog.String("gameId", gameID),
	)
	return nil
}

// RemoveGame deletes the game on the server and, on success, prunes the
// matching entries from w in place — no refetch. Matching is against the
// canonical per-entry GameID the normalizer resolved, so it holds no
// matter which identifier field the upstream document populated. On
// failure w is untouched.
func (s *WishlistService) RemoveGame(ctx context.Context, w *model.Wishlist, gameID, userID string) error {
	if strings.TrimSpace(gameID) == "" {
		return apperror.ValidationFailed("gameId", "game ID is required")
	}

	if err := s.backend.RemoveGame(ctx, w.ID, gameID, userID); err != nil {
		return fmt.Errorf("removing game from wishlist: %w", err)
	}

	kept := w.Entries[:0]
	for _, e := range w.Entries {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	w.Entries = kept

	s.logger.Info("game removed from wishlist",
		slog.String("wishlistId", w.ID),
		slog.String("gameId", gameID),
	)
	return nil
}

// Share grants userID read access and returns the created share record.
func (s *WishlistService) Share(ctx context.Context, wishlistID, userID string) (*model.Share, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	share, err := s.backend.ShareWishlist(ctx, wishlistID, userID)
	if err != nil {
		return nil, fmt.Errorf("sharing wishlist: %w", err)
	}

	s.logger.Info("wishlist shared",
		slog.String("wishlistId", wishlistID),
		slog.String("userId", userID),
		slog.String("shareId", share.ID),
	)
	return share, nil
}

// Unshare revokes a share and refetches the wishlist, returning the fresh
// copy. Share-list consistency outranks latency here, so unlike
// RemoveGame there is no local pruning.
func (s *WishlistService) Unshare(ctx context.Context, wishlistID, shareID string) (*model.Wishlist, error) {
	if strings.TrimSpace(shareID) == "" {
		return nil, apperror.ValidationFailed("shareId", "share ID is required")
	}

	if err := s.backend.UnshareWishlist(ctx, wishlistID, shareID); err != nil {
		return nil, fmt.Errorf("unsharing wishlist: %w", err)
	}

	w, err := s.backend.WishlistByID(ctx, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("refetching wishlist after unshare: %w", err)
	}

	s.logger.Info("wishlist unshared",
		slog.String("wishlistId", wishlistID),
		slog.String("shareId", shareID),
	)
	return w, nil
}
