package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gamewish/gamewish/internal/apperror"
	"github.com/gamewish/gamewish/internal/model"
)

// CatalogBackend is the slice of the API client the catalog service
// needs.
type CatalogBackend interface {
	Games(ctx context.Context) ([]model.Game, error)
	SearchGames(ctx context.Context, query string) ([]model.Game, error)
	FeaturedGames(ctx context.Context) ([]model.Game, error)
	GameByID(ctx context.Context, id string) (*model.Game, error)
	FavoriteGames(ctx context.Context, userID string) ([]model.Game, error)
	ToggleFavorite(ctx context.Context, userID, gameID string) (bool, error)
}

// CatalogService reads the game catalog and coordinates the favorite
// toggle, the one mutation that is not idempotent at the transport level:
// two overlapping toggles can leave the client inverted from server
// truth, so overlapping invocations on the same (user, game) key are
// suppressed, not queued.
type CatalogService struct {
	backend CatalogBackend
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{} // keyed userID+"/"+gameID
}

func NewCatalogService(backend CatalogBackend, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		backend:  backend,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

func (s *CatalogService) Games(ctx context.Context) ([]model.Game, error) {
	return s.backend.Games(ctx)
}

func (s *CatalogService) Search(ctx context.Context, query string) ([]model.Game, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.backend.Games(ctx)
	}
	return s.backend.SearchGames(ctx, query)
}

func (s *CatalogService) Featured(ctx context.Context) ([]model.Game, error) {
	return s.backend.FeaturedGames(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*model.Game, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "game ID is required")
	}
	return s.backend.GameByID(ctx, id)
}

func (s *CatalogService) Favorites(ctx context.Context, userID string) ([]model.Game, error) {
	return s.backend.FavoriteGames(ctx, userID)
}

// ToggleFavorite flips the favorite flag for (userID, gameID).
//
// issued reports whether a network call was made: a second invocation
// while one is in flight for the same key is a no-op returning
// issued=false, never deferred. favorite is the server's resulting state,
// meaningful only when issued is true and err is nil — callers flip their
// local flag from it after success, never before.
func (s *CatalogService) ToggleFavorite(ctx context.Context, userID, gameID string) (issued, favorite bool, err error) {
	if userID == "" || gameID == "" {
		return false, false, apperror.ValidationFailed("id", "user ID and game ID are required")
	}

	key := userID + "/" + gameID
	s.mu.Lock()
	if _, busy := s.inFlight[key]; busy {
		s.mu.Unlock()
		s.logger.Debug("favorite toggle suppressed, already in flight",
			slog.String("userId", userID),
			slog.String("gameId", gameID),
		)
		return false, false, nil
	}
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()

	// Guard entry must go away on every exit path, success or failure.
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	favorite, err = s.backend.ToggleFavorite(ctx, userID, gameID)
	if err != nil {
		s.logger.Error("favorite toggle failed",
			slog.String("userId", userID),
			slog.String("gameId", gameID),
			slog.String("error", err.Error()),
		)
		return true, false, fmt.Errorf("toggling favorite: %w", err)
	}

	return true, favorite, nil
}
