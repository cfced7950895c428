package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gamewish/gamewish/internal/model"
)

type GameSearcher interface {
	Games(ctx context.Context) ([]model.Game, error)
	Search(ctx context.Context, query string) ([]model.Game, error)
}

type GameAdder interface {
	AddGame(ctx context.Context, wishlistID, gameID, notes string) error
}

// GamePicker drives the add-game screen: debounced catalog search (1s
// quiet period, clearing the query falls back to the unfiltered default
// list) plus an add action guarded per game while in flight.
type GamePicker struct {
	*Workflow[model.Game]

	adder  GameAdder
	logger *slog.Logger

	mu     sync.Mutex
	adding map[string]struct{}
}

func NewGamePicker(catalog GameSearcher, adder GameAdder, logger *slog.Logger, notify func(Snapshot[model.Game])) *GamePicker {
	p := &GamePicker{
		adder:  adder,
		logger: logger,
		adding: make(map[string]struct{}),
	}
	p.Workflow = New(Config[model.Game]{
		QuietPeriod:  GameSearchQuietPeriod,
		Clear:        ClearToDefault,
		Fetch:        catalog.Search,
		FetchDefault: catalog.Games,
		Notify:       notify,
	})
	return p
}

// LoadDefault populates the picker with the unfiltered catalog list, as
// shown before the user has typed anything.
func (p *GamePicker) LoadDefault(ctx context.Context) {
	p.SetQuery(ctx, "")
}

// Add puts a game on the wishlist. issued is false while an add for the
// same game is still in flight.
func (p *GamePicker) Add(ctx context.Context, wishlistID, gameID, notes string) (issued bool, err error) {
	p.mu.Lock()
	if _, busy := p.adding[gameID]; busy {
		p.mu.Unlock()
		return false, nil
	}
	p.adding[gameID] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.adding, gameID)
		p.mu.Unlock()
	}()

	if err := p.adder.AddGame(ctx, wishlistID, gameID, notes); err != nil {
		return true, fmt.Errorf("adding game: %w", err)
	}

	p.logger.Info("game added via picker",
		slog.String("wishlistId", wishlistID),
		slog.String("gameId", gameID),
	)
	return true, nil
}
