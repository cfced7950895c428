package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gamewish/gamewish/internal/model"
)

type UserSearcher interface {
	Search(ctx context.Context, query string) ([]model.User, error)
}

type WishlistSharer interface {
	Share(ctx context.Context, wishlistID, userID string) (*model.Share, error)
}

// UserPicker drives the invite-users screen: debounced user search
// (500ms quiet period, clearing the query clears the results) plus the
// select-then-invite sub-flow. One user is selected at a time, and an
// invite for a target already in flight is suppressed.
type UserPicker struct {
	*Workflow[model.User]

	users  UserSearcher
	sharer WishlistSharer
	logger *slog.Logger

	mu       sync.Mutex
	selected *model.User
	inviting map[string]struct{} // target user ids with an invite in flight
}

func NewUserPicker(users UserSearcher, sharer WishlistSharer, logger *slog.Logger, notify func(Snapshot[model.User])) *UserPicker {
	p := &UserPicker{
		users:    users,
		sharer:   sharer,
		logger:   logger,
		inviting: make(map[string]struct{}),
	}
	p.Workflow = New(Config[model.User]{
		QuietPeriod: UserSearchQuietPeriod,
		Clear:       ClearToEmpty,
		Fetch:       users.Search,
		Notify:      notify,
	})
	return p
}

// Select marks one result as the invite target, replacing any previous
// selection.
func (p *UserPicker) Select(user model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := user
	p.selected = &u
}

func (p *UserPicker) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Selected returns a copy of the current selection, or nil.
func (p *UserPicker) Selected() *model.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return nil
	}
	u := *p.selected
	return &u
}

// Invite shares the wishlist with the selected user. issued is false
// when there is no selection or an invite for the same target is still
// in flight. A successful invite clears the selection.
func (p *UserPicker) Invite(ctx context.Context, wishlistID string) (issued bool, err error) {
	p.mu.Lock()
	if p.selected == nil {
		p.mu.Unlock()
		return false, nil
	}
	target := *p.selected
	if _, busy := p.inviting[target.ID]; busy {
		p.mu.Unlock()
		return false, nil
	}
	p.inviting[target.ID] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inviting, target.ID)
		p.mu.Unlock()
	}()

	share, err := p.sharer.Share(ctx, wishlistID, target.ID)
	if err != nil {
		return true, fmt.Errorf("inviting %s: %w", target.DisplayName, err)
	}

	p.logger.Info("user invited",
		slog.String("wishlistId", wishlistID),
		slog.String("userId", target.ID),
		slog.String("shareId", share.ID),
	)

	p.mu.Lock()
	if p.selected != nil && p.selected.ID == target.ID {
		p.selected = nil
	}
	p.mu.Unlock()
	return true, nil
}
