package model

import "time"

// WishlistEntry wraps a game reference inside a wishlist, with an
// optional free-text note.
//
// GameID is the canonical identifier for removal matching. The backend
// populates identifiers inconsistently (game._id, game.id, or only the
// entry's own _id), so the normalizer resolves the fallback chain once and
// stores the result here; nothing downstream re-derives it.
type WishlistEntry struct {
	ID     string `json:"id"`
	GameID string `json:"gameId"`
	Notes  string `json:"notes"`
	Game   Game   `json:"game"`
}

// Share is a grant of read access to one non-owner user.
type Share struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Wishlist is the canonical shape produced by the normalizer regardless of
// which wire variant was received. Entries and SharedWith are never nil —
// consumers iterate without null checks.
//
// Only the owner may add or remove games and manage shares; the backend
// enforces this and the client surfaces the resulting 403.
type Wishlist struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Owner       User            `json:"owner"`
	Entries     []WishlistEntry `json:"entries"`
	SharedWith  []Share         `json:"sharedWith"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Share returns the share targeting the given user id, or nil.
func (w *Wishlist) Share(userID string) *Share {
	for i := range w.SharedWith {
		if w.SharedWith[i].User.ID == userID {
			return &w.SharedWith[i]
		}
	}
	return nil
}
