package api

import (
	"github.com/gamewish/gamewish/internal/apperror"
	"github.com/gamewish/gamewish/internal/model"
)

// The normalizer is the only place that knows two wishlist schemas exist.
// It resolves every identifier fallback chain exactly once and always
// emits fully-populated canonical shapes: collections default to empty
// slices, never nil, so consumers iterate without checks.

// firstOf returns the first non-empty string.
func firstOf(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// normalizeWishlist accepts either wire generation and produces the
// canonical shape. The only rejection is a document carrying neither id
// nor _id — everything else defaults.
func normalizeWishlist(raw *wireWishlist) (*model.Wishlist, error) {
	id := firstOf(raw.ID, raw.MongoID)
	if id == "" {
		return nil, apperror.Malformed("wishlist", "document has neither id nor _id")
	}

	w := &model.Wishlist{
		ID:          id,
		Title:       raw.Title,
		Description: raw.Description,
		Owner:       normalizeUser(raw.Owner),
		Entries:     make([]model.WishlistEntry, 0, len(raw.Games)),
		SharedWith:  make([]model.Share, 0, len(raw.SharedWith)),
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}

	for _, e := range raw.Games {
		w.Entries = append(w.Entries, normalizeEntry(e))
	}
	for _, s := range raw.SharedWith {
		w.SharedWith = append(w.SharedWith, model.Share{
			ID:        firstOf(s.ID, s.MongoID),
			User:      normalizeUser(s.User),
			CreatedAt: s.CreatedAt,
		})
	}
	return w, nil
}

// normalizeEntry dispatches on the presence of the nested game object.
// The per-entry GameID resolves game._id, then game.id, then the entry's
// own _id/id — upstream documents use any of the three.
func normalizeEntry(e wireEntry) model.WishlistEntry {
	entryID := firstOf(e.MongoID, e.ID)
	notes := firstOf(e.Notes, e.Note)

	if e.Game != nil {
		game := normalizeGame(*e.Game)
		return model.WishlistEntry{
			ID:     entryID,
			GameID: firstOf(e.Game.MongoID, e.Game.ID, entryID),
			Notes:  notes,
			Game:   game,
		}
	}

	// Legacy flat shape: synthesize the game from the entry's own fields.
	// Score, description, developer, publisher and platforms were never
	// carried by this generation, so they stay at their zero defaults.
	genre := []string(e.Genre)
	if genre == nil {
		genre = []string{}
	}
	return model.WishlistEntry{
		ID:     entryID,
		GameID: entryID,
		Notes:  notes,
		Game: model.Game{
			ID:        entryID,
			Name:      e.Title,
			ImageURL:  e.Cover,
			Genre:     genre,
			Platforms: []string{},
		},
	}
}

func normalizeGame(raw wireGame) model.Game {
	genre := []string(raw.Genre)
	if genre == nil {
		genre = []string{}
	}
	platforms := raw.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	return model.Game{
		ID:          firstOf(raw.MongoID, raw.ID),
		Name:        firstOf(raw.Name, raw.Title),
		ImageURL:    firstOf(raw.ImageURL, raw.Image),
		Score:       raw.Score,
		Description: raw.Description,
		Genre:       genre,
		Developer:   raw.Developer,
		Publisher:   raw.Publisher,
		Platforms:   platforms,
		ReleaseDate: raw.ReleaseDate,
		Favorite:    raw.Favorite,
	}
}

// normalizeUser keeps whichever unique identifier is present and resolves
// the display-name fallback chain so the result is always displayable.
func normalizeUser(raw wireUser) model.User {
	return model.User{
		ID:          firstOf(raw.FirebaseUID, raw.MongoID, raw.ID),
		DisplayName: firstOf(raw.DisplayName, raw.Username, raw.Email, "unknown"),
		Email:       raw.Email,
	}
}
