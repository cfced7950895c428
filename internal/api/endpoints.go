package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gamewish/gamewish/internal/model"
)

// Typed endpoint wrappers. Each returns normalized model shapes; raw wire
// structs never leave this package.

func (c *Client) gameList(ctx context.Context, path string) ([]model.Game, error) {
	var raw []wireGame
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	games := make([]model.Game, 0, len(raw))
	for _, g := range raw {
		games = append(games, normalizeGame(g))
	}
	return games, nil
}

// Games returns the unfiltered default catalog list.
func (c *Client) Games(ctx context.Context) ([]model.Game, error) {
	return c.gameList(ctx, "/games")
}

// SearchGames searches the catalog by name or genre.
func (c *Client) SearchGames(ctx context.Context, query string) ([]model.Game, error) {
	return c.gameList(ctx, "/games/search?q="+url.QueryEscape(query))
}

// FeaturedGames returns the curated home-screen selection.
func (c *Client) FeaturedGames(ctx context.Context) ([]model.Game, error) {
	return c.gameList(ctx, "/games/featured")
}

func (c *Client) GameByID(ctx context.Context, id string) (*model.Game, error) {
	var raw wireGame
	if err := c.get(ctx, "/games/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	game := normalizeGame(raw)
	return &game, nil
}

// FavoriteGames returns the games the user has marked as favorites.
func (c *Client) FavoriteGames(ctx context.Context, userID string) ([]model.Game, error) {
	return c.gameList(ctx, fmt.Sprintf("/users/%s/favorites", url.PathEscape(userID)))
}

// ToggleFavorite flips the favorite flag for (userID, gameID) on the
// server and returns the resulting state. Not idempotent — the in-flight
// guard in the catalog service keeps overlapping calls off this endpoint.
func (c *Client) ToggleFavorite(ctx context.Context, userID, gameID string) (bool, error) {
	var res struct {
		Favorite bool `json:"favorite"`
	}
	path := fmt.Sprintf("/users/%s/favorites/%s/toggle", url.PathEscape(userID), url.PathEscape(gameID))
	if err := c.post(ctx, path, nil, &res); err != nil {
		return false, err
	}
	return res.Favorite, nil
}

// Wishlists returns every wishlist visible to the caller (owned plus
// shared-with). This endpoint speaks the nested schema.
func (c *Client) Wishlists(ctx context.Context) ([]model.Wishlist, error) {
	var raw []wireWishlist
	if err := c.get(ctx, "/wishlists", &raw); err != nil {
		return nil, err
	}
	lists := make([]model.Wishlist, 0, len(raw))
	for i := range raw {
		w, err := normalizeWishlist(&raw[i])
		if err != nil {
			return nil, err
		}
		lists = append(lists, *w)
	}
	return lists, nil
}

// WishlistByID fetches one wishlist. This is the endpoint still serving
// the legacy flat schema for older documents; the normalizer accepts
// either, so callers always get the canonical shape.
func (c *Client) WishlistByID(ctx context.Context, id string) (*model.Wishlist, error) {
	var raw wireWishlist
	if err := c.get(ctx, "/wishlists/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	return normalizeWishlist(&raw)
}

func (c *Client) CreateWishlist(ctx context.Context, title, description string) (*model.Wishlist, error) {
	var raw wireWishlist
	body := map[string]string{"title": title, "description": description}
	if err := c.post(ctx, "/wishlists", body, &raw); err != nil {
		return nil, err
	}
	return normalizeWishlist(&raw)
}

func (c *Client) AddGame(ctx context.Context, wishlistID, gameID, notes string) error {
	body := map[string]string{"gameId": gameID}
	if notes != "" {
		body["notes"] = notes
	}
	return c.post(ctx, fmt.Sprintf("/wishlists/%s/games", url.PathEscape(wishlistID)), body, nil)
}

func (c *Client) RemoveGame(ctx context.Context, wishlistID, gameID, userID string) error {
	path := fmt.Sprintf("/wishlists/%s/games/%s?userId=%s",
		url.PathEscape(wishlistID), url.PathEscape(gameID), url.QueryEscape(userID))
	return c.delete(ctx, path)
}

// ShareWishlist grants userID read access and returns the created share.
func (c *Client) ShareWishlist(ctx context.Context, wishlistID, userID string) (*model.Share, error) {
	var raw wireShare
	body := map[string]string{"userId": userID}
	if err := c.post(ctx, fmt.Sprintf("/wishlists/%s/share", url.PathEscape(wishlistID)), body, &raw); err != nil {
		return nil, err
	}
	return &model.Share{
		ID:        firstOf(raw.ID, raw.MongoID),
		User:      normalizeUser(raw.User),
		CreatedAt: raw.CreatedAt,
	}, nil
}

func (c *Client) UnshareWishlist(ctx context.Context, wishlistID, shareID string) error {
	path := fmt.Sprintf("/wishlists/%s/share/%s", url.PathEscape(wishlistID), url.PathEscape(shareID))
	return c.delete(ctx, path)
}

// SearchUsers searches by name or email. Results are selection targets
// for sharing and already carry the resolved display name.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	var raw []wireUser
	if err := c.get(ctx, "/users/search?q="+url.QueryEscape(query), &raw); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(raw))
	for _, u := range raw {
		users = append(users, normalizeUser(u))
	}
	return users, nil
}
