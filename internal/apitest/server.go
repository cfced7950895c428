// Package apitest is an in-memory fake of the GameWish backend for
// tests: the same routes, the same error envelope, and — deliberately —
// the same schema split as production, where the wishlist list endpoint
// speaks the nested shape while the by-id endpoint still serves the
// legacy flat one. End-to-end tests run the real client against it.
package apitest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"
)

type User struct {
	ID          string
	DisplayName string
	Username    string
	Email       string
}

type Game struct {
	ID          string
	Name        string
	ImageURL    string
	Score       int
	Description string
	Genre       []string
}

type Entry struct {
	ID    string
	Notes string
	Game  Game
}

type Share struct {
	ID        string
	User      User
	CreatedAt time.Time
}

type Wishlist struct {
	ID          string
	Title       string
	Description string
	Owner       User
	Entries     []Entry
	Shares      []Share
}

// Server holds the fake backend's state. Token is the single bearer
// token it accepts; AuthUser is who that token belongs to, used for
// owner checks on mutations.
type Server struct {
	Token    string
	AuthUser User

	mu        sync.Mutex
	games     []Game
	users     []User
	wishlists map[string]*Wishlist
	favorites map[string]map[string]bool // userID -> gameID -> favorite
}

func New(token string, authUser User) *Server {
	return &Server{
		Token:     token,
		AuthUser:  authUser,
		wishlists: make(map[string]*Wishlist),
		favorites: make(map[string]map[string]bool),
	}
}

func (s *Server) SeedGame(g Game) Game {
	if g.ID == "" {
		g.ID = xid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append(s.games, g)
	return g
}

func (s *Server) SeedUser(u User) User {
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	return u
}

func (s *Server) SeedWishlist(w Wishlist) Wishlist {
	if w.ID == "" {
		w.ID = xid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := w
	s.wishlists[w.ID] = &stored
	return w
}

// Wishlist returns a copy of the stored wishlist for assertions.
func (s *Server) Wishlist(id string) (Wishlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishlists[id]
	if !ok {
		return Wishlist{}, false
	}
	return *w, true
}

// Handler builds the router. Every route sits behind the bearer check.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requireBearer)

	r.Get("/games", s.handleGames)
	r.Get("/games/search", s.handleSearchGames)
	r.Get("/games/featured", s.handleFeaturedGames)
	r.Get("/games/{id}", s.handleGameByID)

	r.Get("/users/search", s.handleSearchUsers)
	r.Get("/users/{userID}/favorites", s.handleFavorites)
	r.Post("/users/{userID}/favorites/{gameID}/toggle", s.handleToggleFavorite)

	r.Get("/wishlists", s.handleWishlists)
	r.Post("/wishlists", s.handleCreateWishlist)
	r.Get("/wishlists/{id}", s.handleWishlistByID)
	r.Post("/wishlists/{id}/games", s.handleAddGame)
	r.Delete("/wishlists/{id}/games/{gameID}", s.handleRemoveGame)
	r.Post("/wishlists/{id}/share", s.handleShare)
	r.Delete("/wishlists/{id}/share/{shareID}", s.handleUnshare)

	return r
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// --- catalog ---

func nestedGame(g Game) map[string]any {
	return map[string]any{
		"_id":         g.ID,
		"name":        g.Name,
		"imageUrl":    g.ImageURL,
		"score":       g.Score,
		"description": g.Description,
		"genre":       g.Genre,
	}
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, nestedGame(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearchGames(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, g := range s.games {
		if strings.Contains(strings.ToLower(g.Name), q) {
			out = append(out, nestedGame(g))
			continue
		}
		for _, genre := range g.Genre {
			if strings.Contains(strings.ToLower(genre), q) {
				out = append(out, nestedGame(g))
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFeaturedGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for i, g := range s.games {
		if i == 6 {
			break
		}
		out = append(out, nestedGame(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGameByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.ID == id {
			writeJSON(w, http.StatusOK, nestedGame(g))
			return
		}
	}
	writeError(w, http.StatusNotFound, "game not found")
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, g := range s.games {
		if s.favorites[userID][g.ID] {
			out = append(out, nestedGame(g))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	gameID := chi.URLParam(r, "gameID")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.favorites[userID] == nil {
		s.favorites[userID] = make(map[string]bool)
	}
	s.favorites[userID][gameID] = !s.favorites[userID][gameID]
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": s.favorites[userID][gameID]})
}

// --- users ---

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.DisplayName), q) ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, map[string]any{
				"_id":         u.ID,
				"displayName": u.DisplayName,
				"username":    u.Username,
				"email":       u.Email,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// --- wishlists ---

func nestedUser(u User) map[string]any {
	return map[string]any{
		"_id":         u.ID,
		"displayName": u.DisplayName,
		"username":    u.Username,
		"email":       u.Email,
	}
}

func nestedWishlist(wl *Wishlist) map[string]any {
	games := make([]map[string]any, 0, len(wl.Entries))
	for _, e := range wl.Entries {
		games = append(games, map[string]any{
			"_id":   e.ID,
			"notes": e.Notes,
			"game":  nestedGame(e.Game),
		})
	}
	shares := make([]map[string]any, 0, len(wl.Shares))
	for _, sh := range wl.Shares {
		shares = append(shares, map[string]any{
			"_id":       sh.ID,
			"user":      nestedUser(sh.User),
			"createdAt": sh.CreatedAt,
		})
	}
	return map[string]any{
		"_id":         wl.ID,
		"title":       wl.Title,
		"description": wl.Description,
		"owner":       nestedUser(wl.Owner),
		"games":       games,
		"sharedWith":  shares,
	}
}

// flatWishlist renders the legacy by-id schema: plain id, owner keyed by
// username, entries flattened with a single genre string.
func flatWishlist(wl *Wishlist) map[string]any {
	games := make([]map[string]any, 0, len(wl.Entries))
	for _, e := range wl.Entries {
		genre := ""
		if len(e.Game.Genre) > 0 {
			genre = e.Game.Genre[0]
		}
		games = append(games, map[string]any{
			"_id":   e.ID,
			"title": e.Game.Name,
			"cover": e.Game.ImageURL,
			"genre": genre,
			"notes": e.Notes,
		})
	}
	shares := make([]map[string]any, 0, len(wl.Shares))
	for _, sh := range wl.Shares {
		shares = append(shares, map[string]any{
			"_id":       sh.ID,
			"user":      nestedUser(sh.User),
			"createdAt": sh.CreatedAt,
		})
	}
	return map[string]any{
		"id":          wl.ID,
		"title":       wl.Title,
		"description": wl.Description,
		"owner": map[string]any{
			"_id":      wl.Owner.ID,
			"username": wl.Owner.Username,
			"email":    wl.Owner.Email,
		},
		"games":      games,
		"sharedWith": shares,
	}
}

func (s *Server) handleWishlists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.wishlists))
	for _, wl := range s.wishlists {
		out = append(out, nestedWishlist(wl))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateWishlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wl := &Wishlist{
		ID:          xid.New().String(),
		Title:       body.Title,
		Description: body.Description,
		Owner:       s.AuthUser,
	}
	s.wishlists[wl.ID] = wl
	writeJSON(w, http.StatusCreated, nestedWishlist(wl))
}

func (s *Server) handleWishlistByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.wishlists[id]
	if !ok {
		writeError(w, http.StatusNotFound, "wishlist not found")
		return
	}
	writeJSON(w, http.StatusOK, flatWishlist(wl))
}

func (s *Server) ownedWishlistLocked(w http.ResponseWriter, id string) (*Wishlist, bool) {
	wl, ok := s.wishlists[id]
	if !ok {
		writeError(w, http.StatusNotFound, "wishlist not found")
		return nil, false
	}
	if wl.Owner.ID != s.AuthUser.ID {
		writeError(w, http.StatusForbidden, "only the owner can modify this wishlist")
		return nil, false
	}
	return wl, true
}

func (s *Server) handleAddGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GameID string `json:"gameId"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.GameID == "" {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.ownedWishlistLocked(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	for _, g := range s.games {
		if g.ID == body.GameID {
			wl.Entries = append(wl.Entries, Entry{
				ID:    xid.New().String(),
				Notes: body.Notes,
				Game:  g,
			})
			writeJSON(w, http.StatusCreated, nestedWishlist(wl))
			return
		}
	}
	writeError(w, http.StatusNotFound, "game not found")
}

func (s *Server) handleRemoveGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.ownedWishlistLocked(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	kept := wl.Entries[:0]
	removed := false
	for _, e := range wl.Entries {
		if e.Game.ID == gameID || e.ID == gameID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	wl.Entries = kept
	if !removed {
		writeError(w, http.StatusNotFound, "game not in wishlist")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.ownedWishlistLocked(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	for _, u := range s.users {
		if u.ID == body.UserID {
			share := Share{ID: xid.New().String(), User: u, CreatedAt: time.Now().UTC()}
			wl.Shares = append(wl.Shares, share)
			writeJSON(w, http.StatusCreated, map[string]any{
				"_id":       share.ID,
				"user":      nestedUser(share.User),
				"createdAt": share.CreatedAt,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) handleUnshare(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareID")

	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.ownedWishlistLocked(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	kept := wl.Shares[:0]
	removed := false
	for _, sh := range wl.Shares {
		if sh.ID == shareID {
			removed = true
			continue
		}
		kept = append(kept, sh)
	}
	wl.Shares = kept
	if !removed {
		writeError(w, http.StatusNotFound, "share not found")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
