// Package model defines the canonical data structures used throughout the
// client. These are the shapes every layer above the API boundary sees:
// one identifier field per entity, collections always non-nil. The wire
// variants the backend actually sends live in internal/api and are folded
// into these by the normalizer.
package model

// Game represents a catalog entry.
//
// Score is the critic score (0-100). Favorite is scoped to the viewing
// user and is only flipped through the catalog service's toggle, never
// set directly.
type Game struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"imageUrl"`
	Score       int      `json:"score"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Developer   string   `json:"developer"`
	Publisher   string   `json:"publisher"`
	Platforms   []string `json:"platforms"`
	ReleaseDate string   `json:"releaseDate"`
	Favorite    bool     `json:"favorite"`
}
