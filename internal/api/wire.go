package api

import (
	"encoding/json"
	"time"
)

// Wire shapes, kept separate from internal/model on purpose: the backend
// has two generations of wishlist schema in the wild (a legacy "flat" one
// on the by-id endpoint, a "nested" one everywhere else) and populates
// identifier fields inconsistently. Every struct here accepts the union
// of both generations; normalize.go collapses them.

// stringList unmarshals from either a JSON array of strings or a bare
// string (the legacy shape sends a single genre as a string).
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*s = nil
		return nil
	}
	*s = []string{single}
	return nil
}

type wireUser struct {
	ID          string `json:"id"`
	MongoID     string `json:"_id"`
	FirebaseUID string `json:"firebaseUid"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
}

type wireGame struct {
	ID          string     `json:"id"`
	MongoID     string     `json:"_id"`
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	ImageURL    string     `json:"imageUrl"`
	Image       string     `json:"image"`
	Score       int        `json:"score"`
	Description string     `json:"description"`
	Genre       stringList `json:"genre"`
	Developer   string     `json:"developer"`
	Publisher   string     `json:"publisher"`
	Platforms   []string   `json:"platforms"`
	ReleaseDate string     `json:"releaseDate"`
	Favorite    bool       `json:"favorite"`
}

// wireEntry is a wishlist entry in either generation. Nested: the game
// object is present. Flat: title/cover/genre sit directly on the entry.
type wireEntry struct {
	ID      string     `json:"id"`
	MongoID string     `json:"_id"`
	Notes   string     `json:"notes"`
	Note    string     `json:"note"`
	Game    *wireGame  `json:"game"`
	Title   string     `json:"title"`
	Cover   string     `json:"cover"`
	Genre   stringList `json:"genre"`
}

type wireShare struct {
	ID        string    `json:"id"`
	MongoID   string    `json:"_id"`
	User      wireUser  `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type wireWishlist struct {
	ID          string      `json:"id"`
	MongoID     string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Owner       wireUser    `json:"owner"`
	Games       []wireEntry `json:"games"`
	SharedWith  []wireShare `json:"sharedWith"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
