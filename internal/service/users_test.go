package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/gamewish/gamewish/internal/model"
)

type mockUserBackend struct {
	searchCalls int
	users       []model.User
}

func (m *mockUserBackend) SearchUsers(_ context.Context, _ string) ([]model.User, error) {
	m.searchCalls++
	return m.users, nil
}

func TestUserSearch(t *testing.T) {
	backend := &mockUserBackend{users: []model.User{{ID: "u1", DisplayName: "Ana"}}}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewUserService(backend, logger)

	users, err := svc.Search(context.Background(), "  ana ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(users) != 1 || users[0].ID != "u1" {
		t.Errorf("Search() = %v, want the backend's single match", users)
	}
	if backend.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1", backend.searchCalls)
	}
}

func TestUserSearch_BlankQuerySkipsNetwork(t *testing.T) {
	backend := &mockUserBackend{users: []model.User{{ID: "u1"}}}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewUserService(backend, logger)

	users, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("Search() = %v, want an empty non-nil slice", users)
	}
	if backend.searchCalls != 0 {
		t.Errorf("searchCalls = %d, want 0", backend.searchCalls)
	}
}
