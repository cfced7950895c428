package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gamewish/gamewish/internal/model"
)

type UserBackend interface {
	SearchUsers(ctx context.Context, query string) ([]model.User, error)
}

// UserService searches users as sharing targets. Users are never mutated
// by this client.
type UserService struct {
	backend UserBackend
	logger  *slog.Logger
}

func NewUserService(backend UserBackend, logger *slog.Logger) *UserService {
	return &UserService{
		backend: backend,
		logger:  logger,
	}
}

// Search returns users matching the query by name or email. A blank
// query returns an empty result without a network call.
func (s *UserService) Search(ctx context.Context, query string) ([]model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.User{}, nil
	}

	users, err := s.backend.SearchUsers(ctx, query)
	if err != nil {
		s.logger.Error("user search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}
