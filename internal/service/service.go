// Package service holds one type per use case.  Each validates its input,
// talks to the stores, checks every Result and returns a plain value or
// a tagged dispatch error.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/model"
	"github.com/iliyamo/todo-list/internal/queue"
	"github.com/iliyamo/todo-list/internal/repository"
)

// UserStore is implemented by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u model.User) repository.Result[model.User]
	FindByID(ctx context.Context, id string) repository.Result[*model.User]
	FindByUsername(ctx context.Context, username string) repository.Result[*model.User]
	FindByEmail(ctx context.Context, email string) repository.Result[*model.User]
	Update(ctx context.Context, id, username, email string) repository.Result[struct{}]
	Delete(ctx context.Context, id string) repository.Result[struct{}]
}

// TaskStore is implemented by *repository.TaskRepo.
type TaskStore interface {
	Create(ctx context.Context, userID, title, description string) repository.Result[model.Task]
	Find(ctx context.Context, userID string, id int64) repository.Result[*model.Task]
	List(ctx context.Context, userID string, f model.TaskFilter) repository.Result[[]model.Task]
	Count(ctx context.Context, userID string, isDone *bool) repository.Result[int]
	Update(ctx context.Context, t model.Task) repository.Result[model.Task]
	SetDone(ctx context.Context, userID string, id int64, done bool) repository.Result[struct{}]
	Delete(ctx context.Context, userID string, id int64) repository.Result[struct{}]
	BulkDelete(ctx context.Context, userID string, ids []int64) repository.Result[struct{}]
	BulkSetDone(ctx context.Context, userID string, ids []int64, done bool) repository.Result[struct{}]
}

// RefreshTokens is implemented by *auth.RefreshTokenService.
type RefreshTokens interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Verify(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// AccessTokens is implemented by *auth.JWTService.
type AccessTokens interface {
	Create(payload map[string]any) (string, error)
}

// EventPublisher sends task activity events.  Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.TaskEvent) error
}

// Sessions issues the cookie pair that represents a signed-in user.
type Sessions struct {
	Access     AccessTokens
	Refresh    RefreshTokens
	Cookies    *auth.CookieManager
	RefreshTTL time.Duration
}

// Start sets a fresh access cookie and a fresh refresh cookie.
func (s *Sessions) Start(req *dispatch.Request, u model.User) error {
	if err := s.SetAccess(req, u); err != nil {
		return err
	}
	refresh, err := s.Refresh.Create(req.Context(), u.ID, s.RefreshTTL)
	if err != nil {
		return dispatch.Internal("issue refresh token", err)
	}
	s.Cookies.SetRefresh(req, refresh)
	return nil
}

// SetAccess sets a fresh access cookie only.
func (s *Sessions) SetAccess(req *dispatch.Request, u model.User) error {
	token, err := s.Access.Create(map[string]any{"user_id": u.ID, "username": u.Username})
	if err != nil {
		return dispatch.Internal("issue access token", err)
	}
	s.Cookies.SetAccess(req, token)
	return nil
}

// End clears both cookies.
func (s *Sessions) End(req *dispatch.Request) {
	s.Cookies.ClearAccess(req)
	s.Cookies.ClearRefresh(req)
}

// dbError folds a failed Result into an internal error.
func dbError(op string, err error) error {
	return dispatch.Internal(op, fmt.Errorf("%s: %w", op, err))
}

func publish(ctx context.Context, p EventPublisher, ev queue.TaskEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Str("user_id", ev.UserID).Msg("publish task event failed")
	}
}
