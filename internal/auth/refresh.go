package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/todo-list/internal/model"
	"github.com/iliyamo/todo-list/internal/repository"
)

// DefaultRefreshTTL is the lifetime of a refresh token when none is given.
const DefaultRefreshTTL = 7 * 24 * time.Hour

var (
	// ErrRefreshInvalid means the token is unknown (never issued, revoked
	// or already rotated).
	ErrRefreshInvalid = errors.New("refresh token invalid")
	// ErrRefreshExpired means the token was known but is past its expiry.
	ErrRefreshExpired = errors.New("refresh token expired")
)

// TokenStore is the persistence the refresh token service needs.
// *repository.TokenRepo implements it.
type TokenStore interface {
	Store(ctx context.Context, userID, tokenHash string, exp int64) repository.Result[struct{}]
	FindByHash(ctx context.Context, tokenHash string) repository.Result[*model.RefreshToken]
	DeleteByHash(ctx context.Context, tokenHash string) repository.Result[struct{}]
	DeleteAllForUser(ctx context.Context, userID string) repository.Result[struct{}]
	DeleteExpired(ctx context.Context, cutoff int64) repository.Result[struct{}]
}

// RefreshTokenService creates, verifies and revokes refresh tokens.
// Only the SHA-256 of a token is persisted.
type RefreshTokenService struct {
	store TokenStore
	jwt   *JWTService
	now   func() time.Time
}

func NewRefreshTokenService(store TokenStore, jwt *JWTService) *RefreshTokenService {
	return &RefreshTokenService{store: store, jwt: jwt, now: time.Now}
}

// Create issues a token for userID valid for ttl (DefaultRefreshTTL when
// ttl is zero) and returns the plaintext.
func (s *RefreshTokenService) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	token, err := s.jwt.CreateRefreshToken()
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	exp := s.now().Add(ttl).Unix()
	if res := s.store.Store(ctx, userID, HashRefreshToken(token), exp); !res.Success {
		return "", fmt.Errorf("store refresh token: %w", res.Failure())
	}
	return token, nil
}

// Verify resolves a token to its owner.  An expired token is deleted
// before ErrRefreshExpired is returned.
func (s *RefreshTokenService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrRefreshInvalid
	}
	hash := HashRefreshToken(token)
	res := s.store.FindByHash(ctx, hash)
	if !res.Success {
		return "", fmt.Errorf("find refresh token: %w", res.Failure())
	}
	if res.Data == nil {
		return "", ErrRefreshInvalid
	}
	if res.Data.ExpiresAt < s.now().Unix() {
		if del := s.store.DeleteByHash(ctx, hash); !del.Success {
			return "", fmt.Errorf("delete expired refresh token: %w", del.Failure())
		}
		return "", ErrRefreshExpired
	}
	return res.Data.UserID, nil
}

// Revoke deletes one token.  Revoking an unknown token is not an error.
func (s *RefreshTokenService) Revoke(ctx context.Context, token string) error {
	if res := s.store.DeleteByHash(ctx, HashRefreshToken(token)); !res.Success {
		return fmt.Errorf("revoke refresh token: %w", res.Failure())
	}
	return nil
}

// RevokeAllForUser deletes every token of userID.
func (s *RefreshTokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	if res := s.store.DeleteAllForUser(ctx, userID); !res.Success {
		return fmt.Errorf("revoke user refresh tokens: %w", res.Failure())
	}
	return nil
}

// PruneExpired deletes the tokens Verify would reject as expired and
// returns how many rows went.
func (s *RefreshTokenService) PruneExpired(ctx context.Context) (int64, error) {
	res := s.store.DeleteExpired(ctx, s.now().Unix())
	if !res.Success {
		return 0, fmt.Errorf("prune refresh tokens: %w", res.Failure())
	}
	return res.Affected, nil
}
