package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/todo-list/internal/model"
)

// TokenRepo persists refresh tokens (single 'token_hash' column).  Rows
// are deleted rather than flagged when a token is rotated or revoked.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row expiring at exp (unix seconds).
func (r *TokenRepo) Store(ctx context.Context, userID, tokenHash string, exp int64) Result[struct{}] {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		userID, tokenHash, exp, now())
	if err != nil {
		return fail[struct{}](err)
	}
	n, _ := res.RowsAffected()
	return ok(struct{}{}, n)
}

// FindByHash returns the row for a hash, or nil Data when there is none.
func (r *TokenRepo) FindByHash(ctx context.Context, tokenHash string) Result[*model.RefreshToken] {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ok[*model.RefreshToken](nil, 0)
	}
	if err != nil {
		return fail[*model.RefreshToken](err)
	}
	return ok(&t, 1)
}

// DeleteByHash removes one token.  Deleting a missing hash succeeds with
// Affected 0.
func (r *TokenRepo) DeleteByHash(ctx context.Context, tokenHash string) Result[struct{}] {
	return r.exec(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
}

// DeleteAllForUser removes every token of a user.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID string) Result[struct{}] {
	return r.exec(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
}

// DeleteExpired removes tokens whose expires_at is before cutoff.
func (r *TokenRepo) DeleteExpired(ctx context.Context, cutoff int64) Result[struct{}] {
	return r.exec(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", cutoff)
}

func (r *TokenRepo) exec(ctx context.Context, q string, args ...any) Result[struct{}] {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fail[struct{}](err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{}, n)
}
