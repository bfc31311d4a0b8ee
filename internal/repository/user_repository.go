package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/todo-list/internal/model"
)

const userColumns = "id, username, email, password, created_at, updated_at"

// UserRepo encapsulates all queries against the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user.  CreatedAt/UpdatedAt are filled in and the
// stored row is returned as Data.
func (r *UserRepo) Create(ctx context.Context, u model.User) Result[model.User] {
	ts := now()
	u.CreatedAt, u.UpdatedAt = ts, ts
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.Password, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fail[model.User](err)
	}
	n, _ := res.RowsAffected()
	return ok(u, n)
}

// FindByID fetches a user by id.  A missing row is a successful result
// with nil Data.
func (r *UserRepo) FindByID(ctx context.Context, id string) Result[*model.User] {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// FindByUsername fetches a user by exact username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) Result[*model.User] {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

// FindByEmail fetches a user by exact email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) Result[*model.User] {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

func (r *UserRepo) findOne(ctx context.Context, q string, arg any) Result[*model.User] {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ok[*model.User](nil, 0)
	}
	if err != nil {
		return fail[*model.User](err)
	}
	return ok(&u, 1)
}

// Update changes username and email only.  Affected is 0 when the user
// does not exist.
func (r *UserRepo) Update(ctx context.Context, id, username, email string) Result[struct{}] {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, updated_at=? WHERE id=?",
		username, email, now(), id)
	if err != nil {
		return fail[struct{}](err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{}, n)
}

// Delete removes the user; tasks and refresh tokens go with it through
// ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id string) Result[struct{}] {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return fail[struct{}](err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{}, n)
}
