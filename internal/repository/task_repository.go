package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/todo-list/internal/model"
)

const taskColumns = "id, title, description, user_id, is_done, created_at, updated_at"

// TaskRepo encapsulates all queries against the `tasks` table.  Every
// statement that reads or mutates a row filters by user_id, so a caller
// can never reach another user's task through this type.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo constructs a TaskRepo with the provided DB handle.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// Create inserts a new task for userID and returns it with its
// generated ID.
func (r *TaskRepo) Create(ctx context.Context, userID, title, description string) Result[model.Task] {
	t := model.Task{Title: title, Description: description, UserID: userID}
	ts := now()
	t.CreatedAt, t.UpdatedAt = ts, ts
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (title, description, user_id, is_done, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		t.Title, nullable(t.Description), t.UserID, false, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fail[model.Task](err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fail[model.Task](err)
	}
	t.ID = id
	return ok(t, 1)
}

// Find fetches one task owned by userID.  Data is nil when no such task
// exists for that owner.
func (r *TaskRepo) Find(ctx context.Context, userID string, id int64) Result[*model.Task] {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=? AND user_id=? LIMIT 1", id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ok[*model.Task](nil, 0)
	}
	if err != nil {
		return fail[*model.Task](err)
	}
	return ok(&t, 1)
}

// List returns a page of the owner's tasks, most recently updated first.
func (r *TaskRepo) List(ctx context.Context, userID string, f model.TaskFilter) Result[[]model.Task] {
	where, args := ownerWhere(userID, f.IsDone)
	q := "SELECT " + taskColumns + " FROM tasks WHERE " + where + " ORDER BY updated_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fail[[]model.Task](err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return fail[[]model.Task](err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return fail[[]model.Task](err)
	}
	return ok(tasks, int64(len(tasks)))
}

// Count returns the number of tasks the owner has, optionally narrowed
// by status.
func (r *TaskRepo) Count(ctx context.Context, userID string, isDone *bool) Result[int] {
	where, args := ownerWhere(userID, isDone)
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE "+where, args...).Scan(&n); err != nil {
		return fail[int](err)
	}
	return ok(n, 0)
}

// Update rewrites title, description and is_done of an owned task.
// Affected is 0 when the task does not exist for that owner.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) Result[model.Task] {
	t.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, is_done=?, updated_at=? WHERE id=? AND user_id=?",
		t.Title, nullable(t.Description), t.IsDone, t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		return fail[model.Task](err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail[model.Task](err)
	}
	return ok(t, n)
}

// SetDone flips the status flag of one owned task.
func (r *TaskRepo) SetDone(ctx context.Context, userID string, id int64, done bool) Result[struct{}] {
	return r.exec(ctx,
		"UPDATE tasks SET is_done=?, updated_at=? WHERE id=? AND user_id=?",
		done, now(), id, userID)
}

// Delete removes one owned task.  Deleting a missing task succeeds with
// Affected 0.
func (r *TaskRepo) Delete(ctx context.Context, userID string, id int64) Result[struct{}] {
	return r.exec(ctx, "DELETE FROM tasks WHERE id=? AND user_id=?", id, userID)
}

// BulkDelete removes every listed task that belongs to the owner; ids of
// other users are silently skipped.
func (r *TaskRepo) BulkDelete(ctx context.Context, userID string, ids []int64) Result[struct{}] {
	if len(ids) == 0 {
		return ok(struct{}{}, 0)
	}
	in, args := inClause(ids)
	args = append(args, userID)
	return r.exec(ctx, "DELETE FROM tasks WHERE id IN ("+in+") AND user_id=?", args...)
}

// BulkSetDone sets the status flag of every listed owned task.
func (r *TaskRepo) BulkSetDone(ctx context.Context, userID string, ids []int64, done bool) Result[struct{}] {
	if len(ids) == 0 {
		return ok(struct{}{}, 0)
	}
	in, idArgs := inClause(ids)
	args := append([]any{done, now()}, idArgs...)
	args = append(args, userID)
	return r.exec(ctx, "UPDATE tasks SET is_done=?, updated_at=? WHERE id IN ("+in+") AND user_id=?", args...)
}

func (r *TaskRepo) exec(ctx context.Context, q string, args ...any) Result[struct{}] {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fail[struct{}](err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{}, n)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var (
		t    model.Task
		desc sql.NullString
	)
	err := s.Scan(&t.ID, &t.Title, &desc, &t.UserID, &t.IsDone, &t.CreatedAt, &t.UpdatedAt)
	t.Description = desc.String
	return t, err
}

func ownerWhere(userID string, isDone *bool) (string, []any) {
	where := "user_id=?"
	args := []any{userID}
	if isDone != nil {
		where += " AND is_done=?"
		args = append(args, *isDone)
	}
	return where, args
}

func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
