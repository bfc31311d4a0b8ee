package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list/internal/model"
	"github.com/iliyamo/todo-list/internal/testutil"
)

func seedUser(t *testing.T, db *sql.DB, id string) model.User {
	t.Helper()
	res := NewUserRepo(db).Create(context.Background(), model.User{
		ID:       id,
		Username: "user-" + id,
		Email:    id + "@x.com",
		Password: "hash",
	})
	require.True(t, res.Success, res.Err)
	return res.Data
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicate)
	assert.ErrorIs(t, classify(errors.New("UNIQUE constraint failed: users.email")), ErrDuplicate)

	other := &mysql.MySQLError{Number: 1146}
	assert.NotErrorIs(t, classify(other), ErrDuplicate)
}

func TestResult(t *testing.T) {
	r := ok(1, 1)
	assert.NoError(t, r.Failure())
	assert.False(t, r.Duplicate())

	f := fail[int](fmt.Errorf("wrap: %w", &mysql.MySQLError{Number: 1062}))
	assert.False(t, f.Success)
	assert.True(t, f.Duplicate())
	assert.Error(t, f.Failure())

	assert.EqualError(t, Result[int]{}.Failure(), "query failed")
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepo(db)

	u := seedUser(t, db, "u-1")
	assert.False(t, u.CreatedAt.IsZero())

	byID := users.FindByID(ctx, "u-1")
	require.True(t, byID.Success)
	require.NotNil(t, byID.Data)
	assert.Equal(t, "user-u-1", byID.Data.Username)
	assert.Equal(t, "hash", byID.Data.Password)

	byName := users.FindByUsername(ctx, "user-u-1")
	require.NotNil(t, byName.Data)
	byEmail := users.FindByEmail(ctx, "u-1@x.com")
	require.NotNil(t, byEmail.Data)

	missing := users.FindByID(ctx, "nope")
	assert.True(t, missing.Success)
	assert.Nil(t, missing.Data)

	dup := users.Create(ctx, model.User{ID: "u-2", Username: "user-u-1", Email: "other@x.com", Password: "h"})
	assert.False(t, dup.Success)
	assert.True(t, dup.Duplicate())

	upd := users.Update(ctx, "u-1", "alice", "alice@x.com")
	require.True(t, upd.Success)
	assert.Equal(t, int64(1), upd.Affected)
	assert.Equal(t, "alice", users.FindByID(ctx, "u-1").Data.Username)

	assert.Equal(t, int64(0), users.Update(ctx, "nope", "x", "y@x.com").Affected)

	del := users.Delete(ctx, "u-1")
	require.True(t, del.Success)
	assert.Equal(t, int64(1), del.Affected)
	assert.Equal(t, int64(0), users.Delete(ctx, "u-1").Affected)
}

func TestTaskRepo_CreateFind(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedUser(t, db, "a")
	seedUser(t, db, "b")
	tasks := NewTaskRepo(db)

	c := tasks.Create(ctx, "a", "Buy milk", "")
	require.True(t, c.Success, c.Err)
	assert.Positive(t, c.Data.ID)
	assert.False(t, c.Data.IsDone)

	got := tasks.Find(ctx, "a", c.Data.ID)
	require.NotNil(t, got.Data)
	assert.Equal(t, "Buy milk", got.Data.Title)
	assert.Equal(t, "", got.Data.Description)
	assert.Equal(t, "a", got.Data.UserID)

	other := tasks.Find(ctx, "b", c.Data.ID)
	assert.True(t, other.Success)
	assert.Nil(t, other.Data, "tasks are scoped to their owner")
}

func TestTaskRepo_ListCount(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedUser(t, db, "a")
	seedUser(t, db, "b")
	tasks := NewTaskRepo(db)

	var ids []int64
	for i := 0; i < 5; i++ {
		c := tasks.Create(ctx, "a", fmt.Sprintf("t%d", i), "d")
		require.True(t, c.Success)
		ids = append(ids, c.Data.ID)
	}
	require.True(t, tasks.Create(ctx, "b", "foreign", "").Success)
	require.True(t, tasks.SetDone(ctx, "a", ids[0], true).Success)

	all := tasks.List(ctx, "a", model.TaskFilter{})
	require.True(t, all.Success)
	assert.Len(t, all.Data, 5)

	page := tasks.List(ctx, "a", model.TaskFilter{Limit: 2, Offset: 2})
	require.True(t, page.Success)
	assert.Len(t, page.Data, 2)

	done := true
	onlyDone := tasks.List(ctx, "a", model.TaskFilter{IsDone: &done})
	require.Len(t, onlyDone.Data, 1)
	assert.Equal(t, ids[0], onlyDone.Data[0].ID)

	assert.Equal(t, 5, tasks.Count(ctx, "a", nil).Data)
	assert.Equal(t, 1, tasks.Count(ctx, "a", &done).Data)
	notDone := false
	assert.Equal(t, 4, tasks.Count(ctx, "a", &notDone).Data)
	assert.Equal(t, 1, tasks.Count(ctx, "b", nil).Data)

	empty := tasks.List(ctx, "nobody", model.TaskFilter{})
	require.True(t, empty.Success)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
}

func TestTaskRepo_Mutations(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedUser(t, db, "a")
	seedUser(t, db, "b")
	tasks := NewTaskRepo(db)

	c := tasks.Create(ctx, "a", "one", "")
	require.True(t, c.Success)
	task := c.Data

	task.Title, task.Description, task.IsDone = "renamed", "notes", true
	upd := tasks.Update(ctx, task)
	require.True(t, upd.Success)
	assert.Equal(t, int64(1), upd.Affected)
	got := tasks.Find(ctx, "a", task.ID).Data
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "notes", got.Description)
	assert.True(t, got.IsDone)

	// same values again still count as a match
	assert.Equal(t, int64(1), tasks.Update(ctx, task).Affected)

	stolen := task
	stolen.UserID = "b"
	assert.Equal(t, int64(0), tasks.Update(ctx, stolen).Affected)
	assert.Equal(t, int64(0), tasks.SetDone(ctx, "b", task.ID, false).Affected)
	assert.Equal(t, int64(0), tasks.Delete(ctx, "b", task.ID).Affected)

	assert.Equal(t, int64(1), tasks.SetDone(ctx, "a", task.ID, false).Affected)
	assert.False(t, tasks.Find(ctx, "a", task.ID).Data.IsDone)

	assert.Equal(t, int64(1), tasks.Delete(ctx, "a", task.ID).Affected)
	again := tasks.Delete(ctx, "a", task.ID)
	assert.True(t, again.Success)
	assert.Equal(t, int64(0), again.Affected)
}

func TestTaskRepo_Bulk(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedUser(t, db, "a")
	seedUser(t, db, "b")
	tasks := NewTaskRepo(db)

	a1 := tasks.Create(ctx, "a", "a1", "").Data.ID
	a2 := tasks.Create(ctx, "a", "a2", "").Data.ID
	b1 := tasks.Create(ctx, "b", "b1", "").Data.ID

	res := tasks.BulkSetDone(ctx, "a", []int64{a1, a2, b1}, true)
	require.True(t, res.Success, res.Err)
	assert.Equal(t, int64(2), res.Affected)
	assert.False(t, tasks.Find(ctx, "b", b1).Data.IsDone)

	res = tasks.BulkDelete(ctx, "a", []int64{a1, b1, 999})
	require.True(t, res.Success)
	assert.Equal(t, int64(1), res.Affected)
	assert.NotNil(t, tasks.Find(ctx, "b", b1).Data)

	assert.Equal(t, int64(0), tasks.BulkDelete(ctx, "a", nil).Affected)
}

func TestCascadeOnUserDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedUser(t, db, "a")
	tasks := NewTaskRepo(db)
	tokens := NewTokenRepo(db)

	id := tasks.Create(ctx, "a", "t", "").Data.ID
	require.True(t, tokens.Store(ctx, "a", "hash-1", 4102444800).Success)

	require.Equal(t, int64(1), NewUserRepo(db).Delete(ctx, "a").Affected)
	assert.Nil(t, tasks.Find(ctx, "a", id).Data)
	assert.Nil(t, tokens.FindByHash(ctx, "hash-1").Data)
}

func TestTokenRepo(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedUser(t, db, "a")
	tokens := NewTokenRepo(db)

	require.True(t, tokens.Store(ctx, "a", "h1", 100).Success)
	require.True(t, tokens.Store(ctx, "a", "h2", 200).Success)
	assert.True(t, tokens.Store(ctx, "a", "h1", 300).Duplicate())

	row := tokens.FindByHash(ctx, "h1").Data
	require.NotNil(t, row)
	assert.Equal(t, "a", row.UserID)
	assert.Equal(t, int64(100), row.ExpiresAt)

	assert.Equal(t, int64(1), tokens.DeleteExpired(ctx, 150).Affected)
	assert.Equal(t, int64(1), tokens.DeleteByHash(ctx, "h2").Affected)
	assert.Equal(t, int64(0), tokens.DeleteByHash(ctx, "h2").Affected)

	require.True(t, tokens.Store(ctx, "a", "h3", 500).Success)
	assert.Equal(t, int64(1), tokens.DeleteAllForUser(ctx, "a").Affected)
}
