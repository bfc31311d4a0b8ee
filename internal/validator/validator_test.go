package validator

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list/internal/dispatch"
)

func body(raw string) *Validator {
	return New(dispatch.NewRequest(context.Background(), dispatch.Input{Raw: []byte(raw)}))
}

func requireValidation(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	e := dispatch.AsError(err)
	assert.Equal(t, dispatch.KindValidation, e.Kind)
	assert.Equal(t, msg, e.Message)
}

func TestRequiredString(t *testing.T) {
	s, err := body(`{"title":"  Buy milk "}`).RequiredString("title", "Title", MaxTitle)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", s)

	_, err = body(`{}`).RequiredString("title", "Title", MaxTitle)
	requireValidation(t, err, "Title is required.")

	_, err = body(`{"title":"   "}`).RequiredString("title", "Title", MaxTitle)
	requireValidation(t, err, "Title is required.")

	_, err = body(`{"title":null}`).RequiredString("title", "Title", MaxTitle)
	requireValidation(t, err, "Title is required.")

	_, err = body(`{"title":{"a":1}}`).RequiredString("title", "Title", MaxTitle)
	requireValidation(t, err, "Title must be a string.")

	long := strings.Repeat("a", 256)
	_, err = body(`{"title":"`+long+`"}`).RequiredString("title", "Title", MaxTitle)
	requireValidation(t, err, "Title must be at most 255 characters.")

	exact := strings.Repeat("é", 255)
	s, err = body(`{"title":"`+exact+`"}`).RequiredString("title", "Title", MaxTitle)
	require.NoError(t, err)
	assert.Equal(t, exact, s)
}

func TestOptionalString(t *testing.T) {
	s, err := body(`{}`).OptionalString("description", 0)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = body(`{"description":" x "}`).OptionalString("description", 0)
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	_, err = body(`{"description":"abcd"}`).OptionalString("description", 3)
	requireValidation(t, err, "Description must be at most 3 characters.")
}

func TestEmail(t *testing.T) {
	for _, ok := range []string{"a@x.com", "first.last+tag@mail.example.org"} {
		got, err := body(`{"email":"` + ok + `"}`).Email("email")
		require.NoError(t, err, ok)
		assert.Equal(t, ok, got)
	}
	for _, bad := range []string{"nope", "a@", "@x.com", "Alice <a@x.com>", "a@localhost"} {
		_, err := body(`{"email":"` + bad + `"}`).Email("email")
		requireValidation(t, err, "Invalid email address.")
	}
	_, err := body(`{}`).Email("email")
	requireValidation(t, err, "Email is required.")
}

func TestPassword(t *testing.T) {
	p, err := body(`{"password":"secret123"}`).Password("password")
	require.NoError(t, err)
	assert.Equal(t, "secret123", p)

	_, err = body(`{"password":"12345"}`).Password("password")
	requireValidation(t, err, "Password must be at least 6 characters.")

	_, err = body(`{}`).Password("password")
	requireValidation(t, err, "Password is required.")
}

func TestBool(t *testing.T) {
	const msg = "Invalid status value."
	trues := []string{`true`, `"true"`, `"1"`, `1`, `"TRUE"`}
	falses := []string{`false`, `"false"`, `"0"`, `0`}
	for _, raw := range trues {
		b, err := body(`{"is_done":`+raw+`}`).Bool("is_done", msg)
		require.NoError(t, err, raw)
		assert.True(t, b, raw)
	}
	for _, raw := range falses {
		b, err := body(`{"is_done":`+raw+`}`).Bool("is_done", msg)
		require.NoError(t, err, raw)
		assert.False(t, b, raw)
	}
	for _, raw := range []string{`"not_a_bool"`, `2`, `"yes"`, `null`, `[]`} {
		_, err := body(`{"is_done":`+raw+`}`).Bool("is_done", msg)
		requireValidation(t, err, msg)
	}
	_, err := body(`{}`).Bool("is_done", msg)
	requireValidation(t, err, msg)
}

func TestOptionalBool(t *testing.T) {
	b, err := body(`{}`).OptionalBool("is_done", "bad")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = body(`{"is_done":true}`).OptionalBool("is_done", "bad")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	_, err = body(`{"is_done":"maybe"}`).OptionalBool("is_done", "bad")
	requireValidation(t, err, "bad")
}

func TestQueryBool(t *testing.T) {
	v := New(dispatch.NewRequest(context.Background(), dispatch.Input{Query: url.Values{"is_done": {"0"}, "x": {"maybe"}}}))
	b, err := v.QueryBool("is_done", "bad")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, *b)

	b, err = v.QueryBool("missing", "bad")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = v.QueryBool("x", "bad")
	requireValidation(t, err, "bad")
}

func TestID(t *testing.T) {
	req := dispatch.NewRequest(context.Background(), dispatch.Input{})
	v := New(req)
	for _, ok := range []string{"1", "42"} {
		req.Params["id"] = ok
		_, err := v.ID("id", "Invalid task id.")
		require.NoError(t, err)
	}
	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		req.Params["id"] = bad
		_, err := v.ID("id", "Invalid task id.")
		requireValidation(t, err, "Invalid task id.")
	}
}

func TestIDs(t *testing.T) {
	ids, err := body(`{"ids":[3,"4",3]}`).IDs("ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids)

	ids, err = body(`ids=5&ids=6`).IDs("ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, ids)

	ids, err = body(`{"ids":"7, 8"}`).IDs("ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ids)

	_, err = body(`{"ids":[]}`).IDs("ids")
	requireValidation(t, err, "A non-empty list of task ids is required.")
	_, err = body(`{}`).IDs("ids")
	requireValidation(t, err, "A non-empty list of task ids is required.")
	_, err = body(`{"ids":[1,0]}`).IDs("ids")
	requireValidation(t, err, "Task ids must be positive integers.")
	_, err = body(`{"ids":[1.5]}`).IDs("ids")
	requireValidation(t, err, "Task ids must be positive integers.")
}

func TestPagination(t *testing.T) {
	page := func(q url.Values) *Validator {
		return New(dispatch.NewRequest(context.Background(), dispatch.Input{Query: q}))
	}
	v := page(url.Values{})
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, 10, v.PerPage())

	v = page(url.Values{"page": {"3"}, "per_page": {"25"}})
	assert.Equal(t, 3, v.Page())
	assert.Equal(t, 25, v.PerPage())

	v = page(url.Values{"page": {"-1"}, "per_page": {"1000"}})
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, MaxPerPage, v.PerPage())

	v = page(url.Values{"per_page": {"0"}})
	assert.Equal(t, DefaultPerPage, v.PerPage())
}
