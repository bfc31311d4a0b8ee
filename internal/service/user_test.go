package service

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/dispatch"
)

func TestSignup(t *testing.T) {
	e := newEnv(t)
	s := &Signup{Users: e.users, Sessions: e.sessions, BcryptCost: 4}

	req := request(t, map[string]any{"username": "alice", "email": "a@x.com", "password": "secret123"})
	u, err := s.Execute(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")

	access := cookie(req, auth.AccessCookie)
	require.NotNil(t, access)
	claims := e.jwt.Verify(access.Value)
	require.NotNil(t, claims)
	assert.Equal(t, u.ID, claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	refresh := cookie(req, auth.RefreshCookie)
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)

	stored := e.users.FindByUsername(req.Context(), "alice").Data
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, auth.VerifyPassword(stored.Password, "secret123"))

	// identical second signup is a conflict
	_, err = s.Execute(request(t, map[string]any{"username": "alice", "email": "a@x.com", "password": "secret123"}))
	requireKind(t, err, dispatch.KindConflict, "Username already exists.")

	_, err = s.Execute(request(t, map[string]any{"username": "bob", "email": "a@x.com", "password": "secret123"}))
	requireKind(t, err, dispatch.KindConflict, "Email already exists.")
}

func TestSignup_Validation(t *testing.T) {
	e := newEnv(t)
	s := &Signup{Users: e.users, Sessions: e.sessions, BcryptCost: 4}
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	cases := []struct {
		body map[string]any
		msg  string
	}{
		{map[string]any{"email": "a@x.com", "password": "secret123"}, "Username is required."},
		{map[string]any{"username": string(long), "email": "a@x.com", "password": "secret123"}, "Username must be at most 255 characters."},
		{map[string]any{"username": "a", "email": "bad", "password": "secret123"}, "Invalid email address."},
		{map[string]any{"username": "a", "email": "a@x.com", "password": "123"}, "Password must be at least 6 characters."},
	}
	for _, tc := range cases {
		_, err := s.Execute(request(t, tc.body))
		requireKind(t, err, dispatch.KindValidation, tc.msg)
	}
}

func TestSignup_ConcurrentSameUsername(t *testing.T) {
	e := newEnv(t)
	s := &Signup{Users: e.users, Sessions: e.sessions, BcryptCost: 4}

	const n = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Execute(request(t, map[string]any{
				"username": "racer",
				"email":    string(rune('a'+i)) + "@x.com",
				"password": "secret123",
			}))
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, dispatch.KindConflict, "Username already exists.")
	}
	assert.Equal(t, 1, succeeded)
}

func TestSignin(t *testing.T) {
	e := newEnv(t)
	id := e.signup(t, "alice", "a@x.com")
	s := &Signin{Users: e.users, Sessions: e.sessions}

	req := request(t, map[string]any{"username": "alice", "password": "secret123"})
	u, err := s.Execute(req)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.NotNil(t, cookie(req, auth.AccessCookie))
	assert.NotNil(t, cookie(req, auth.RefreshCookie))

	_, errWrongPass := s.Execute(request(t, map[string]any{"username": "alice", "password": "wrong-pass"}))
	_, errUnknown := s.Execute(request(t, map[string]any{"username": "mallory", "password": "secret123"}))
	requireKind(t, errWrongPass, dispatch.KindUnauthorized, "Invalid username or password")
	requireKind(t, errUnknown, dispatch.KindUnauthorized, "Invalid username or password")
	assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
}

func TestSignout_ClearsAccessOnly(t *testing.T) {
	e := newEnv(t)
	req := request(t, nil)
	require.NoError(t, (&Signout{Cookies: e.cookies}).Execute(req))

	out := req.OutgoingCookies()
	require.Len(t, out, 1)
	assert.Equal(t, auth.AccessCookie, out[0].Name)
	assert.Equal(t, -1, out[0].MaxAge)
}

func TestRefresh_RotatesSingleUse(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "alice", "a@x.com")

	signin := request(t, map[string]any{"username": "alice", "password": "secret123"})
	_, err := (&Signin{Users: e.users, Sessions: e.sessions}).Execute(signin)
	require.NoError(t, err)
	initial := cookie(signin, auth.RefreshCookie)
	require.NotNil(t, initial)

	s := &Refresh{Users: e.users, Sessions: e.sessions}

	first := request(t, nil, &http.Cookie{Name: auth.RefreshCookie, Value: initial.Value})
	require.NoError(t, s.Execute(first))
	rotated := cookie(first, auth.RefreshCookie)
	require.NotNil(t, rotated)
	assert.NotEqual(t, initial.Value, rotated.Value)
	access := cookie(first, auth.AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, "alice", e.jwt.Verify(access.Value)["username"])

	second := request(t, nil, &http.Cookie{Name: auth.RefreshCookie, Value: initial.Value})
	requireKind(t, s.Execute(second), dispatch.KindUnauthorized, "Invalid refresh token")

	third := request(t, nil, &http.Cookie{Name: auth.RefreshCookie, Value: rotated.Value})
	require.NoError(t, s.Execute(third))
}

func TestRefresh_Failures(t *testing.T) {
	e := newEnv(t)
	s := &Refresh{Users: e.users, Sessions: e.sessions}

	requireKind(t, s.Execute(request(t, nil)), dispatch.KindUnauthorized, "Refresh token missing")

	bogus := request(t, nil, &http.Cookie{Name: auth.RefreshCookie, Value: "bogus"})
	requireKind(t, s.Execute(bogus), dispatch.KindUnauthorized, "Invalid refresh token")

	id := e.signup(t, "alice", "a@x.com")
	tok, err := e.refresh.Create(bogus.Context(), id, -1)
	require.NoError(t, err)
	// negative ttl falls back to the default; store an already expired row by hand
	require.True(t, e.tokens.Store(bogus.Context(), id, auth.HashRefreshToken("old"), 1).Success)
	expired := request(t, nil, &http.Cookie{Name: auth.RefreshCookie, Value: "old"})
	requireKind(t, s.Execute(expired), dispatch.KindUnauthorized, "Refresh token expired")
	assert.Nil(t, e.tokens.FindByHash(bogus.Context(), auth.HashRefreshToken("old")).Data)

	ok := request(t, nil, &http.Cookie{Name: auth.RefreshCookie, Value: tok})
	require.NoError(t, s.Execute(ok))
}

func TestSignoutAll(t *testing.T) {
	e := newEnv(t)
	id := e.signup(t, "alice", "a@x.com")
	ctx := request(t, nil).Context()
	tok, err := e.refresh.Create(ctx, id, 0)
	require.NoError(t, err)

	req := as(request(t, nil), id)
	require.NoError(t, (&SignoutAll{Sessions: e.sessions}).Execute(req))
	assert.Len(t, req.OutgoingCookies(), 2)

	_, err = e.refresh.Verify(ctx, tok)
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
}

func TestGetUser(t *testing.T) {
	e := newEnv(t)
	id := e.signup(t, "alice", "a@x.com")
	s := &GetUser{Users: e.users}

	p, err := s.Execute(as(request(t, nil), id))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "a@x.com", p.Email)

	_, err = s.Execute(request(t, nil))
	requireKind(t, err, dispatch.KindUnauthorized, "Unauthorized")

	_, err = s.Execute(as(request(t, nil), "gone"))
	requireKind(t, err, dispatch.KindNotFound, "")
}

func TestUpdateUser(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice", "a@x.com")
	e.signup(t, "bob", "b@x.com")
	s := &UpdateUser{Users: e.users, Sessions: e.sessions}

	req := as(request(t, map[string]any{"username": "alicia", "email": "alicia@x.com"}), alice)
	p, err := s.Execute(req)
	require.NoError(t, err)
	assert.Equal(t, "alicia", p.Username)
	access := cookie(req, auth.AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, "alicia", e.jwt.Verify(access.Value)["username"])

	// keeping one's own values is not a conflict
	_, err = s.Execute(as(request(t, map[string]any{"username": "alicia", "email": "alicia@x.com"}), alice))
	require.NoError(t, err)

	_, err = s.Execute(as(request(t, map[string]any{"username": "bob", "email": "alicia@x.com"}), alice))
	requireKind(t, err, dispatch.KindConflict, "Username already exists.")
	_, err = s.Execute(as(request(t, map[string]any{"username": "alicia", "email": "b@x.com"}), alice))
	requireKind(t, err, dispatch.KindConflict, "Email already exists.")
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t)
	id := e.signup(t, "alice", "a@x.com")
	ctx := request(t, nil).Context()
	tok, err := e.refresh.Create(ctx, id, 0)
	require.NoError(t, err)
	taskID := e.tasks.Create(ctx, id, "t", "").Data.ID

	req := as(request(t, nil), id)
	require.NoError(t, (&DeleteUser{Users: e.users, Sessions: e.sessions}).Execute(req))
	assert.Len(t, req.OutgoingCookies(), 2)

	assert.Nil(t, e.users.FindByID(ctx, id).Data)
	assert.Nil(t, e.tasks.Find(ctx, id, taskID).Data)
	_, err = e.refresh.Verify(ctx, tok)
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)

	err = (&DeleteUser{Users: e.users, Sessions: e.sessions}).Execute(as(request(t, nil), id))
	requireKind(t, err, dispatch.KindNotFound, "")
}
