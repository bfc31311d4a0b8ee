package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/queue"
	"github.com/iliyamo/todo-list/internal/repository"
	"github.com/iliyamo/todo-list/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TaskEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	users    *repository.UserRepo
	tasks    *repository.TaskRepo
	tokens   *repository.TokenRepo
	jwt      *auth.JWTService
	refresh  *auth.RefreshTokenService
	cookies  *auth.CookieManager
	sessions *Sessions
	events   *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	jwtSvc, err := auth.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	e := &env{
		users:   repository.NewUserRepo(db),
		tasks:   repository.NewTaskRepo(db),
		tokens:  repository.NewTokenRepo(db),
		jwt:     jwtSvc,
		cookies: auth.NewCookieManager(auth.CookieOptions{}, time.Hour, auth.DefaultRefreshTTL),
		events:  &recordingPublisher{},
	}
	e.refresh = auth.NewRefreshTokenService(e.tokens, jwtSvc)
	e.sessions = &Sessions{Access: jwtSvc, Refresh: e.refresh, Cookies: e.cookies, RefreshTTL: auth.DefaultRefreshTTL}
	return e
}

// request builds a dispatch request with a JSON body.  body may be nil.
func request(t *testing.T, body any, cookies ...*http.Cookie) *dispatch.Request {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return dispatch.NewRequest(context.Background(), dispatch.Input{Raw: raw, Cookies: cookies})
}

// as marks req as authenticated for userID.
func as(req *dispatch.Request, userID string) *dispatch.Request {
	req.Auth = map[string]any{"user_id": userID}
	return req
}

func cookie(req *dispatch.Request, name string) *http.Cookie {
	var last *http.Cookie
	for _, c := range req.OutgoingCookies() {
		if c.Name == name {
			last = c
		}
	}
	return last
}

func requireKind(t *testing.T, err error, kind dispatch.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	e := dispatch.AsError(err)
	require.Equal(t, kind, e.Kind, err.Error())
	if msg != "" {
		require.Equal(t, msg, e.Message)
	}
}

// signup registers a user through the service and returns its id.
func (e *env) signup(t *testing.T, username, email string) string {
	t.Helper()
	s := &Signup{Users: e.users, Sessions: e.sessions, BcryptCost: 4}
	u, err := s.Execute(request(t, map[string]any{"username": username, "email": email, "password": "secret123"}))
	require.NoError(t, err)
	return u.ID
}
