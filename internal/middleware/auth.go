// Package middleware contains the dispatch middleware of the API.
package middleware

import (
	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/dispatch"
)

// UnauthorizedMessage is the only message a rejected request sees.
const UnauthorizedMessage = "Unauthorized"

// TokenVerifier decodes an access token; nil means invalid.
type TokenVerifier interface {
	Verify(token string) map[string]any
}

// Auth attaches and enforces the access token identity.
type Auth struct {
	tokens TokenVerifier
}

func NewAuth(tokens TokenVerifier) *Auth {
	return &Auth{tokens: tokens}
}

// RefreshJWT reads the access token cookie and, when it verifies,
// attaches its payload to req.Auth.  A missing or bad token leaves the
// request anonymous; it never fails.
func (a *Auth) RefreshJWT(req *dispatch.Request) error {
	req.Auth = nil
	token, ok := req.Cookie(auth.AccessCookie)
	if !ok {
		return nil
	}
	if payload := a.tokens.Verify(token); payload != nil {
		req.Auth = payload
	}
	return nil
}

// RequireAuth rejects anonymous requests.  It is route middleware and
// relies on RefreshJWT having run globally.
func (a *Auth) RequireAuth(req *dispatch.Request) error {
	if req.Auth == nil || req.UserID() == "" {
		return dispatch.Unauthorized(UnauthorizedMessage)
	}
	return nil
}
