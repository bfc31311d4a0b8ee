package auth

import (
	"net/http"
	"time"

	"github.com/iliyamo/todo-list/internal/dispatch"
)

// Cookie names.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// CookieOptions are the deployment-dependent cookie attributes.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// CookieManager reads and writes the token cookies on a request.
type CookieManager struct {
	opts       CookieOptions
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieManager(opts CookieOptions, accessTTL, refreshTTL time.Duration) *CookieManager {
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &CookieManager{opts: opts, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessToken returns the inbound access token cookie.
func (m *CookieManager) AccessToken(r *dispatch.Request) (string, bool) {
	return r.Cookie(AccessCookie)
}

// RefreshToken returns the inbound refresh token cookie.
func (m *CookieManager) RefreshToken(r *dispatch.Request) (string, bool) {
	return r.Cookie(RefreshCookie)
}

func (m *CookieManager) SetAccess(r *dispatch.Request, token string) {
	r.SetCookie(m.cookie(AccessCookie, token, m.accessTTL))
}

func (m *CookieManager) SetRefresh(r *dispatch.Request, token string) {
	r.SetCookie(m.cookie(RefreshCookie, token, m.refreshTTL))
}

func (m *CookieManager) ClearAccess(r *dispatch.Request) {
	r.SetCookie(m.expired(AccessCookie))
}

func (m *CookieManager) ClearRefresh(r *dispatch.Request) {
	r.SetCookie(m.expired(RefreshCookie))
}

func (m *CookieManager) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.opts.Domain,
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	}
}

func (m *CookieManager) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   m.opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	}
}
