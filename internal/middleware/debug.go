package middleware

import (
	"github.com/rs/zerolog"

	"github.com/iliyamo/todo-list/internal/dispatch"
)

// Debug logs every dispatched request with its authentication state.  It
// is registered globally after RefreshJWT when APP_DEBUG is on.
func Debug(l zerolog.Logger) dispatch.Middleware {
	return func(req *dispatch.Request) error {
		ev := l.Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Bool("authenticated", req.Auth != nil)
		if id := req.UserID(); id != "" {
			ev = ev.Str("user_id", id)
		}
		if len(req.Params) > 0 {
			ev = ev.Interface("params", req.Params)
		}
		ev.Msg("dispatch")
		return nil
	}
}
