// Package server is the HTTP transport.  Echo owns the listener and the
// transport middleware; every API request is handed to the dispatcher
// through one catch-all route.
package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/handler"
	"github.com/iliyamo/todo-list/internal/metrics"
)

// maxMultipartMemory bounds the in-memory part of a multipart body.
const maxMultipartMemory = 32 << 20

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Router      *dispatch.Router
	DB          handler.Pinger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	Logger      zerolog.Logger
}

// New builds the echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = errorHandler(d.Logger)

	for _, m := range Common(d.Logger, d.CORSOrigins) {
		e.Use(m)
	}

	e.GET("/healthz", handler.Health(d.DB))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	e.Any("/*", Dispatch(d.Router))
	return e
}

// Dispatch bridges echo to the dispatcher: it builds the Request once,
// dispatches it and writes cookies and the JSON envelope.
func Dispatch(rt *dispatch.Router) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := input(c.Request())
		if err != nil {
			return c.JSON(http.StatusBadRequest, dispatch.Failure(dispatch.Validation("Malformed request body.")))
		}
		resp := rt.Dispatch(dispatch.NewRequest(c.Request().Context(), in))
		for _, ck := range resp.Cookies {
			c.SetCookie(ck)
		}
		return c.JSON(resp.Status, resp)
	}
}

func input(r *http.Request) (dispatch.Input, error) {
	in := dispatch.Input{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Cookies: r.Cookies(),
		Header:  r.Header,
	}
	if r.Body == nil {
		return in, nil
	}
	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return in, err
		}
		in.Form = r.MultipartForm.Value
		in.Files = r.MultipartForm.File
		return in, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return in, err
	}
	in.Raw = raw
	return in, nil
}

// errorHandler renders errors raised by echo itself (timeouts, body
// limits, recovered panics) in the API envelope.
func errorHandler(l zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		resp := dispatch.Failure(err)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if status < http.StatusInternalServerError {
				resp.Message = http.StatusText(status)
				if msg, ok := he.Message.(string); ok {
					resp.Message = msg
				}
			}
		}
		if status >= http.StatusInternalServerError {
			l.Error().Err(err).Str("path", c.Request().URL.Path).Msg("transport error")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}
