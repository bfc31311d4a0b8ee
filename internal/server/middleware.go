package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	ecm "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Common returns the transport middleware in the order it is applied.
func Common(l zerolog.Logger, origins []string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecm.Recover(),
		ecm.RequestID(),
		requestLogger(l),
		ecm.Secure(),
		ecm.BodyLimit("1M"),
		ecm.CORSWithConfig(ecm.CORSConfig{
			AllowOrigins:     origins,
			AllowCredentials: true,
			AllowMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		}),
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(l zerolog.Logger) echo.MiddlewareFunc {
	return ecm.RequestLoggerWithConfig(ecm.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v ecm.RequestLoggerValues) error {
			ev := l.Info()
			if v.Status >= http.StatusInternalServerError || v.Error != nil {
				ev = l.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
