package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger emits one structured event per completed request. Handlers
// write rejection envelopes directly rather than returning errors, so
// the level is derived from the response status: 5xx logs as error,
// 4xx as warn, everything else as info.
func Logger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)

			req := c.Request()
			res := c.Response()
			requestID, _ := c.Get("request_id").(string)

			evt := log.Info()
			switch {
			case err != nil:
				evt = log.Error().Err(err)
			case res.Status >= http.StatusInternalServerError:
				evt = log.Error()
			case res.Status >= http.StatusBadRequest:
				evt = log.Warn()
			}

			evt.
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(started)).
				Str("remote_ip", c.RealIP()).
				Msg("http request")

			return err
		}
	}
}
