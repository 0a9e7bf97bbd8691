package middleware

import (
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery converts a handler panic into the API's standard 500
// envelope so one bad request cannot take the process down. The panic
// value and stack are logged; the client sees the same message as any
// other internal failure.
func Recovery(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				buf := make([]byte, 8<<10)
				buf = buf[:runtime.Stack(buf, false)]
				requestID, _ := c.Get("request_id").(string)

				log.Error().
					Str("request_id", requestID).
					Interface("panic", r).
					Bytes("stack", buf).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Msg("panic recovered")

				if !c.Response().Committed {
					err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"success": false,
						"message": "Internal server error. Please try again later.",
					})
				}
			}()
			return next(c)
		}
	}
}
