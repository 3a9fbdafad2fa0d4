// Package middleware holds Echo middleware shared by every route.
package middleware

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets browser hardening headers. Pages embed cover art
// from arbitrary hosts, so images are not restricted; API and fragment
// responses are never cached.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "frame-ancestors 'self'")

			if noStore(c.Request().URL) {
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
				h.Set("Pragma", "no-cache")
			}

			return next(c)
		}
	}
}

func noStore(u *url.URL) bool {
	path := u.EscapedPath()
	return strings.HasPrefix(path, "/api") ||
		strings.HasSuffix(path, "/chapters") ||
		strings.HasSuffix(path, "/episodes") ||
		path == "/anime/more"
}
