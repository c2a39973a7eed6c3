package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
)

// AppTrustHeader carries the companion app's shared key on public
// resolution requests.
const AppTrustHeader = "X-App-Key"

// AppTrust flags requests that verifiably come from the companion app
// by comparing the X-App-Key header against the configured key. The
// result lands in the context under "app_trusted". This is a
// heuristic that gates only what a blank-tag resolution reveals; it is
// not authentication. An empty configured key trusts nobody.
func AppTrust(appKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			trusted := false
			if appKey != "" {
				got := c.Request().Header.Get(AppTrustHeader)
				trusted = subtle.ConstantTimeCompare([]byte(got), []byte(appKey)) == 1
			}
			c.Set("app_trusted", trusted)
			return next(c)
		}
	}
}
