package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/ofertaeducativa/catalogo/core/auth"
)

// adminMiddleware only lets requests carrying a live session through.
// Anonymous requests are sent to the login page, with the requested path as `next`.
func adminMiddleware(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			entry, ok := getContextEntry(ctx)
			if !ok {
				return &auth.Redirect{Target: loginPath, Next: ctx.Request().URL.RequestURI()}
			}
			if err := entry.Guard.Authorize(ctx.Request().URL.RequestURI()); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}
