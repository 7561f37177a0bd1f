package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAPIKey gates write endpoints. With no key configured the gate
// is open (dev mode); otherwise the key must arrive in the X-API-Key
// header or the api_key query parameter.
func RequireAPIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			provided := c.Request().Header.Get("X-API-Key")
			if provided == "" {
				provided = c.QueryParam("api_key")
			}
			if provided != key {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "Valid API key required",
				})
			}
			return next(c)
		}
	}
}
