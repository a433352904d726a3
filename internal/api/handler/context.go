package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/api/middleware"
)

// caller extracts the identity injected by the Auth middleware and fails fast
// before any service call when it is missing: the role proves the middleware
// ran, the subject names the gateway or operator in logs.
func caller(c echo.Context) (subject, role string, err error) {
	role, _ = c.Get(middleware.CtxRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	subject, _ = c.Get(middleware.CtxSubject).(string)
	return subject, role, nil
}
