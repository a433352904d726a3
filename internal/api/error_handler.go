package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

const storeFailureMessage = "something went wrong, please try again later"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to HTTP status codes.
//   - Logs store failures internally without leaking details to the actor.
//   - Renders a consistent JSON envelope: {"error": "<message>", "kind": "<kind>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: string(kind)}
	case domain.KindNotFound:
		return http.StatusNotFound, errorResponse{Error: err.Error(), Kind: string(kind)}
	case domain.KindConflict:
		return http.StatusConflict, errorResponse{Error: err.Error(), Kind: string(kind)}
	case domain.KindPermission:
		return http.StatusForbidden, errorResponse{Error: err.Error(), Kind: string(kind)}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")

	return http.StatusServiceUnavailable, errorResponse{Error: storeFailureMessage, Kind: string(domain.KindStore)}
}
