package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HeaderInteractionID carries the platform interaction id of a form submit
// or button press.
const HeaderInteractionID = "X-Interaction-ID"

// Claimer remembers interaction ids.
type Claimer interface {
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// Dedup answers 409 to an interaction id that was already handled. Requests
// without the header pass through. A failed handler releases the id so the
// gateway may retry; when the store is unreachable the request is let through.
func Dedup(store Claimer, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderInteractionID)
			if id == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			first, err := store.Claim(ctx, id)
			if err != nil {
				log.Warn().Err(err).Str("interaction_id", id).Msg("dedup unavailable")
				return next(c)
			}
			if !first {
				return echo.NewHTTPError(http.StatusConflict, "interaction already handled")
			}

			if err := next(c); err != nil {
				if rerr := store.Release(context.WithoutCancel(ctx), id); rerr != nil {
					log.Warn().Err(rerr).Str("interaction_id", id).Msg("dedup release failed")
				}
				return err
			}
			return nil
		}
	}
}
