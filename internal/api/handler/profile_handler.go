package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// ProfileHandler handles provider and requester registrations.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Register handles POST /v1/profiles/:kind.
//
// @Summary      Register or replace a profile
// @Description  personal_info is "Name, DD/MM/YYYY, City, yes|no"; price is in thousands, optionally suffixed with K.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string           true  "provider or requester"
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/profiles/{kind} [post]
func (h *ProfileHandler) Register(c echo.Context) error {
	if _, _, err := caller(c); err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRegisterResponse(res))
}
