package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// RentalHandler exposes the rental state machine.
type RentalHandler struct {
	service ports.RentalService
}

func NewRentalHandler(service ports.RentalService) *RentalHandler {
	return &RentalHandler{service: service}
}

type rentalAction func(context.Context, ports.RentalAction) (*ports.ActionResult, error)

func (h *RentalHandler) act(c echo.Context, run rentalAction) error {
	if _, _, err := caller(c); err != nil {
		return err
	}

	var req rentalActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := run(c.Request().Context(), ports.RentalAction{
		RentalID: req.RentalID,
		ActorID:  req.ActorID,
		Channel:  req.Channel,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActionResponse(res))
}

// Accept handles POST /v1/rentals/:id/accept.
//
// @Summary      Accept a pending booking
// @Description  Only the provider may accept. Starts the countdown.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Rental id"
// @Param        body  body      rentalActionRequest  true  "Actor"
// @Success      200   {object}  actionResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/rentals/{id}/accept [post]
func (h *RentalHandler) Accept(c echo.Context) error {
	return h.act(c, h.service.Accept)
}

// Decline handles POST /v1/rentals/:id/decline.
//
// @Summary      Decline a pending booking
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Rental id"
// @Param        body  body      rentalActionRequest  true  "Actor"
// @Success      200   {object}  actionResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/rentals/{id}/decline [post]
func (h *RentalHandler) Decline(c echo.Context) error {
	return h.act(c, h.service.Decline)
}

// EndEarly handles POST /v1/rentals/:id/end-early.
//
// @Summary      End a running rental early
// @Description  Either party may end the rental. A rental whose countdown already finished answers with already_finished.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Rental id"
// @Param        body  body      rentalActionRequest  true  "Actor"
// @Success      200   {object}  actionResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/rentals/{id}/end-early [post]
func (h *RentalHandler) EndEarly(c echo.Context) error {
	return h.act(c, h.service.EndEarly)
}

// Interaction handles POST /v1/interactions: a control pressed on a
// notification, routed by its custom id.
//
// @Summary      Handle a notification control
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Interaction-ID  header    string              false  "Platform interaction id"
// @Param        body              body      interactionRequest  true   "Control press"
// @Success      200               {object}  actionResponse
// @Failure      400               {object}  errorResponse
// @Failure      403               {object}  errorResponse
// @Failure      404               {object}  errorResponse
// @Failure      409               {object}  errorResponse
// @Router       /v1/interactions [post]
func (h *RentalHandler) Interaction(c echo.Context) error {
	if _, _, err := caller(c); err != nil {
		return err
	}

	var req interactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	action, rentalID, ok := domain.ParseControlID(req.CustomID)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown control")
	}

	var run rentalAction
	switch action {
	case domain.ActionAccept:
		run = h.service.Accept
	case domain.ActionDecline:
		run = h.service.Decline
	case domain.ActionEndEarly:
		run = h.service.EndEarly
	}

	res, err := run(c.Request().Context(), ports.RentalAction{
		RentalID: rentalID,
		ActorID:  req.ActorID,
		Channel:  req.Channel,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActionResponse(res))
}

// Get handles GET /v1/rentals/:id.
//
// @Summary      Get a rental
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Rental id"
// @Success      200  {object}  rentalResponse
// @Failure      404  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/rentals/{id} [get]
func (h *RentalHandler) Get(c echo.Context) error {
	rec, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRentalResponse(rec))
}

// Countdowns handles GET /v1/countdowns.
//
// @Summary      List running countdowns
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  countdownListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/countdowns [get]
func (h *RentalHandler) Countdowns(c echo.Context) error {
	return c.JSON(http.StatusOK, toCountdownList(h.service.Countdowns()))
}
