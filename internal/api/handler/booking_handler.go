package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// BookingHandler handles booking forms and free-text request broadcasts.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Submit handles POST /v1/bookings.
//
// @Summary      Submit a booking form
// @Description  Resolves the requester, finds the provider, validates hours and start time and opens a Pending rental.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Interaction-ID  header    string          false  "Platform interaction id"
// @Param        body              body      bookingRequest  true   "Booking form"
// @Success      201               {object}  bookingResponse
// @Failure      400               {object}  errorResponse
// @Failure      401               {object}  errorResponse
// @Failure      404               {object}  errorResponse
// @Failure      409               {object}  errorResponse
// @Failure      422               {object}  errorResponse
// @Failure      503               {object}  errorResponse
// @Router       /v1/bookings [post]
func (h *BookingHandler) Submit(c echo.Context) error {
	if _, _, err := caller(c); err != nil {
		return err
	}

	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Submit(c.Request().Context(), toBookingInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookingResponse(res))
}

// Broadcast handles POST /v1/requests.
//
// @Summary      Broadcast a free-text booking request
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      broadcastRequest  true  "Request text"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/requests [post]
func (h *BookingHandler) Broadcast(c echo.Context) error {
	if _, _, err := caller(c); err != nil {
		return err
	}

	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err := h.service.Broadcast(c.Request().Context(), ports.BroadcastInput{
		Channel:  req.Channel,
		AuthorID: req.AuthorID,
		Text:     req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "request sent"})
}
