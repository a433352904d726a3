package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// MemberHandler lets the gateway push the guild member list used to resolve
// requesters.
type MemberHandler struct {
	directory ports.MemberDirectory
	log       zerolog.Logger
}

func NewMemberHandler(directory ports.MemberDirectory, log zerolog.Logger) *MemberHandler {
	return &MemberHandler{directory: directory, log: log}
}

// Replace handles PUT /v1/guilds/:guild/members.
//
// @Summary      Replace the member list of a guild
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        guild  path      string                 true  "Guild id"
// @Param        body   body      replaceMembersRequest  true  "Members in display order"
// @Success      200    {object}  replaceMembersResponse
// @Failure      400    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /v1/guilds/{guild}/members [put]
func (h *MemberHandler) Replace(c echo.Context) error {
	subject, _, err := caller(c)
	if err != nil {
		return err
	}

	var req replaceMembersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.directory.Replace(c.Request().Context(), req.GuildID, toMembers(req.Members)); err != nil {
		return err
	}

	h.log.Info().
		Str("guild_id", req.GuildID).
		Int("members", len(req.Members)).
		Str("caller", subject).
		Msg("member directory replaced")

	return c.JSON(http.StatusOK, replaceMembersResponse{GuildID: req.GuildID, Count: len(req.Members)})
}
