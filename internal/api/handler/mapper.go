package handler

import (
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// --- Request → Service input ---

func toBookingInput(r bookingRequest) ports.BookingInput {
	return ports.BookingInput{
		GuildID:      r.GuildID,
		Channel:      r.Channel,
		Requester:    r.Requester,
		ProviderName: r.ProviderName,
		Hours:        r.Hours,
		StartTime:    r.StartTime,
	}
}

func toRegisterInput(r registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Kind:            domain.ProfileKind(r.Kind),
		UserID:          r.UserID,
		PersonalInfo:    r.PersonalInfo,
		Price:           r.Price,
		SocialLink:      r.SocialLink,
		Talents:         r.Talents,
		PlayableContent: r.PlayableContent,
	}
}

func toMembers(rs []memberRequest) []domain.Member {
	out := make([]domain.Member, 0, len(rs))
	for _, m := range rs {
		out = append(out, domain.Member{ID: m.ID, Username: m.Username, DisplayName: m.DisplayName})
	}
	return out
}

// --- Service output → Response ---

func toBookingResponse(res *ports.BookingResult) bookingResponse {
	return bookingResponse{
		RentalID:       res.RentalID,
		RequesterID:    res.RequesterID,
		ProviderID:     res.ProviderID,
		RequestedStart: res.RequestedStart,
		RequestedHours: res.RequestedHours,
		TotalPrice:     res.TotalPrice,
		Status:         res.Status,
		Message:        res.Message,
	}
}

func toActionResponse(res *ports.ActionResult) actionResponse {
	return actionResponse{
		RentalID:        res.RentalID,
		Status:          res.Status,
		Message:         res.Message,
		AlreadyFinished: res.AlreadyFinished,
	}
}

func toRentalResponse(rec *domain.RentalRecord) rentalResponse {
	resp := rentalResponse{
		RentalID:       rec.ID,
		GuildID:        rec.GuildID,
		Channel:        rec.Channel,
		RequesterID:    rec.RequesterID,
		ProviderID:     rec.ProviderID,
		RequestedStart: rec.RequestedStart,
		RequestedHours: rec.RequestedHours,
		TotalPrice:     rec.TotalPrice,
		Status:         string(rec.Status),
		CreatedAt:      rec.CreatedAt,
		ActualStart:    rec.ActualStart,
		ActualEnd:      rec.ActualEnd,
		ActualHours:    rec.ActualHours,
		Links:          rentalLinks{Self: "/v1/rentals/" + rec.ID},
	}
	if rec.Status == domain.StatusAccepted {
		end := rec.ScheduledEnd()
		resp.ScheduledEnd = &end
	}
	return resp
}

func toCountdownList(views []ports.CountdownView) countdownListResponse {
	out := countdownListResponse{Count: len(views), Countdowns: make([]countdownResponse, 0, len(views))}
	for _, v := range views {
		out.Countdowns = append(out.Countdowns, countdownResponse{
			RentalID:    v.RentalID,
			RequesterID: v.RequesterID,
			ProviderID:  v.ProviderID,
			Channel:     v.Channel,
			StartedAt:   v.StartedAt,
			EndsAt:      v.EndsAt,
			Remaining:   v.Remaining,
		})
	}
	return out
}

func toRegisterResponse(res *ports.RegisterResult) registerResponse {
	return registerResponse{
		UserID:       res.Profile.UserID,
		Kind:         string(res.Profile.Kind),
		DisplayName:  res.Profile.DisplayName,
		PricePerHour: res.Profile.PricePerHour,
		Summary:      res.Summary,
	}
}
