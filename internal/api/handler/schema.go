package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Bookings ---

type bookingRequest struct {
	GuildID      string `json:"guild_id"      validate:"required"`
	Channel      string `json:"channel"       validate:"required"`
	Requester    string `json:"requester"     validate:"required,max=100"`
	ProviderName string `json:"provider_name" validate:"required,max=100"`
	Hours        string `json:"hours"         validate:"required,max=16"`
	StartTime    string `json:"start_time"    validate:"required,max=32"`
}

type bookingResponse struct {
	RentalID       string    `json:"rental_id"`
	RequesterID    string    `json:"requester_id"`
	ProviderID     string    `json:"provider_id"`
	RequestedStart time.Time `json:"requested_start"`
	RequestedHours float64   `json:"requested_hours"`
	TotalPrice     int64     `json:"total_price"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
}

type broadcastRequest struct {
	Channel  string `json:"channel"   validate:"required"`
	AuthorID string `json:"author_id" validate:"required"`
	Text     string `json:"text"      validate:"required,max=2000"`
}

// --- Rentals ---

type rentalActionRequest struct {
	RentalID string `param:"id"       json:"-"       validate:"required"`
	ActorID  string `json:"actor_id"  validate:"required"`
	Channel  string `json:"channel"`
}

type interactionRequest struct {
	CustomID string `json:"custom_id" validate:"required"`
	ActorID  string `json:"actor_id"  validate:"required"`
	Channel  string `json:"channel"`
}

type actionResponse struct {
	RentalID        string `json:"rental_id"`
	Status          string `json:"status"`
	Message         string `json:"message"`
	AlreadyFinished bool   `json:"already_finished,omitempty"`
}

type rentalLinks struct {
	Self string `json:"self"`
}

type rentalResponse struct {
	RentalID       string      `json:"rental_id"`
	GuildID        string      `json:"guild_id"`
	Channel        string      `json:"channel"`
	RequesterID    string      `json:"requester_id"`
	ProviderID     string      `json:"provider_id"`
	RequestedStart time.Time   `json:"requested_start"`
	RequestedHours float64     `json:"requested_hours"`
	TotalPrice     int64       `json:"total_price"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	ActualStart    *time.Time  `json:"actual_start,omitempty"`
	ActualEnd      *time.Time  `json:"actual_end,omitempty"`
	ActualHours    *float64    `json:"actual_hours,omitempty"`
	ScheduledEnd   *time.Time  `json:"scheduled_end,omitempty"`
	Links          rentalLinks `json:"_links"`
}

type countdownResponse struct {
	RentalID    string    `json:"rental_id"`
	RequesterID string    `json:"requester_id"`
	ProviderID  string    `json:"provider_id"`
	Channel     string    `json:"channel"`
	StartedAt   time.Time `json:"started_at"`
	EndsAt      time.Time `json:"ends_at"`
	Remaining   string    `json:"remaining"`
}

type countdownListResponse struct {
	Count      int                 `json:"count"`
	Countdowns []countdownResponse `json:"countdowns"`
}

// --- Profiles ---

type registerRequest struct {
	Kind            string `param:"kind"            json:"-"                validate:"required,oneof=provider requester"`
	UserID          string `json:"user_id"          validate:"required,max=32"`
	PersonalInfo    string `json:"personal_info"    validate:"required,max=300"`
	Price           string `json:"price"            validate:"required,max=16"`
	SocialLink      string `json:"social_link"      validate:"required,max=512"`
	Talents         string `json:"talents"          validate:"max=2000"`
	PlayableContent string `json:"playable_content" validate:"max=2000"`
}

type registerResponse struct {
	UserID       string `json:"user_id"`
	Kind         string `json:"kind"`
	DisplayName  string `json:"display_name"`
	PricePerHour int64  `json:"price_per_hour"`
	Summary      string `json:"summary"`
}

// --- Members ---

type memberRequest struct {
	ID          string `json:"id"           validate:"required,numeric"`
	Username    string `json:"username"     validate:"required"`
	DisplayName string `json:"display_name"`
}

type replaceMembersRequest struct {
	GuildID string          `param:"guild" json:"-" validate:"required"`
	Members []memberRequest `json:"members" validate:"dive"`
}

type replaceMembersResponse struct {
	GuildID string `json:"guild_id"`
	Count   int    `json:"count"`
}
