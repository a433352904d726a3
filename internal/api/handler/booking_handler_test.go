package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

const validBooking = `{"guild_id":"g1","channel":"c1","requester":"<@100>","provider_name":"Bob","hours":"2.5","start_time":"01/01/2030 10:00"}`

func TestBookingHandler_Submit_Success(t *testing.T) {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	stub := &stubBookingService{
		submitFn: func(ctx context.Context, in ports.BookingInput) (*ports.BookingResult, error) {
			if in.GuildID != "g1" || in.Channel != "c1" || in.Requester != "<@100>" ||
				in.ProviderName != "Bob" || in.Hours != "2.5" || in.StartTime != "01/01/2030 10:00" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.BookingResult{
				RentalID:       "r1",
				RequesterID:    "100",
				ProviderID:     "200",
				RequestedStart: start,
				RequestedHours: 2.5,
				TotalPrice:     250000,
				Status:         string(domain.StatusPending),
				Message:        "Booking request submitted. Waiting for the provider's confirmation.",
			}, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newContext(t, request{method: http.MethodPost, target: "/v1/bookings", body: validBooking})
	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.RentalID != "r1" || resp.TotalPrice != 250000 || resp.Status != "Pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.RequestedStart.Equal(start) {
		t.Fatalf("requested start = %v", resp.RequestedStart)
	}
}

func TestBookingHandler_Submit_RejectsBadPayload(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		submitFn: func(context.Context, ports.BookingInput) (*ports.BookingResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	c, _ := newContext(t, request{method: http.MethodPost, target: "/v1/bookings", body: `{"guild_id":`})
	expectHTTPError(t, h.Submit(c), http.StatusBadRequest)

	c, _ = newContext(t, request{method: http.MethodPost, target: "/v1/bookings", body: `{"guild_id":"g1","channel":"c1"}`})
	err := h.Submit(c)
	expectHTTPError(t, err, http.StatusUnprocessableEntity)
	if !strings.Contains(fmt.Sprint(err), "requester is required") {
		t.Fatalf("expected field name in message, got %v", err)
	}

	c, _ = newContext(t, request{method: http.MethodPost, target: "/v1/bookings", body: validBooking, anon: true})
	expectHTTPError(t, h.Submit(c), http.StatusUnauthorized)
}

func TestBookingHandler_Submit_PassesDomainErrors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidDuration, domain.ErrCounterpartNotFound, domain.ErrActiveBookingExists} {
		h := NewBookingHandler(&stubBookingService{
			submitFn: func(context.Context, ports.BookingInput) (*ports.BookingResult, error) {
				return nil, fmt.Errorf("submit: %w", want)
			},
		})
		c, _ := newContext(t, request{method: http.MethodPost, target: "/v1/bookings", body: validBooking})
		if err := h.Submit(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestBookingHandler_Broadcast(t *testing.T) {
	var got ports.BroadcastInput
	h := NewBookingHandler(&stubBookingService{
		broadcastFn: func(_ context.Context, in ports.BroadcastInput) error {
			got = in
			return nil
		},
	})

	c, rec := newContext(t, request{
		method: http.MethodPost,
		target: "/v1/requests",
		body:   `{"channel":"c1","author_id":"100","text":"need a duo tonight"}`,
	})
	if err := h.Broadcast(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if got.Channel != "c1" || got.AuthorID != "100" || got.Text != "need a duo tonight" {
		t.Fatalf("unexpected input: %+v", got)
	}

	c, _ = newContext(t, request{method: http.MethodPost, target: "/v1/requests", body: `{"channel":"c1","author_id":"100"}`})
	expectHTTPError(t, h.Broadcast(c), http.StatusUnprocessableEntity)
}
