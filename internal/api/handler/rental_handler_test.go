package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

func recordingAction(status string, calls *[]string, name string, got *ports.RentalAction) func(context.Context, ports.RentalAction) (*ports.ActionResult, error) {
	return func(_ context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
		*calls = append(*calls, name)
		*got = a
		return &ports.ActionResult{RentalID: a.RentalID, Status: status, Message: name + " done"}, nil
	}
}

func newRecordingRentalService(calls *[]string, got *ports.RentalAction) *stubRentalService {
	return &stubRentalService{
		acceptFn:   recordingAction(string(domain.StatusAccepted), calls, "accept", got),
		declineFn:  recordingAction(string(domain.StatusDeclined), calls, "decline", got),
		endEarlyFn: recordingAction(string(domain.StatusEndedEarly), calls, "end_early", got),
	}
}

func TestRentalHandler_Actions(t *testing.T) {
	var calls []string
	var got ports.RentalAction
	h := NewRentalHandler(newRecordingRentalService(&calls, &got))

	cases := []struct {
		name   string
		run    echo.HandlerFunc
		want   string
		status string
	}{
		{"accept", h.Accept, "accept", "Accepted"},
		{"decline", h.Decline, "decline", "Declined"},
		{"end early", h.EndEarly, "end_early", "Ended Early"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(t, request{
				method: http.MethodPost,
				target: "/v1/rentals/r1/x",
				body:   `{"actor_id":"200","channel":"c9"}`,
				params: map[string]string{"id": "r1"},
			})
			if err := tc.run(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if calls[len(calls)-1] != tc.want {
				t.Fatalf("expected %s, called %v", tc.want, calls)
			}
			if got.RentalID != "r1" || got.ActorID != "200" || got.Channel != "c9" {
				t.Fatalf("unexpected action: %+v", got)
			}

			var resp actionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tc.status || resp.RentalID != "r1" {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestRentalHandler_ActionRequiresActor(t *testing.T) {
	var calls []string
	var got ports.RentalAction
	h := NewRentalHandler(newRecordingRentalService(&calls, &got))

	c, _ := newContext(t, request{
		method: http.MethodPost,
		target: "/v1/rentals/r1/accept",
		body:   `{}`,
		params: map[string]string{"id": "r1"},
	})
	expectHTTPError(t, h.Accept(c), http.StatusUnprocessableEntity)
	if len(calls) != 0 {
		t.Fatalf("service called: %v", calls)
	}
}

func TestRentalHandler_ActionPassesConflict(t *testing.T) {
	h := NewRentalHandler(&stubRentalService{
		declineFn: func(context.Context, ports.RentalAction) (*ports.ActionResult, error) {
			return nil, fmt.Errorf("decline rental: %w", domain.ErrAlreadyProcessed)
		},
	})
	c, _ := newContext(t, request{
		method: http.MethodPost,
		target: "/v1/rentals/r1/decline",
		body:   `{"actor_id":"200"}`,
		params: map[string]string{"id": "r1"},
	})
	if err := h.Decline(c); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestRentalHandler_Interaction(t *testing.T) {
	var calls []string
	var got ports.RentalAction
	h := NewRentalHandler(newRecordingRentalService(&calls, &got))

	for _, action := range []string{domain.ActionAccept, domain.ActionDecline, domain.ActionEndEarly} {
		body := fmt.Sprintf(`{"custom_id":%q,"actor_id":"100"}`, domain.ControlID(action, "r7"))
		c, rec := newContext(t, request{method: http.MethodPost, target: "/v1/interactions", body: body})
		if err := h.Interaction(c); err != nil {
			t.Fatalf("%s: handler error: %v", action, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", action, rec.Code)
		}
		if calls[len(calls)-1] != action || got.RentalID != "r7" || got.ActorID != "100" {
			t.Fatalf("%s: routed to %v with %+v", action, calls, got)
		}
	}

	c, _ := newContext(t, request{method: http.MethodPost, target: "/v1/interactions", body: `{"custom_id":"rental:refund:r7","actor_id":"100"}`})
	expectHTTPError(t, h.Interaction(c), http.StatusBadRequest)
}

func TestRentalHandler_Get(t *testing.T) {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	h := NewRentalHandler(&stubRentalService{
		getFn: func(_ context.Context, id string) (*domain.RentalRecord, error) {
			if id != "r1" {
				return nil, domain.ErrRentalNotFound
			}
			return &domain.RentalRecord{
				ID:             "r1",
				RequesterID:    "100",
				ProviderID:     "200",
				RequestedHours: 1.5,
				Status:         domain.StatusAccepted,
				ActualStart:    &start,
			}, nil
		},
	})

	c, rec := newContext(t, request{method: http.MethodGet, target: "/v1/rentals/r1", params: map[string]string{"id": "r1"}})
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp rentalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ScheduledEnd == nil || !resp.ScheduledEnd.Equal(start.Add(90*time.Minute)) {
		t.Fatalf("unexpected scheduled end: %v", resp.ScheduledEnd)
	}
	if resp.Links.Self != "/v1/rentals/r1" {
		t.Fatalf("unexpected self link: %q", resp.Links.Self)
	}

	c, _ = newContext(t, request{method: http.MethodGet, target: "/v1/rentals/nope", params: map[string]string{"id": "nope"}})
	if err := h.Get(c); !errors.Is(err, domain.ErrRentalNotFound) {
		t.Fatalf("expected ErrRentalNotFound, got %v", err)
	}
}

func TestRentalHandler_Countdowns(t *testing.T) {
	h := NewRentalHandler(&stubRentalService{views: []ports.CountdownView{
		{RentalID: "r1", RequesterID: "100", ProviderID: "200", Channel: "c1", Remaining: "00:59:00"},
	}})

	c, rec := newContext(t, request{method: http.MethodGet, target: "/v1/countdowns"})
	if err := h.Countdowns(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp countdownListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 1 || resp.Countdowns[0].Remaining != "00:59:00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
