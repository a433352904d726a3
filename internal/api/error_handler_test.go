package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

func TestHTTPErrorHandler_MapsKinds(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
		wantMsg  string
	}{
		{"validation", fmt.Errorf("%w: %q", domain.ErrInvalidDuration, "x"), http.StatusUnprocessableEntity, "validation", "rent hours must be a positive number"},
		{"not found", domain.ErrCounterpartNotFound, http.StatusNotFound, "not_found", "counterpart not found"},
		{"conflict", fmt.Errorf("accept rental: %w", domain.ErrAlreadyProcessed), http.StatusConflict, "conflict", "already processed"},
		{"permission", fmt.Errorf("accept rental: %w", domain.ErrForbidden), http.StatusForbidden, "permission", "not allowed"},
		{"store", fmt.Errorf("insert rental: %w: connection refused", domain.ErrStore), http.StatusServiceUnavailable, "store", "try again later"},
		{"unknown", errors.New("boom"), http.StatusServiceUnavailable, "store", "try again later"},
		{"echo", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "", "invalid payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", body.Kind, tc.wantKind)
			}
			if !strings.Contains(body.Error, tc.wantMsg) {
				t.Errorf("message %q does not contain %q", body.Error, tc.wantMsg)
			}
			if tc.wantKind == "store" && strings.Contains(body.Error, "connection refused") {
				t.Errorf("store detail leaked: %q", body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrRentalNotFound, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
