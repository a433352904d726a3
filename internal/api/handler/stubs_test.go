package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/api/middleware"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubBookingService struct {
	submitFn    func(ctx context.Context, in ports.BookingInput) (*ports.BookingResult, error)
	broadcastFn func(ctx context.Context, in ports.BroadcastInput) error
}

func (s *stubBookingService) Submit(ctx context.Context, in ports.BookingInput) (*ports.BookingResult, error) {
	return s.submitFn(ctx, in)
}

func (s *stubBookingService) Broadcast(ctx context.Context, in ports.BroadcastInput) error {
	return s.broadcastFn(ctx, in)
}

type stubRentalService struct {
	acceptFn   func(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error)
	declineFn  func(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error)
	endEarlyFn func(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error)
	getFn      func(ctx context.Context, id string) (*domain.RentalRecord, error)
	views      []ports.CountdownView
}

func (s *stubRentalService) Accept(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
	return s.acceptFn(ctx, a)
}

func (s *stubRentalService) Decline(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
	return s.declineFn(ctx, a)
}

func (s *stubRentalService) EndEarly(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
	return s.endEarlyFn(ctx, a)
}

func (s *stubRentalService) Get(ctx context.Context, id string) (*domain.RentalRecord, error) {
	return s.getFn(ctx, id)
}

func (s *stubRentalService) Countdowns() []ports.CountdownView { return s.views }

func (s *stubRentalService) Recover(context.Context) (int, error) { return 0, nil }

type stubProfileService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
}

func (s *stubProfileService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

type stubDirectory struct {
	replaced   map[string][]domain.Member
	replaceErr error
}

func (d *stubDirectory) Lookup(context.Context, string, string) (*domain.Member, error) {
	return nil, domain.ErrIdentifierNotFound
}

func (d *stubDirectory) List(_ context.Context, guildID string) ([]domain.Member, error) {
	return d.replaced[guildID], nil
}

func (d *stubDirectory) Replace(_ context.Context, guildID string, members []domain.Member) error {
	if d.replaceErr != nil {
		return d.replaceErr
	}
	if d.replaced == nil {
		d.replaced = make(map[string][]domain.Member)
	}
	d.replaced[guildID] = members
	return nil
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

type request struct {
	method string
	target string
	body   string
	params map[string]string
	anon   bool
}

func newContext(t *testing.T, r request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if r.body != "" {
		req = httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(r.method, r.target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for k, v := range r.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if !r.anon {
		c.Set(middleware.CtxRole, middleware.RoleGateway)
		c.Set(middleware.CtxSubject, "gateway-1")
	}
	return c, rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}
