package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type memClaimer struct {
	mu       sync.Mutex
	seen     map[string]bool
	claimErr error
	released []string
}

func newMemClaimer() *memClaimer {
	return &memClaimer{seen: make(map[string]bool)}
}

func (m *memClaimer) Claim(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func (m *memClaimer) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
	m.released = append(m.released, id)
	return nil
}

func serveDedup(store Claimer, id string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if id != "" {
		req.Header.Set(HeaderInteractionID, id)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := Dedup(store, zerolog.Nop())(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestDedup_SecondDeliveryConflicts(t *testing.T) {
	store := newMemClaimer()
	calls := 0
	ok := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}

	if rec := serveDedup(store, "i-1", ok); rec.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", rec.Code)
	}
	if rec := serveDedup(store, "i-1", ok); rec.Code != http.StatusConflict {
		t.Fatalf("second delivery: expected 409, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestDedup_NoHeaderPasses(t *testing.T) {
	store := newMemClaimer()
	calls := 0
	ok := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}
	serveDedup(store, "", ok)
	serveDedup(store, "", ok)
	if calls != 2 {
		t.Fatalf("expected both requests to run, got %d", calls)
	}
}

func TestDedup_FailedHandlerReleases(t *testing.T) {
	store := newMemClaimer()
	fail := func(echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	}

	if rec := serveDedup(store, "i-2", fail); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if len(store.released) != 1 || store.released[0] != "i-2" {
		t.Fatalf("expected i-2 released, got %v", store.released)
	}

	rec := serveDedup(store, "i-2", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if rec.Code != http.StatusOK {
		t.Fatalf("retry after failure: expected 200, got %d", rec.Code)
	}
}

func TestDedup_StoreDownLetsThrough(t *testing.T) {
	store := newMemClaimer()
	store.claimErr = errors.New("redis down")

	rec := serveDedup(store, "i-3", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when dedup store is down, got %d", rec.Code)
	}
}
