package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
)

type stubIdentityService struct {
	identity  *domain.Identity
	err       error
	lastToken string
}

func (s *stubIdentityService) Authenticate(_ context.Context, rawToken string) (*domain.Identity, error) {
	s.lastToken = rawToken
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	svc := &stubIdentityService{identity: &domain.Identity{ID: "id_1", Role: domain.RoleUser}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok_123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(func(c echo.Context) error {
		identity, ok := c.Get(IdentityKey).(*domain.Identity)
		if !ok || identity.ID != "id_1" {
			t.Fatalf("identity not injected: %v", c.Get(IdentityKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastToken != "tok_123" {
		t.Fatalf("expected tok_123 passed to the bridge, got %q", svc.lastToken)
	}
}

func TestAuthenticate_SessionCookieWins(t *testing.T) {
	svc := &stubIdentityService{identity: &domain.Identity{ID: "id_1"}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header_token")
	req.AddCookie(&http.Cookie{Name: "__session", Value: "cookie_token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastToken != "cookie_token" {
		t.Fatalf("cookie must take precedence, got %q", svc.lastToken)
	}
}

func TestAuthenticate_MissingCredential(t *testing.T) {
	svc := &stubIdentityService{identity: &domain.Identity{ID: "id_1"}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthenticate_BridgeRejects(t *testing.T) {
	svc := &stubIdentityService{err: domain.ErrUnauthenticated}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthenticate_UpstreamFailureIsNotA401(t *testing.T) {
	storeErr := errors.New("identity store unavailable")
	svc := &stubIdentityService{err: storeErr}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok_123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		t.Fatalf("an upstream failure must not blame the credential, got HTTP error %v", he)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("the cause must flow to the central handler, got %v", err)
	}
}

func TestAuthenticate_MalformedHeaderIgnored(t *testing.T) {
	svc := &stubIdentityService{identity: &domain.Identity{ID: "id_1"}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a non-bearer scheme, got %v", err)
	}
}
