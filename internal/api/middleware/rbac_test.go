package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
)

func contextWithIdentity(e *echo.Echo, identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		c.Set(IdentityKey, identity)
	}
	return c, rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	c, rec := contextWithIdentity(e, &domain.Identity{ID: "a", Role: domain.RoleAdmin})

	called := false
	handler := RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	e := echo.New()
	c, _ := contextWithIdentity(e, &domain.Identity{ID: "m", Role: domain.RoleManager})

	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	if code := httpStatus(t, handler(c)); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireRole_MissingIdentity(t *testing.T) {
	e := echo.New()
	c, _ := contextWithIdentity(e, nil)

	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	if code := httpStatus(t, handler(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireMinimumRole_Hierarchy(t *testing.T) {
	cases := []struct {
		role    domain.Role
		min     domain.Role
		allowed bool
	}{
		{domain.RoleUser, domain.RoleManager, false},
		{domain.RoleManager, domain.RoleManager, true},
		{domain.RoleAdmin, domain.RoleManager, true},
		{domain.RoleSuperAdmin, domain.RoleManager, true},
		{domain.RoleAdmin, domain.RoleSuperAdmin, false},
		{domain.Role("INTRUDER"), domain.RoleUser, false},
	}

	e := echo.New()
	for _, tc := range cases {
		c, _ := contextWithIdentity(e, &domain.Identity{ID: "x", Role: tc.role})

		handler := RequireMinimumRole(tc.min)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		err := handler(c)
		if tc.allowed && err != nil {
			t.Errorf("%s >= %s: unexpected error %v", tc.role, tc.min, err)
		}
		if !tc.allowed {
			if code := httpStatus(t, err); code != http.StatusForbidden {
				t.Errorf("%s >= %s: expected 403, got %d", tc.role, tc.min, code)
			}
		}
	}
}
