package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/employee-task-hub/internal/utils"
)

const testSecret = "test-secret"

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string, seed func(echo.Context)) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if seed != nil {
		seed(c)
	}
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, "id-123", "owner", "Dana", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec, c := invoke(t, JWTAuth(testSecret), "Bearer "+at.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := c.Get("user_id"); got != "id-123" {
		t.Fatalf("user_id = %v, want id-123", got)
	}
	if got := c.Get("role"); got != "owner" {
		t.Fatalf("role = %v, want owner", got)
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := invoke(t, JWTAuth(testSecret), "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", "id-123", "owner", "Dana", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, _ := invoke(t, JWTAuth(testSecret), "Bearer "+at.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleAllows(t *testing.T) {
	rec, _ := invoke(t, RequireRole("owner"), "", func(c echo.Context) {
		c.Set("role", "owner")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleRejects(t *testing.T) {
	rec, _ := invoke(t, RequireRole("owner"), "", func(c echo.Context) {
		c.Set("role", "employee")
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	rec, _ = invoke(t, RequireRole("owner"), "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing role: status = %d, want 403", rec.Code)
	}
}
