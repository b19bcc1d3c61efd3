package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/utils"
)

const testSecret = "test-secret"

func protected(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func doRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	e := echo.New()
	var gotUser uint64
	var gotRole string
	e.GET("/secret", func(c echo.Context) error {
		gotUser, _ = c.Get("user_id").(uint64)
		gotRole, _ = c.Get("role").(string)
		return protected(c)
	}, JWTAuth(testSecret))

	access, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	rec := doRequest(t, e, "Bearer "+access.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotUser != 42 {
		t.Errorf("Expected user id 42, got %d", gotUser)
	}
	if gotRole != "CUSTOMER" {
		t.Errorf("Expected role CUSTOMER, got %q", gotRole)
	}
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	e := echo.New()
	e.GET("/secret", protected, JWTAuth(testSecret))

	if rec := doRequest(t, e, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Missing header: expected 401, got %d", rec.Code)
	}
	if rec := doRequest(t, e, "Bearer not-a-jwt"); rec.Code != http.StatusUnauthorized {
		t.Errorf("Malformed token: expected 401, got %d", rec.Code)
	}

	other, err := utils.NewAccessToken("different-secret", 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	if rec := doRequest(t, e, "Bearer "+other.Token); rec.Code != http.StatusUnauthorized {
		t.Errorf("Wrong signature: expected 401, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/secret", protected, JWTAuth(testSecret), RequireRole("ADMIN"))

	customer, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	if rec := doRequest(t, e, "Bearer "+customer.Token); rec.Code != http.StatusForbidden {
		t.Errorf("Customer on admin route: expected 403, got %d", rec.Code)
	}

	admin, err := utils.NewAccessToken(testSecret, 1, "ADMIN", 5)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	if rec := doRequest(t, e, "Bearer "+admin.Token); rec.Code != http.StatusOK {
		t.Errorf("Admin on admin route: expected 200, got %d", rec.Code)
	}
}
