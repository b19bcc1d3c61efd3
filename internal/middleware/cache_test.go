package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/config"
)

func TestCacheEntryRoundTrip(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	body := []byte(`{"available":42}`)

	payload, err := encodeEntry(http.StatusOK, header, body)
	if err != nil {
		t.Fatalf("encodeEntry failed: %v", err)
	}
	status, gotHeader, gotBody, ok := decodeEntry(payload)
	if !ok {
		t.Fatal("decodeEntry rejected its own payload")
	}
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if gotHeader.Get("Content-Type") != "application/json" {
		t.Errorf("Header lost in round trip: %v", gotHeader)
	}
	if string(gotBody) != string(body) {
		t.Errorf("Body lost in round trip: %q", gotBody)
	}
}

func TestDecodeEntryRejectsGarbage(t *testing.T) {
	for _, payload := range [][]byte{nil, {1, 2, 3}, make([]byte, 8)} {
		if _, _, _, ok := decodeEntry(payload); ok && len(payload) < 8 {
			t.Errorf("decodeEntry accepted %d-byte payload", len(payload))
		}
	}
	// Header length pointing past the payload.
	bad := []byte{0, 0, 0, 200, 0, 0, 1, 0}
	if _, _, _, ok := decodeEntry(bad); ok {
		t.Error("decodeEntry accepted an oversized header length")
	}
}

func TestRedisCachePassThroughWhenDisabled(t *testing.T) {
	e := echo.New()
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)
	e.GET("/v1/matches/:id/occupancy", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"available": 10})
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/1/occupancy", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("Disabled cache must not set X-Cache")
	}
}

func TestRateLimitPassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") }, mw)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 without a Redis client, got %d", rec.Code)
	}
}
