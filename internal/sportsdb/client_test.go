package sportsdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient()
	if client.baseURL != DefaultBaseURL {
		t.Errorf("Expected baseURL %q, got %q", DefaultBaseURL, client.baseURL)
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", client.httpClient.Timeout)
	}
}

func TestNewClientWithConfig(t *testing.T) {
	client := NewClientWithConfig(Config{
		BaseURL: "https://rosters.internal/api",
		Timeout: 3 * time.Second,
	})
	if client.baseURL != "https://rosters.internal/api" {
		t.Errorf("Unexpected baseURL %q", client.baseURL)
	}
	if client.httpClient.Timeout != 3*time.Second {
		t.Errorf("Expected 3s timeout, got %v", client.httpClient.Timeout)
	}
}

func TestRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup_all_players.php" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "133604" {
			t.Errorf("Expected id=133604, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"player":[{"strPlayer":"Ana Silva"},{"strPlayer":""},{"strPlayer":"Marta Costa"}]}`))
	}))
	defer srv.Close()

	client := NewClientWithConfig(Config{BaseURL: srv.URL})
	names, err := client.Roster(context.Background(), "133604")
	if err != nil {
		t.Fatalf("Roster failed: %v", err)
	}
	if len(names) != 2 || names[0] != "Ana Silva" || names[1] != "Marta Costa" {
		t.Errorf("Unexpected roster %v", names)
	}
}

func TestRosterEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"player":null}`))
	}))
	defer srv.Close()

	client := NewClientWithConfig(Config{BaseURL: srv.URL})
	names, err := client.Roster(context.Background(), "99999")
	if err != nil {
		t.Fatalf("Roster failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected empty roster, got %v", names)
	}
}

func TestRosterAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClientWithConfig(Config{BaseURL: srv.URL})
	_, err := client.Roster(context.Background(), "133604")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected code 429, got %d", apiErr.Code)
	}
}
