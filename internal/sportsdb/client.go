// Package sportsdb is a thin client for the TheSportsDB-compatible lookup
// API that provides team rosters.  The simulation engine only needs player
// names, so the client exposes exactly that and nothing else.
package sportsdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public TheSportsDB v1 endpoint with the free demo
// API key segment.
const DefaultBaseURL = "https://www.thesportsdb.com/api/v1/json/123"

// Config controls client construction.  Zero values fall back to the
// defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// APIError reports a non-2xx response from the roster API.
type APIError struct {
	Code int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sportsdb: API responded with status %d", e.Code)
}

// Client fetches rosters over HTTP.  The embedded http.Client carries the
// request timeout; callers typically add their own context deadline too.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client against the public API with a 10 second
// timeout.
func NewClient() *Client {
	return NewClientWithConfig(Config{})
}

// NewClientWithConfig returns a client with explicit settings.
func NewClientWithConfig(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// playersResponse mirrors the lookup_all_players payload; only the player
// name field is consumed.
type playersResponse struct {
	Player []struct {
		Name string `json:"strPlayer"`
	} `json:"player"`
}

// Roster returns the player names for a team, identified by its external
// API id.  A team without published players yields an empty slice, not an
// error.
func (c *Client) Roster(ctx context.Context, teamAPIID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/lookup_all_players.php?id=%s", c.baseURL, url.QueryEscape(teamAPIID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var payload playersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("sportsdb: decode players: %w", err)
	}
	names := make([]string, 0, len(payload.Player))
	for _, p := range payload.Player {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}
