package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/ticketing"
)

func TestPct(t *testing.T) {
	cases := []struct {
		part, total int
		want        float64
	}{
		{0, 100, 0},
		{25, 100, 25},
		{1, 3, 33.33},
		{50, 0, 0},
	}
	for _, tc := range cases {
		if got := pct(tc.part, tc.total); got != tc.want {
			t.Errorf("pct(%d,%d): expected %.2f, got %.2f", tc.part, tc.total, tc.want, got)
		}
	}
}

func TestIssueErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ticketing.ErrQuantityOutOfRange, http.StatusBadRequest},
		{ticketing.ErrMatchNotFound, http.StatusNotFound},
		{ticketing.ErrUserNotFound, http.StatusNotFound},
		{ticketing.ErrStandPriceNotFound, http.StatusNotFound},
		{ticketing.ErrCodesExhausted, http.StatusServiceUnavailable},
		{ticketing.ErrCodeConflict, http.StatusConflict},
		{&ticketing.CapacityError{Available: 2}, http.StatusConflict},
		{errors.New("broken pipe"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/tickets", nil)
		rec := httptest.NewRecorder()
		if err := issueError(e.NewContext(req, rec), tc.err); err != nil {
			t.Fatalf("issueError(%v) returned %v", tc.err, err)
		}
		if rec.Code != tc.want {
			t.Errorf("issueError(%v): expected status %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestSaleStatus(t *testing.T) {
	cases := []struct {
		available, total int
		limitedPct       float64
		want             string
	}{
		{0, 100, 15, "sold_out"},
		{10, 100, 15, "limited"},
		{15, 100, 15, "limited"},
		{16, 100, 15, "available"},
		{30, 100, 30, "limited"},
		{31, 100, 30, "available"},
	}
	for _, tc := range cases {
		if got := saleStatus(tc.available, tc.total, tc.limitedPct); got != tc.want {
			t.Errorf("saleStatus(%d,%d,%.0f): expected %s, got %s",
				tc.available, tc.total, tc.limitedPct, tc.want, got)
		}
	}
}
