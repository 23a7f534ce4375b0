package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/internal/service/ratelimit"
	"ChartFeed/internal/usecase"
	xlogger "ChartFeed/pkg/logger"

	"github.com/labstack/echo/v4"
)

type staticSource struct {
	obs []models.RawObservation
}

func (s *staticSource) FetchObservations(context.Context, string, drepo.Granularity) ([]models.RawObservation, error) {
	return s.obs, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordFetchDuration(string, float64) {}
func (nopMetrics) RecordFetchError(string)             {}
func (nopMetrics) RecordStaleDiscard(string)           {}
func (nopMetrics) RecordWindowSize(string, int)        {}
func (nopMetrics) RecordLastClose(string, float64)     {}

func newTestHandler(t *testing.T) (*ChartHandler, *echo.Echo) {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	src := &staticSource{obs: []models.RawObservation{
		{Date: "2024-01-01T00:00:00Z", Close: "200.5"},
		{Date: "2024-01-03T00:00:00Z", Close: "210"},
	}}
	ctrl := usecase.NewChartController(src, nopMetrics{}, l, "AAPL")

	loaded := make(chan struct{}, 8)
	ctrl.OnChange(func(s usecase.Snapshot) {
		if s.Status == usecase.StatusSuccess {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ctrl.Start(ctx)
	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatalf("controller never loaded")
	}

	h := NewChartHandler(l, ctrl, nil, ratelimit.New())
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func TestChartEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected code %d", rec.Code)
	}

	var envelope struct {
		Status int       `json:"status"`
		Data   chartView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", envelope.Status)
	}
	if envelope.Data.Granularity != "daily" || envelope.Data.Status != "success" {
		t.Fatalf("unexpected view %+v", envelope.Data)
	}
	if len(envelope.Data.Window) != 2 {
		t.Fatalf("expected 2 points, got %d", len(envelope.Data.Window))
	}
	if envelope.Data.Summary == nil || envelope.Data.Summary.Average != 205.25 {
		t.Fatalf("unexpected summary %+v", envelope.Data.Summary)
	}
}

func TestSelectTimeframeValidation(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chart/timeframe",
		strings.NewReader(`{"granularity":"yearly"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 envelope, got %d", envelope.Status)
	}
}

func TestSelectTimeframeAccepted(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chart/timeframe",
		strings.NewReader(`{"granularity":"weekly"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != http.StatusAccepted {
		t.Fatalf("expected 202 envelope, got %d", envelope.Status)
	}
}

func TestSelectTimeframeRateLimited(t *testing.T) {
	_, e := newTestHandler(t)

	var last int
	for i := 0; i < selectBurst+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chart/timeframe",
			strings.NewReader(`{"granularity":"monthly"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		var envelope struct {
			Status int `json:"status"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		last = envelope.Status
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 envelope after burst, got %d", last)
	}
}
