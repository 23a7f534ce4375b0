package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	xlogger "ChartFeed/pkg/logger"
)

type fakeSource struct {
	mu    sync.Mutex
	gates map[drepo.Granularity]chan struct{}
	resp  map[drepo.Granularity][]models.RawObservation
	errs  map[drepo.Granularity]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		gates: make(map[drepo.Granularity]chan struct{}),
		resp:  make(map[drepo.Granularity][]models.RawObservation),
		errs:  make(map[drepo.Granularity]error),
	}
}

// block makes fetches for g wait until release(g).
func (f *fakeSource) block(g drepo.Granularity) {
	f.mu.Lock()
	f.gates[g] = make(chan struct{})
	f.mu.Unlock()
}

func (f *fakeSource) release(g drepo.Granularity) {
	f.mu.Lock()
	close(f.gates[g])
	delete(f.gates, g)
	f.mu.Unlock()
}

func (f *fakeSource) set(g drepo.Granularity, obs []models.RawObservation, err error) {
	f.mu.Lock()
	f.resp[g] = obs
	f.errs[g] = err
	f.mu.Unlock()
}

func (f *fakeSource) FetchObservations(_ context.Context, _ string, g drepo.Granularity) ([]models.RawObservation, error) {
	f.mu.Lock()
	gate := f.gates[g]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[g]; err != nil {
		return nil, err
	}
	return f.resp[g], nil
}

type fakeMetrics struct{ stale chan string }

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{stale: make(chan string, 8)} }

func (m *fakeMetrics) RecordFetchDuration(string, float64) {}
func (m *fakeMetrics) RecordFetchError(string)             {}
func (m *fakeMetrics) RecordWindowSize(string, int)        {}
func (m *fakeMetrics) RecordLastClose(string, float64)     {}
func (m *fakeMetrics) RecordStaleDiscard(g string) {
	select {
	case m.stale <- g:
	default:
	}
}

func newTestController(t *testing.T, src drepo.CandleSource, m drepo.Metrics) (*ChartController, chan Snapshot) {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	ctrl := NewChartController(src, m, l, "AAPL")
	snaps := make(chan Snapshot, 64)
	ctrl.OnChange(func(s Snapshot) { snaps <- s })
	return ctrl, snaps
}

func waitFor(t *testing.T, snaps chan Snapshot, match func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot")
		}
	}
}

func dailyObs() []models.RawObservation {
	return []models.RawObservation{
		raw("2024-01-01T00:00:00Z", "200.5"),
		raw("2024-01-03T00:00:00Z", "210"),
	}
}

func TestControllerInitialFetch(t *testing.T) {
	src := newFakeSource()
	src.set(drepo.GranDaily, dailyObs(), nil)
	src.block(drepo.GranDaily)
	ctrl, snaps := newTestController(t, src, newFakeMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	if s := ctrl.Snapshot(); s.Status != StatusLoading || s.Granularity != drepo.GranDaily {
		t.Fatalf("expected Loading(daily) on start, got %+v", s)
	}

	src.release(drepo.GranDaily)
	s := waitFor(t, snaps, func(s Snapshot) bool { return s.Status == StatusSuccess })
	if s.Granularity != drepo.GranDaily {
		t.Fatalf("expected daily, got %s", s.Granularity)
	}
	if len(s.Window) != 2 {
		t.Fatalf("expected 2 points, got %d", len(s.Window))
	}
	if s.Summary == nil || s.Summary.Current != 210 || s.Summary.Average != 205.25 {
		t.Fatalf("unexpected summary %+v", s.Summary)
	}
}

func TestControllerStaleResultDiscarded(t *testing.T) {
	src := newFakeSource()
	src.set(drepo.GranDaily, dailyObs(), nil)
	src.set(drepo.GranWeekly, []models.RawObservation{raw("2024-01-07T00:00:00Z", "300")}, nil)
	src.block(drepo.GranDaily)
	src.block(drepo.GranWeekly)

	m := newFakeMetrics()
	ctrl, snaps := newTestController(t, src, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	// supersede the outstanding daily fetch before it resolves
	ctrl.Select(drepo.GranWeekly)
	waitFor(t, snaps, func(s Snapshot) bool {
		return s.Status == StatusLoading && s.Granularity == drepo.GranWeekly
	})

	src.release(drepo.GranWeekly)
	waitFor(t, snaps, func(s Snapshot) bool { return s.Status == StatusSuccess })

	// the daily fetch now resolves late and must be dropped
	src.release(drepo.GranDaily)
	select {
	case g := <-m.stale:
		if g != "daily" {
			t.Fatalf("expected daily discard, got %s", g)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for stale discard")
	}

	s := ctrl.Snapshot()
	if s.Granularity != drepo.GranWeekly || s.Status != StatusSuccess {
		t.Fatalf("stale result overwrote state: %+v", s)
	}
	if len(s.Window) != 1 || s.Window[0].ClosePrice != 300 {
		t.Fatalf("stale result overwrote window: %+v", s.Window)
	}
}

func TestControllerFailureAndRetry(t *testing.T) {
	src := newFakeSource()
	src.set(drepo.GranDaily, nil, &models.TransportError{StatusCode: http.StatusServiceUnavailable})
	ctrl, snaps := newTestController(t, src, newFakeMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	s := waitFor(t, snaps, func(s Snapshot) bool { return s.Status == StatusError })
	if !strings.Contains(s.ErrorMessage, "503") {
		t.Fatalf("expected status code in message, got %q", s.ErrorMessage)
	}

	// controller stays responsive; retry re-issues the same granularity
	src.set(drepo.GranDaily, dailyObs(), nil)
	ctrl.Retry()
	s = waitFor(t, snaps, func(s Snapshot) bool { return s.Status == StatusSuccess })
	if s.Granularity != drepo.GranDaily || len(s.Window) != 2 {
		t.Fatalf("unexpected retry result %+v", s)
	}
}

func TestControllerCoercionFailure(t *testing.T) {
	src := newFakeSource()
	src.set(drepo.GranDaily, []models.RawObservation{raw("2024-01-01T00:00:00Z", "n/a")}, nil)
	ctrl, snaps := newTestController(t, src, newFakeMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	s := waitFor(t, snaps, func(s Snapshot) bool { return s.Status == StatusError })
	if !strings.Contains(s.ErrorMessage, "coerce") {
		t.Fatalf("expected coercion message, got %q", s.ErrorMessage)
	}
}

func TestControllerRetryIgnoredAfterSuccess(t *testing.T) {
	src := newFakeSource()
	src.set(drepo.GranDaily, dailyObs(), nil)
	ctrl, snaps := newTestController(t, src, newFakeMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)
	waitFor(t, snaps, func(s Snapshot) bool { return s.Status == StatusSuccess })

	ctrl.Retry()
	select {
	case s := <-snaps:
		t.Fatalf("retry outside Failed applied a transition: %+v", s)
	case <-time.After(150 * time.Millisecond):
	}
}
