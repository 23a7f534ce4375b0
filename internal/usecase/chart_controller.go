package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	xlogger "ChartFeed/pkg/logger"
)

// FetchStatus describes the controller state for the active granularity.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusSuccess FetchStatus = "success"
	StatusError   FetchStatus = "error"
)

// Snapshot is a consistent view of the controller state for the render
// boundary. The window slice is recreated wholesale on every successful
// fetch and never mutated, so sharing it is safe.
type Snapshot struct {
	Instrument   string                    `json:"instrument"`
	Granularity  drepo.Granularity         `json:"granularity"`
	Status       FetchStatus               `json:"status"`
	Window       []models.ChartPoint       `json:"window"`
	Summary      *models.SummaryStatistics `json:"summary,omitempty"`
	ErrorMessage string                    `json:"error,omitempty"`
}

type eventKind int

const (
	evSelect eventKind = iota
	evRetry
)

type controllerEvent struct {
	kind eventKind
	g    drepo.Granularity
}

// fetchResult carries the granularity the fetch was issued for. The run loop
// compares it against the active granularity at resolution time; a mismatch
// means a newer selection superseded the fetch and the result is dropped.
type fetchResult struct {
	g       drepo.Granularity
	window  []models.ChartPoint
	summary *models.SummaryStatistics
	err     error
}

// ChartController governs which granularity is active, issues a fetch per
// selection, and arbitrates between an in-flight request and a newer one.
// All transitions are applied by a single run-loop goroutine.
type ChartController struct {
	source      drepo.CandleSource
	metrics     drepo.Metrics
	logger      *xlogger.Logger
	instrument  string
	windowSize  int
	defaultGran drepo.Granularity

	events  chan controllerEvent
	results chan fetchResult

	mu        sync.RWMutex
	snap      Snapshot
	observers []func(Snapshot)

	// touched only from Start and the run loop
	cancelInflight context.CancelFunc
}

type ControllerOption func(*ChartController)

// WithWindowSize overrides the default chart window bound.
func WithWindowSize(n int) ControllerOption {
	return func(c *ChartController) {
		if n > 0 {
			c.windowSize = n
		}
	}
}

// WithDefaultGranularity overrides the granularity fetched on Start.
func WithDefaultGranularity(g drepo.Granularity) ControllerOption {
	return func(c *ChartController) {
		if drepo.IsValidGranularity(g) {
			c.defaultGran = g
		}
	}
}

// NewChartController creates a controller in the idle state for instrument.
func NewChartController(source drepo.CandleSource, metrics drepo.Metrics, logger *xlogger.Logger, instrument string, opts ...ControllerOption) *ChartController {
	c := &ChartController{
		source:      source,
		metrics:     metrics,
		logger:      logger,
		instrument:  instrument,
		windowSize:  DefaultWindowSize,
		defaultGran: drepo.DefaultGranularity(),
		events:      make(chan controllerEvent, 16),
		results:     make(chan fetchResult, 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snap = Snapshot{
		Instrument:  instrument,
		Granularity: c.defaultGran,
		Status:      StatusIdle,
	}
	return c
}

// OnChange registers an observer notified after every applied transition.
// Observers must be registered before Start.
func (c *ChartController) OnChange(fn func(Snapshot)) {
	c.observers = append(c.observers, fn)
}

// Start moves the controller to Loading for the default granularity, issues
// the first fetch, and launches the run loop. It returns immediately.
func (c *ChartController) Start(ctx context.Context) {
	g := c.defaultGran
	c.setLoading(g)
	c.beginFetch(ctx, g)
	go c.run(ctx)
}

// Select requests a switch to granularity g. This is the only externally
// triggered transition.
func (c *ChartController) Select(g drepo.Granularity) {
	c.events <- controllerEvent{kind: evSelect, g: g}
}

// Retry re-issues the fetch for the current granularity after a failure.
func (c *ChartController) Retry() {
	c.events <- controllerEvent{kind: evRetry}
}

// Snapshot returns the current controller state.
func (c *ChartController) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *ChartController) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if c.cancelInflight != nil {
				c.cancelInflight()
			}
			return
		case ev := <-c.events:
			c.applyEvent(ctx, ev)
		case r := <-c.results:
			c.applyResult(r)
		}
	}
}

func (c *ChartController) applyEvent(ctx context.Context, ev controllerEvent) {
	switch ev.kind {
	case evSelect:
		if !drepo.IsValidGranularity(ev.g) {
			c.logger.Warn("select ignored: unknown granularity", xlogger.String("granularity", string(ev.g)))
			return
		}
		// best-effort transport cancellation; the granularity tag below is
		// what actually guarantees stale results never land
		if c.cancelInflight != nil {
			c.cancelInflight()
		}
		c.setLoading(ev.g)
		c.beginFetch(ctx, ev.g)
	case evRetry:
		snap := c.Snapshot()
		if snap.Status != StatusError {
			return
		}
		c.setLoading(snap.Granularity)
		c.beginFetch(ctx, snap.Granularity)
	}
}

func (c *ChartController) beginFetch(ctx context.Context, g drepo.Granularity) {
	fctx, cancel := context.WithCancel(ctx)
	c.cancelInflight = cancel

	go func() {
		defer cancel()
		start := time.Now()
		raw, err := c.source.FetchObservations(fctx, c.instrument, g)
		c.metrics.RecordFetchDuration(string(g), time.Since(start).Seconds())

		res := fetchResult{g: g}
		if err != nil {
			res.err = err
		} else if res.window, err = NormalizeWindow(raw, g, c.windowSize); err != nil {
			res.err = err
			res.window = nil
		} else if s, ok := Summarize(res.window); ok {
			res.summary = &s
		}

		select {
		case c.results <- res:
		case <-ctx.Done():
		}
	}()
}

func (c *ChartController) applyResult(r fetchResult) {
	active := c.Snapshot().Granularity
	if r.g != active {
		c.metrics.RecordStaleDiscard(string(r.g))
		c.logger.Debug("stale fetch result discarded",
			xlogger.String("fetched", string(r.g)),
			xlogger.String("active", string(active)),
		)
		return
	}

	if r.err != nil {
		c.metrics.RecordFetchError(errorKind(r.err))
		c.logger.Error("candle fetch failed",
			xlogger.String("granularity", string(r.g)),
			xlogger.Error(r.err),
		)
		c.update(func(s *Snapshot) {
			s.Status = StatusError
			s.ErrorMessage = fmt.Sprintf("could not load %s candles: %v", r.g, r.err)
		})
		return
	}

	c.metrics.RecordWindowSize(string(r.g), len(r.window))
	if r.summary != nil {
		c.metrics.RecordLastClose(c.instrument, r.summary.Current)
	}
	c.update(func(s *Snapshot) {
		s.Status = StatusSuccess
		s.Window = r.window
		s.Summary = r.summary
		s.ErrorMessage = ""
	})
}

func (c *ChartController) setLoading(g drepo.Granularity) {
	c.update(func(s *Snapshot) {
		s.Granularity = g
		s.Status = StatusLoading
		s.ErrorMessage = ""
	})
}

func (c *ChartController) update(mutate func(*Snapshot)) {
	c.mu.Lock()
	mutate(&c.snap)
	snap := c.snap
	c.mu.Unlock()

	for _, fn := range c.observers {
		fn(snap)
	}
}

func errorKind(err error) string {
	var te *models.TransportError
	if errors.As(err, &te) {
		return "transport"
	}
	var ce *models.CoercionError
	if errors.As(err, &ce) {
		return "coercion"
	}
	return "network"
}
