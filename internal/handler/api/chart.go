package api

import (
	"math"

	models "ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/internal/handler/ws"
	"ChartFeed/internal/service/ratelimit"
	"ChartFeed/internal/usecase"
	xhttp "ChartFeed/pkg/http"
	xlogger "ChartFeed/pkg/logger"

	"github.com/labstack/echo/v4"
)

// selectBurst/selectRate bound how fast one client may flip timeframes.
const (
	selectBurst = 5
	selectRate  = 2
)

// ChartHandler exposes the chart pipeline to the render layer over Echo.
type ChartHandler struct {
	logger  *xlogger.Logger
	ctrl    *usecase.ChartController
	hub     *ws.Hub
	limiter *ratelimit.Limiter
}

func NewChartHandler(logger *xlogger.Logger, ctrl *usecase.ChartController, hub *ws.Hub, limiter *ratelimit.Limiter) *ChartHandler {
	return &ChartHandler{logger: logger, ctrl: ctrl, hub: hub, limiter: limiter}
}

func (h *ChartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/chart", h.Chart)
	g.POST("/chart/timeframe", h.SelectTimeframe)
	g.POST("/chart/retry", h.Retry)

	if h.hub != nil {
		e.GET("/ws/chart", h.hub.Serve)
	}
	e.GET("/healthz", h.Health)
}

// chartView is the render-boundary shape of a controller snapshot. Summary
// figures are rounded here and only here.
type chartView struct {
	Instrument  string              `json:"instrument"`
	Granularity string              `json:"granularity"`
	Status      string              `json:"status"`
	Window      []models.ChartPoint `json:"window"`
	Summary     *summaryView        `json:"summary,omitempty"`
	Error       string              `json:"error,omitempty"`
}

type summaryView struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Average float64 `json:"average"`
}

func (h *ChartHandler) Chart(c echo.Context) error {
	return xhttp.SuccessResponse(c, toView(h.ctrl.Snapshot()))
}

func (h *ChartHandler) SelectTimeframe(c echo.Context) error {
	req := &models.SelectTimeframeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.limiter.Allow("select:"+c.RealIP(), selectBurst, selectRate) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("timeframe changes too frequent"))
	}

	g := drepo.NormalizeGranularity(req.Granularity)
	h.ctrl.Select(g)
	h.logger.Info("timeframe selected", xlogger.String("granularity", string(g)))
	return xhttp.AcceptedResponse(c, toView(h.ctrl.Snapshot()))
}

func (h *ChartHandler) Retry(c echo.Context) error {
	h.ctrl.Retry()
	return xhttp.AcceptedResponse(c, toView(h.ctrl.Snapshot()))
}

func (h *ChartHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func toView(s usecase.Snapshot) chartView {
	v := chartView{
		Instrument:  s.Instrument,
		Granularity: string(s.Granularity),
		Status:      string(s.Status),
		Window:      s.Window,
		Error:       s.ErrorMessage,
	}
	if v.Window == nil {
		v.Window = []models.ChartPoint{}
	}
	if s.Summary != nil {
		v.Summary = &summaryView{
			Current: round2(s.Summary.Current),
			Max:     round2(s.Summary.Max),
			Min:     round2(s.Summary.Min),
			Average: round2(s.Summary.Average),
		}
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
