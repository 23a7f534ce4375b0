package usecase

import (
	"sort"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/pkg/util"
)

// DefaultWindowSize bounds the chart window to the most recent observations.
const DefaultWindowSize = 50

// Normalize converts raw quote records into a chart-ready window of at most
// DefaultWindowSize points.
func Normalize(raw []models.RawObservation, g drepo.Granularity) ([]models.ChartPoint, error) {
	return NormalizeWindow(raw, g, DefaultWindowSize)
}

// NormalizeWindow is Normalize with an explicit window bound. It is a pure
// function of its inputs: labels are formatted per granularity, prices and
// timestamps are coerced strictly, points are sorted ascending by source
// timestamp, and only then truncated to the most recent size points.
func NormalizeWindow(raw []models.RawObservation, g drepo.Granularity, size int) ([]models.ChartPoint, error) {
	points := make([]models.ChartPoint, 0, len(raw))
	for _, r := range raw {
		ts, ok := util.ParseTime(r.Date.String())
		if !ok {
			return nil, &models.CoercionError{Field: "date", Value: r.Date.String()}
		}
		price, ok := util.ParseFloat(r.Close.String())
		if !ok {
			return nil, &models.CoercionError{Field: "close", Value: r.Close.String()}
		}
		points = append(points, models.ChartPoint{
			DisplayLabel:    FormatLabel(ts, g),
			ClosePrice:      price,
			SourceTimestamp: ts,
		})
	}

	// labels are lossy and not comparable across granularities; only the
	// source timestamp orders the window
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].SourceTimestamp.Before(points[j].SourceTimestamp)
	})

	if size > 0 && len(points) > size {
		points = points[len(points)-size:]
	}
	return points, nil
}

// FormatLabel renders the display label for one observation. Hourly charts
// need intraday precision; everything coarser reads as month+day.
func FormatLabel(t time.Time, g drepo.Granularity) string {
	if g == drepo.GranHourly {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Jan 2")
}
