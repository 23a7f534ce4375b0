package repository

import (
	"context"

	"ChartFeed/internal/domain/models"
)

// CandleSource issues one retrieval per (instrument, granularity) pair
// against the external quote service. It performs no retries and holds no
// shared state.
type CandleSource interface {
	FetchObservations(ctx context.Context, instrument string, g Granularity) ([]models.RawObservation, error)
}

type Metrics interface {
	RecordFetchDuration(granularity string, seconds float64)
	RecordFetchError(kind string)
	RecordStaleDiscard(granularity string)
	RecordWindowSize(granularity string, n int)
	RecordLastClose(instrument string, price float64)
}
