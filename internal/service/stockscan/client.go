package stockscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/internal/service/cache"
	xhttp "ChartFeed/pkg/http"
	xlogger "ChartFeed/pkg/logger"
)

// Client implements a CandleSource backed by the stockscan chart API.
type Client struct {
	httpc    *xhttp.Client
	baseURL  string
	exchange string
	logger   *xlogger.Logger

	cache    cache.BytesCache
	cacheTTL time.Duration
}

type Option func(*Client)

// WithCache enables a read-through cache over raw response bodies.
func WithCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// New creates a new stockscan CandleSource.
func New(baseURL, exchange string, timeout time.Duration, logger *xlogger.Logger, opts ...Option) drepo.CandleSource {
	c := &Client{
		httpc:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL:  baseURL,
		exchange: exchange,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type candleResponse struct {
	Candles []models.RawObservation `json:"candles"`
}

// FetchObservations retrieves the raw candle records for one
// (instrument, granularity) pair. A missing "candles" field yields an empty
// list; a non-success status yields a TransportError carrying the code.
func (c *Client) FetchObservations(ctx context.Context, instrument string, g drepo.Granularity) ([]models.RawObservation, error) {
	key := fmt.Sprintf("candles:%s:%s", instrument, g)

	body, hit := c.cachedBody(key)
	if !hit {
		var err error
		body, err = c.fetchBody(ctx, instrument, g)
		if err != nil {
			return nil, err
		}
		c.storeBody(key, body)
	}

	var parsed candleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// malformed bodies degrade to an empty window rather than a failure
		c.logger.Warn("stockscan: unparseable response body",
			xlogger.String("instrument", instrument),
			xlogger.String("granularity", string(g)),
			xlogger.Error(err),
		)
		return []models.RawObservation{}, nil
	}
	if parsed.Candles == nil {
		return []models.RawObservation{}, nil
	}
	return parsed.Candles, nil
}

func (c *Client) fetchBody(ctx context.Context, instrument string, g drepo.Granularity) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, instrument, g, c.exchange)

	resp, err := c.httpc.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.TransportError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) cachedBody(key string) ([]byte, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := c.cache.GetBytes(key)
	if err != nil {
		c.logger.Warn("stockscan: cache read failed", xlogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (c *Client) storeBody(key string, body []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.SetBytes(key, body, c.cacheTTL); err != nil {
		c.logger.Warn("stockscan: cache write failed", xlogger.Error(err))
	}
}
