package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ballotmap/internal"
	"ballotmap/internal/config"
)

const maxFeedBytes = 32 << 20

var (
	ErrFeedStatus = errors.New("feed returned non-success status")
	ErrFeedShape  = errors.New("feed document is not a list of records")
	ErrNoIndex    = errors.New("no index has been built")
)

// wrapperKeys are the object keys under which a feed may nest its record list.
var wrapperKeys = []string{"data", "records", "candidates", "items"}

type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.FeedTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.FeedRateLimitRPS),
		logger:     logger,
	}
}

// FetchRecords downloads one feed document and returns its records. A failed
// request is not retried.
func (c *Client) FetchRecords(ctx context.Context, feedURL string) ([]internal.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d url=%s", ErrFeedStatus, resp.StatusCode, feedURL)
	}

	records, err := ParseFeedDocument(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	c.logger.Debug("feed fetched",
		zap.String("url", feedURL),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return records, nil
}

// ParseFeedDocument accepts a top-level JSON array of records or an object
// wrapping one. Entries that are not objects are skipped.
func ParseFeedDocument(body []byte) ([]internal.RawRecord, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	var items []any
	switch t := doc.(type) {
	case []any:
		items = t
	case map[string]any:
		for _, key := range wrapperKeys {
			if arr, ok := t[key].([]any); ok {
				items = arr
				break
			}
		}
		if items == nil {
			return nil, ErrFeedShape
		}
	default:
		return nil, ErrFeedShape
	}

	out := make([]internal.RawRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, internal.RawRecord(m))
		}
	}
	return out, nil
}
