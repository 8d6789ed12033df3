// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package catalog talks to the external POS catalog API.
//
// The client layers three resilience mechanisms, applied in order:
//   - Outbound pacing: a token-bucket limiter keeps request rate under
//     the source's documented limit before a request is even sent.
//   - Rate limit recovery: HTTP 429 responses trigger exponential
//     backoff (1s, 2s, 4s, 8s, 16s), honoring Retry-After, max 5 retries.
//   - Circuit breaker: repeated failures open the breaker so a dead
//     source fails fast instead of burning the request budget.
//
// All methods accept a context and are safe for concurrent use.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tablewise/menucast/internal/config"
	"github.com/tablewise/menucast/internal/logging"
)

// maxErrorBodySize limits how much of an error response body is read
// for diagnostics, preventing unbounded allocation on large bodies.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Source is the catalog source contract consumed by the sync engine.
// Implemented by Client for production and by fakes in tests.
type Source interface {
	Ping(ctx context.Context) error
	ListItems(ctx context.Context) ([]SourceItem, error)
}

// Client fetches the item catalog from the POS source API.
type Client struct {
	baseURL        string
	token          string
	pageSize       int
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a catalog client from the source configuration.
func NewClient(cfg *config.CatalogConfig) *Client {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  cfg.URL,
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:     5,
		retryBaseDelay: 1 * time.Second,
	}
}

// doRequestWithRateLimit performs a GET with outbound pacing and
// automatic HTTP 429 recovery. The context cancels backoff waits too.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close() // will retry anyway

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		// Exponential backoff: 1s, 2s, 4s, 8s, 16s.
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

		// Retry-After (RFC 6585) overrides the computed delay.
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// Ping verifies connectivity and credentials against the source.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doRequestWithRateLimit(ctx, c.baseURL+"/v2/catalog/info")
	if err != nil {
		return fmt.Errorf("failed to ping catalog source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog source ping failed with status: %d", resp.StatusCode)
	}
	return nil
}

// ListItems fetches one bounded page of the item catalog, sized by the
// configured page size. A continuation cursor in the response is not
// followed; the sync always works from this single snapshot.
func (c *Client) ListItems(ctx context.Context) ([]SourceItem, error) {
	page, err := c.fetchPage(ctx)
	if err != nil {
		return nil, err
	}

	if page.Cursor != "" {
		logging.Warn().
			Int("page_size", c.pageSize).
			Msg("Catalog exceeds page size, remainder not fetched")
	}

	items := make([]SourceItem, 0, len(page.Items))
	for _, raw := range page.Items {
		var item SourceItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode catalog item: %w", err)
		}
		if item.ID == "" {
			return nil, fmt.Errorf("catalog item missing id")
		}
		item.Raw = raw
		items = append(items, item)
	}

	return items, nil
}

// fetchPage requests the catalog listing page.
func (c *Client) fetchPage(ctx context.Context) (*itemsPage, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", c.pageSize))
	params.Set("sort", "asc")

	reqURL := fmt.Sprintf("%s/v2/catalog/items?%s", c.baseURL, params.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("catalog items request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var page itemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode catalog items response: %w", err)
	}
	return &page, nil
}
