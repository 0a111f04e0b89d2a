// Package pricefeed is the HTTP client for the upstream card price API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Card is a single card entry from the price feed.
type Card struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	TCGPlayer *TCGPlayer `json:"tcgplayer,omitempty"`
}

// TCGPlayer holds the per-variant price blocks for a card.
type TCGPlayer struct {
	UpdatedAt string                   `json:"updatedAt"`
	Prices    map[string]VariantPrices `json:"prices"`
}

// VariantPrices are the quoted prices for one finish variant.
type VariantPrices struct {
	Low       *float64 `json:"low"`
	Mid       *float64 `json:"mid"`
	High      *float64 `json:"high"`
	Market    *float64 `json:"market"`
	DirectLow *float64 `json:"directLow"`
}

// Best returns the most representative quote: market price when present,
// otherwise mid, low, high, directLow in that order. Nil when the variant
// has no usable quote at all.
func (v VariantPrices) Best() *float64 {
	for _, p := range []*float64{v.Market, v.Mid, v.Low, v.High, v.DirectLow} {
		if p != nil {
			return p
		}
	}
	return nil
}

// page is the envelope the feed wraps card data in.
type page struct {
	Data       []Card `json:"data"`
	TotalCount int    `json:"totalCount"`
}

// Client fetches cards from the price feed with Bearer auth and a client-side
// rate limit across all pages and endpoints.
type Client struct {
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a new price feed client. requestsPerSecond <= 0 disables the
// client-side rate limit.
func New(token string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		token:      token,
		limiter:    rate.NewLimiter(limit, 1),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchAll retrieves every page of the given endpoint and returns the
// combined card list.
func (c *Client) FetchAll(ctx context.Context, endpoint string) ([]Card, error) {
	var all []Card

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	for pageNum := 1; ; pageNum++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s%spage=%d", endpoint, sep, pageNum)
		pg, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", pageNum, err)
		}

		all = append(all, pg.Data...)

		if len(all) >= pg.TotalCount || len(pg.Data) == 0 {
			break
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var pg page
	if err := json.NewDecoder(resp.Body).Decode(&pg); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	return &pg, nil
}
