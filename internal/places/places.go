// Package places wraps the destination-exploration and autocomplete
// endpoints. Responses are cached through an injected cache.Cache with
// an explicit invalidation call; there is no process-global cache.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/api"
	"github.com/dharmasatrya/flightpoll/internal/cache"
)

const defaultTTL = 30 * time.Minute

// Destination is one entry of the explore listing.
type Destination struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	MinPrice float64 `json:"min_price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Place is one autocomplete match.
type Place struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	City    string `json:"city,omitempty"`
	Country string `json:"country"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

func New(baseURL string, store cache.Cache, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      store,
		ttl:        defaultTTL,
		logger:     zap.NewNop(),
	}
	if c.cache == nil {
		c.cache = cache.NewNoOpCache()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Explore lists suggested destinations for a market, cache-first.
func (c *Client) Explore(ctx context.Context, country, language, currency string) ([]Destination, error) {
	key := destinationsKey(country, language, currency)
	if data, ok := c.cache.Get(ctx, key); ok {
		var cached []Destination
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.Debug("explore cache hit", zap.String("country", country))
			return cached, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	query := url.Values{}
	query.Set("country", country)
	query.Set("language", language)
	query.Set("currency", currency)

	var listing struct {
		Destinations []Destination `json:"destinations"`
	}
	if err := c.get(ctx, "explore", "/api/explore/", query, &listing); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(listing.Destinations); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
	}
	return listing.Destinations, nil
}

// Autocomplete searches places matching a free-text query.
func (c *Client) Autocomplete(ctx context.Context, search, country, language string) ([]Place, error) {
	query := url.Values{}
	query.Set("search", search)
	query.Set("country", country)
	query.Set("language", language)

	var matches struct {
		Places []Place `json:"places"`
	}
	if err := c.get(ctx, "autocomplete", "/api/autocomplete", query, &matches); err != nil {
		return nil, err
	}
	return matches.Places, nil
}

// InvalidateDestinations drops the cached explore listing for a market.
func (c *Client) InvalidateDestinations(ctx context.Context, country, language, currency string) error {
	return c.cache.Delete(ctx, destinationsKey(country, language, currency))
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &api.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &api.ServerError{Op: op, Status: resp.StatusCode, Body: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &api.DecodeError{Op: op, Err: err}
	}
	return nil
}

func destinationsKey(country, language, currency string) string {
	return cache.Key("explore", country, language, currency)
}
