package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/filter"
	"github.com/dharmasatrya/flightpoll/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client talks to the flight search backend. It is a plain transport:
// it never retries and never interprets errors beyond typing them.
// Retry and continuation policy live in the orchestrator.
type Client struct {
	baseURL    string
	country    string
	httpClient *http.Client
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

// WithCountry sets the value of the country header sent on every call.
func WithCountry(country string) Option {
	return func(c *Client) {
		c.country = country
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the backend host, used as the rate limiter key.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Host == "" {
		return c.baseURL
	}
	return u.Host
}

type searchBody struct {
	Legs         []models.SearchLeg `json:"legs"`
	CabinClass   string             `json:"cabin_class"`
	Adults       int                `json:"adults"`
	ChildrenAges []int              `json:"children_ages"`
}

// CreateSearch submits an itinerary via POST /api/search/ and returns
// the handle the backend issued for it.
func (c *Client) CreateSearch(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, error) {
	const op = "create search"

	body := searchBody{
		Legs:         req.Legs,
		CabinClass:   req.CabinClass,
		Adults:       req.Adults,
		ChildrenAges: req.ChildrenAges,
	}
	if body.ChildrenAges == nil {
		body.ChildrenAges = []int{}
	}

	query := url.Values{}
	query.Set("user_id", req.UserID)
	query.Set("currency", req.Currency)
	query.Set("language", req.Language)
	query.Set("app_code", req.AppCode)

	country := req.Country
	if country == "" {
		country = c.country
	}

	var handle models.SearchHandle
	if err := c.post(ctx, op, "/api/search/", query, country, body, &handle); err != nil {
		return nil, err
	}

	c.logger.Debug("search created",
		zap.String("search_id", handle.SearchID),
		zap.Int("legs", len(req.Legs)))
	return &handle, nil
}

// Poll fetches one page of results for a search job via POST /api/poll/.
// A nil payload sends an empty filter body.
func (c *Client) Poll(ctx context.Context, handle models.SearchHandle, page, limit int, payload *filter.WirePayload) (*models.PollPage, error) {
	const op = "poll"

	query := url.Values{}
	query.Set("search_id", handle.SearchID)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var body any = struct{}{}
	if payload != nil {
		body = payload
	}

	var result models.PollPage
	if err := c.post(ctx, op, "/api/poll/", query, c.country, body, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("poll page received",
		zap.String("search_id", handle.SearchID),
		zap.Int("page", page),
		zap.Int("count", result.Count),
		zap.Bool("cache", result.Cache),
		zap.Int("results", len(result.Results)))
	return &result, nil
}

func (c *Client) post(ctx context.Context, op, path string, query url.Values, country string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if country != "" {
		req.Header.Set("country", country)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: op, Status: resp.StatusCode, Body: truncate(data, 512)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
