// Package mockapi is a development stand-in for the flight search
// backend. It honors the production contract closely enough to exercise
// the full client core against it: incremental cache completion, the
// page-2 404 window right after search creation, and the 400 on an
// explicit "best" sort.
package mockapi

import (
	"hash/fnv"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/filter"
	"github.com/dharmasatrya/flightpoll/internal/models"
	"github.com/dharmasatrya/flightpoll/internal/ranking"
)

type Config struct {
	// Warmup is how long a search job reports cache=false, with results
	// becoming visible gradually across that window.
	Warmup time.Duration

	// PageTwoFailWindow is how long page 2 of a fresh job 404s,
	// mirroring the production quirk the client works around.
	PageTwoFailWindow time.Duration

	// ResultCount is the declared total per job.
	ResultCount int
}

func DefaultConfig() Config {
	return Config{
		Warmup:            6 * time.Second,
		PageTwoFailWindow: 2 * time.Second,
		ResultCount:       42,
	}
}

type searchJob struct {
	createdAt  time.Time
	legs       []models.SearchLeg
	passengers int
	results    []models.FlightResult
}

type Server struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*searchJob
}

func NewServer(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = DefaultConfig().ResultCount
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*searchJob),
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/api/search/", s.CreateSearch)
	e.POST("/api/poll/", s.Poll)
	e.GET("/api/autocomplete", s.Autocomplete)
	e.GET("/api/explore/", s.Explore)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

type createBody struct {
	Legs         []models.SearchLeg `json:"legs"`
	CabinClass   string             `json:"cabin_class"`
	Adults       int                `json:"adults"`
	ChildrenAges []int              `json:"children_ages"`
}

func (s *Server) CreateSearch(c echo.Context) error {
	var body createBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if len(body.Legs) == 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "at least one leg is required",
			Code:    http.StatusBadRequest,
		})
	}

	searchID := uuid.NewString()
	job := &searchJob{
		createdAt:  s.now(),
		legs:       body.Legs,
		passengers: body.Adults + len(body.ChildrenAges),
		results:    generateResults(body.Legs, seedFor(searchID), s.cfg.ResultCount),
	}

	s.mu.Lock()
	s.jobs[searchID] = job
	s.mu.Unlock()

	s.logger.Info("search job created",
		zap.String("search_id", searchID),
		zap.Int("legs", len(body.Legs)))

	currency := c.QueryParam("currency")
	if currency == "" {
		currency = "INR"
	}
	language := c.QueryParam("language")
	if language == "" {
		language = "en"
	}

	return c.JSON(http.StatusOK, models.SearchHandle{
		SearchID: searchID,
		Language: language,
		Currency: currency,
		Mode:     "live",
		CurrencyInfo: models.CurrencyInfo{
			Code:               currency,
			Symbol:             "₹",
			ThousandsSeparator: ",",
			DecimalSeparator:   ".",
			DecimalDigits:      0,
			SymbolOnLeft:       true,
		},
	})
}

func (s *Server) Poll(c echo.Context) error {
	searchID := c.QueryParam("search_id")
	page := intParam(c, "page", 1)
	limit := intParam(c, "limit", 8)

	s.mu.Lock()
	job, ok := s.jobs[searchID]
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "unknown search_id",
			Code:    http.StatusNotFound,
		})
	}

	age := s.now().Sub(job.createdAt)

	// Fresh jobs briefly 404 on page 2; the client retries through it.
	if page == 2 && age < s.cfg.PageTwoFailWindow {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "page not yet available",
			Code:    http.StatusNotFound,
		})
	}

	var payload filter.WirePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "failed to parse filter body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if payload.SortBy != nil && *payload.SortBy == string(filter.SortBest) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_sort",
			Message: `"best" is the default sort and must not be sent explicitly`,
			Code:    http.StatusBadRequest,
		})
	}

	cacheDone := age >= s.cfg.Warmup
	visible := job.results
	if !cacheDone && s.cfg.Warmup > 0 {
		n := int(float64(len(job.results)) * (float64(age) / float64(s.cfg.Warmup)))
		if n > len(job.results) {
			n = len(job.results)
		}
		visible = job.results[:n]
	}

	filtered := applyFilter(visible, &payload)

	start := (page - 1) * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	pageResults := filtered[start:end]

	var next, previous *string
	if end < len(filtered) {
		v := strconv.Itoa(page + 1)
		next = &v
	}
	if page > 1 {
		v := strconv.Itoa(page - 1)
		previous = &v
	}

	total := len(applyFilter(job.results, &payload))
	cheapest, best, fastest := ranking.Highlights(filtered)
	airlines, agencyFacets := buildFacets(filtered)
	minDur, maxDur, minPrice, maxPrice := bounds(filtered)

	return c.JSON(http.StatusOK, models.PollPage{
		Count:          total,
		Next:           next,
		Previous:       previous,
		Cache:          cacheDone,
		PassengerCount: job.passengers,
		MinDuration:    minDur,
		MaxDuration:    maxDur,
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		Airlines:       airlines,
		Agencies:       agencyFacets,
		CheapestFlight: cheapest,
		BestFlight:     best,
		FastestFlight:  fastest,
		Results:        pageResults,
	})
}

var places = []struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	City    string `json:"city,omitempty"`
	Country string `json:"country"`
}{
	{"DEL", "Indira Gandhi International", "airport", "New Delhi", "IN"},
	{"BOM", "Chhatrapati Shivaji Maharaj International", "airport", "Mumbai", "IN"},
	{"BLR", "Kempegowda International", "airport", "Bengaluru", "IN"},
	{"MAA", "Chennai International", "airport", "Chennai", "IN"},
	{"GOI", "Goa Dabolim", "airport", "Goa", "IN"},
	{"CCU", "Netaji Subhas Chandra Bose International", "airport", "Kolkata", "IN"},
	{"DXB", "Dubai International", "airport", "Dubai", "AE"},
	{"SIN", "Changi", "airport", "Singapore", "SG"},
}

func (s *Server) Autocomplete(c echo.Context) error {
	search := strings.ToLower(c.QueryParam("search"))

	matches := make([]any, 0)
	for _, p := range places {
		if search == "" ||
			strings.HasPrefix(strings.ToLower(p.Code), search) ||
			strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.City), search) {
			matches = append(matches, p)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"places": matches})
}

func (s *Server) Explore(c echo.Context) error {
	currency := c.QueryParam("currency")
	if currency == "" {
		currency = "INR"
	}

	destinations := make([]map[string]any, 0, len(places))
	for i, p := range places {
		if p.Type != "airport" {
			continue
		}
		destinations = append(destinations, map[string]any{
			"code":      p.Code,
			"name":      p.City,
			"country":   p.Country,
			"min_price": float64(2500 + i*800),
			"currency":  currency,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"destinations": destinations})
}

func applyFilter(results []models.FlightResult, p *filter.WirePayload) []models.FlightResult {
	out := make([]models.FlightResult, 0, len(results))
	for _, r := range results {
		if p.MaxStops != nil && totalStops(r) > *p.MaxStops {
			continue
		}
		if p.MaxDuration != nil && r.DurationMinutes > *p.MaxDuration {
			continue
		}
		if p.PriceMin != nil && r.MinPrice < *p.PriceMin {
			continue
		}
		if p.PriceMax != nil && r.MinPrice > *p.PriceMax {
			continue
		}
		if len(p.Airlines) > 0 && !carriesAny(r, p.Airlines) {
			continue
		}
		if len(p.ExcludeAirlines) > 0 && carriesAny(r, p.ExcludeAirlines) {
			continue
		}
		out = append(out, r)
	}

	if p.SortBy != nil {
		asc := p.SortOrder == nil || *p.SortOrder != string(filter.OrderDesc)
		switch *p.SortBy {
		case string(filter.SortPrice):
			sort.SliceStable(out, func(i, j int) bool {
				if asc {
					return out[i].MinPrice < out[j].MinPrice
				}
				return out[i].MinPrice > out[j].MinPrice
			})
		case string(filter.SortDuration):
			sort.SliceStable(out, func(i, j int) bool {
				if asc {
					return out[i].DurationMinutes < out[j].DurationMinutes
				}
				return out[i].DurationMinutes > out[j].DurationMinutes
			})
		}
	}
	return out
}

func totalStops(r models.FlightResult) int {
	stops := 0
	for _, leg := range r.Legs {
		stops += leg.Stops
	}
	return stops
}

func carriesAny(r models.FlightResult, codes []string) bool {
	for _, leg := range r.Legs {
		for _, seg := range leg.Segments {
			for _, code := range codes {
				if strings.EqualFold(seg.Carrier, code) {
					return true
				}
			}
		}
	}
	return false
}

func bounds(results []models.FlightResult) (minDur, maxDur int, minPrice, maxPrice float64) {
	for i, r := range results {
		if i == 0 || r.DurationMinutes < minDur {
			minDur = r.DurationMinutes
		}
		if r.DurationMinutes > maxDur {
			maxDur = r.DurationMinutes
		}
		if i == 0 || r.MinPrice < minPrice {
			minPrice = r.MinPrice
		}
		if r.MinPrice > maxPrice {
			maxPrice = r.MinPrice
		}
	}
	return minDur, maxDur, minPrice, maxPrice
}

func seedFor(searchID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(searchID))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func intParam(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
