// Command flightpoll runs one orchestrated flight search from the
// terminal: it submits the itinerary, consumes the status stream while
// the backend computes, pages through until every declared result has
// arrived, and prints the accumulated results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/api"
	"github.com/dharmasatrya/flightpoll/internal/cache"
	"github.com/dharmasatrya/flightpoll/internal/filter"
	"github.com/dharmasatrya/flightpoll/internal/models"
	"github.com/dharmasatrya/flightpoll/internal/orchestrator"
	"github.com/dharmasatrya/flightpoll/internal/places"
	"github.com/dharmasatrya/flightpoll/internal/ratelimit"
	"github.com/dharmasatrya/flightpoll/internal/session"
	"github.com/dharmasatrya/flightpoll/pkg/currency"
)

type Config struct {
	BaseURL      string
	Country      string
	Currency     string
	Language     string
	AppCode      string
	CacheEnabled bool
	RedisHost    string
	RedisPort    string
	Debug        bool
}

func main() {
	origin := flag.String("origin", "", "origin airport code")
	destination := flag.String("destination", "", "destination airport code")
	date := flag.String("date", "", "departure date (YYYY-MM-DD)")
	returnDate := flag.String("return", "", "return date (YYYY-MM-DD), empty for one-way")
	adults := flag.Int("adults", 1, "adult passenger count")
	childrenAges := flag.String("children-ages", "", "comma-separated child ages")
	cabin := flag.String("cabin", "economy", "cabin class")
	sortBy := flag.String("sort", "", "sort key: price or duration (empty for best)")
	maxStops := flag.Int("max-stops", -1, "maximum stops, -1 for no limit")
	timeout := flag.Duration("timeout", 90*time.Second, "overall deadline")
	explore := flag.Bool("explore", false, "list suggested destinations instead of searching")
	flag.Parse()

	cfg := loadConfig()

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store := buildCache(cfg, logger)
	defer store.Close()

	if *explore {
		runExplore(ctx, cfg, store, logger)
		return
	}

	if *origin == "" || *destination == "" || *date == "" {
		fmt.Fprintln(os.Stderr, "origin, destination and date are required")
		flag.Usage()
		os.Exit(2)
	}

	client := api.New(cfg.BaseURL,
		api.WithCountry(cfg.Country),
		api.WithLogger(logger))

	limiter := ratelimit.NewHostLimiterWithDefaults()

	orchCfg := orchestrator.DefaultConfig()
	orchCfg.RateLimiter = limiter
	orchCfg.RateKey = client.Host()

	sess := session.New(client, orchCfg, session.WithLogger(logger))
	defer sess.Close()

	req := buildRequest(cfg, *origin, *destination, *date, *returnDate, *adults, *childrenAges, *cabin)

	spec := buildFilter(*sortBy, *maxStops)
	if spec != nil {
		if err := sess.ApplyFilter(ctx, spec); err != nil {
			logger.Fatal("apply filter", zap.Error(err))
		}
	}

	handle, err := sess.Start(ctx, req)
	if err != nil {
		logger.Fatal("start search", zap.Error(err))
	}
	fmt.Printf("search %s created, polling...\n", handle.SearchID)

	final, err := consume(ctx, sess)
	if err != nil {
		logger.Fatal("search failed", zap.Error(err))
	}

	printResults(final, handle.CurrencyInfo)
}

// consume drains the status stream, requesting the next page whenever
// the orchestrator is idle with more data declared, until the session
// reaches a terminal phase.
func consume(ctx context.Context, sess *session.Session) (orchestrator.Status, error) {
	for {
		select {
		case st := <-sess.Updates():
			switch st.Phase {
			case orchestrator.PhaseWaitingBackend:
				fmt.Printf("backend computing... %d/%d results so far\n",
					st.State.LoadedCount, st.State.DeclaredTotal)
			case orchestrator.PhaseAccumulating:
				fmt.Printf("loaded %d/%d results\n",
					st.State.LoadedCount, st.State.DeclaredTotal)
				if !st.Loading {
					sess.LoadMore()
				}
			case orchestrator.PhaseStopped:
				return st, nil
			case orchestrator.PhaseFailed:
				return st, st.Err
			}
		case <-ctx.Done():
			return sess.Snapshot(), ctx.Err()
		}
	}
}

func printResults(st orchestrator.Status, info models.CurrencyInfo) {
	fmt.Printf("\n%d results (declared %d)\n\n", st.State.LoadedCount, st.State.DeclaredTotal)

	display := currency.Info{
		Code:               info.Code,
		Symbol:             info.Symbol,
		ThousandsSeparator: info.ThousandsSeparator,
		DecimalSeparator:   info.DecimalSeparator,
		DecimalDigits:      info.DecimalDigits,
		SymbolOnLeft:       info.SymbolOnLeft,
	}

	for _, r := range st.State.Results {
		var route []string
		for _, leg := range r.Legs {
			route = append(route, fmt.Sprintf("%s→%s (%d stops)", leg.Origin, leg.Destination, leg.Stops))
		}
		fmt.Printf("%-14s %s  %3dh%02dm  from %s\n",
			r.ID,
			strings.Join(route, ", "),
			r.DurationMinutes/60, r.DurationMinutes%60,
			currency.Format(r.MinPrice, display))
	}
}

func runExplore(ctx context.Context, cfg Config, store cache.Cache, logger *zap.Logger) {
	pl := places.New(cfg.BaseURL, store, places.WithLogger(logger))
	destinations, err := pl.Explore(ctx, cfg.Country, cfg.Language, cfg.Currency)
	if err != nil {
		logger.Fatal("explore", zap.Error(err))
	}
	for _, d := range destinations {
		fmt.Printf("%-4s %-20s from %.0f %s\n", d.Code, d.Name, d.MinPrice, d.Currency)
	}
}

func buildRequest(cfg Config, origin, destination, date, returnDate string, adults int, childrenAges, cabin string) models.SearchRequest {
	legs := []models.SearchLeg{{Origin: origin, Destination: destination, Date: date}}
	tripType := models.TripOneWay
	if returnDate != "" {
		legs = append(legs, models.SearchLeg{Origin: destination, Destination: origin, Date: returnDate})
		tripType = models.TripRoundTrip
	}

	return models.SearchRequest{
		Legs:         legs,
		TripType:     tripType,
		Adults:       adults,
		ChildrenAges: parseAges(childrenAges),
		CabinClass:   cabin,
		Currency:     cfg.Currency,
		Language:     cfg.Language,
		Country:      cfg.Country,
		AppCode:      cfg.AppCode,
	}
}

func buildFilter(sortBy string, maxStops int) *filter.Spec {
	spec := &filter.Spec{}
	switch sortBy {
	case "price":
		k := filter.SortPrice
		spec.SortBy = &k
	case "duration":
		k := filter.SortDuration
		spec.SortBy = &k
	}
	if maxStops >= 0 {
		spec.MaxStops = &maxStops
	}
	if spec.IsZero() {
		return nil
	}
	return spec
}

func buildCache(cfg Config, logger *zap.Logger) cache.Cache {
	if !cfg.CacheEnabled {
		return cache.NewNoOpCache()
	}
	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host: cfg.RedisHost,
		Port: cfg.RedisPort,
	})
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	return redisCache
}

func parseAges(s string) []int {
	if s == "" {
		return nil
	}
	var ages []int
	for _, part := range strings.Split(s, ",") {
		age, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ages = append(ages, age)
	}
	return ages
}

func loadConfig() Config {
	return Config{
		BaseURL:      getEnv("API_BASE_URL", "http://localhost:8080"),
		Country:      getEnv("COUNTRY", "IN"),
		Currency:     getEnv("CURRENCY", "INR"),
		Language:     getEnv("LANGUAGE", "en"),
		AppCode:      getEnv("APP_CODE", "flightpoll"),
		CacheEnabled: getEnvBool("CACHE_ENABLED", false),
		RedisHost:    getEnv("REDIS_HOST", "localhost"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		Debug:        getEnvBool("DEBUG", false),
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}
