package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/mockapi"
)

type Config struct {
	Port              string
	Warmup            time.Duration
	PageTwoFailWindow time.Duration
	ResultCount       int
	Debug             bool
}

func main() {
	cfg := loadConfig()

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	server := mockapi.NewServer(mockapi.Config{
		Warmup:            cfg.Warmup,
		PageTwoFailWindow: cfg.PageTwoFailWindow,
		ResultCount:       cfg.ResultCount,
	}, logger)
	server.Register(e)

	logger.Info("starting mock flight API",
		zap.String("port", cfg.Port),
		zap.Duration("warmup", cfg.Warmup),
		zap.Int("result_count", cfg.ResultCount))

	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func loadConfig() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		Warmup:            getEnvDuration("WARMUP", 6*time.Second),
		PageTwoFailWindow: getEnvDuration("PAGE_TWO_FAIL_WINDOW", 2*time.Second),
		ResultCount:       getEnvInt("RESULT_COUNT", 42),
		Debug:             getEnvBool("DEBUG", false),
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

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
