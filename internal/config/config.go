package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultForecastURL is the public MeteoAgent K-index widget endpoint.
const DefaultForecastURL = "https://api.meteoagent.com/widgets/v1/kindex"

// maxForecastDays caps the horizon; the widget never carries more than a
// month of forecast days.
const maxForecastDays = 31

// Config holds all service settings, populated from environment variables.
type Config struct {
	ForecastURL   string
	FetchInterval time.Duration
	FetchTimeout  time.Duration
	ForecastDays  int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka fan-out of published snapshots.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored for local
// development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	fetchInterval, err := parseDuration("FETCH_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	forecastDays, err := parseForecastDays()
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		ForecastURL:   envOrDefault("FORECAST_URL", DefaultForecastURL),
		FetchInterval: fetchInterval,
		FetchTimeout:  fetchTimeout,
		ForecastDays:  forecastDays,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "kindex-forecast-updates"),
	}

	if cfg.ForecastURL == "" {
		return nil, errors.New("FORECAST_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseForecastDays() (int, error) {
	s := envOrDefault("FORECAST_DAYS", "2")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxForecastDays {
		return 0, fmt.Errorf("invalid FORECAST_DAYS: %q (must be 1-%d)", s, maxForecastDays)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
