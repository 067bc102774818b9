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

// Default catalog resources on data.gov.in carrying daily mandi prices.
// Both republish Agmarknet reports with slightly different schemas.
const (
	defaultBaseURL   = "https://api.data.gov.in/resource"
	defaultResources = "9ef84268-d588-465a-a308-a864a43d0070,35985678-0d79-4abf-b6f2-c1bfd384ba69"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataGovAPIKey    string
	DataGovBaseURL   string
	DataGovResources []string

	DataDir   string
	HTTPAddr  string
	StaticDir string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	PipelineHour  int
	RetentionDays int

	FetchPageSize   int
	FetchMaxRecords int
	FetchPageDelay  time.Duration
	FetchTimeout    time.Duration
	LookupTimeout   time.Duration

	// Auth token signing. Empty secret disables token issuance.
	JWTSecret string

	// Optional Kafka publishing of normalized records.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	pageDelay, err := parseDuration("FETCH_PAGE_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	lookupTimeout, err := parseDuration("LOOKUP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	pipelineHour, err := parseInt("PIPELINE_HOUR", 2)
	if err != nil {
		return nil, err
	}
	retentionDays, err := parseInt("RETENTION_DAYS", 7)
	if err != nil {
		return nil, err
	}
	pageSize, err := parseInt("FETCH_PAGE_SIZE", 10000)
	if err != nil {
		return nil, err
	}
	maxRecords, err := parseInt("FETCH_MAX_RECORDS", 100000)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := splitList(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		DataGovAPIKey:    os.Getenv("DATA_GOV_API_KEY"),
		DataGovBaseURL:   envOrDefault("DATA_GOV_BASE_URL", defaultBaseURL),
		DataGovResources: splitList(envOrDefault("DATA_GOV_RESOURCES", defaultResources)),

		DataDir:   envOrDefault("DATA_DIR", "daily_market_data"),
		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		StaticDir: os.Getenv("STATIC_DIR"),

		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PipelineHour:  pipelineHour,
		RetentionDays: retentionDays,

		FetchPageSize:   pageSize,
		FetchMaxRecords: maxRecords,
		FetchPageDelay:  pageDelay,
		FetchTimeout:    fetchTimeout,
		LookupTimeout:   lookupTimeout,

		JWTSecret: os.Getenv("JWT_SECRET"),

		KafkaBrokers:   kafkaBrokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "market-records"),
		KafkaEnabled:   len(kafkaBrokers) > 0,
	}

	if cfg.DataGovAPIKey == "" {
		return nil, errors.New("DATA_GOV_API_KEY is required")
	}
	if len(cfg.DataGovResources) == 0 {
		return nil, errors.New("DATA_GOV_RESOURCES must list at least one resource")
	}
	if cfg.PipelineHour < 0 || cfg.PipelineHour > 23 {
		return nil, errors.New("PIPELINE_HOUR must be in [0, 23]")
	}
	if cfg.RetentionDays < 1 {
		return nil, errors.New("RETENTION_DAYS must be at least 1")
	}
	if cfg.FetchPageSize < 1 || cfg.FetchMaxRecords < cfg.FetchPageSize {
		return nil, errors.New("FETCH_MAX_RECORDS must be >= FETCH_PAGE_SIZE >= 1")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
