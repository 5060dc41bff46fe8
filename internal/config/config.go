// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything outside the database connection settings.
type Config struct {
	Port      string
	JWTSecret string

	// Inference service for embeddings, sentiment, NER and token analysis.
	InferenceURL     string
	InferenceAPIKey  string
	InferenceTimeout time.Duration

	// Filesystem location for trained topic model artifacts.
	ModelDir string

	// Topic model strategy: "lda" or "cluster".
	TopicStrategy string

	// News API ingestion.
	NewsAPIKey  string
	NewsAPIURL  string
	NewsPerPull int

	// Aggregation windows.
	HistoryDays     int
	ForecastHorizon int
	TrendingDays    int

	// Background cadence.
	EnrichInterval time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		InferenceURL:     getEnv("INFERENCE_URL", "http://localhost:9000"),
		InferenceAPIKey:  getEnv("INFERENCE_API_KEY", ""),
		InferenceTimeout: getDuration("INFERENCE_TIMEOUT", 15*time.Second),
		ModelDir:         getEnv("MODEL_DIR", "models"),
		TopicStrategy:    getEnv("TOPIC_STRATEGY", "lda"),
		NewsAPIKey:       getEnv("NEWS_API_KEY", ""),
		NewsAPIURL:       getEnv("NEWS_API_URL", "https://newsapi.org/v2"),
		NewsPerPull:      getInt("NEWS_PER_PULL", 10),
		HistoryDays:      getInt("HISTORY_DAYS", 90),
		ForecastHorizon:  getInt("FORECAST_HORIZON", 7),
		TrendingDays:     getInt("TRENDING_DAYS", 3),
		EnrichInterval:   getDuration("ENRICH_INTERVAL", 30*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
