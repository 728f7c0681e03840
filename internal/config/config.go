package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL        string
	PushURL           string
	StatePath         string
	RequestTimeout    time.Duration
	DetailInterval    time.Duration
	DashboardInterval time.Duration
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.APIBaseURL, "api", "http://localhost:4000/api", "ordering API base URL")
	flag.StringVar(&cfg.PushURL, "push", "ws://localhost:4000/ws", "push channel URL")
	flag.StringVar(&cfg.StatePath, "state", "quickbite.db", "client state database path")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 10*time.Second, "request timeout")
	flag.DurationVar(&cfg.DetailInterval, "detail-poll", 5*time.Second, "order detail poll interval")
	flag.DurationVar(&cfg.DashboardInterval, "dashboard-poll", 10*time.Second, "dashboard poll interval")
	flag.Parse()

	cfg.APIBaseURL = getEnv("QUICKBITE_API_URL", cfg.APIBaseURL)
	cfg.PushURL = getEnv("QUICKBITE_PUSH_URL", cfg.PushURL)
	cfg.StatePath = getEnv("QUICKBITE_STATE_PATH", cfg.StatePath)
	cfg.RequestTimeout = getEnvDuration("QUICKBITE_TIMEOUT", cfg.RequestTimeout)
	cfg.DetailInterval = getEnvDuration("QUICKBITE_DETAIL_POLL", cfg.DetailInterval)
	cfg.DashboardInterval = getEnvDuration("QUICKBITE_DASHBOARD_POLL", cfg.DashboardInterval)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
