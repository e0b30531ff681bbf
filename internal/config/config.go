package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// upstream services
	BackendURL    string
	ChatURL       string
	ClassifierURL string

	// "redis" or, in dev only, "memory"
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret   string
	SessionTTLHours int
	// idle dashboards are evicted from the registry after this many minutes
	DashboardIdleMinutes int

	CORSOrigins []string

	TracingEnabled bool
	OTelEndpoint   string

	DateLayout     string
	MaxUploadBytes int64
}

func Load() Config {
	// a missing .env is fine, the real environment wins either way
	_ = godotenv.Load()

	return Config{
		Env:                  getEnv("APP_ENV", "dev"),
		Port:                 getEnvInt("PORT", 8081),
		BackendURL:           getEnv("BACKEND_URL", "http://localhost:8080"),
		ChatURL:              getEnv("CHAT_URL", "http://127.0.0.1:5000"),
		ClassifierURL:        getEnv("CLASSIFIER_URL", "https://saicode18-fruit-classifier.hf.space"),
		SessionStore:         getEnv("SESSION_STORE", "redis"),
		RedisAddr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		SessionSecret:        getEnv("SESSION_SECRET", "dev-session-secret"),
		SessionTTLHours:      getEnvInt("SESSION_TTL_HOURS", 24),
		DashboardIdleMinutes: getEnvInt("DASHBOARD_IDLE_MINUTES", 30),
		CORSOrigins:          getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		TracingEnabled:       getEnv("TRACING_ENABLED", "false") == "true",
		OTelEndpoint:         getEnv("OTEL_ENDPOINT", "localhost:4317"),
		DateLayout:           getEnv("DATE_LAYOUT", "1/2/2006"),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_BYTES", 6<<20)),
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// MemorySessions reports whether sessions are kept in process memory.
// Any environment other than dev always uses Redis.
func (c Config) MemorySessions() bool {
	return c.Env == "dev" && c.SessionStore == "memory"
}

func (c Config) DashboardIdle() time.Duration {
	return time.Duration(c.DashboardIdleMinutes) * time.Minute
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
