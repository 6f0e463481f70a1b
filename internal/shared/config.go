package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	DBDriver    string // sqlite | mysql
	DBDSN       string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SessionKey  string
	SessionTTL  time.Duration
	CacheTTL    time.Duration
	WarmWorkers int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		DBDriver:    env("DB_DRIVER", "sqlite"),
		DBDSN:       env("DB_DSN", "file:innkeep.db?_pragma=busy_timeout(5000)"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		SessionKey:  env("SESSION_KEY", "dev-secret-key-change-me"),
		SessionTTL:  time.Duration(atoi("SESSION_TTL_HOURS", 12)) * time.Hour,
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		WarmWorkers: atoi("CACHE_WARM_WORKERS", 4),
	}
	if c.SessionKey == "dev-secret-key-change-me" {
		log.Warn().Msg("SESSION_KEY is the development default")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
