package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"infinite-experiment/clanledger/internal/constants"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DBDriver   string
	SQLitePath string
	PGHost     string
	PGPort     string
	PGUser     string
	PGDB       string
	PGPassword string

	CacheBackend  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	EventStream   string
	ActivityQueue string
	QueueWorkers  int64

	JWTSecret string

	MessageCooldown       time.Duration
	DailyPointCap         int64
	DefaultClanCap        int64
	WeeklySummaryInterval time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBDriver:      getEnv("DB_DRIVER", DriverSQLite),
		SQLitePath:    getEnv("SQLITE_PATH", "clans.db"),
		PGHost:        getEnv("PG_HOST", "localhost"),
		PGPort:        getEnv("PG_PORT", "5432"),
		PGUser:        os.Getenv("PG_USER"),
		PGDB:          os.Getenv("PG_DB"),
		PGPassword:    os.Getenv("PG_PASSWORD"),
		CacheBackend:  getEnv("CACHE_BACKEND", CacheBackendMemory),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		EventStream:   getEnv("EVENT_STREAM", "clan_events"),
		ActivityQueue: os.Getenv("ACTIVITY_QUEUE"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	cooldown, err := getEnvInt("MESSAGE_COOLDOWN_SECONDS", constants.DefaultCooldownSeconds)
	if err != nil {
		return nil, err
	}
	cfg.MessageCooldown = time.Duration(cooldown) * time.Second

	if cfg.DailyPointCap, err = getEnvInt("DAILY_POINT_CAP", constants.DefaultDailyPointCap); err != nil {
		return nil, err
	}
	if cfg.DefaultClanCap, err = getEnvInt("DEFAULT_CLAN_CAP", constants.DefaultClanMaxPoints); err != nil {
		return nil, err
	}

	if cfg.QueueWorkers, err = getEnvInt("ACTIVITY_QUEUE_WORKERS", 2); err != nil {
		return nil, err
	}

	interval := getEnv("WEEKLY_SUMMARY_INTERVAL", "24h")
	if cfg.WeeklySummaryInterval, err = time.ParseDuration(interval); err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_SUMMARY_INTERVAL %q: %w", interval, err)
	}

	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.CacheBackend != CacheBackendMemory && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}

	if cfg.ActivityQueue != "" && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("ACTIVITY_QUEUE requires CACHE_BACKEND=%s", CacheBackendRedis)
	}

	return cfg, nil
}

// PostgresDSN builds the connection string used by both GORM and the admin CLI.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
