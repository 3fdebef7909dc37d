package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"app_reviews/internal/domain"
)

var (
	ErrUnknownStore = errors.New("STORE_DRIVER must be one of: mysql, sqlite, none")
	ErrUnknownCache = errors.New("CACHE_DRIVER must be one of: redis, memory, none")
)

// Config is read from an optional YAML file (APP_CONFIG) and then from the
// environment; environment values win.
type Config struct {
	AppEnv      string `yaml:"app_env"`
	LogLevel    string `yaml:"log_level"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	DatasetPath    string `yaml:"dataset_path"`
	DatasetURL     string `yaml:"dataset_url"`
	DatasetToken   string `yaml:"dataset_token"`
	StrictCoercion bool   `yaml:"strict_coercion"`
	FetchRPS       int    `yaml:"fetch_rps"`

	StoreDriver      string        `yaml:"store_driver"`
	MySQLDSN         string        `yaml:"mysql_dsn"`
	SQLitePath       string        `yaml:"sqlite_path"`
	DBConnectTimeout time.Duration `yaml:"db_connect_timeout"`

	CacheDriver string        `yaml:"cache_driver"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisDB     int           `yaml:"redis_db"`
	RedisPass   string        `yaml:"redis_password"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	CacheSize   int           `yaml:"cache_size"`

	RateLimitRPS int  `yaml:"rate_limit_rps"`
	RunOnStart   bool `yaml:"run_on_start"`
}

func defaults() Config {
	return Config{
		AppEnv:           "prod",
		LogLevel:         "info",
		HTTPAddr:         ":8080",
		MetricsAddr:      "",
		DatasetPath:      "multilingual_mobile_app_reviews_2025.csv",
		FetchRPS:         5,
		StoreDriver:      "sqlite",
		MySQLDSN:         "root:root@tcp(localhost:3306)/app_reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		SQLitePath:       "app_reviews.db",
		DBConnectTimeout: 30 * time.Second,
		CacheDriver:      "memory",
		RedisAddr:        "localhost:6379",
		CacheTTL:         15 * time.Minute,
		CacheSize:        256,
		RateLimitRPS:     50,
	}
}

func Load() (Config, error) {
	c := defaults()
	if path := os.Getenv("APP_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	secs := func(k string, def time.Duration) time.Duration {
		return time.Duration(atoi(k, int(def/time.Second))) * time.Second
	}
	flag := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}

	c.AppEnv = env("APP_ENV", c.AppEnv)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)
	c.MetricsAddr = env("METRICS_ADDR", c.MetricsAddr)
	c.DatasetPath = env("DATASET_PATH", c.DatasetPath)
	c.DatasetURL = env("DATASET_URL", c.DatasetURL)
	c.DatasetToken = env("DATASET_TOKEN", c.DatasetToken)
	c.StrictCoercion = flag("STRICT_COERCION", c.StrictCoercion)
	c.FetchRPS = atoi("FETCH_RPS", c.FetchRPS)
	c.StoreDriver = strings.ToLower(env("STORE_DRIVER", c.StoreDriver))
	c.MySQLDSN = env("MYSQL_DSN", c.MySQLDSN)
	c.SQLitePath = env("SQLITE_PATH", c.SQLitePath)
	c.DBConnectTimeout = secs("DB_CONNECT_TIMEOUT_SECONDS", c.DBConnectTimeout)
	c.CacheDriver = strings.ToLower(env("CACHE_DRIVER", c.CacheDriver))
	c.RedisAddr = env("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = atoi("REDIS_DB", c.RedisDB)
	c.RedisPass = env("REDIS_PASSWORD", c.RedisPass)
	c.CacheTTL = secs("CACHE_TTL_SECONDS", c.CacheTTL)
	c.CacheSize = atoi("CACHE_SIZE", c.CacheSize)
	c.RateLimitRPS = atoi("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RunOnStart = flag("RUN_ON_START", c.RunOnStart)

	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case "mysql", "sqlite", "none":
	default:
		return fmt.Errorf("%w (got %q)", ErrUnknownStore, c.StoreDriver)
	}
	switch c.CacheDriver {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("%w (got %q)", ErrUnknownCache, c.CacheDriver)
	}
	return nil
}

func (c Config) Policy() domain.CoercionPolicy {
	if c.StrictCoercion {
		return domain.PolicyStrict
	}
	return domain.PolicyLenient
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
