package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	infraconfig "cryptodata-service/internal/infrastructure/config"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Common
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	// API
	Port        string `yaml:"port"`
	Storage     string `yaml:"storage"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	// Provider
	CoinGeckoBaseURL string        `yaml:"coingecko_base_url"`
	CoinGeckoAPIKey  string        `yaml:"coingecko_api_key"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	// Worker
	WorkerPoll      time.Duration `yaml:"worker_poll"`
	WorkerBatchSize int           `yaml:"worker_batch_limit"`
	// Redis (idempotency)
	IdempotencyBackend string        `yaml:"idempotency_backend"`
	RedisAddr          string        `yaml:"redis_addr"`
	RedisPassword      string        `yaml:"redis_password"`
	RedisDB            int           `yaml:"redis_db"`
	RedisTTL           time.Duration `yaml:"idempotency_ttl"`
}

func Defaults() Config {
	return Config{
		Env:                "local",
		LogLevel:           "info",
		Port:               infraconfig.DefaultHTTPPort,
		Storage:            "pg",
		SQLitePath:         "cryptodata.db",
		CoinGeckoBaseURL:   infraconfig.DefaultCoinGeckoBaseURL,
		RequestTimeout:     infraconfig.DefaultRequestTimeout,
		WorkerPoll:         infraconfig.DefaultWorkerPoll,
		WorkerBatchSize:    infraconfig.DefaultWorkerBatch,
		IdempotencyBackend: "redis",
		RedisAddr:          "localhost:6379",
		RedisTTL:           infraconfig.DefaultIdempotencyTTL,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func msDef(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Load applies defaults, then the YAML file named by CONFIG_FILE (if set),
// then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnv("PORT", c.Port)
	c.Storage = getEnv("STORAGE", c.Storage)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.CoinGeckoBaseURL = getEnv("COINGECKO_BASE_URL", c.CoinGeckoBaseURL)
	c.CoinGeckoAPIKey = getEnv("COINGECKO_API_KEY", c.CoinGeckoAPIKey)
	c.RequestTimeout = msDef("REQUEST_TIMEOUT_MS", c.RequestTimeout)
	c.WorkerPoll = msDef("WORKER_POLL_MS", c.WorkerPoll)
	c.WorkerBatchSize = atoiDef(getEnv("WORKER_BATCH_LIMIT", ""), c.WorkerBatchSize)
	c.IdempotencyBackend = getEnv("IDEMPOTENCY_BACKEND", c.IdempotencyBackend)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = atoiDef(getEnv("REDIS_DB", ""), c.RedisDB)
	c.RedisTTL = msDef("IDEMPOTENCY_TTL_MS", c.RedisTTL)
}
