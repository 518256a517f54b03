package config

import "time"

const (
	DefaultHTTPPort         = "8080"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	DefaultRequestTimeout   = 10 * time.Second
	DefaultWorkerPoll       = 250 * time.Millisecond
	DefaultWorkerBatch      = 10
	DefaultIdempotencyTTL   = 24 * time.Hour
	DefaultPGMaxConns       = 5
	DefaultPGMinConns       = 1
)
