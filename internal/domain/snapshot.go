package domain

import "time"

type SnapshotJob struct {
	ID        string
	Symbol    string
	CoinID    CoinID
	Status    SnapshotStatus
	Error     *string
	UpdatedAt time.Time
}

// MetricsSnapshot is a recorded MarketMetrics value.
type MetricsSnapshot struct {
	ID        int64
	CoinID    CoinID
	Metrics   MarketMetrics
	FetchedAt time.Time
	JobID     *string
}
