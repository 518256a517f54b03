package application

import (
	"context"
	"time"

	"cryptodata-service/internal/domain"
)

type MarketDataProvider interface {
	PriceRange(ctx context.Context, coin domain.CoinID, from, to time.Time) ([]domain.PricePoint, error)
	Metrics(ctx context.Context, coin domain.CoinID) (domain.MarketMetrics, error)
}

type SnapshotJobRepo interface {
	CreateQueued(ctx context.Context, symbol string, coin domain.CoinID) (string, error)
	GetByID(ctx context.Context, id string) (domain.SnapshotJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.SnapshotStatus, errMsg *string) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.SnapshotJob, error)
}

type SnapshotRepo interface {
	Append(ctx context.Context, s domain.MetricsSnapshot) error
	Latest(ctx context.Context, coin domain.CoinID) (domain.MetricsSnapshot, error)
	ByJobID(ctx context.Context, jobID string) (domain.MetricsSnapshot, error)
}
