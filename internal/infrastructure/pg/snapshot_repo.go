package pg

import (
	"context"
	"errors"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type SnapshotRepo struct{ db *DB }

var _ application.SnapshotRepo = (*SnapshotRepo)(nil)

func NewSnapshotRepo(db *DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

const snapshotColumns = `id, coin_id, current_price_usd, market_cap_usd, total_volume_usd, high_24h, low_24h, fetched_at, job_id::text`

func (r *SnapshotRepo) Append(ctx context.Context, s domain.MetricsSnapshot) error {
	m := s.Metrics
	_, err := r.db.Pool.Exec(ctx, `
        INSERT INTO metrics_snapshots(coin_id, current_price_usd, market_cap_usd, total_volume_usd, high_24h, low_24h, fetched_at, job_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, string(s.CoinID), m.CurrentPriceUSD, m.MarketCapUSD, m.TotalVolumeUSD, m.High24h, m.Low24h, s.FetchedAt, s.JobID)
	return err
}

func (r *SnapshotRepo) Latest(ctx context.Context, coin domain.CoinID) (domain.MetricsSnapshot, error) {
	q := `SELECT ` + snapshotColumns + ` FROM metrics_snapshots
        WHERE coin_id=$1 ORDER BY fetched_at DESC, id DESC LIMIT 1`
	return scanSnapshot(r.db.Pool.QueryRow(ctx, q, string(coin)))
}

func (r *SnapshotRepo) ByJobID(ctx context.Context, jobID string) (domain.MetricsSnapshot, error) {
	q := `SELECT ` + snapshotColumns + ` FROM metrics_snapshots
        WHERE job_id::text=$1 ORDER BY id DESC LIMIT 1`
	return scanSnapshot(r.db.Pool.QueryRow(ctx, q, jobID))
}

func scanSnapshot(row pgx.Row) (domain.MetricsSnapshot, error) {
	var (
		out  domain.MetricsSnapshot
		coin string
	)
	m := &out.Metrics
	err := row.Scan(&out.ID, &coin, &m.CurrentPriceUSD, &m.MarketCapUSD, &m.TotalVolumeUSD, &m.High24h, &m.Low24h, &out.FetchedAt, &out.JobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MetricsSnapshot{}, application.ErrNotFound
	}
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	out.CoinID = domain.CoinID(coin)
	out.FetchedAt = out.FetchedAt.UTC()
	return out, nil
}
