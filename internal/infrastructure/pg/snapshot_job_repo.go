package pg

import (
	"context"
	"errors"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/domain"
	"cryptodata-service/internal/infrastructure/logx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SnapshotJobRepo struct{ db *DB }

var _ application.SnapshotJobRepo = (*SnapshotJobRepo)(nil)

func NewSnapshotJobRepo(db *DB) *SnapshotJobRepo { return &SnapshotJobRepo{db: db} }

func (r *SnapshotJobRepo) CreateQueued(ctx context.Context, symbol string, coin domain.CoinID) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO snapshot_jobs(id, symbol, coin_id, status)
        VALUES ($1, $2, $3, 'queued')`
	log := logx.WithFields(ctx).With(
		zap.String("repo", "snapshot_job"),
		zap.String("operation", "CreateQueued"),
		zap.String("id", id),
		zap.String("coin_id", string(coin)),
	)
	if _, err := r.db.Pool.Exec(ctx, ins, id, symbol, string(coin)); err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return "", err
	}
	log.Debug("sql.exec_success")
	return id, nil
}

func (r *SnapshotJobRepo) GetByID(ctx context.Context, id string) (domain.SnapshotJob, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.SnapshotJob{}, application.ErrNotFound
	}
	const q = `
        SELECT id::text, symbol, coin_id, status, error, COALESCE(completed_at, requested_at)
        FROM snapshot_jobs WHERE id=$1`
	var (
		out    domain.SnapshotJob
		coin   string
		status string
	)
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&out.ID, &out.Symbol, &coin, &status, &out.Error, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SnapshotJob{}, application.ErrNotFound
	}
	if err != nil {
		logx.WithFields(ctx).Error("sql.query_failed",
			zap.String("repo", "snapshot_job"),
			zap.String("operation", "GetByID"),
			zap.String("id", id),
			zap.Error(err),
		)
		return domain.SnapshotJob{}, err
	}
	out.CoinID = domain.CoinID(coin)
	out.Status = domain.ParseSnapshotStatus(status)
	return out, nil
}

func (r *SnapshotJobRepo) UpdateStatus(ctx context.Context, id string, st domain.SnapshotStatus, errMsg *string) error {
	const up = `
        UPDATE snapshot_jobs
        SET status=$2,
            error=$3,
            completed_at = CASE WHEN $2 IN ('done','failed') THEN NOW() ELSE completed_at END
        WHERE id=$1`
	log := logx.WithFields(ctx).With(
		zap.String("repo", "snapshot_job"),
		zap.String("operation", "UpdateStatus"),
		zap.String("id", id),
		zap.String("status", string(st)),
	)
	tag, err := r.db.Pool.Exec(ctx, up, id, string(st), errMsg)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		log.Warn("sql.exec_no_rows")
		return application.ErrNotFound
	}
	return nil
}

// ClaimQueued moves up to limit queued jobs to processing, oldest first.
// Concurrent workers never claim the same job.
func (r *SnapshotJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.SnapshotJob, error) {
	const q = `
      WITH cte AS (
        SELECT id
        FROM snapshot_jobs
        WHERE status = 'queued'
        ORDER BY requested_at
        LIMIT $1
        FOR UPDATE SKIP LOCKED
      )
      UPDATE snapshot_jobs j
      SET status = 'processing'
      FROM cte
      WHERE j.id = cte.id
      RETURNING j.id::text, j.symbol, j.coin_id, j.requested_at;
    `
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.SnapshotJob
	for rows.Next() {
		var (
			j    domain.SnapshotJob
			coin string
		)
		if err := rows.Scan(&j.ID, &j.Symbol, &coin, &j.UpdatedAt); err != nil {
			return nil, err
		}
		j.CoinID = domain.CoinID(coin)
		j.Status = domain.SnapshotStatusProcessing
		out = append(out, j)
	}
	return out, rows.Err()
}
