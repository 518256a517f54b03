package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store keeps snapshot jobs and recorded snapshots in a single SQLite file.
// It implements both application.SnapshotJobRepo and application.SnapshotRepo.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ application.SnapshotJobRepo = (*Store)(nil)
	_ application.SnapshotRepo    = (*Store)(nil)
)

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error                   { return s.db.Close() }
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_jobs (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			coin_id TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			requested_at DATETIME NOT NULL,
			completed_at DATETIME
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_jobs_status ON snapshot_jobs(status, requested_at);`,
		`CREATE TABLE IF NOT EXISTS metrics_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			coin_id TEXT NOT NULL,
			current_price_usd REAL,
			market_cap_usd REAL,
			total_volume_usd REAL,
			high_24h REAL,
			low_24h REAL,
			fetched_at DATETIME NOT NULL,
			job_id TEXT REFERENCES snapshot_jobs(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_snapshots_coin ON metrics_snapshots(coin_id, fetched_at);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *Store) CreateQueued(ctx context.Context, symbol string, coin domain.CoinID) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshot_jobs(id, symbol, coin_id, status, requested_at) VALUES (?, ?, ?, 'queued', ?)`,
		id, symbol, string(coin), s.now())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.SnapshotJob, error) {
	var (
		out         domain.SnapshotJob
		coin        string
		status      string
		errMsg      sql.NullString
		requestedAt time.Time
		completedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, coin_id, status, error, requested_at, completed_at FROM snapshot_jobs WHERE id = ?`, id).
		Scan(&out.ID, &out.Symbol, &coin, &status, &errMsg, &requestedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SnapshotJob{}, application.ErrNotFound
	}
	if err != nil {
		return domain.SnapshotJob{}, err
	}
	out.CoinID = domain.CoinID(coin)
	out.Status = domain.ParseSnapshotStatus(status)
	if errMsg.Valid {
		out.Error = &errMsg.String
	}
	out.UpdatedAt = requestedAt.UTC()
	if completedAt.Valid {
		out.UpdatedAt = completedAt.Time.UTC()
	}
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, st domain.SnapshotStatus, errMsg *string) error {
	var completed any
	if st == domain.SnapshotStatusDone || st == domain.SnapshotStatusFailed {
		completed = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE snapshot_jobs SET status = ?, error = ?, completed_at = COALESCE(?, completed_at) WHERE id = ?`,
		string(st), errMsg, completed, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return application.ErrNotFound
	}
	return nil
}

// ClaimQueued runs in an immediate transaction so two workers sharing the
// file never claim the same job.
func (s *Store) ClaimQueued(ctx context.Context, limit int) ([]domain.SnapshotJob, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, symbol, coin_id, requested_at FROM snapshot_jobs
		 WHERE status = 'queued' ORDER BY requested_at, rowid LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var out []domain.SnapshotJob
	for rows.Next() {
		var (
			j    domain.SnapshotJob
			coin string
		)
		if err := rows.Scan(&j.ID, &j.Symbol, &coin, &j.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		j.CoinID = domain.CoinID(coin)
		j.Status = domain.SnapshotStatusProcessing
		out = append(out, j)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, j := range out {
		if _, err := tx.ExecContext(ctx, `UPDATE snapshot_jobs SET status = 'processing' WHERE id = ?`, j.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, snap domain.MetricsSnapshot) error {
	m := snap.Metrics
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metrics_snapshots(coin_id, current_price_usd, market_cap_usd, total_volume_usd, high_24h, low_24h, fetched_at, job_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(snap.CoinID), m.CurrentPriceUSD, m.MarketCapUSD, m.TotalVolumeUSD, m.High24h, m.Low24h, snap.FetchedAt.UTC(), snap.JobID)
	return err
}

const snapshotSelect = `SELECT id, coin_id, current_price_usd, market_cap_usd, total_volume_usd, high_24h, low_24h, fetched_at, job_id FROM metrics_snapshots`

func (s *Store) Latest(ctx context.Context, coin domain.CoinID) (domain.MetricsSnapshot, error) {
	row := s.db.QueryRowContext(ctx, snapshotSelect+` WHERE coin_id = ? ORDER BY fetched_at DESC, id DESC LIMIT 1`, string(coin))
	return scanSnapshot(row)
}

func (s *Store) ByJobID(ctx context.Context, jobID string) (domain.MetricsSnapshot, error) {
	row := s.db.QueryRowContext(ctx, snapshotSelect+` WHERE job_id = ? ORDER BY id DESC LIMIT 1`, jobID)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (domain.MetricsSnapshot, error) {
	var (
		out   domain.MetricsSnapshot
		coin  string
		jobID sql.NullString
		vals  [5]sql.NullFloat64
	)
	err := row.Scan(&out.ID, &coin, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &out.FetchedAt, &jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MetricsSnapshot{}, application.ErrNotFound
	}
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	out.CoinID = domain.CoinID(coin)
	out.FetchedAt = out.FetchedAt.UTC()
	if jobID.Valid {
		out.JobID = &jobID.String
	}
	ptrs := []**float64{
		&out.Metrics.CurrentPriceUSD,
		&out.Metrics.MarketCapUSD,
		&out.Metrics.TotalVolumeUSD,
		&out.Metrics.High24h,
		&out.Metrics.Low24h,
	}
	for i, v := range vals {
		if v.Valid {
			f := v.Float64
			*ptrs[i] = &f
		}
	}
	return out, nil
}
