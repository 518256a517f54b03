package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptodata-service/internal/domain"

	"go.uber.org/zap"
)

// CryptoDataService fetches price history and market metrics for a ticker,
// and records metrics snapshots on request. Fetches are never cached.
type CryptoDataService struct {
	provider  MarketDataProvider
	jobs      SnapshotJobRepo
	snapshots SnapshotRepo
	idem      IdempotencyStore
	clock     Clock
	loc       *time.Location
	log       *zap.Logger
}

// PriceHistory is the result of GetPriceHistory.
type PriceHistory struct {
	CoinID domain.CoinID
	Rows   []domain.PricePoint
}

// CoinMetrics is the result of GetMetrics.
type CoinMetrics struct {
	CoinID  domain.CoinID
	Metrics domain.MarketMetrics
}

type Option func(*CryptoDataService)

func WithClock(c Clock) Option { return func(s *CryptoDataService) { s.clock = c } }

// WithLocation sets the zone calendar dates are interpreted in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option { return func(s *CryptoDataService) { s.loc = loc } }

func WithSnapshots(jobs SnapshotJobRepo, snapshots SnapshotRepo) Option {
	return func(s *CryptoDataService) {
		s.jobs = jobs
		s.snapshots = snapshots
	}
}

func WithIdempotency(store IdempotencyStore) Option {
	return func(s *CryptoDataService) { s.idem = store }
}

func WithLogger(l *zap.Logger) Option { return func(s *CryptoDataService) { s.log = l } }

func NewCryptoDataService(provider MarketDataProvider, opts ...Option) *CryptoDataService {
	s := &CryptoDataService{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.idem == nil {
		s.idem = NoopIdempotency{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// GetPriceHistory returns provider-ordered (timestamp, price) rows between
// midnight of startDate and midnight of endDate. Dates are validated before
// any request is sent.
func (s *CryptoDataService) GetPriceHistory(ctx context.Context, symbol, startDate, endDate string) (PriceHistory, error) {
	coin, err := s.coinFor(symbol)
	if err != nil {
		return PriceHistory{}, err
	}
	r, err := domain.ParseDateRange(startDate, endDate, s.loc)
	if err != nil {
		return PriceHistory{}, err
	}
	rows, err := s.provider.PriceRange(ctx, coin, r.From, r.To)
	if err != nil {
		return PriceHistory{}, err
	}
	return PriceHistory{CoinID: coin, Rows: rows}, nil
}

func (s *CryptoDataService) GetMetrics(ctx context.Context, symbol string) (CoinMetrics, error) {
	coin, err := s.coinFor(symbol)
	if err != nil {
		return CoinMetrics{}, err
	}
	m, err := s.provider.Metrics(ctx, coin)
	if err != nil {
		return CoinMetrics{}, err
	}
	return CoinMetrics{CoinID: coin, Metrics: m}, nil
}

// RequestSnapshot queues a metrics snapshot for symbol. A non-empty idemKey
// that was already used yields ErrConflict.
func (s *CryptoDataService) RequestSnapshot(ctx context.Context, symbol string, idemKey *string) (string, error) {
	if s.jobs == nil {
		return "", errors.New("snapshot storage not configured")
	}
	coin, err := s.coinFor(symbol)
	if err != nil {
		return "", err
	}
	if idemKey != nil && *idemKey != "" {
		ok, err := s.idem.TryReserve(ctx, "snapshot:"+*idemKey)
		if err != nil {
			return "", fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return "", ErrConflict
		}
	}
	return s.jobs.CreateQueued(ctx, strings.ToUpper(symbol), coin)
}

func (s *CryptoDataService) GetSnapshotJob(ctx context.Context, id string) (domain.SnapshotJob, error) {
	if s.jobs == nil {
		return domain.SnapshotJob{}, ErrNotFound
	}
	return s.jobs.GetByID(ctx, id)
}

// GetSnapshotResult returns the snapshot recorded by a completed job.
func (s *CryptoDataService) GetSnapshotResult(ctx context.Context, jobID string) (domain.MetricsSnapshot, error) {
	if s.snapshots == nil {
		return domain.MetricsSnapshot{}, ErrNotFound
	}
	return s.snapshots.ByJobID(ctx, jobID)
}

func (s *CryptoDataService) GetLatestSnapshot(ctx context.Context, symbol string) (domain.MetricsSnapshot, error) {
	coin, err := s.coinFor(symbol)
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	if s.snapshots == nil {
		return domain.MetricsSnapshot{}, ErrNotFound
	}
	return s.snapshots.Latest(ctx, coin)
}

// RecordSnapshot fetches metrics for a claimed job and stores them. A fetch
// failure marks the job failed and is returned; it is not retried.
func (s *CryptoDataService) RecordSnapshot(ctx context.Context, jobID string, coin domain.CoinID) error {
	if s.jobs == nil || s.snapshots == nil {
		return errors.New("snapshot storage not configured")
	}
	m, err := s.provider.Metrics(ctx, coin)
	if err != nil {
		msg := err.Error()
		if uerr := s.jobs.UpdateStatus(ctx, jobID, domain.SnapshotStatusFailed, &msg); uerr != nil {
			return errors.Join(err, uerr)
		}
		return err
	}
	id := jobID
	if err := s.snapshots.Append(ctx, domain.MetricsSnapshot{
		CoinID:    coin,
		Metrics:   m,
		FetchedAt: s.clock.Now(),
		JobID:     &id,
	}); err != nil {
		msg := err.Error()
		_ = s.jobs.UpdateStatus(ctx, jobID, domain.SnapshotStatusFailed, &msg)
		return fmt.Errorf("append snapshot: %w", err)
	}
	return s.jobs.UpdateStatus(ctx, jobID, domain.SnapshotStatusDone, nil)
}

// coinFor normalizes symbol. Symbols outside the fixed table still resolve
// to their lowercased form; that guess is logged since the provider may
// reject it.
func (s *CryptoDataService) coinFor(symbol string) (domain.CoinID, error) {
	if strings.TrimSpace(symbol) == "" {
		return "", fmt.Errorf("%w: symbol is required", ErrBadRequest)
	}
	coin := domain.NormalizeSymbol(symbol)
	if !domain.IsKnownSymbol(symbol) {
		s.log.Info("symbol_unmapped", zap.String("symbol", symbol), zap.String("coin_id", string(coin)))
	}
	return coin, nil
}
