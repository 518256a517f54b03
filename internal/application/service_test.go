package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptodata-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_GetPriceHistory(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{rows: []domain.PricePoint{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 42000.5},
	}}
	svc := NewCryptoDataService(p, WithLocation(time.UTC))

	res, err := svc.GetPriceHistory(context.Background(), "btc-usd", "2024-01-01", "2024-01-02")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, domain.CoinID("bitcoin"), res.CoinID)
	require.Equal(t, domain.CoinID("bitcoin"), p.lastCoin)
	require.Equal(t, int64(1704067200), p.from.Unix())
	require.Equal(t, int64(1704153600), p.to.Unix())
}

func Test_GetPriceHistory_DefaultsToLocalMidnight(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := NewCryptoDataService(p)

	_, err := svc.GetPriceHistory(context.Background(), "ETH", "2024-01-01", "2024-01-02")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local).Unix(), p.from.Unix())
	require.Less(t, p.from.Unix(), p.to.Unix())
}

func Test_GetPriceHistory_BadDateBeforeNetwork(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := NewCryptoDataService(p)

	_, err := svc.GetPriceHistory(context.Background(), "BTC", "Jan 1", "2024-01-02")
	var dpe *domain.DateParseError
	require.True(t, errors.As(err, &dpe))
	require.Zero(t, p.calls)

	_, err = svc.GetPriceHistory(context.Background(), "BTC", "2024-01-01", "2024/01/02")
	require.True(t, errors.As(err, &dpe))
	require.Equal(t, "end_date", dpe.Field)
	require.Zero(t, p.calls)
}

func Test_GetPriceHistory_ProviderErrorPropagates(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{err: &domain.HTTPError{StatusCode: 503, Body: "down"}}
	svc := NewCryptoDataService(p)

	res, err := svc.GetPriceHistory(context.Background(), "BTC", "2024-01-01", "2024-01-02")
	require.Nil(t, res.Rows)
	var he *domain.HTTPError
	require.True(t, errors.As(err, &he))
	require.Equal(t, 503, he.StatusCode)
	require.Equal(t, 1, p.calls)
}

func Test_GetMetrics(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{metrics: domain.MarketMetrics{CurrentPriceUSD: ptr(1.5)}}
	svc := NewCryptoDataService(p)

	res, err := svc.GetMetrics(context.Background(), "XYZ")
	require.NoError(t, err)
	require.Equal(t, domain.CoinID("xyz"), p.lastCoin)
	require.Equal(t, domain.CoinID("xyz"), res.CoinID)
	require.InDelta(t, 1.5, *res.Metrics.CurrentPriceUSD, 1e-9)
	require.Nil(t, res.Metrics.MarketCapUSD)
}

func Test_GetMetrics_LogsUnmappedSymbol(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)
	svc := NewCryptoDataService(&fakeProvider{}, WithLogger(zap.New(core)))

	_, err := svc.GetMetrics(context.Background(), "xyz-usd")
	require.NoError(t, err)
	_, err = svc.GetMetrics(context.Background(), "sol-usd")
	require.NoError(t, err)

	unmapped := logs.FilterMessage("symbol_unmapped").All()
	require.Len(t, unmapped, 1)
	require.Equal(t, "xyz-usd", unmapped[0].ContextMap()["symbol"])
	require.Equal(t, "xyz", unmapped[0].ContextMap()["coin_id"])
}

func Test_GetMetrics_EmptySymbol(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := NewCryptoDataService(p)

	_, err := svc.GetMetrics(context.Background(), "  ")
	require.ErrorIs(t, err, ErrBadRequest)
	require.Zero(t, p.calls)
}

func Test_RequestSnapshot(t *testing.T) {
	t.Parallel()
	jobs := &fakeJobRepo{}
	svc := NewCryptoDataService(&fakeProvider{}, WithSnapshots(jobs, &fakeSnapshotRepo{}))

	id, err := svc.RequestSnapshot(context.Background(), "eth-usd", nil)
	require.NoError(t, err)
	require.Equal(t, "snap-1", id)
	require.Equal(t, domain.SnapshotStatusQueued, jobs.jobs[id].Status)
	require.Equal(t, domain.CoinID("ethereum"), jobs.jobs[id].CoinID)
	require.Equal(t, "ETH-USD", jobs.jobs[id].Symbol)
}

func Test_RequestSnapshot_IdempotencyConflict(t *testing.T) {
	t.Parallel()
	svc := NewCryptoDataService(&fakeProvider{},
		WithSnapshots(&fakeJobRepo{}, &fakeSnapshotRepo{}),
		WithIdempotency(&fakeIdem{}),
	)
	key := "ik-1"
	_, err := svc.RequestSnapshot(context.Background(), "BTC", &key)
	require.NoError(t, err)
	_, err = svc.RequestSnapshot(context.Background(), "BTC", &key)
	require.ErrorIs(t, err, ErrConflict)
}

func Test_RequestSnapshot_NoStorage(t *testing.T) {
	t.Parallel()
	svc := NewCryptoDataService(&fakeProvider{})
	_, err := svc.RequestSnapshot(context.Background(), "BTC", nil)
	require.Error(t, err)
}

func Test_RecordSnapshot_Done(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jobs := &fakeJobRepo{}
	snaps := &fakeSnapshotRepo{}
	p := &fakeProvider{metrics: domain.MarketMetrics{CurrentPriceUSD: ptr(42000)}}
	svc := NewCryptoDataService(p, WithSnapshots(jobs, snaps), WithClock(fakeClock{t: now}))

	id, err := svc.RequestSnapshot(context.Background(), "BTC", nil)
	require.NoError(t, err)
	require.NoError(t, svc.RecordSnapshot(context.Background(), id, "bitcoin"))

	job, err := svc.GetSnapshotJob(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, domain.SnapshotStatusDone, job.Status)

	got, err := svc.GetSnapshotResult(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, now, got.FetchedAt)
	require.InDelta(t, 42000, *got.Metrics.CurrentPriceUSD, 1e-9)

	latest, err := svc.GetLatestSnapshot(context.Background(), "btc")
	require.NoError(t, err)
	require.Equal(t, got.ID, latest.ID)
}

func Test_RecordSnapshot_ProviderFailure(t *testing.T) {
	t.Parallel()
	jobs := &fakeJobRepo{}
	snaps := &fakeSnapshotRepo{}
	p := &fakeProvider{err: &domain.HTTPError{StatusCode: 404, Body: "not found"}}
	svc := NewCryptoDataService(p, WithSnapshots(jobs, snaps))

	id, err := svc.RequestSnapshot(context.Background(), "XYZ", nil)
	require.NoError(t, err)
	err = svc.RecordSnapshot(context.Background(), id, "xyz")
	require.Error(t, err)

	job := jobs.jobs[id]
	require.Equal(t, domain.SnapshotStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	require.Contains(t, *job.Error, "404")
	require.Empty(t, snaps.rows)
	require.Equal(t, 1, p.calls)
}

func Test_GetLatestSnapshot_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewCryptoDataService(&fakeProvider{}, WithSnapshots(&fakeJobRepo{}, &fakeSnapshotRepo{}))
	_, err := svc.GetLatestSnapshot(context.Background(), "SOL")
	require.ErrorIs(t, err, ErrNotFound)
}
