package application

import (
	"context"
	"sort"
	"time"

	"cryptodata-service/internal/domain"
)

type fakeProvider struct {
	rows    []domain.PricePoint
	metrics domain.MarketMetrics
	err     error

	calls    int
	lastCoin domain.CoinID
	from, to time.Time
}

func (f *fakeProvider) PriceRange(_ context.Context, coin domain.CoinID, from, to time.Time) ([]domain.PricePoint, error) {
	f.calls++
	f.lastCoin, f.from, f.to = coin, from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeProvider) Metrics(_ context.Context, coin domain.CoinID) (domain.MarketMetrics, error) {
	f.calls++
	f.lastCoin = coin
	if f.err != nil {
		return domain.MarketMetrics{}, f.err
	}
	return f.metrics, nil
}

type fakeJobRepo struct {
	jobs map[string]domain.SnapshotJob
	next int
	err  error
}

func (f *fakeJobRepo) CreateQueued(_ context.Context, symbol string, coin domain.CoinID) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.jobs == nil {
		f.jobs = map[string]domain.SnapshotJob{}
	}
	f.next++
	id := "snap-" + string(rune('0'+f.next))
	f.jobs[id] = domain.SnapshotJob{ID: id, Symbol: symbol, CoinID: coin, Status: domain.SnapshotStatusQueued}
	return id, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id string) (domain.SnapshotJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return domain.SnapshotJob{}, ErrNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) UpdateStatus(_ context.Context, id string, st domain.SnapshotStatus, errMsg *string) error {
	j, ok := f.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status, j.Error = st, errMsg
	f.jobs[id] = j
	return nil
}

func (f *fakeJobRepo) ClaimQueued(_ context.Context, limit int) ([]domain.SnapshotJob, error) {
	var ids []string
	for id, j := range f.jobs {
		if j.Status == domain.SnapshotStatusQueued {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	var out []domain.SnapshotJob
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		j := f.jobs[id]
		j.Status = domain.SnapshotStatusProcessing
		f.jobs[id] = j
		out = append(out, j)
	}
	return out, nil
}

type fakeSnapshotRepo struct {
	rows []domain.MetricsSnapshot
	err  error
}

func (f *fakeSnapshotRepo) Append(_ context.Context, s domain.MetricsSnapshot) error {
	if f.err != nil {
		return f.err
	}
	s.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSnapshotRepo) Latest(_ context.Context, coin domain.CoinID) (domain.MetricsSnapshot, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].CoinID == coin {
			return f.rows[i], nil
		}
	}
	return domain.MetricsSnapshot{}, ErrNotFound
}

func (f *fakeSnapshotRepo) ByJobID(_ context.Context, jobID string) (domain.MetricsSnapshot, error) {
	for _, r := range f.rows {
		if r.JobID != nil && *r.JobID == jobID {
			return r, nil
		}
	}
	return domain.MetricsSnapshot{}, ErrNotFound
}

type fakeIdem struct{ seen map[string]bool }

func (f *fakeIdem) TryReserve(_ context.Context, k string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

func ptr(f float64) *float64 { return &f }
