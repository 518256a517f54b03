package worker

import (
	"context"
	"time"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/domain"
	"go.uber.org/zap"
)

var _ application.Worker = (*DbWorker)(nil)

// Recorder turns a claimed job into a stored snapshot.
type Recorder interface {
	RecordSnapshot(ctx context.Context, jobID string, coin domain.CoinID) error
}

type DbWorker struct {
	Jobs     application.SnapshotJobRepo
	Recorder Recorder

	PollEvery  time.Duration
	BatchLimit int
	// JobTimeout bounds one RecordSnapshot call; zero means no extra bound.
	JobTimeout time.Duration
	Log        *zap.Logger
}

func (w *DbWorker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.PollEvery <= 0 {
		w.PollEvery = 250 * time.Millisecond
	}
	if w.BatchLimit <= 0 {
		w.BatchLimit = 10
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("snapshot_worker_started", zap.Duration("poll_every", w.PollEvery), zap.Int("batch_limit", w.BatchLimit))
	for {
		select {
		case <-ctx.Done():
			log.Info("snapshot_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *DbWorker) tick(ctx context.Context, log *zap.Logger) int {
	jobs, err := w.Jobs.ClaimQueued(ctx, w.BatchLimit)
	if err != nil {
		log.Warn("claim_failed", zap.Error(err))
		return 0
	}
	for _, j := range jobs {
		w.processOne(ctx, log, j)
	}
	return len(jobs)
}

func (w *DbWorker) processOne(ctx context.Context, log *zap.Logger, j domain.SnapshotJob) {
	if w.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.JobTimeout)
		defer cancel()
	}
	log = log.With(zap.String("id", j.ID), zap.String("coin_id", string(j.CoinID)))
	if err := w.Recorder.RecordSnapshot(ctx, j.ID, j.CoinID); err != nil {
		log.Warn("snapshot_failed", zap.Error(err))
		return
	}
	log.Info("snapshot_done")
}
