package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/config"
	httpserver "cryptodata-service/internal/infrastructure/http"
	"cryptodata-service/internal/infrastructure/httpx"
	"cryptodata-service/internal/infrastructure/logx"
	"cryptodata-service/internal/infrastructure/pg"
	"cryptodata-service/internal/infrastructure/provider"
	redisstore "cryptodata-service/internal/infrastructure/redis"
	"cryptodata-service/internal/infrastructure/sqlite"
	"cryptodata-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

// Storage bundles the snapshot repositories of one backend.
type Storage struct {
	Jobs      application.SnapshotJobRepo
	Snapshots application.SnapshotRepo
	Ping      func(ctx context.Context) error
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() (config.Config, error) { return config.Load() }

func ProvideStorage(ctx context.Context, log *zap.Logger, cfg config.Config) (Storage, func(), error) {
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Storage{}, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Storage{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Storage{}, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Storage{
			Jobs:      pg.NewSnapshotJobRepo(db),
			Snapshots: pg.NewSnapshotRepo(db),
			Ping:      db.Ping,
		}, cleanup, nil
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return Storage{}, func() {}, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		cleanup := func() {
			log.Info("closing sqlite")
			_ = store.Close()
		}
		return Storage{Jobs: store, Snapshots: store, Ping: store.Ping}, cleanup, nil
	default:
		return Storage{}, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

func ProvideIdempotency(cfg config.Config) (application.IdempotencyStore, func(), error) {
	if cfg.IdempotencyBackend != "redis" {
		return application.NoopIdempotency{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client, cfg.RedisTTL), func() { _ = client.Close() }, nil
}

func ProvideMarketDataProvider(cfg config.Config, log *zap.Logger) application.MarketDataProvider {
	hdr := http.Header{}
	if cfg.CoinGeckoAPIKey != "" {
		hdr.Set(provider.APIKeyHeader, cfg.CoinGeckoAPIKey)
	}
	return &provider.CoinGecko{
		BaseURL: cfg.CoinGeckoBaseURL,
		Client: &httpx.Client{
			HTTP:   &http.Client{Timeout: cfg.RequestTimeout},
			Header: hdr,
			Log:    log,
		},
		Log: log,
	}
}

func ProvideCryptoDataService(p application.MarketDataProvider, st Storage, idem application.IdempotencyStore, log *zap.Logger) *application.CryptoDataService {
	return application.NewCryptoDataService(p,
		application.WithSnapshots(st.Jobs, st.Snapshots),
		application.WithIdempotency(idem),
		application.WithLogger(log),
	)
}

func ProvideServer(svc *application.CryptoDataService, st Storage, idem application.IdempotencyStore) *httpserver.Server {
	srv := httpserver.NewServer(svc)
	srv.SetReadyCheck(readyCheck(st, idem))
	return srv
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readyCheck pings storage and, when it is backed by a server, the
// idempotency store.
func readyCheck(st Storage, idem application.IdempotencyStore) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if st.Ping != nil {
			if err := st.Ping(ctx); err != nil {
				return fmt.Errorf("storage: %w", err)
			}
		}
		if p, ok := idem.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("idempotency store: %w", err)
			}
		}
		return nil
	}
}

func ProvideWorker(st Storage, svc *application.CryptoDataService, log *zap.Logger, cfg config.Config) application.Worker {
	return &worker.DbWorker{
		Jobs:       st.Jobs,
		Recorder:   svc,
		PollEvery:  cfg.WorkerPoll,
		BatchLimit: cfg.WorkerBatchSize,
		JobTimeout: cfg.RequestTimeout,
		Log:        log,
	}
}
