package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verandameister/quotedesk/internal/platform/db"
	"github.com/verandameister/quotedesk/internal/store"
)

// Stores bundles the persistence layers opened from Config.
type Stores struct {
	Local    *store.Local
	Fallback *store.Fallback
	Pool     *pgxpool.Pool

	closers []func()
}

// OpenStores opens the local cache and, when PG_DSN is set, the remote
// database behind a Fallback. A remote that cannot be reached at startup stays
// attached: the cache is marked pending and Resync catches up once it answers.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger, recorder store.Recorder) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gdb, err := db.OpenLocal(cfg.LocalDBPath, false)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("app: local db handle: %w", err)
	}
	s := &Stores{closers: []func(){func() { _ = sqlDB.Close() }}}

	s.Local, err = store.NewLocal(ctx, gdb)
	if err != nil {
		s.Close()
		return nil, err
	}

	opts := []store.Option{
		store.WithLogger(logger),
		store.WithTimeout(cfg.StoreRemoteTimeout),
	}
	if recorder != nil {
		opts = append(opts, store.WithRecorder(recorder))
	}

	var remote store.RemoteStore
	if cfg.RemoteEnabled() {
		pool, err := db.Open(ctx, cfg.PGDSN)
		if err != nil {
			logger.Warn("remote store misconfigured, using local cache", slog.Any("error", err))
		} else {
			s.Pool = pool
			s.closers = append(s.closers, pool.Close)
			remote = store.NewRemote(pool)
		}
	}
	s.Fallback = store.NewFallback(s.Local, remote, opts...)
	if s.Pool != nil {
		if err := db.Ping(ctx, s.Pool, cfg.StoreRemoteTimeout); err != nil {
			logger.Warn("remote store unavailable at startup, using local cache", slog.Any("error", err))
			if err := s.Fallback.MarkPending(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
	}
	logger.Info("stores ready", slog.String("mode", string(s.Fallback.Mode(ctx))), slog.String("local", cfg.LocalDBPath))
	return s, nil
}

// Close releases every opened connection.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
