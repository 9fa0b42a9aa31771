package dbpool

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// Registry is the process-wide mapping from database name to its shared
// connection pool. Safe for concurrent use.
type Registry struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	pools  map[string]*pgxpool.Pool
	closed bool
}

// NewRegistry creates an empty registry. Pools are constructed lazily by
// PoolFor; nothing is dialed until a connection is first acquired.
func NewRegistry(cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:    cfg,
		logger: logger,
		pools:  make(map[string]*pgxpool.Pool),
	}
}

// PoolFor returns the shared pool for dbName, creating it on first call.
// Concurrent first calls for the same name yield the identical pool: the
// fast path is a read-locked lookup, creation re-checks under the write
// lock before inserting.
func (r *Registry) PoolFor(ctx context.Context, dbName string) (*pgxpool.Pool, error) {
	r.mu.RLock()
	pool, ok := r.pools[dbName]
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		return pool, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if pool, ok := r.pools[dbName]; ok {
		return pool, nil
	}

	poolCfg, err := pgxpool.ParseConfig(r.cfg.DSN(dbName))
	if err != nil {
		return nil, errors.Join(ErrFailedToParseConfig, err)
	}
	poolCfg.MinConns = r.cfg.MinConns
	poolCfg.MaxConns = r.cfg.MaxConns

	pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePool, err)
	}

	r.pools[dbName] = pool
	r.logger.InfoContext(ctx, "created connection pool",
		slog.String("db_name", dbName),
		slog.Int("max_conns", int(r.cfg.MaxConns)))
	return pool, nil
}

// Acquire resolves the tenant database bound to ctx and checks out a
// connection from its pool. The wait is bounded by AcquireTimeout; pool
// exhaustion and upstream unavailability both surface as ErrUnavailable.
// Callers must Release the returned connection on every exit path; pgx
// guarantees it returns to the pool it came from.
func (r *Registry) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	dbName, err := tenantctx.Database(ctx)
	if err != nil {
		return nil, err
	}

	pool, err := r.PoolFor(ctx, dbName)
	if err != nil {
		return nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, r.cfg.AcquireTimeout)
	defer cancel()

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		// No in-request retry: the upstream caller (client or cron) retries.
		return nil, errors.Join(ErrUnavailable, err)
	}
	return conn, nil
}

// CloseAll drains and closes every pool. Called once at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pgxpool.Pool)
	r.closed = true
	r.mu.Unlock()

	for dbName, pool := range pools {
		pool.Close()
		r.logger.Info("closed connection pool", slog.String("db_name", dbName))
	}
}
