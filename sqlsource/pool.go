// Package sqlsource wraps a pgx connection pool for the SQL extractor
// (bond-future quote category, spec §4.4 "SQL extractor contract"), adapted
// from db/postgres_pgx.go's PostgresDB wrapper but bounded (min/max) and
// retrying per spec §4.4/§5: "acquire a connection from a pool (default
// min=1, max=5) with exponential backoff retry on connect failure".
package sqlsource

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xbond-analytics/market-etl/retry"
)

// Pool wraps a pgxpool.Pool sized per the source config's PoolMin/PoolMax.
type Pool struct {
	pool *pgxpool.Pool
}

// Connect builds a pool against connString, retrying the initial ping with
// exponential backoff (3 attempts, 1s/2s/4s per spec §4.4) before giving up.
func Connect(ctx context.Context, connString string, poolMin, poolMax int) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: parsing connection string: %w", err)
	}
	cfg.MinConns = int32(poolMin)
	cfg.MaxConns = int32(poolMax)

	var pool *pgxpool.Pool
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		p, pingErr := pgxpool.NewWithConfig(ctx, cfg)
		if pingErr != nil {
			return pingErr
		}
		if pingErr = p.Ping(ctx); pingErr != nil {
			p.Close()
			return pingErr
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlsource: connecting after retries: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Close releases every connection in the pool.
func (p *Pool) Close() {
	p.pool.Close()
}

// Query runs sql with a bounded timeout, returning a streaming row cursor
// (spec §4.4: "execute with a configurable timeout ... stream the result set
// row-by-row"). The returned context.CancelFunc must be deferred by the
// caller alongside rows.Close() to release the timeout timer.
func (p *Pool) Query(ctx context.Context, timeout time.Duration, sql string, args ...interface{}) (pgx.Rows, context.CancelFunc, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	rows, err := p.pool.Query(queryCtx, sql, args...)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return rows, cancel, nil
}
