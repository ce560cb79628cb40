// Package columnar wraps the single session Load and Clean share with the
// columnar analytics target, grounded on db/postgres_pgx.go's pool-wrapper
// shape (connect/exec/close) but driven by clickhouse-go/v2 and carrying the
// two embedded DDL scripts spec §4.6/§4.7 treat as opaque resources.
package columnar

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/xbond-analytics/market-etl/retry"
)

//go:embed scripts/setup.sql
var setupScript string

//go:embed scripts/teardown.sql
var teardownScript string

// TableFor is the static type -> transient table map; a fixed property of
// the system rather than something a config file can override.
var TableFor = map[string]string{
	"xbond-quote":       "xbond_quote_stream_temp",
	"xbond-trade":       "xbond_trade_stream_temp",
	"bond-future-quote": "fut_market_price_stream_temp",
}

// Session is the one columnar connection opened per day, shared serially by
// Load and Clean (spec §5: "single session per day ... no locking required").
type Session struct {
	conn clickhouse.Conn
}

// Connect opens the session with exponential-backoff retry (spec §4.6 step
// 1: 3 attempts, 1s/2s/4s). On final failure the caller should wrap this as
// TargetUnavailable.
func Connect(ctx context.Context, host string, port int, user, password, database string) (*Session, error) {
	var conn clickhouse.Conn
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		c, err := clickhouse.Open(&clickhouse.Options{
			Addr: []string{fmt.Sprintf("%s:%d", host, port)},
			Auth: clickhouse.Auth{
				Database: database,
				Username: user,
				Password: password,
			},
		})
		if err != nil {
			return err
		}
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("columnar: connecting after retries: %w", err)
	}
	return &Session{conn: conn}, nil
}

// RunSetup creates the transient tables, tolerant of a prior run's leftovers
// (the embedded script uses CREATE ... IF NOT EXISTS).
func (s *Session) RunSetup(ctx context.Context) error {
	return s.runScript(ctx, setupScript)
}

// RunTeardown drops every transient table, tolerant of tables that were
// never created (DROP ... IF EXISTS).
func (s *Session) RunTeardown(ctx context.Context) error {
	return s.runScript(ctx, teardownScript)
}

// runScript executes each semicolon-separated statement in turn; the
// embedded scripts are simple fixed DDL, never user input.
func (s *Session) runScript(ctx context.Context, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if !strings.HasPrefix(strings.TrimSpace(line), "--") {
				lines = append(lines, line)
			}
		}
		stmt = strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("columnar: executing statement: %w", err)
		}
	}
	return nil
}

// Insert bulk-inserts rows into table using a column-ordered prepared batch
// (spec §4.6 step 3: "a column-ordered, typed API"). Each entry in rows must
// have len(columns) values in the same order.
func (s *Session) Insert(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	query := fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(columns, ", "))
	batch, err := s.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("columnar: preparing batch for %s: %w", table, err)
	}
	for i, row := range rows {
		if err := batch.Append(row...); err != nil {
			return fmt.Errorf("columnar: appending row %d to %s: %w", i, table, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("columnar: sending batch to %s: %w", table, err)
	}
	return nil
}

// Close releases the underlying connection. Safe to call once Load and
// Clean are both done with the session.
func (s *Session) Close() error {
	return s.conn.Close()
}
