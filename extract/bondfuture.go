package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/sqlsource"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// bondFutureExtractor is the SQL extractor (spec §4.4 "SQL extractor
// contract"): template substitution, pooled connection with retry, bounded
// streamed query, per-row mapping.
type bondFutureExtractor struct {
	src          config.SourceConfig
	businessDate time.Time

	pool *sqlsource.Pool
}

func newBondFutureExtractor(src config.SourceConfig, businessDate time.Time) *bondFutureExtractor {
	return &bondFutureExtractor{src: src, businessDate: businessDate}
}

func (e *bondFutureExtractor) Category() string { return config.CategoryBondFutureQuote }

func (e *bondFutureExtractor) Setup(ctx context.Context) error {
	pool, err := sqlsource.Connect(ctx, e.src.DBURL, e.src.PoolMin, e.src.PoolMax)
	if err != nil {
		return xerrors.TargetUnavailable(xerrors.SubprocessExtract, e.businessDate, "connecting to bond-future quote source", err)
	}
	e.pool = pool
	return nil
}

func (e *bondFutureExtractor) Validate(ctx context.Context) error {
	if e.src.SQLTemplate == "" {
		return fmt.Errorf("bond future extractor: sql.template is required")
	}
	return nil
}

func (e *bondFutureExtractor) Extract(ctx context.Context) ([]records.SourceRecord, error) {
	query := strings.ReplaceAll(e.src.SQLTemplate, "{BUSINESS_DATE}", e.businessDate.Format("20060102"))

	rows, cancel, err := e.pool.Query(ctx, e.src.QueryTimeout, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, xerrors.TimeoutErr(e.businessDate, "bond future quote query timed out", err)
		}
		return nil, xerrors.Extract(e.businessDate, "bond future quote query failed", err)
	}
	defer cancel()
	defer rows.Close()

	var out []records.SourceRecord
	for rows.Next() {
		rec, err := mapBondFutureRow(rows)
		if err != nil {
			// Invalid rows are skipped, never aborting the extractor
			// (spec §4.4 phase 4); no warning is logged for them.
			continue
		}
		if rec.Validate() {
			out = append(out, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Extract(e.businessDate, "bond future quote row iteration failed", err)
	}
	return out, nil
}

func (e *bondFutureExtractor) Cleanup() error {
	if e.pool != nil {
		e.pool.Close()
	}
	return nil
}

// rowScanner is the subset of pgx.Rows this package needs, narrowed so
// mapBondFutureRow can be unit tested against a hand-rolled fake without
// a real connection.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func mapBondFutureRow(row rowScanner) (*records.BondFutureQuoteSource, error) {
	var (
		businessDate time.Time
		productID    string
		lastPrice    *float64
		bidPrice     *float64
		askPrice     *float64
		volume       *int64
		openInterest *int64
		receiveTime  *time.Time
	)
	if err := row.Scan(&businessDate, &productID, &lastPrice, &bidPrice, &askPrice, &volume, &openInterest, &receiveTime); err != nil {
		return nil, err
	}
	return &records.BondFutureQuoteSource{
		BusinessDate:  businessDate,
		ExchProductID: productID,
		LastPrice:     lastPrice,
		BidPrice:      bidPrice,
		AskPrice:      askPrice,
		Volume:        volume,
		OpenInterest:  openInterest,
		ReceiveTime:   receiveTime,
	}, nil
}
