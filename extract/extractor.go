// Package extract implements the Extract subprocess: the extractor factory,
// the object-store and SQL extractor variants, and the fan-out/merge logic
// described in spec §4.4.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// Extractor is a named component with the lifecycle in spec §3: setup ->
// validate -> extract -> cleanup, with cleanup guaranteed even on failure.
type Extractor interface {
	Category() string
	Setup(ctx context.Context) error
	Validate(ctx context.Context) error
	Extract(ctx context.Context) ([]records.SourceRecord, error)
	Cleanup() error
}

// Factory builds the concrete Extractor for a source config, dispatching on
// (type, category) per spec §4.4's factory table. workDir is the per-day
// local directory root for object-store downloads.
func Factory(src config.SourceConfig, businessDate time.Time, workDir string) (Extractor, error) {
	switch {
	case src.Type == config.SourceTypeObjectStore && src.Category == config.CategoryAllPriceDepth:
		return newQuoteExtractor(src, businessDate, workDir), nil
	case src.Type == config.SourceTypeObjectStore && src.Category == config.CategoryXbondCfetsDeal:
		return newTradeExtractor(src, businessDate, workDir), nil
	case src.Type == config.SourceTypeSQL && src.Category == config.CategoryBondFutureQuote:
		return newBondFutureExtractor(src, businessDate), nil
	default:
		return nil, xerrors.Config(xerrors.SubprocessExtract, businessDate,
			fmt.Sprintf("unsupported source combination type=%q category=%q", src.Type, src.Category), nil)
	}
}
