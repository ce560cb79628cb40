package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/objectstore"
	"github.com/xbond-analytics/market-etl/records"
)

// tradeExtractor is the XbondCfetsDeal object-store extractor: each CSV row
// becomes one XbondTradeSource, no grouping (spec §4.4, trade.go comment).
type tradeExtractor struct {
	src          config.SourceConfig
	businessDate time.Time
	workDir      string

	client objectstore.Client
	files  []string
}

func newTradeExtractor(src config.SourceConfig, businessDate time.Time, workDir string) *tradeExtractor {
	return &tradeExtractor{src: src, businessDate: businessDate, workDir: workDir}
}

func (e *tradeExtractor) Category() string { return config.CategoryXbondCfetsDeal }

func (e *tradeExtractor) Setup(ctx context.Context) error {
	client, err := objectstore.NewClient(ctx, objectstore.Options{
		Endpoint:        e.src.Endpoint,
		Region:          e.src.Region,
		AccessKeyID:     e.src.AccessKeyID,
		SecretAccessKey: e.src.SecretAccessKey,
		UsePathStyle:    true,
	})
	if err != nil {
		return err
	}
	e.client = client
	return nil
}

func (e *tradeExtractor) Validate(ctx context.Context) error {
	if e.src.Bucket == "" {
		return fmt.Errorf("trade extractor: bucket is required")
	}
	return nil
}

func (e *tradeExtractor) dateFormatted() string {
	layout := e.src.DateFormat
	if layout == "" {
		layout = "20060102"
	}
	return e.businessDate.Format(layout)
}

func (e *tradeExtractor) Extract(ctx context.Context) ([]records.SourceRecord, error) {
	prefix := fmt.Sprintf("%s/%s/", e.src.Category, e.dateFormatted())

	listing, err := objectstore.Select(ctx, e.client, e.src.Bucket, prefix)
	if err != nil {
		return nil, err
	}
	for _, obj := range listing {
		if obj.Size > e.src.MaxObjectBytes {
			return nil, fmt.Errorf("trade extractor: object %s exceeds max size %d bytes", obj.Key, e.src.MaxObjectBytes)
		}
	}
	if len(listing) == 0 {
		return nil, nil
	}

	destDir := filepath.Join(e.workDir, e.src.Category)
	files, err := objectstore.Download(ctx, e.client, e.src.Bucket, destDir, listing, 8)
	if err != nil {
		return nil, err
	}
	e.files = files

	var out []records.SourceRecord
	for _, path := range files {
		rows, err := parseTradeFile(path)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if r.Validate() {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (e *tradeExtractor) Cleanup() error {
	for _, f := range e.files {
		os.Remove(f)
	}
	return nil
}

// parseTradeFile streams one CSV shard's rows into XbondTradeSource values.
// Expected columns: trade_id, product_id, trade_side, price, yield, volume,
// trade_date, receive_time, counterparty_code (documented upstream as always
// empty — spec §9 open question; read here but never written to the target).
func parseTradeFile(path string) ([]*records.XbondTradeSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trade extractor: opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("trade extractor: reading header of %s: %w", path, err)
	}
	col := columnIndex(header)

	var out []*records.XbondTradeSource
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trade extractor: reading row of %s: %w", path, err)
		}
		rec, ok := applyTradeRow(col, row)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func applyTradeRow(col map[string]int, row []string) (*records.XbondTradeSource, bool) {
	tradeID, ok := field(row, col, "trade_id")
	if !ok || tradeID == "" {
		return nil, false
	}
	productID, _ := field(row, col, "product_id")
	if productID == "" {
		return nil, false
	}

	rec := &records.XbondTradeSource{
		ExchProductID: withIBSuffix(productID),
		TradeID:       tradeID,
		TradePrice:    parseFloatPtr(row, col, "price"),
		TradeYield:    parseFloatPtr(row, col, "yield"),
		TradeVolume:   parseFloatPtr(row, col, "volume"),
	}
	if rec.TradePrice == nil {
		return nil, false
	}
	if side := parseIntPtr(row, col, "trade_side"); side != nil {
		rec.TradeSide = side
	}
	if bizDate, ok := field(row, col, "trade_date"); ok {
		rec.TradeDate = bizDate
		if parsed, err := time.Parse("2006.01.02", bizDate); err == nil {
			rec.BusinessDate = parsed
		}
	}
	if recvStr, ok := field(row, col, "receive_time"); ok && recvStr != "" {
		if parsed, err := time.Parse(time.RFC3339, recvStr); err == nil {
			rec.ReceiveTime = &parsed
		}
	}
	if cc, ok := field(row, col, "counterparty_code"); ok {
		rec.CounterpartyCode = cc
	}

	return rec, true
}
