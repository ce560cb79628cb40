package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/objectstore"
	"github.com/xbond-analytics/market-etl/records"
)

const quoteDateLayout = "2006.01.02"

// quoteExtractor is the AllPriceDepth object-store extractor: list, download,
// parse, group-by-message-offset, and emit one XbondQuoteSource per group
// (spec §4.4 phases 1-5, §4.4.1 worked example).
type quoteExtractor struct {
	src          config.SourceConfig
	businessDate time.Time
	workDir      string

	client  objectstore.Client
	listing []objectstore.ListedObject
	files   []string
}

func newQuoteExtractor(src config.SourceConfig, businessDate time.Time, workDir string) *quoteExtractor {
	return &quoteExtractor{src: src, businessDate: businessDate, workDir: workDir}
}

func (e *quoteExtractor) Category() string { return config.CategoryAllPriceDepth }

func (e *quoteExtractor) Setup(ctx context.Context) error {
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

func (e *quoteExtractor) Validate(ctx context.Context) error {
	if e.src.Bucket == "" {
		return fmt.Errorf("quote extractor: bucket is required")
	}
	return nil
}

// dateFormatted renders the business date using this source's configured
// layout (spec §4.4 phase 1: "date format is extractor-specific; YYYYMMDD is
// the default, some families use YYYY-MM-DD"). The config layer stores the
// layout already as a Go reference-time string.
func (e *quoteExtractor) dateFormatted() string {
	layout := e.src.DateFormat
	if layout == "" {
		layout = "20060102"
	}
	return e.businessDate.Format(layout)
}

func (e *quoteExtractor) Extract(ctx context.Context) ([]records.SourceRecord, error) {
	prefix := fmt.Sprintf("%s/%s/", e.src.Category, e.dateFormatted())

	listing, err := objectstore.Select(ctx, e.client, e.src.Bucket, prefix)
	if err != nil {
		return nil, err
	}
	for _, obj := range listing {
		if obj.Size > e.src.MaxObjectBytes {
			return nil, fmt.Errorf("quote extractor: object %s exceeds max size %d bytes", obj.Key, e.src.MaxObjectBytes)
		}
	}
	e.listing = listing
	if len(listing) == 0 {
		return nil, nil
	}

	destDir := filepath.Join(e.workDir, e.src.Category)
	files, err := objectstore.Download(ctx, e.client, e.src.Bucket, destDir, listing, 8)
	if err != nil {
		return nil, err
	}
	e.files = files

	groups := newQuoteGroupSet()
	for _, path := range files {
		if err := parseQuoteFile(path, groups); err != nil {
			return nil, err
		}
	}

	out := make([]records.SourceRecord, 0, len(groups.order))
	for _, offset := range groups.order {
		rec := groups.byOffset[offset]
		if !rec.Validate() {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (e *quoteExtractor) Cleanup() error {
	for _, f := range e.files {
		os.Remove(f)
	}
	return nil
}

// quoteGroupSet accumulates one XbondQuoteSource per message offset while
// preserving first-seen order (spec §5: merge order is completion order
// among extractors, but within this extractor's own output we still want a
// deterministic order for tests).
type quoteGroupSet struct {
	byOffset map[string]*records.XbondQuoteSource
	order    []string
}

func newQuoteGroupSet() *quoteGroupSet {
	return &quoteGroupSet{byOffset: make(map[string]*records.XbondQuoteSource)}
}

func (g *quoteGroupSet) get(offset string) *records.XbondQuoteSource {
	rec, ok := g.byOffset[offset]
	if !ok {
		rec = &records.XbondQuoteSource{
			MessageOffset: offset,
			ProductType:   "BOND",
			Exchange:      "CFETS",
			FeedSource:    "XBOND",
			DepthLevel:    "L2",
			Status:        "Normal",
		}
		g.byOffset[offset] = rec
		g.order = append(g.order, offset)
	}
	return rec
}

// parseQuoteFile streams one CSV shard's rows into groups, applying the
// depth-level mapping rules in spec §4.4.1. Expected columns: mq_offset,
// side, level, price, yield, yield_type, volume, settle, business_date,
// product_id, receive_time.
func parseQuoteFile(path string, groups *quoteGroupSet) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("quote extractor: opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("quote extractor: reading header of %s: %w", path, err)
	}
	col := columnIndex(header)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("quote extractor: reading row of %s: %w", path, err)
		}
		if err := applyQuoteRow(groups, col, row); err != nil {
			// Invalid rows are skipped and never abort the extractor
			// (spec §4.4 phase 5); no warning is logged for them.
			continue
		}
	}
	return nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return idx
}

func applyQuoteRow(groups *quoteGroupSet, col map[string]int, row []string) error {
	offset, ok := field(row, col, "mq_offset")
	if !ok || offset == "" {
		return fmt.Errorf("missing mq_offset")
	}
	side, _ := field(row, col, "side")
	levelStr, _ := field(row, col, "level")
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 1 || level > 6 {
		return fmt.Errorf("invalid level %q", levelStr)
	}

	rec := groups.get(offset)

	if productID, ok := field(row, col, "product_id"); ok && productID != "" {
		if rec.ExchProductID == "" {
			rec.ExchProductID = withIBSuffix(productID)
		}
	}
	if bizDate, ok := field(row, col, "business_date"); ok && bizDate != "" && rec.BusinessDate.IsZero() {
		if parsed, err := time.Parse(quoteDateLayout, bizDate); err == nil {
			rec.BusinessDate = parsed
		}
	}
	if settleStr, ok := field(row, col, "settle"); ok && settleStr != "" && rec.SettleSpeed == nil {
		if settle, err := strconv.Atoi(settleStr); err == nil {
			mapped := mapSettlementType(settle)
			rec.SettleSpeed = &mapped
		}
	}
	if recvStr, ok := field(row, col, "receive_time"); ok && recvStr != "" && rec.ReceiveTime == nil {
		if parsed, err := time.Parse(time.RFC3339, recvStr); err == nil {
			rec.ReceiveTime = &parsed
		}
	}

	price := parseFloatPtr(row, col, "price")
	yield := parseFloatPtr(row, col, "yield")
	yieldType := parseIntPtr(row, col, "yield_type")
	volume := parseFloatPtr(row, col, "volume")

	slot := level - 1 // level 1 -> slot 0 (indicative); level k>=2 -> slot k-1

	switch strings.ToLower(side) {
	case "bid":
		setQuoteSlot(rec, true, slot, price, yield, yieldType, volume)
	case "offer":
		setQuoteSlot(rec, false, slot, price, yield, yieldType, volume)
	default:
		return fmt.Errorf("invalid side %q", side)
	}

	return nil
}

// setQuoteSlot writes price/yield/yieldType/volume into the bid or offer
// slot-N fields, honoring the tie-break rule ("later row wins only if
// earlier was null") and the level-1-vs-level-2..6 volume field split (slot 0
// uses *_volume, slots 1-5 use *_tradable_volume — already baked into the
// struct's field identity, this function only needs slot index and side).
func setQuoteSlot(rec *records.XbondQuoteSource, bid bool, slot int, price, yield *float64, yieldType *int, volume *float64) {
	var p, y, v **float64
	var yt **int
	switch {
	case bid && slot == 0:
		p, y, yt, v = &rec.Bid0Price, &rec.Bid0Yield, &rec.Bid0YieldType, &rec.Bid0Volume
	case bid && slot == 1:
		p, y, yt, v = &rec.Bid1Price, &rec.Bid1Yield, &rec.Bid1YieldType, &rec.Bid1Volume
	case bid && slot == 2:
		p, y, yt, v = &rec.Bid2Price, &rec.Bid2Yield, &rec.Bid2YieldType, &rec.Bid2Volume
	case bid && slot == 3:
		p, y, yt, v = &rec.Bid3Price, &rec.Bid3Yield, &rec.Bid3YieldType, &rec.Bid3Volume
	case bid && slot == 4:
		p, y, yt, v = &rec.Bid4Price, &rec.Bid4Yield, &rec.Bid4YieldType, &rec.Bid4Volume
	case bid && slot == 5:
		p, y, yt, v = &rec.Bid5Price, &rec.Bid5Yield, &rec.Bid5YieldType, &rec.Bid5Volume
	case !bid && slot == 0:
		p, y, yt, v = &rec.Offer0Price, &rec.Offer0Yield, &rec.Offer0YieldType, &rec.Offer0Volume
	case !bid && slot == 1:
		p, y, yt, v = &rec.Offer1Price, &rec.Offer1Yield, &rec.Offer1YieldType, &rec.Offer1Volume
	case !bid && slot == 2:
		p, y, yt, v = &rec.Offer2Price, &rec.Offer2Yield, &rec.Offer2YieldType, &rec.Offer2Volume
	case !bid && slot == 3:
		p, y, yt, v = &rec.Offer3Price, &rec.Offer3Yield, &rec.Offer3YieldType, &rec.Offer3Volume
	case !bid && slot == 4:
		p, y, yt, v = &rec.Offer4Price, &rec.Offer4Yield, &rec.Offer4YieldType, &rec.Offer4Volume
	case !bid && slot == 5:
		p, y, yt, v = &rec.Offer5Price, &rec.Offer5Yield, &rec.Offer5YieldType, &rec.Offer5Volume
	default:
		return
	}
	setIfNilFloat(p, price)
	setIfNilFloat(y, yield)
	setIfNilInt(yt, yieldType)
	setIfNilFloat(v, volume)
}

func setIfNilFloat(dst **float64, v *float64) {
	if *dst == nil {
		*dst = v
	}
}

func setIfNilInt(dst **int, v *int) {
	if *dst == nil {
		*dst = v
	}
}

func mapSettlementType(raw int) int {
	switch raw {
	case 1:
		return 0
	case 2:
		return 1
	default:
		return raw
	}
}

func withIBSuffix(productID string) string {
	if strings.HasSuffix(productID, ".IB") {
		return productID
	}
	return productID + ".IB"
}

func field(row []string, col map[string]int, name string) (string, bool) {
	idx, ok := col[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

func parseFloatPtr(row []string, col map[string]int, name string) *float64 {
	v, ok := field(row, col, name)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseIntPtr(row []string, col map[string]int, name string) *int {
	v, ok := field(row, col, name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
