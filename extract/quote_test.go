package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotes.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseQuoteFileGroupsByMessageOffset(t *testing.T) {
	csv := `mq_offset,side,level,price,yield,yield_type,volume,settle,business_date,product_id,receive_time
100,bid,1,99.5,3.1,0,1000000,1,2026.01.15,210215,2026-01-15T09:30:00Z
100,offer,1,99.6,3.0,0,1000000,1,2026.01.15,210215,2026-01-15T09:30:00Z
100,bid,2,99.4,3.2,0,2000000,1,2026.01.15,210215,2026-01-15T09:30:00Z
200,bid,1,98.0,3.5,0,500000,2,2026.01.15,210220,2026-01-15T09:31:00Z
`
	path := writeCSV(t, csv)
	groups := newQuoteGroupSet()
	require.NoError(t, parseQuoteFile(path, groups))

	require.Len(t, groups.order, 2)

	g100 := groups.byOffset["100"]
	require.NotNil(t, g100)
	assert.Equal(t, "210215.IB", g100.ExchProductID)
	require.NotNil(t, g100.Bid0Price)
	assert.Equal(t, 99.5, *g100.Bid0Price)
	require.NotNil(t, g100.Offer0Price)
	assert.Equal(t, 99.6, *g100.Offer0Price)
	require.NotNil(t, g100.Bid1Price)
	assert.Equal(t, 99.4, *g100.Bid1Price)
	require.NotNil(t, g100.SettleSpeed)
	assert.Equal(t, 0, *g100.SettleSpeed) // settle=1 maps to 0

	g200 := groups.byOffset["200"]
	require.NotNil(t, g200)
	require.NotNil(t, g200.SettleSpeed)
	assert.Equal(t, 1, *g200.SettleSpeed) // settle=2 maps to 1
}

func TestApplyQuoteRowTieBreakOnlyFillsNilFields(t *testing.T) {
	groups := newQuoteGroupSet()
	header := []string{"mq_offset", "side", "level", "price", "yield", "yield_type", "volume", "settle", "business_date", "product_id", "receive_time"}
	col := columnIndex(header)

	row1 := []string{"300", "bid", "1", "100.0", "3.0", "0", "1000", "1", "2026.01.15", "X", "2026-01-15T09:30:00Z"}
	require.NoError(t, applyQuoteRow(groups, col, row1))

	// A second row for the same offset/side/level must NOT overwrite the
	// already-populated price.
	row2 := []string{"300", "bid", "1", "999.0", "9.0", "1", "9999", "1", "2026.01.15", "X", "2026-01-15T09:31:00Z"}
	require.NoError(t, applyQuoteRow(groups, col, row2))

	rec := groups.byOffset["300"]
	require.NotNil(t, rec.Bid0Price)
	assert.Equal(t, 100.0, *rec.Bid0Price)
}

func TestApplyQuoteRowRejectsInvalidLevel(t *testing.T) {
	groups := newQuoteGroupSet()
	header := []string{"mq_offset", "side", "level", "price"}
	col := columnIndex(header)
	row := []string{"1", "bid", "7", "1.0"}

	err := applyQuoteRow(groups, col, row)
	assert.Error(t, err)
}

func TestApplyQuoteRowRejectsInvalidSide(t *testing.T) {
	groups := newQuoteGroupSet()
	header := []string{"mq_offset", "side", "level", "price"}
	col := columnIndex(header)
	row := []string{"1", "mid", "1", "1.0"}

	err := applyQuoteRow(groups, col, row)
	assert.Error(t, err)
}

func TestApplyQuoteRowRejectsMissingOffset(t *testing.T) {
	groups := newQuoteGroupSet()
	header := []string{"mq_offset", "side", "level", "price"}
	col := columnIndex(header)
	row := []string{"", "bid", "1", "1.0"}

	err := applyQuoteRow(groups, col, row)
	assert.Error(t, err)
}

func TestWithIBSuffix(t *testing.T) {
	assert.Equal(t, "210215.IB", withIBSuffix("210215"))
	assert.Equal(t, "210215.IB", withIBSuffix("210215.IB"))
}

func TestMapSettlementType(t *testing.T) {
	assert.Equal(t, 0, mapSettlementType(1))
	assert.Equal(t, 1, mapSettlementType(2))
	assert.Equal(t, 9, mapSettlementType(9))
}

func TestParseFloatPtrAndIntPtr(t *testing.T) {
	header := []string{"price", "yield_type", "empty"}
	col := columnIndex(header)
	row := []string{"1.5", "2", ""}

	p := parseFloatPtr(row, col, "price")
	require.NotNil(t, p)
	assert.Equal(t, 1.5, *p)

	n := parseIntPtr(row, col, "yield_type")
	require.NotNil(t, n)
	assert.Equal(t, 2, *n)

	assert.Nil(t, parseFloatPtr(row, col, "empty"))
	assert.Nil(t, parseFloatPtr(row, col, "missing"))
}
