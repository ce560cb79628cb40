package transform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// impostorTradeRecord claims SourceTypeXbondTrade so partitionBySourceType
// routes it to the trade Transformer, but it is not a *records.XbondTradeSource,
// so it violates that Transformer's Mapper's static binding and lets tests
// exercise the subprocess's fail-fast path without a real malformed feed.
type impostorTradeRecord struct{}

func (impostorTradeRecord) SourceType() string { return records.SourceTypeXbondTrade }
func (impostorTradeRecord) Key() records.SourceKey {
	return records.SourceKey{ProductID: "impostor"}
}
func (impostorTradeRecord) Validate() bool { return true }

func newDay(t *testing.T) *etlcontext.Context {
	t.Helper()
	return etlcontext.New(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), &config.Config{}, "run-1")
}

func TestPartitionBySourceTypePreservesOrder(t *testing.T) {
	price := 1.0
	src := []records.SourceRecord{
		&records.XbondQuoteSource{ExchProductID: "A", Bid0Price: &price},
		&records.XbondTradeSource{ExchProductID: "A", TradeID: "T1", TradePrice: &price},
		&records.XbondQuoteSource{ExchProductID: "B", Bid0Price: &price},
	}

	groups := partitionBySourceType(src)
	require.Len(t, groups, 2)
	assert.Equal(t, records.SourceTypeXbondQuote, groups[0].sourceType)
	assert.Len(t, groups[0].records, 2)
	assert.Equal(t, records.SourceTypeXbondTrade, groups[1].sourceType)
	assert.Len(t, groups[1].records, 1)
}

func TestSubprocessValidateContextRequiresExtractedData(t *testing.T) {
	sub := New(nil)
	day := newDay(t)

	err := sub.ValidateContext(day)
	assert.Error(t, err)

	day.SetExtractedData(nil)
	assert.NoError(t, sub.ValidateContext(day))
}

func TestSubprocessExecuteTransformsEveryGroup(t *testing.T) {
	sub := New(nil)
	day := newDay(t)

	price := 99.5
	tradePrice := 100.0
	day.SetExtractedData([]records.SourceRecord{
		&records.XbondQuoteSource{ExchProductID: "A", Bid0Price: &price},
		&records.XbondTradeSource{ExchProductID: "A", TradeID: "T1", TradePrice: &tradePrice},
	})

	count, err := sub.Execute(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	transformed, set := day.TransformedData()
	require.True(t, set)
	assert.Len(t, transformed, 2)
}

func TestSubprocessExecuteWithNoExtractedDataSetsEmptyTransformed(t *testing.T) {
	sub := New(nil)
	day := newDay(t)
	day.SetExtractedData(nil)

	count, err := sub.Execute(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, set := day.TransformedData()
	assert.True(t, set)
}

func TestSubprocessType(t *testing.T) {
	sub := New(nil)
	assert.Equal(t, etlcontext.SubprocessTransform, sub.Type())
}

// TestSubprocessExecuteSurfacesTransformationErrorAndLeavesTransformedDataUnset
// covers the spec's fail-fast scenario: one group's transformer throws on a
// record, the subprocess surfaces it as a classified TransformationError
// carrying the group's sourceType and the record's index, and
// transformedData is never set for the day.
func TestSubprocessExecuteSurfacesTransformationErrorAndLeavesTransformedDataUnset(t *testing.T) {
	sub := New(nil)
	day := newDay(t)

	day.SetExtractedData([]records.SourceRecord{
		impostorTradeRecord{},
	})

	count, err := sub.Execute(context.Background(), day)
	assert.Equal(t, 0, count)
	require.Error(t, err)

	xerr, ok := xerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, xerrors.KindTransformation, xerr.Kind)
	assert.Equal(t, records.SourceTypeXbondTrade, xerr.SourceType)
	assert.Equal(t, 0, xerr.Index)

	_, set := day.TransformedData()
	assert.False(t, set)
}
