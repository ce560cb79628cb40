package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/records"
)

func TestRegistryLookupKnownTypes(t *testing.T) {
	r := NewRegistry()

	for _, sourceType := range []string{
		records.SourceTypeXbondQuote,
		records.SourceTypeXbondTrade,
		records.SourceTypeBondFutureQuote,
	} {
		tr, ok := r.Lookup(sourceType)
		require.True(t, ok, "expected transformer for %s", sourceType)
		assert.Equal(t, sourceType, tr.SourceType)
	}
}

func TestRegistryLookupUnknownType(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("unknown-type")
	assert.False(t, ok)
}

func TestTransformerAppliesTradeOverride(t *testing.T) {
	r := NewRegistry()
	tr, ok := r.Lookup(records.SourceTypeXbondTrade)
	require.True(t, ok)

	side := 3
	price := 100.25
	src := &records.XbondTradeSource{
		ExchProductID: "210215.IB",
		TradeID:       "T42",
		TradeSide:     &side,
		TradePrice:    &price,
	}

	out, _, err := tr.Transform(src)
	require.NoError(t, err)
	target, ok := out.(*records.XbondTradeTarget)
	require.True(t, ok)
	assert.Equal(t, 3, target.LastTradeSide)
	assert.Equal(t, records.DataTypeXbondTrade, target.DataType())
}

func TestTransformerPropagatesMapperBindingError(t *testing.T) {
	r := NewRegistry()
	tr, ok := r.Lookup(records.SourceTypeXbondTrade)
	require.True(t, ok)

	// A quote source routed through the trade transformer is itself a
	// SourceRecord, so it compiles, but it violates the transformer's
	// static binding to XbondTradeSource.
	wrongType := records.SourceRecord(&records.XbondQuoteSource{ExchProductID: "X"})

	out, warnings, err := tr.Transform(wrongType)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, warnings)
}
