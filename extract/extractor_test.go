package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/xerrors"
)

func TestFactoryDispatchesOnTypeAndCategory(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	quote, err := Factory(config.SourceConfig{Type: config.SourceTypeObjectStore, Category: config.CategoryAllPriceDepth}, date, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.CategoryAllPriceDepth, quote.Category())

	trade, err := Factory(config.SourceConfig{Type: config.SourceTypeObjectStore, Category: config.CategoryXbondCfetsDeal}, date, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.CategoryXbondCfetsDeal, trade.Category())

	future, err := Factory(config.SourceConfig{Type: config.SourceTypeSQL, Category: config.CategoryBondFutureQuote}, date, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.CategoryBondFutureQuote, future.Category())
}

func TestFactoryRejectsUnsupportedCombination(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	_, err := Factory(config.SourceConfig{Type: "unknown", Category: "whatever"}, date, t.TempDir())
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.KindConfig))
}
