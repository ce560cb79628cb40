package validate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/etlcontext"
)

func TestSubprocessTypeAndAlwaysSucceeds(t *testing.T) {
	sub := New()
	assert.Equal(t, etlcontext.SubprocessValidate, sub.Type())

	day := etlcontext.New(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), &config.Config{}, "run-1")
	day.SetLoadedDataCount(0)
	require.NoError(t, sub.ValidateContext(day))

	count, err := sub.Execute(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	passed, errs, set := day.ValidationResult()
	require.True(t, set)
	assert.True(t, passed)
	assert.Empty(t, errs)
}

func TestSubprocessValidateContextRequiresLoadedDataCount(t *testing.T) {
	sub := New()
	day := etlcontext.New(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), &config.Config{}, "run-1")

	assert.Error(t, sub.ValidateContext(day))

	day.SetLoadedDataCount(0)
	assert.NoError(t, sub.ValidateContext(day))
}
