package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/xerrors"
)

func newExtractDay(t *testing.T, sources []config.SourceConfig) *etlcontext.Context {
	t.Helper()
	return etlcontext.New(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), &config.Config{Sources: sources}, "run-1")
}

func TestExtractSubprocessValidateContextRequiresSources(t *testing.T) {
	sub := New(t.TempDir(), nil)

	day := newExtractDay(t, nil)
	assert.Error(t, sub.ValidateContext(day))

	day = newExtractDay(t, []config.SourceConfig{{Name: "quotes", Type: config.SourceTypeObjectStore, Category: config.CategoryAllPriceDepth}})
	assert.NoError(t, sub.ValidateContext(day))
}

func TestExtractSubprocessType(t *testing.T) {
	sub := New(t.TempDir(), nil)
	assert.Equal(t, etlcontext.SubprocessExtract, sub.Type())
}

func TestExtractSubprocessExecuteRejectsUnsupportedSource(t *testing.T) {
	sub := New(t.TempDir(), nil)
	day := newExtractDay(t, []config.SourceConfig{{Name: "bad", Type: "unknown"}})

	_, err := sub.Execute(nil, day) //nolint:staticcheck // Factory fails before ctx is used
	require.Error(t, err)
}

func TestWrapExtractErrClassifiesPlainErrorsAsExtractError(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	wrapped := wrapExtractErr(date, "extraction failed for source \"quotes\"", errors.New("boom"))

	xerr, ok := xerrors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, xerrors.KindExtract, xerr.Kind)
	assert.Equal(t, xerrors.SubprocessExtract, xerr.Subprocess)
	assert.ErrorIs(t, wrapped, xerr.Cause)
}

func TestWrapExtractErrKeepsAnAlreadyClassifiedError(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	original := xerrors.TargetUnavailable(xerrors.SubprocessExtract, date, "connecting to source", errors.New("connection refused"))

	wrapped := wrapExtractErr(date, "setup failed for source \"futures\"", original)

	xerr, ok := xerrors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, xerrors.KindTargetUnavailable, xerr.Kind)
	assert.Same(t, original, xerr)
}
