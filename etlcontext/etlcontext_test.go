package etlcontext

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/records"
)

func newTestContext() *Context {
	return New(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), &config.Config{}, "run-1")
}

func TestNewContextStartsEmpty(t *testing.T) {
	c := newTestContext()

	_, set := c.ExtractedData()
	assert.False(t, set)
	assert.Equal(t, 0, c.ExtractedDataCount())

	_, set = c.TransformedData()
	assert.False(t, set)

	_, set = c.LoadedDataCount()
	assert.False(t, set)

	_, _, set = c.ValidationResult()
	assert.False(t, set)

	assert.False(t, c.CleanupPerformed())
	assert.Equal(t, "run-1", c.RunID())
}

func TestSetExtractedDataOnceSucceeds(t *testing.T) {
	c := newTestContext()
	data := []records.SourceRecord{}

	assert.NotPanics(t, func() { c.SetExtractedData(data) })

	got, set := c.ExtractedData()
	assert.True(t, set)
	assert.Equal(t, data, got)
}

func TestSetExtractedDataTwicePanics(t *testing.T) {
	c := newTestContext()
	c.SetExtractedData(nil)

	assert.PanicsWithValue(t, "etlcontext: extractedData written more than once", func() {
		c.SetExtractedData(nil)
	})
}

func TestSetTransformedDataTwicePanics(t *testing.T) {
	c := newTestContext()
	c.SetTransformedData(nil)

	assert.Panics(t, func() { c.SetTransformedData(nil) })
}

func TestSetLoadedDataCountTwicePanics(t *testing.T) {
	c := newTestContext()
	c.SetLoadedDataCount(10)

	n, set := c.LoadedDataCount()
	assert.True(t, set)
	assert.Equal(t, 10, n)

	assert.Panics(t, func() { c.SetLoadedDataCount(20) })
}

func TestSetValidationResultTwicePanics(t *testing.T) {
	c := newTestContext()
	c.SetValidationResult(true, nil)

	passed, errs, set := c.ValidationResult()
	assert.True(t, set)
	assert.True(t, passed)
	assert.Empty(t, errs)

	assert.Panics(t, func() { c.SetValidationResult(false, []string{"x"}) })
}

func TestSetCleanupPerformedIsIdempotentNotPanicking(t *testing.T) {
	c := newTestContext()
	assert.NotPanics(t, func() {
		c.SetCleanupPerformed(true)
		c.SetCleanupPerformed(true)
		c.SetCleanupPerformed(false)
	})
	assert.True(t, c.CleanupPerformed())
}

// Two independently constructed contexts for different business dates must
// never share state: writing to one must not be observable on the other.
func TestContextIsolationAcrossDays(t *testing.T) {
	day1 := New(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), &config.Config{}, "run-1")
	day2 := New(time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), &config.Config{}, "run-2")

	day1.SetExtractedData([]records.SourceRecord{})
	day1.SetCleanupPerformed(true)

	_, set := day2.ExtractedData()
	assert.False(t, set)
	assert.False(t, day2.CleanupPerformed())
	assert.NotEqual(t, day1.CurrentDate(), day2.CurrentDate())
	assert.NotEqual(t, day1.RunID(), day2.RunID())
}

func TestConcurrentReadsDuringWriteDoNotRace(t *testing.T) {
	c := newTestContext()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SetExtractedData([]records.SourceRecord{})
	}()

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.ExtractedData()
			_ = c.ExtractedDataCount()
			_ = c.Snapshot()
		}()
	}

	wg.Wait()
	_, set := c.ExtractedData()
	assert.True(t, set)
}

func TestSnapshotReflectsCounters(t *testing.T) {
	c := newTestContext()
	c.SetCurrentSubprocess(SubprocessLoad)
	c.SetExtractedData([]records.SourceRecord{})
	c.SetTransformedData([]records.TargetRecord{})
	c.SetLoadedDataCount(7)
	c.SetValidationResult(false, []string{"mismatch"})
	c.SetCleanupPerformed(true)

	snap := c.Snapshot()
	assert.Equal(t, SubprocessLoad, snap.Subprocess)
	assert.Equal(t, 7, snap.LoadedDataCount)
	assert.False(t, snap.ValidationPassed)
	assert.Equal(t, 1, snap.ValidationErrorCount)
	assert.True(t, snap.CleanupPerformed)

	require.Contains(t, snap.String(), "loaded=7")
	assert.Contains(t, snap.String(), "validationPassed=false")
}
