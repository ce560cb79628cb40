// Package etlcontext defines the per-day shared state threaded through the
// five ordered subprocesses. It is a dedicated struct rather than
// context.Context: the key set is closed and known at compile time (spec §3),
// so a typed accessor per key catches the mistakes a stringly-typed
// context.Value lookup would only surface at runtime.
package etlcontext

import (
	"fmt"
	"sync"
	"time"

	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// SubprocessType is an alias of xerrors.SubprocessType so that a context's
// currentSubprocess value and an error's Subprocess field are always the same
// type — there is exactly one enum for "which subprocess", not two that
// happen to share string values.
type SubprocessType = xerrors.SubprocessType

const (
	SubprocessNone      = xerrors.SubprocessNone
	SubprocessExtract   = xerrors.SubprocessExtract
	SubprocessTransform = xerrors.SubprocessTransform
	SubprocessLoad      = xerrors.SubprocessLoad
	SubprocessValidate  = xerrors.SubprocessValidate
	SubprocessClean     = xerrors.SubprocessClean
)

// Context is the per-day shared state. It is owned by exactly one daily
// workflow invocation: created at the start of the day, discarded at day end.
// Fields are unexported and reached only through the accessors below so that
// each subprocess's "declared keys" discipline (spec §4.3) is enforced by the
// compiler rather than by convention.
type Context struct {
	mu sync.RWMutex

	currentDate       time.Time
	config            *config.Config
	currentSubprocess SubprocessType

	extractedData      []records.SourceRecord
	extractedDataSet    bool

	transformedData     []records.TargetRecord
	transformedDataSet   bool

	loadedDataCount    int
	loadedDataSet      bool

	validationPassed bool
	validationErrors []string
	validationSet    bool

	cleanupPerformed bool

	// runID is a supplemental correlation identifier (not part of the
	// closed key set in spec §3) attached to the log lines emitted while
	// processing this day.
	runID string
}

// New creates a fresh context for businessDate, seeded with cfg. This is the
// only constructor: every field besides currentDate/config/runID starts
// unset, and subprocesses populate their declared outputs as they run.
func New(businessDate time.Time, cfg *config.Config, runID string) *Context {
	return &Context{
		currentDate: businessDate,
		config:      cfg,
		runID:       runID,
	}
}

// CurrentDate returns the business date this context was created for.
func (c *Context) CurrentDate() time.Time {
	return c.currentDate
}

// Config returns the frozen run configuration.
func (c *Context) Config() *config.Config {
	return c.config
}

// RunID returns the correlation identifier for this day's run.
func (c *Context) RunID() string {
	return c.runID
}

// SetCurrentSubprocess records which subprocess is presently executing, for
// diagnostics. Only the subprocess framework calls this.
func (c *Context) SetCurrentSubprocess(sp SubprocessType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentSubprocess = sp
}

// CurrentSubprocess returns the subprocess presently (or most recently)
// executing.
func (c *Context) CurrentSubprocess() SubprocessType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentSubprocess
}

// SetExtractedData is called exactly once, by Extract, on success. Calling it
// twice is a programming error (a subprocess writing keys it does not own, or
// writing its own key twice) and panics loudly rather than silently
// overwriting committed state — invariant (1) in spec §3.
func (c *Context) SetExtractedData(data []records.SourceRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.extractedDataSet {
		panic("etlcontext: extractedData written more than once")
	}
	c.extractedData = data
	c.extractedDataSet = true
}

// ExtractedData returns the records Extract produced, and whether Extract has
// run yet.
func (c *Context) ExtractedData() ([]records.SourceRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extractedData, c.extractedDataSet
}

// ExtractedDataCount returns len(extractedData); it is always non-negative.
func (c *Context) ExtractedDataCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.extractedData)
}

// SetTransformedData is called exactly once, by Transform, on success.
func (c *Context) SetTransformedData(data []records.TargetRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transformedDataSet {
		panic("etlcontext: transformedData written more than once")
	}
	c.transformedData = data
	c.transformedDataSet = true
}

// TransformedData returns the records Transform produced, and whether
// Transform has run yet.
func (c *Context) TransformedData() ([]records.TargetRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transformedData, c.transformedDataSet
}

// TransformedDataCount returns len(transformedData).
func (c *Context) TransformedDataCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.transformedData)
}

// SetLoadedDataCount is called exactly once, by Load, on success.
func (c *Context) SetLoadedDataCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadedDataSet {
		panic("etlcontext: loadedDataCount written more than once")
	}
	c.loadedDataCount = n
	c.loadedDataSet = true
}

// LoadedDataCount returns the number of records Load inserted, and whether
// Load has run yet.
func (c *Context) LoadedDataCount() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedDataCount, c.loadedDataSet
}

// SetValidationResult is called exactly once, by Validate.
func (c *Context) SetValidationResult(passed bool, errs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.validationSet {
		panic("etlcontext: validation result written more than once")
	}
	c.validationPassed = passed
	c.validationErrors = errs
	c.validationSet = true
}

// ValidationResult returns Validate's verdict and whether Validate has run.
func (c *Context) ValidationResult() (passed bool, errs []string, set bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validationPassed, c.validationErrors, c.validationSet
}

// SetCleanupPerformed records that Clean ran. Unlike the other setters this
// may be called even when the day already failed, and is idempotent (Clean
// may run its own internal retries) rather than panicking on a second call.
func (c *Context) SetCleanupPerformed(performed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupPerformed = c.cleanupPerformed || performed
}

// CleanupPerformed reports whether Clean has run.
func (c *Context) CleanupPerformed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cleanupPerformed
}

// Snapshot is a diagnostics-only, read-only view of a context's state,
// useful for structured log lines and for assertions in tests (spec §8
// property 2, context isolation).
type Snapshot struct {
	Date                  time.Time
	Subprocess            SubprocessType
	ExtractedDataCount    int
	TransformedDataCount  int
	LoadedDataCount       int
	ValidationPassed      bool
	ValidationErrorCount  int
	CleanupPerformed      bool
}

// Snapshot takes a consistent, point-in-time copy of the counters for
// logging; it never exposes the underlying record slices.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Date:                 c.currentDate,
		Subprocess:           c.currentSubprocess,
		ExtractedDataCount:   len(c.extractedData),
		TransformedDataCount: len(c.transformedData),
		LoadedDataCount:      c.loadedDataCount,
		ValidationPassed:     c.validationPassed,
		ValidationErrorCount: len(c.validationErrors),
		CleanupPerformed:     c.cleanupPerformed,
	}
}

// String renders a compact one-line summary, used by the workflow's
// per-day summary log line.
func (s Snapshot) String() string {
	return fmt.Sprintf(
		"date=%s subprocess=%s extracted=%d transformed=%d loaded=%d validationPassed=%t cleaned=%t",
		s.Date.Format("20060102"), s.Subprocess, s.ExtractedDataCount,
		s.TransformedDataCount, s.LoadedDataCount, s.ValidationPassed, s.CleanupPerformed,
	)
}
