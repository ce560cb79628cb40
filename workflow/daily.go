package workflow

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xbond-analytics/market-etl/etlcontext"
)

// SubprocessResult records one stage's outcome within a day (spec §4.3:
// "the framework wraps each call with start/end timing and status logging").
type SubprocessResult struct {
	Type     etlcontext.SubprocessType
	Count    int
	Err      error
	Duration time.Duration
}

// DailyResult aggregates every subprocess's outcome for one business date.
type DailyResult struct {
	Date     time.Time
	Stages   []SubprocessResult
	Success  bool
	Snapshot etlcontext.Snapshot
}

// DailyWorkflow runs EXTRACT, TRANSFORM, LOAD, VALIDATE in strict order,
// stopping at the first failure, then always runs CLEAN (spec §4.2).
type DailyWorkflow struct {
	extract  Subprocess
	transform Subprocess
	load     Subprocess
	validate Subprocess
	clean    Subprocess
	logger   *logrus.Entry
}

// NewDailyWorkflow builds the fixed five-stage pipeline. The ordering is not
// configurable (spec §4.2: "The ordering is fixed; it is not configurable").
func NewDailyWorkflow(extract, transform, load, validate, clean Subprocess, logger *logrus.Entry) *DailyWorkflow {
	return &DailyWorkflow{
		extract:   extract,
		transform: transform,
		load:      load,
		validate:  validate,
		clean:     clean,
		logger:    logger,
	}
}

// Run executes the day's subprocesses against day, returning the aggregated
// result. CLEAN always runs last, regardless of whether an earlier stage
// failed (spec §4.2 step 2, rationale: transient artifacts must never
// outlive the day that created them).
func (w *DailyWorkflow) Run(ctx context.Context, day *etlcontext.Context) DailyResult {
	result := DailyResult{Date: day.CurrentDate(), Success: true}

	ordered := []Subprocess{w.extract, w.transform, w.load, w.validate}
	for _, sp := range ordered {
		stage := w.runStage(ctx, day, sp)
		result.Stages = append(result.Stages, stage)
		if stage.Err != nil {
			result.Success = false
			break
		}
	}

	cleanStage := w.runStage(ctx, day, w.clean)
	result.Stages = append(result.Stages, cleanStage)
	// Clean's own failure never changes the day's outcome; the data outcome
	// was already decided by the stages above (spec §4.2 step 2).

	result.Snapshot = day.Snapshot()
	w.logDaySummary(result)
	return result
}

// logDaySummary emits the one-line per-day summary (spec §11) once every
// stage, including CLEAN, has finished.
func (w *DailyWorkflow) logDaySummary(result DailyResult) {
	if w.logger == nil {
		return
	}
	entry := w.logger.WithField("success", result.Success)
	if result.Success {
		entry.Info(result.Snapshot.String())
	} else {
		entry.Warn(result.Snapshot.String())
	}
}

func (w *DailyWorkflow) runStage(ctx context.Context, day *etlcontext.Context, sp Subprocess) SubprocessResult {
	day.SetCurrentSubprocess(sp.Type())
	start := time.Now()

	var count int
	var err error
	if err = sp.ValidateContext(day); err == nil {
		count, err = sp.Execute(ctx, day)
	}
	duration := time.Since(start)

	if w.logger != nil {
		entry := w.logger.WithFields(logrus.Fields{
			"subprocess": sp.Type(),
			"date":       day.CurrentDate().Format("20060102"),
			"counters":   count,
			"durationMs": duration.Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Error("subprocess failed")
		} else {
			entry.Info("subprocess completed")
		}
	}

	return SubprocessResult{Type: sp.Type(), Count: count, Err: err, Duration: duration}
}
