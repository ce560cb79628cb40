package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xbond-analytics/market-etl/bizdate"
	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/etlcontext"
)

// DailyWorkflowFactory builds the day's subprocess pipeline. It is a factory
// rather than a fixed value because Load and Clean share a *columnar.Session
// that must be fresh per day (spec §3: "transient target artifact ... every
// transient artifact created for day D must be dropped at the end of D's
// workflow").
type DailyWorkflowFactory func(day *etlcontext.Context) *DailyWorkflow

// Engine expands a date range into business dates and drives the daily
// workflow for each, sequentially (spec §4.1: "there is no inter-day
// parallelism").
type Engine struct {
	cfg     *config.Config
	factory DailyWorkflowFactory
}

// NewEngine builds the workflow engine for a frozen run configuration.
func NewEngine(cfg *config.Config, factory DailyWorkflowFactory) *Engine {
	return &Engine{cfg: cfg, factory: factory}
}

// AggregateCounts summarizes totals across every day in a run, the §11
// run-level summary fields.
type AggregateCounts struct {
	DaysProcessed  int
	DaysSucceeded  int
	DaysFailed     int
	ExtractedTotal int
	TransformedTotal int
	LoadedTotal    int
}

// WorkflowResult is the outcome of running the engine over a date range.
type WorkflowResult struct {
	Days      []DailyResult
	Success   bool
	Aggregate AggregateCounts
}

// Execute expands [from, to] inclusive and runs the daily workflow for each
// date in order, continuing past per-day failures (spec §4.1 "Failure
// semantics": "A per-day failure is recorded and reported but does not abort
// the run"). fromDate/toDate must already satisfy fromDate <= toDate; the
// caller (CLI) owns date parsing and that ordering check per spec §6.
func (e *Engine) Execute(ctx context.Context, fromDate, toDate time.Time) (WorkflowResult, error) {
	days, err := bizdate.Range(fromDate, toDate)
	if err != nil {
		return WorkflowResult{}, fmt.Errorf("workflow: expanding date range: %w", err)
	}

	result := WorkflowResult{Success: true}
	for _, date := range days {
		runID := uuid.New().String()
		day := etlcontext.New(date, e.cfg, runID)

		dw := e.factory(day)
		daily := dw.Run(ctx, day)

		result.Days = append(result.Days, daily)
		result.Aggregate.DaysProcessed++
		if daily.Success {
			result.Aggregate.DaysSucceeded++
		} else {
			result.Aggregate.DaysFailed++
			result.Success = false
		}
		result.Aggregate.ExtractedTotal += daily.Snapshot.ExtractedDataCount
		result.Aggregate.TransformedTotal += daily.Snapshot.TransformedDataCount
		result.Aggregate.LoadedTotal += daily.Snapshot.LoadedDataCount
	}

	return result, nil
}
