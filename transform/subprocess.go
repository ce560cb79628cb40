package transform

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/workpool"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// Subprocess is the Transform stage of the daily workflow (spec §4.5): it
// partitions extractedData by sourceType, dispatches each non-empty group to
// its registered Transformer concurrently, and fails fast on the first
// per-record error.
type Subprocess struct {
	registry *Registry
	logger   *logrus.Entry
}

// New builds the Transform subprocess with the default registry (spec §4.5's
// "one transformer per source family" is a closed, compile-time set; there is
// no pluggable per-run transformer configuration).
func New(logger *logrus.Entry) *Subprocess {
	return &Subprocess{registry: NewRegistry(), logger: logger}
}

func (s *Subprocess) Type() etlcontext.SubprocessType { return etlcontext.SubprocessTransform }

// ValidateContext requires extractedData to already be present; Transform
// reads Extract's declared output and nothing else (spec §4.3).
func (s *Subprocess) ValidateContext(day *etlcontext.Context) error {
	if _, ok := day.ExtractedData(); !ok {
		return xerrors.Config(etlcontext.SubprocessTransform, day.CurrentDate(), "extractedData missing: Extract must run before Transform", nil)
	}
	return nil
}

// group is one sourceType's ordered slice of extracted records, preserving
// input order so "input order preserved one-to-one to output order" (spec
// §5) holds within each group.
type group struct {
	sourceType string
	records    []records.SourceRecord
}

func (s *Subprocess) Execute(ctx context.Context, day *etlcontext.Context) (int, error) {
	extracted, _ := day.ExtractedData()

	groups := partitionBySourceType(extracted)
	if len(groups) == 0 {
		day.SetTransformedData(nil)
		return 0, nil
	}

	tasks := make([]workpool.Task[[]records.TargetRecord], 0, len(groups))
	for _, g := range groups {
		g := g
		transformer, ok := s.registry.Lookup(g.sourceType)
		if !ok {
			return 0, xerrors.Config(etlcontext.SubprocessTransform, day.CurrentDate(), fmt.Sprintf("no transformer registered for sourceType %q", g.sourceType), nil)
		}
		tasks = append(tasks, func(taskCtx context.Context) ([]records.TargetRecord, error) {
			out := make([]records.TargetRecord, 0, len(g.records))
			for i, src := range g.records {
				select {
				case <-taskCtx.Done():
					return nil, taskCtx.Err()
				default:
				}
				target, warnings, err := transformer.Transform(src)
				if err != nil {
					return nil, xerrors.Transformation(day.CurrentDate(), g.sourceType, i, err)
				}
				for _, w := range warnings {
					if s.logger != nil {
						s.logger.WithFields(logrus.Fields{
							"sourceType": g.sourceType,
							"index":      i,
							"field":      w.Field,
						}).Warn(w.Reason)
					}
				}
				out = append(out, target)
			}
			return out, nil
		})
	}

	maxConcurrency := len(tasks)
	results, err := workpool.RunFailFast(ctx, maxConcurrency, tasks)
	if err != nil {
		return 0, err
	}

	total := 0
	var merged []records.TargetRecord
	for _, r := range results {
		if r.Err != nil {
			return 0, r.Err
		}
		merged = append(merged, r.Value...)
		total += len(r.Value)
	}

	day.SetTransformedData(merged)
	return total, nil
}

func partitionBySourceType(src []records.SourceRecord) []group {
	order := make([]string, 0)
	byType := make(map[string][]records.SourceRecord)
	for _, rec := range src {
		st := rec.SourceType()
		if _, seen := byType[st]; !seen {
			order = append(order, st)
		}
		byType[st] = append(byType[st], rec)
	}
	groups := make([]group, 0, len(order))
	for _, st := range order {
		groups = append(groups, group{sourceType: st, records: byType[st]})
	}
	return groups
}
