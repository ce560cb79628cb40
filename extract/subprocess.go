package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/workpool"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// Subprocess is the Extract stage of the daily workflow (spec §4.4): it
// builds one Extractor per configured source, runs each through its full
// setup/validate/extract/cleanup lifecycle concurrently, and merges their
// output into a single extractedData slice.
type Subprocess struct {
	workDir string
	logger  *logrus.Entry
}

// New builds the Extract subprocess. workDir is the local directory root
// under which object-store downloads are staged for the run.
func New(workDir string, logger *logrus.Entry) *Subprocess {
	return &Subprocess{workDir: workDir, logger: logger}
}

func (s *Subprocess) Type() etlcontext.SubprocessType { return etlcontext.SubprocessExtract }

// ValidateContext requires at least one configured source; Extract is always
// the first subprocess to run for a day, so it has no upstream keys to check.
func (s *Subprocess) ValidateContext(day *etlcontext.Context) error {
	if len(day.Config().Sources) == 0 {
		return xerrors.Config(etlcontext.SubprocessExtract, day.CurrentDate(), "no sources configured", nil)
	}
	return nil
}

func (s *Subprocess) Execute(ctx context.Context, day *etlcontext.Context) (int, error) {
	sources := day.Config().Sources
	workDir := filepath.Join(s.workDir, day.CurrentDate().Format("20060102"))

	extractors := make([]Extractor, len(sources))
	for i, src := range sources {
		ex, err := Factory(src, day.CurrentDate(), workDir)
		if err != nil {
			return 0, err
		}
		extractors[i] = ex
	}

	maxConcurrency := workpool.Bound(len(extractors), runtime.NumCPU()*2)
	tasks := make([]workpool.Task[[]records.SourceRecord], len(extractors))
	for i, ex := range extractors {
		ex := ex
		name := ex.Category()
		tasks[i] = func(taskCtx context.Context) ([]records.SourceRecord, error) {
			defer func() {
				if err := ex.Cleanup(); err != nil && s.logger != nil {
					s.logger.WithField("category", name).WithError(err).Warn("extractor cleanup failed")
				}
			}()
			if err := ex.Setup(taskCtx); err != nil {
				return nil, wrapExtractErr(day.CurrentDate(), fmt.Sprintf("setup failed for source %q", name), err)
			}
			if err := ex.Validate(taskCtx); err != nil {
				return nil, xerrors.Config(etlcontext.SubprocessExtract, day.CurrentDate(), fmt.Sprintf("validation failed for source %q", name), err)
			}
			extracted, err := ex.Extract(taskCtx)
			if err != nil {
				return nil, wrapExtractErr(day.CurrentDate(), fmt.Sprintf("extraction failed for source %q", name), err)
			}
			return extracted, nil
		}
	}

	results, err := workpool.RunFailFast(ctx, maxConcurrency, tasks)
	if err != nil {
		return 0, err
	}

	var merged []records.SourceRecord
	for _, r := range results {
		if r.Err != nil {
			return 0, r.Err
		}
		merged = append(merged, r.Value...)
	}

	day.SetExtractedData(merged)
	return len(merged), nil
}

// wrapExtractErr tags err as an ExtractError unless it is already a
// classified *xerrors.Error (e.g. a SQL extractor's own TargetUnavailable or
// Timeout), in which case that more specific classification is kept as-is.
func wrapExtractErr(date time.Time, msg string, err error) error {
	if _, ok := xerrors.As(err); ok {
		return err
	}
	return xerrors.Extract(date, msg, err)
}
