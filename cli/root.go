// Package cli implements the command-line front end: flag parsing, the
// single-instance lock, and the exit-code mapping in spec §6. It is a thin
// shell around workflow.Engine — the external collaborator the core design
// treats as out of scope.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xbond-analytics/market-etl/bizdate"
	"github.com/xbond-analytics/market-etl/clean"
	"github.com/xbond-analytics/market-etl/config"
	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/extract"
	"github.com/xbond-analytics/market-etl/load"
	"github.com/xbond-analytics/market-etl/lockfile"
	"github.com/xbond-analytics/market-etl/logging"
	"github.com/xbond-analytics/market-etl/transform"
	"github.com/xbond-analytics/market-etl/validate"
	"github.com/xbond-analytics/market-etl/workflow"
)

// Exit codes per spec §6.
const (
	ExitSuccess          = 0
	ExitInputValidation  = 1
	ExitConcurrentRun    = 2
	ExitETLProcessError  = 3
	ExitConfigError      = 4
	ExitUnexpected       = 5
)

var (
	fromFlag   string
	toFlag     string
	configFlag string
	lockPath   string
	workDir    string
)

// RootCmd is the etl command. Run is the only subcommand; it is attached
// directly to the root so `etl --from ... --to ... --config ...` works
// without an intermediate verb.
var RootCmd = &cobra.Command{
	Use:   "etl",
	Short: "daily, date-ranged ETL for bond quote, trade, and future-quote market data",
	RunE:  runETL,
}

func init() {
	RootCmd.Flags().StringVar(&fromFlag, "from", "", "start of the inclusive business-date range, YYYYMMDD")
	RootCmd.Flags().StringVar(&toFlag, "to", "", "end of the inclusive business-date range, YYYYMMDD")
	RootCmd.Flags().StringVar(&configFlag, "config", "", "path to the INI configuration file")
	RootCmd.Flags().StringVar(&lockPath, "lock", "/tmp/market-etl.lock", "path to the single-instance lock file")
	RootCmd.Flags().StringVar(&workDir, "work-dir", "/tmp/market-etl", "local staging directory for downloaded object-store files")
	RootCmd.MarkFlagRequired("from")
	RootCmd.MarkFlagRequired("to")
	RootCmd.MarkFlagRequired("config")
}

// Execute runs the root command and returns the process exit code spec §6
// mandates, rather than calling os.Exit itself, so main can stay a one-liner.
func Execute() int {
	exitCode := ExitSuccess
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
	if err := RootCmd.Execute(); err != nil {
		exitCode = codeForError(err)
		fmt.Fprintln(os.Stderr, err)
	}
	return exitCode
}

func runETL(cmd *cobra.Command, args []string) error {
	from, err := bizdate.Parse(fromFlag)
	if err != nil {
		return exitErr{code: ExitInputValidation, err: err}
	}
	to, err := bizdate.Parse(toFlag)
	if err != nil {
		return exitErr{code: ExitInputValidation, err: err}
	}
	if from.After(to) {
		return exitErr{code: ExitInputValidation, err: fmt.Errorf("--from %s is after --to %s", fromFlag, toFlag)}
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return exitErr{code: ExitConfigError, err: err}
	}

	lock, stale, err := lockfile.Acquire(lockPath)
	if err != nil {
		if stale {
			fmt.Fprintf(os.Stderr, "warning: lock file %s looks stale\n", lockPath)
		}
		return exitErr{code: ExitConcurrentRun, err: err}
	}
	defer lock.Release()

	logger := logging.New(cfg.Logging.Level)

	factory := func(day *etlcontext.Context) *workflow.DailyWorkflow {
		entry := logger.WithField("runID", day.RunID())
		holder := &load.SessionHolder{}
		targetParams := func() (string, int, string, string, string) {
			t := cfg.Targets[0]
			return t.Host, t.Port, t.User, t.Password, t.Database
		}
		return workflow.NewDailyWorkflow(
			extract.New(workDir, entry),
			transform.New(entry),
			load.New(holder, entry),
			validate.New(),
			clean.New(holder, targetParams, entry),
			entry,
		)
	}

	engine := workflow.NewEngine(cfg, factory)
	result, err := engine.Execute(cmd.Context(), from, to)
	if err != nil {
		return exitErr{code: ExitETLProcessError, err: err}
	}
	if !result.Success {
		return exitErr{code: ExitETLProcessError, err: fmt.Errorf("%d of %d days failed", result.Aggregate.DaysFailed, result.Aggregate.DaysProcessed)}
	}
	return nil
}

// exitErr carries the exit code a failure should map to, alongside the
// underlying error, so Execute can translate it without re-classifying the
// error by type or message.
type exitErr struct {
	code int
	err  error
}

func (e exitErr) Error() string { return e.err.Error() }
func (e exitErr) Unwrap() error { return e.err }

func codeForError(err error) int {
	var ee exitErr
	if as, ok := err.(exitErr); ok {
		ee = as
		return ee.code
	}
	return ExitUnexpected
}
