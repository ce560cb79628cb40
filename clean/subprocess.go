// Package clean implements the Clean subprocess (spec §4.7): always run,
// regardless of whether earlier subprocesses succeeded, erasing whatever
// transient artifacts this day's run created.
package clean

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xbond-analytics/market-etl/columnar"
	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/load"
)

// artifactNames lists the transient tables Clean is responsible for
// dropping, matching the static type -> table map Load inserts into.
var artifactNames = []string{
	"xbond_quote_stream_temp",
	"xbond_trade_stream_temp",
	"fut_market_price_stream_temp",
}

// ArtifactNames returns the transient table names Clean tears down.
func ArtifactNames() []string {
	out := make([]string, len(artifactNames))
	copy(out, artifactNames)
	return out
}

// Subprocess is the Clean stage. It reuses the session Load opened, or
// opens its own if Load never got that far.
type Subprocess struct {
	holder *load.SessionHolder
	target func() (host string, port int, user, password, database string)
	logger *logrus.Entry
}

// New builds the Clean subprocess, sharing holder with the Load subprocess
// constructed alongside it for the same day. target supplies the columnar
// connection parameters for the case Load never opened a session.
func New(holder *load.SessionHolder, target func() (string, int, string, string, string), logger *logrus.Entry) *Subprocess {
	return &Subprocess{holder: holder, target: target, logger: logger}
}

func (s *Subprocess) Type() etlcontext.SubprocessType { return etlcontext.SubprocessClean }

// ValidateContext has no upstream requirement: Clean always runs, including
// after a failure in an earlier subprocess (spec §4.7).
func (s *Subprocess) ValidateContext(day *etlcontext.Context) error {
	return nil
}

// Execute never returns an error: per-artifact failures are logged, not
// propagated (spec §4.7 "Failure semantics").
func (s *Subprocess) Execute(ctx context.Context, day *etlcontext.Context) (int, error) {
	session := s.holder.Session
	if session == nil {
		host, port, user, password, database := s.target()
		opened, err := columnar.Connect(ctx, host, port, user, password, database)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("clean: could not open columnar session, skipping teardown")
			}
			day.SetCleanupPerformed(false)
			return 0, nil
		}
		session = opened
		s.holder.Session = opened
	}

	err := session.RunTeardown(ctx)
	if err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("clean: teardown script failed")
	}

	if closeErr := session.Close(); closeErr != nil && s.logger != nil {
		s.logger.WithError(closeErr).Warn("clean: closing columnar session failed")
	}
	s.holder.Session = nil

	day.SetCleanupPerformed(err == nil)
	return 0, nil
}
