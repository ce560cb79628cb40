// Package load implements the Load subprocess (spec §4.6): open the
// columnar session, run the transient-table setup script, insert each
// data type's records in receiveTime order, and record loadedDataCount.
package load

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/xbond-analytics/market-etl/columnar"
	"github.com/xbond-analytics/market-etl/etlcontext"
	"github.com/xbond-analytics/market-etl/records"
	"github.com/xbond-analytics/market-etl/xerrors"
)

// Subprocess is the Load stage. It owns the columnar session for the rest
// of the day: Clean reuses the same *columnar.Session via SessionHolder.
type Subprocess struct {
	holder *SessionHolder
	logger *logrus.Entry
}

// SessionHolder carries the columnar session from Load to Clean, since both
// must share exactly one session per day (spec §5).
type SessionHolder struct {
	Session *columnar.Session
}

// New builds the Load subprocess, sharing holder with the Clean subprocess
// constructed alongside it for the same day.
func New(holder *SessionHolder, logger *logrus.Entry) *Subprocess {
	return &Subprocess{holder: holder, logger: logger}
}

func (s *Subprocess) Type() etlcontext.SubprocessType { return etlcontext.SubprocessLoad }

// ValidateContext requires transformedData to already be present.
func (s *Subprocess) ValidateContext(day *etlcontext.Context) error {
	if _, ok := day.TransformedData(); !ok {
		return xerrors.Config(etlcontext.SubprocessLoad, day.CurrentDate(), "transformedData missing: Transform must run before Load", nil)
	}
	return nil
}

func (s *Subprocess) Execute(ctx context.Context, day *etlcontext.Context) (int, error) {
	target := day.Config().Targets[0]

	session, err := columnar.Connect(ctx, target.Host, target.Port, target.User, target.Password, target.Database)
	if err != nil {
		return 0, xerrors.TargetUnavailable(etlcontext.SubprocessLoad, day.CurrentDate(), "connecting to columnar target", err)
	}
	s.holder.Session = session

	if err := session.RunSetup(ctx); err != nil {
		return 0, xerrors.Load(day.CurrentDate(), "running transient-table setup script", err)
	}

	transformed, _ := day.TransformedData()
	groups := partitionByDataType(transformed)

	total := 0
	for _, g := range groups {
		table, ok := columnar.TableFor[g.dataType]
		if !ok {
			return 0, xerrors.Load(day.CurrentDate(), fmt.Sprintf("no transient table configured for dataType %q", g.dataType), nil)
		}

		sortByReceiveTime(g.records)

		var columns []string
		rows := make([][]interface{}, 0, len(g.records))
		for i, rec := range g.records {
			if rec.ReceiveTimestamp().IsZero() {
				if s.logger != nil {
					s.logger.WithFields(logrus.Fields{"dataType": g.dataType, "index": i}).Warn("record dropped: missing receiveTime")
				}
				continue
			}
			if columns == nil {
				columns = rec.Columns()
			}
			rows = append(rows, rec.Values())
		}
		if len(rows) == 0 {
			continue
		}

		if err := session.Insert(ctx, table, columns, rows); err != nil {
			return 0, xerrors.Load(day.CurrentDate(), fmt.Sprintf("inserting into %s", table), err)
		}
		total += len(rows)
	}

	day.SetLoadedDataCount(total)
	return total, nil
}

// dataTypeGroup is one target data type's ordered slice of transformed
// records, in the fixed iteration order spec §4.6 step 3 requires.
type dataTypeGroup struct {
	dataType string
	records  []records.TargetRecord
}

// dataTypeOrder is the fixed iteration order ("quotes before trades") from
// spec §4.6 step 3.
var dataTypeOrder = []string{
	records.DataTypeXbondQuote,
	records.DataTypeXbondTrade,
	records.DataTypeBondFutureQuote,
}

func partitionByDataType(recs []records.TargetRecord) []dataTypeGroup {
	byType := make(map[string][]records.TargetRecord)
	for _, rec := range recs {
		dt := rec.DataType()
		byType[dt] = append(byType[dt], rec)
	}
	groups := make([]dataTypeGroup, 0, len(dataTypeOrder))
	for _, dt := range dataTypeOrder {
		if recs, ok := byType[dt]; ok {
			groups = append(groups, dataTypeGroup{dataType: dt, records: recs})
		}
	}
	return groups
}

// sortByReceiveTime sorts in place, stable, ascending by ReceiveTimestamp
// (spec §5: "per-type sort is stable by receiveTime; ties keep input order").
func sortByReceiveTime(recs []records.TargetRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ReceiveTimestamp().Before(recs[j].ReceiveTimestamp())
	})
}
