// Package records defines the polymorphic source and target record families
// moved through the pipeline: bond quotes, bond trades, and bond-future
// quotes, each tagged with a discriminator string that selects the
// transformer/loader for it (spec §3).
package records

import (
	"math"
	"time"
)

// Discriminators for the source record families extracted from object
// storage and SQL.
const (
	SourceTypeXbondQuote       = "xbond-quote"
	SourceTypeXbondTrade       = "xbond-trade"
	SourceTypeBondFutureQuote  = "bond-future-quote"
)

// Discriminators for the target record families, 1:1 with the source types.
const (
	DataTypeXbondQuote      = SourceTypeXbondQuote
	DataTypeXbondTrade      = SourceTypeXbondTrade
	DataTypeBondFutureQuote = SourceTypeBondFutureQuote
)

// Sentinel values distinguishing "not set" from a real zero value on target
// numeric fields per spec §4.5.
const (
	SentinelInt = -1
)

// sentinelFloat returns the sentinel value for unset floating target fields.
func sentinelFloat() float64 {
	return math.NaN()
}

// SourceRecord is implemented by every record family an extractor produces.
// validate() must return true before a record enters the transform stage;
// the extractors drop records failing validation without logging a
// per-record warning.
type SourceRecord interface {
	SourceType() string
	Key() SourceKey
	Validate() bool
}

// SourceKey is the composite primary key shared by every source record:
// business date, product identifier, and event time.
type SourceKey struct {
	BusinessDate time.Time
	ProductID    string
	EventTime    time.Time
}

// TargetRecord is implemented by every record family a transformer produces.
// Columns() returns the column-ordered field list that must match the target
// table's declared column order exactly (§3).
type TargetRecord interface {
	DataType() string
	ReceiveTimestamp() time.Time
	Columns() []string
	Values() []interface{}
}
