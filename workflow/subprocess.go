// Package workflow drives the five ordered subprocesses for each business
// date in a run's range (spec §4.1, §4.2, §4.3).
package workflow

import (
	"context"

	"github.com/xbond-analytics/market-etl/etlcontext"
)

// Subprocess is the uniform contract every stage implements (spec §4.3):
// a discriminator, a precondition check against the day's context, and the
// execution itself, returning the count of records it produced or moved.
type Subprocess interface {
	Type() etlcontext.SubprocessType
	ValidateContext(day *etlcontext.Context) error
	Execute(ctx context.Context, day *etlcontext.Context) (int, error)
}
