// Package bizdate handles the business-date representation used throughout
// the ETL pipeline: a calendar day with no time-zone component, formatted
// externally as YYYYMMDD.
package bizdate

import (
	"fmt"
	"time"
)

// Layout is the external, wire-level format for a business date.
const Layout = "20060102"

// Parse parses an 8-digit YYYYMMDD string into a business date truncated to
// midnight UTC. It rejects anything that isn't a valid calendar date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid business date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Format renders a business date in the external YYYYMMDD format.
func Format(d time.Time) string {
	return d.UTC().Format(Layout)
}

// Range expands an inclusive [from, to] range into the chronological list of
// business dates it spans, one per calendar day. Returns an error if
// from > to.
func Range(from, to time.Time) ([]time.Time, error) {
	from, to = from.UTC(), to.UTC()
	if from.After(to) {
		return nil, fmt.Errorf("from date %s is after to date %s", Format(from), Format(to))
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
