// Command market-etl runs the daily bond market data ETL over an inclusive
// business-date range.
package main

import (
	"os"

	"github.com/xbond-analytics/market-etl/cli"
)

func main() {
	os.Exit(cli.Execute())
}
