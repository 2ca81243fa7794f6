package reserve

import "github.com/shopspring/decimal"

// Percent converts basis points to a percentage (2006 -> 20.06).
func Percent(bps int64) decimal.Decimal {
	return decimal.New(bps, -2)
}

// FormatBps renders basis points as a percentage string with two decimals.
func FormatBps(bps int64) string {
	return Percent(bps).StringFixed(2) + "%"
}
