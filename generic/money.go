/*
Package generic provides the domain-agnostic building blocks of the pay engine.

PURPOSE:
  Value types shared by the calculator, the live session and the outer
  layers: money arithmetic over decimals, calendar days, wall-clock minutes,
  daily windows with midnight wrap-around, pay periods, holiday lookup and
  the error taxonomy.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money is decimal.Decimal, never float64
  - Rates are percentages (12 = 12 %)
  - Rounding to öre happens only at presentation

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal keeps base + premium == gross exact
  2. Purity: nothing in this package performs I/O

SEE ALSO:
  - time.go: Date, ClockTime, Window
  - period.go: Pay periods
  - errors.go: Validation taxonomy
*/
package generic

import (
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	minutesInHour = decimal.NewFromInt(60)
)

// Percent returns pct percent of base.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// MinutesToHours converts whole minutes to decimal hours.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesInHour)
}

// HourlyAmount is rate * minutes / 60, multiplied before dividing so whole
// hours stay exact.
func HourlyAmount(rate decimal.Decimal, minutes int) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesInHour)
}

// RoundOre rounds to two decimals for display and export.
func RoundOre(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Float is the rounded float64 used in JSON responses.
func Float(d decimal.Decimal) float64 {
	return RoundOre(d).InexactFloat64()
}
