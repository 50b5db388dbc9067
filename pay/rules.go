package pay

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// PREMIUM RULE TABLES
// =============================================================================
// Each workplace has one fixed table per weekday. Windows inside a table are
// disjoint, so no wall-clock minute can earn two premiums from the same day.
// Only the percentages are configurable.
// =============================================================================

// premiumRule binds a rate to a daily window.
type premiumRule struct {
	window generic.Window
	rate   decimal.Decimal
	label  string
}

func windowRule(start, end generic.ClockTime, rate decimal.Decimal) premiumRule {
	w := generic.NewWindow(start, end)
	return premiumRule{window: w, rate: rate, label: premiumLabel(rate, w.String())}
}

func wholeDayRule(name string, rate decimal.Decimal) premiumRule {
	return premiumRule{window: generic.WholeDay, rate: rate, label: premiumLabel(rate, name)}
}

func premiumLabel(rate decimal.Decimal, desc string) string {
	return fmt.Sprintf("+%s%% (%s)", rate.String(), desc)
}

var (
	c0000 = generic.Midnight
	c0600 = generic.Clock(6, 0)
	c0700 = generic.Clock(7, 0)
	c1200 = generic.Clock(12, 0)
	c1800 = generic.Clock(18, 0)
	c1815 = generic.Clock(18, 15)
	c2000 = generic.Clock(20, 0)
	c2300 = generic.Clock(23, 0)
	c2400 = generic.EndOfDay
)

// rulesFor returns the table for a weekday. Sunday is a whole-day override.
func rulesFor(rates RateSchedule, day time.Weekday) []premiumRule {
	switch rates.Workplace {
	case WorkplaceWarehouse:
		return warehouseRules(rates.Warehouse, day)
	default:
		return retailRules(rates.Retail, day)
	}
}

// redDayRule replaces every other rule on a red day.
func redDayRule(rates RateSchedule) premiumRule {
	if rates.Workplace == WorkplaceWarehouse {
		return wholeDayRule("red day", rates.Warehouse.RedDay)
	}
	return wholeDayRule("red day", rates.Retail.RedDay)
}

func retailRules(r RetailRates, day time.Weekday) []premiumRule {
	switch day {
	case time.Sunday:
		return []premiumRule{wholeDayRule("Sunday", r.Sunday)}
	case time.Saturday:
		return []premiumRule{windowRule(c1200, c2400, r.Saturday)}
	default:
		return []premiumRule{
			windowRule(c1815, c2000, r.WeekdayEvening),
			windowRule(c2000, c2400, r.WeekdayNight),
		}
	}
}

func warehouseRules(r WarehouseRates, day time.Weekday) []premiumRule {
	switch day {
	case time.Sunday:
		return []premiumRule{wholeDayRule("Sunday", r.Sunday)}
	case time.Saturday:
		return []premiumRule{
			windowRule(c0000, c0600, r.SaturdayNight),
			windowRule(c0600, c2300, r.SaturdayDay),
			windowRule(c2300, c2400, r.SaturdayLate),
		}
	case time.Monday:
		// The night into Monday follows Sunday and has its own rate; the
		// Monday night window therefore stops at midnight.
		return []premiumRule{
			windowRule(c0000, c0600, r.MondayNight),
			windowRule(c0600, c0700, r.Morning),
			windowRule(c1800, c2300, r.Evening),
			windowRule(c2300, c2400, r.Night),
		}
	default:
		return []premiumRule{
			windowRule(c0600, c0700, r.Morning),
			windowRule(c1800, c2300, r.Evening),
			windowRule(c2300, c0600, r.Night),
		}
	}
}
