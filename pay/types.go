// Package pay implements the OB pay engine: it turns a work shift into a
// decomposed pay breakdown (base pay, shift-differential premiums by bucket,
// vacation pay, tax, net pay) under the retail and warehouse rate tables.
package pay

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// WORKPLACE
// =============================================================================

// Workplace selects the premium rule set.
type Workplace string

const (
	WorkplaceRetail    Workplace = "retail"
	WorkplaceWarehouse Workplace = "warehouse"
)

func (w Workplace) Valid() bool { return w == WorkplaceRetail || w == WorkplaceWarehouse }

// =============================================================================
// BREAK SPEC - How the break of a shift is determined
// =============================================================================

// BreakMode tags the BreakSpec variant.
type BreakMode int

const (
	// BreakAuto selects a tier from the automatic break configuration.
	BreakAuto BreakMode = iota
	// BreakMinutes is an explicit number of minutes. Zero falls back to BreakAuto.
	BreakMinutes
	// BreakWindow is an explicit break start/end.
	BreakWindow
	// BreakRecorded is measured by a live session and used as is, even when zero.
	BreakRecorded
)

func (m BreakMode) String() string {
	switch m {
	case BreakMinutes:
		return "minutes"
	case BreakWindow:
		return "window"
	case BreakRecorded:
		return "recorded"
	default:
		return "auto"
	}
}

// BreakSpec is a tagged variant: exactly one representation of the break is
// present. The zero value is an automatic break.
type BreakSpec struct {
	mode    BreakMode
	minutes int
	start   generic.ClockTime
	end     generic.ClockTime
}

func AutoBreak() BreakSpec { return BreakSpec{mode: BreakAuto} }

func BreakOf(minutes int) BreakSpec { return BreakSpec{mode: BreakMinutes, minutes: minutes} }

func BreakBetween(start, end generic.ClockTime) BreakSpec {
	return BreakSpec{mode: BreakWindow, start: start, end: end}
}

func RecordedBreak(minutes int) BreakSpec { return BreakSpec{mode: BreakRecorded, minutes: minutes} }

func (b BreakSpec) Mode() BreakMode { return b.mode }

// Minutes is the explicit or recorded minute count; 0 for the other variants.
func (b BreakSpec) Minutes() int {
	if b.mode == BreakMinutes || b.mode == BreakRecorded {
		return b.minutes
	}
	return 0
}

// Window returns the explicit break window, ok is false for the other variants.
func (b BreakSpec) Window() (start, end generic.ClockTime, ok bool) {
	return b.start, b.end, b.mode == BreakWindow
}

// =============================================================================
// SHIFT INPUT
// =============================================================================

// SickDay marks a shift as sick leave. DayNumber 1 is the waiting day
// (karensdag) and pays nothing; from day 2 the declared Hours are paid at 80 %.
type SickDay struct {
	DayNumber int
	Hours     decimal.Decimal
}

// ShiftInput is one work shift as entered by the user or derived from a session.
type ShiftInput struct {
	Date  generic.Date
	Start *generic.ClockTime
	End   *generic.ClockTime

	// EndsNextDay places End on Date+1 (overnight shift).
	EndsNextDay bool

	Break  BreakSpec
	RedDay bool
	Sick   *SickDay
}

// NewShift is a convenience constructor for a shift with both times set.
func NewShift(date generic.Date, start, end generic.ClockTime) ShiftInput {
	return ShiftInput{Date: date, Start: &start, End: &end}
}

// HasTimes reports whether both start and end are set.
func (s ShiftInput) HasTimes() bool { return s.Start != nil && s.End != nil }

// span returns the shift as minutes relative to midnight of Date.
func (s ShiftInput) span() (from, to int) {
	from = s.Start.Minutes()
	to = s.End.Minutes()
	if s.EndsNextDay {
		to += int(generic.EndOfDay)
	}
	return from, to
}

// =============================================================================
// RATE SCHEDULE
// =============================================================================

// BreakTier grants Minutes of break once a shift reaches AfterHours.
type BreakTier struct {
	AfterHours float64
	Minutes    int
}

// AutoBreakConfig holds three ascending tiers.
type AutoBreakConfig struct {
	Enabled bool
	Tiers   [3]BreakTier
}

// RetailRates are premium percentages for the retail agreement.
type RetailRates struct {
	WeekdayEvening decimal.Decimal // Mon-Fri 18:15-20:00
	WeekdayNight   decimal.Decimal // Mon-Fri 20:00-24:00
	Saturday       decimal.Decimal // Sat 12:00-24:00
	Sunday         decimal.Decimal // whole day
	RedDay         decimal.Decimal // whole day
}

// WarehouseRates are premium percentages for the warehouse agreement.
type WarehouseRates struct {
	MondayNight   decimal.Decimal // Mon 00:00-06:00
	Morning       decimal.Decimal // Mon-Fri 06:00-07:00
	Evening       decimal.Decimal // Mon-Fri 18:00-23:00
	Night         decimal.Decimal // Mon 23:00-24:00, Tue-Fri 23:00-06:00
	SaturdayNight decimal.Decimal // Sat 00:00-06:00
	SaturdayDay   decimal.Decimal // Sat 06:00-23:00
	SaturdayLate  decimal.Decimal // Sat 23:00-24:00
	Sunday        decimal.Decimal // whole day
	RedDay        decimal.Decimal // whole day
}

// RateSchedule is the immutable configuration a calculation runs against.
type RateSchedule struct {
	Workplace    Workplace
	BasePay      decimal.Decimal // per hour
	TaxRate      decimal.Decimal // percent, 0-100
	VacationRate decimal.Decimal // percent
	Retail       RetailRates
	Warehouse    WarehouseRates
	AutoBreak    AutoBreakConfig
}

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// DefaultRateSchedule returns the stock rates for a workplace.
func DefaultRateSchedule(workplace Workplace) RateSchedule {
	return RateSchedule{
		Workplace:    workplace,
		BasePay:      decimal.NewFromInt(163),
		TaxRate:      pct(30),
		VacationRate: pct(12),
		Retail: RetailRates{
			WeekdayEvening: pct(50),
			WeekdayNight:   pct(70),
			Saturday:       pct(100),
			Sunday:         pct(100),
			RedDay:         pct(100),
		},
		Warehouse: WarehouseRates{
			MondayNight:   pct(110),
			Morning:       pct(30),
			Evening:       pct(35),
			Night:         pct(55),
			SaturdayNight: pct(55),
			SaturdayDay:   pct(65),
			SaturdayLate:  pct(110),
			Sunday:        pct(110),
			RedDay:        pct(110),
		},
		AutoBreak: AutoBreakConfig{
			Enabled: true,
			Tiers: [3]BreakTier{
				{AfterHours: 4, Minutes: 15},
				{AfterHours: 6, Minutes: 30},
				{AfterHours: 8, Minutes: 60},
			},
		},
	}
}

// =============================================================================
// PAY BREAKDOWN
// =============================================================================

// PremiumLine is one OB bucket of a breakdown.
type PremiumLine struct {
	Label   string
	Minutes int
	Rate    decimal.Decimal
	Amount  decimal.Decimal
}

// PayBreakdown is the result of ComputePay.
//
// Invariants: BasePay + PremiumPay == GrossPay,
// GrossPay + VacationPay == TotalBeforeTax, TotalBeforeTax - Tax == NetPay.
type PayBreakdown struct {
	WorkedMinutes int
	WorkedHours   decimal.Decimal

	// BreakMinutes is the break actually deducted. When AutoBreakApplied is
	// set it was derived from the tier table, not entered by the user.
	BreakMinutes     int
	AutoBreakApplied bool

	BasePay        decimal.Decimal
	PremiumPay     decimal.Decimal
	GrossPay       decimal.Decimal
	VacationPay    decimal.Decimal
	TotalBeforeTax decimal.Decimal
	Tax            decimal.Decimal
	NetPay         decimal.Decimal

	// Premiums in evaluation order; only non-zero buckets.
	Premiums []PremiumLine
}

// PremiumByLabel returns the amount recorded under label.
func (b PayBreakdown) PremiumByLabel(label string) (PremiumLine, bool) {
	for _, p := range b.Premiums {
		if p.Label == label {
			return p, true
		}
	}
	return PremiumLine{}, false
}
