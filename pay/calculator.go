/*
calculator.go - Pure pay computation for a single shift

PURPOSE:
  ComputePay turns one ShiftInput into a PayBreakdown under a RateSchedule.
  It performs no I/O and reads no clock: the same input always yields the
  same breakdown, which is what lets the live session call it every second.

ORDER OF EVALUATION:
  1. Validate rates and shift
  2. Sick day short-circuit
  3. Break resolution (window > minutes > automatic)
  4. Worked time and base pay
  5. Premiums over the full shift window
  6. Gross, vacation, tax, net

SEE ALSO:
  - breaks.go: break resolution and automatic tiers
  - premium.go: premium evaluation
  - rules.go: the per-workplace rule tables
*/
package pay

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

var sickPayFactor = decimal.RequireFromString("0.8")

// ComputePay computes the pay breakdown of one shift.
//
// A shift missing its start or end has no work window and yields a zero
// breakdown without error.
func ComputePay(shift ShiftInput, rates RateSchedule) (PayBreakdown, error) {
	if err := ValidateRates(rates); err != nil {
		return PayBreakdown{}, err
	}

	if shift.Sick != nil {
		return computeSickPay(*shift.Sick, rates)
	}

	if !shift.HasTimes() {
		return zeroBreakdown(), nil
	}
	from, to, err := validateSpan(shift)
	if err != nil {
		return PayBreakdown{}, err
	}

	brk, err := resolveBreak(shift, rates.AutoBreak, from, to)
	if err != nil {
		return PayBreakdown{}, err
	}
	window := to - from
	if brk.minutes > window {
		return PayBreakdown{}, generic.Invalid(generic.ReasonBreakExceedsShift, "break_minutes",
			"break of %d minutes exceeds the %d minute shift", brk.minutes, window)
	}
	worked := window - brk.minutes

	premium, lines := evaluatePremiums(shift, rates, from, to)

	b := compose(rates, generic.HourlyAmount(rates.BasePay, worked), premium)
	b.WorkedMinutes = worked
	b.WorkedHours = generic.MinutesToHours(worked)
	b.BreakMinutes = brk.minutes
	b.AutoBreakApplied = brk.auto
	b.Premiums = lines
	return b, nil
}

// ValidateRates checks a RateSchedule independently of any shift.
func ValidateRates(rates RateSchedule) error {
	if !rates.Workplace.Valid() {
		return generic.Invalid(generic.ReasonUnknownWorkplace, "workplace",
			"unknown workplace %q", rates.Workplace)
	}
	if rates.BasePay.IsNegative() {
		return generic.Invalid(generic.ReasonNegativeBasePay, "base_pay",
			"base pay %s is negative", rates.BasePay)
	}
	if rates.TaxRate.IsNegative() || rates.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return generic.Invalid(generic.ReasonTaxRateRange, "tax_rate",
			"tax rate %s%% is outside 0-100", rates.TaxRate)
	}
	if rates.VacationRate.IsNegative() {
		return generic.Invalid(generic.ReasonVacationRateRange, "vacation_rate",
			"vacation rate %s%% is negative", rates.VacationRate)
	}
	for _, r := range premiumRates(rates) {
		if r.rate.IsNegative() {
			return generic.Invalid(generic.ReasonNegativeRate, r.field,
				"premium rate %s%% is negative", r.rate)
		}
	}
	return validateTiers(rates.AutoBreak)
}

type namedRate struct {
	field string
	rate  decimal.Decimal
}

func premiumRates(rates RateSchedule) []namedRate {
	if rates.Workplace == WorkplaceWarehouse {
		w := rates.Warehouse
		return []namedRate{
			{"warehouse.monday_night", w.MondayNight},
			{"warehouse.morning", w.Morning},
			{"warehouse.evening", w.Evening},
			{"warehouse.night", w.Night},
			{"warehouse.saturday_night", w.SaturdayNight},
			{"warehouse.saturday_day", w.SaturdayDay},
			{"warehouse.saturday_late", w.SaturdayLate},
			{"warehouse.sunday", w.Sunday},
			{"warehouse.red_day", w.RedDay},
		}
	}
	r := rates.Retail
	return []namedRate{
		{"retail.weekday_evening", r.WeekdayEvening},
		{"retail.weekday_night", r.WeekdayNight},
		{"retail.saturday", r.Saturday},
		{"retail.sunday", r.Sunday},
		{"retail.red_day", r.RedDay},
	}
}

func validateSpan(shift ShiftInput) (from, to int, err error) {
	if !shift.Start.Valid() || *shift.Start == generic.EndOfDay {
		return 0, 0, generic.Invalid(generic.ReasonInvalidClock, "start_time",
			"start time %d is not a valid time of day", shift.Start.Minutes())
	}
	if !shift.End.Valid() {
		return 0, 0, generic.Invalid(generic.ReasonInvalidClock, "end_time",
			"end time %d is not a valid time of day", shift.End.Minutes())
	}
	from, to = shift.span()
	if to <= from {
		return 0, 0, generic.Invalid(generic.ReasonEndBeforeStart, "end_time",
			"shift ends %s at or before it starts %s", shift.End, shift.Start)
	}
	if shift.EndsNextDay && to-from > int(generic.EndOfDay) {
		return 0, 0, generic.Invalid(generic.ReasonEndBeforeStart, "end_time",
			"overnight shift %s–%s is longer than 24 hours", shift.Start, shift.End)
	}
	return from, to, nil
}

func computeSickPay(sick SickDay, rates RateSchedule) (PayBreakdown, error) {
	if sick.DayNumber < 1 {
		return PayBreakdown{}, generic.Invalid(generic.ReasonInvalidSickDay, "sick_day_number",
			"sick day number %d must be at least 1", sick.DayNumber)
	}
	if sick.Hours.IsNegative() {
		return PayBreakdown{}, generic.Invalid(generic.ReasonInvalidSickDay, "work_hours",
			"declared sick hours %s are negative", sick.Hours)
	}
	// Waiting day: no pay at all.
	if sick.DayNumber == 1 {
		return zeroBreakdown(), nil
	}

	base := sick.Hours.Mul(rates.BasePay).Mul(sickPayFactor)
	b := compose(rates, base, decimal.Zero)
	b.WorkedHours = sick.Hours
	b.WorkedMinutes = int(sick.Hours.Mul(decimal.NewFromInt(60)).Round(0).IntPart())
	return b, nil
}

// compose derives the remaining figures from base and premium pay.
func compose(rates RateSchedule, base, premium decimal.Decimal) PayBreakdown {
	gross := base.Add(premium)
	vacation := generic.Percent(gross, rates.VacationRate)
	total := gross.Add(vacation)
	tax := generic.Percent(total, rates.TaxRate)
	return PayBreakdown{
		WorkedHours:    decimal.Zero,
		BasePay:        base,
		PremiumPay:     premium,
		GrossPay:       gross,
		VacationPay:    vacation,
		TotalBeforeTax: total,
		Tax:            tax,
		NetPay:         total.Sub(tax),
	}
}

func zeroBreakdown() PayBreakdown {
	return PayBreakdown{
		WorkedHours:    decimal.Zero,
		BasePay:        decimal.Zero,
		PremiumPay:     decimal.Zero,
		GrossPay:       decimal.Zero,
		VacationPay:    decimal.Zero,
		TotalBeforeTax: decimal.Zero,
		Tax:            decimal.Zero,
		NetPay:         decimal.Zero,
	}
}
