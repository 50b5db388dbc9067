package pay

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// segment is the part of a shift that falls on one calendar day, in minutes
// since that day's midnight.
type segment struct {
	date     generic.Date
	from, to int
}

// daySegments splits the shift span at midnight.
func daySegments(date generic.Date, from, to int) []segment {
	day := int(generic.EndOfDay)
	if to <= day {
		return []segment{{date: date, from: from, to: to}}
	}
	return []segment{
		{date: date, from: from, to: day},
		{date: date.AddDays(1), from: 0, to: to - day},
	}
}

// premiumAccumulator merges contributions by label, keeping first-seen order.
type premiumAccumulator struct {
	base  decimal.Decimal
	total decimal.Decimal
	lines []PremiumLine
	index map[string]int
}

func newPremiumAccumulator(base decimal.Decimal) *premiumAccumulator {
	return &premiumAccumulator{base: base, total: decimal.Zero, index: make(map[string]int)}
}

func (a *premiumAccumulator) add(r premiumRule, minutes int) {
	if minutes <= 0 {
		return
	}
	amount := generic.Percent(generic.HourlyAmount(a.base, minutes), r.rate)
	if amount.IsZero() {
		return
	}
	a.total = a.total.Add(amount)
	if i, ok := a.index[r.label]; ok {
		a.lines[i].Minutes += minutes
		a.lines[i].Amount = a.lines[i].Amount.Add(amount)
		return
	}
	a.index[r.label] = len(a.lines)
	a.lines = append(a.lines, PremiumLine{Label: r.label, Minutes: minutes, Rate: r.rate, Amount: amount})
}

// evaluatePremiums evaluates the rule tables over the full shift window;
// breaks are not subtracted here.
func evaluatePremiums(shift ShiftInput, rates RateSchedule, from, to int) (decimal.Decimal, []PremiumLine) {
	acc := newPremiumAccumulator(rates.BasePay)

	if shift.RedDay {
		acc.add(redDayRule(rates), to-from)
		return acc.total, acc.lines
	}

	for _, seg := range daySegments(shift.Date, from, to) {
		for _, r := range rulesFor(rates, seg.date.Weekday()) {
			acc.add(r, r.window.OverlapMinutes(seg.from, seg.to))
		}
	}
	return acc.total, acc.lines
}

// PremiumAt reports the premium in force at one instant: the rate, the
// label of the matching rule and whether a non-zero premium applies.
func PremiumAt(rates RateSchedule, date generic.Date, clock generic.ClockTime, redDay bool) (decimal.Decimal, string, bool) {
	if redDay {
		r := redDayRule(rates)
		return r.rate, r.label, r.rate.IsPositive()
	}
	for _, r := range rulesFor(rates, date.Weekday()) {
		if r.window.Contains(clock) {
			return r.rate, r.label, r.rate.IsPositive()
		}
	}
	return decimal.Zero, "", false
}
