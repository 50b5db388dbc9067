package pay

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// ShiftRecord is a stored shift: the raw input plus the breakdown computed
// from it. Invalid records keep their input so the user can correct them.
type ShiftRecord struct {
	ID          string
	Input       ShiftInput
	Description string
	Breakdown   PayBreakdown
	Invalid     string // validation message; empty when valid
	Reason      generic.Reason
	CreatedAt   time.Time
}

func (r ShiftRecord) Valid() bool { return r.Invalid == "" }

// NewShiftRecord computes the breakdown for input. A validation failure does
// not abort: the record is returned with zeroed outputs and the reason set.
// Any other error is returned as is.
func NewShiftRecord(id string, input ShiftInput, description string, rates RateSchedule, now time.Time) (ShiftRecord, error) {
	rec := ShiftRecord{
		ID:          id,
		Input:       input,
		Description: description,
		CreatedAt:   now,
	}
	b, err := ComputePay(input, rates)
	if err != nil {
		if !generic.IsClientError(err) {
			return ShiftRecord{}, err
		}
		rec.Breakdown = zeroBreakdown()
		rec.Invalid = err.Error()
		rec.Reason = generic.ReasonOf(err)
		return rec, nil
	}
	rec.Breakdown = b
	return rec, nil
}

// Recompute returns a copy of the record evaluated against new rates.
func (r ShiftRecord) Recompute(rates RateSchedule) (ShiftRecord, error) {
	return NewShiftRecord(r.ID, r.Input, r.Description, rates, r.CreatedAt)
}

// =============================================================================
// PERIOD SUMMARY
// =============================================================================

// PeriodSummary aggregates the valid records of one pay period.
type PeriodSummary struct {
	Period         generic.Period
	Shifts         int
	InvalidShifts  int
	WorkedMinutes  int
	BreakMinutes   int
	BasePay        decimal.Decimal
	PremiumPay     decimal.Decimal
	GrossPay       decimal.Decimal
	VacationPay    decimal.Decimal
	TotalBeforeTax decimal.Decimal
	Tax            decimal.Decimal
	NetPay         decimal.Decimal
	Premiums       []PremiumLine
}

// Summarize totals every record whose date falls in period. Invalid records
// are counted but contribute nothing.
func Summarize(records []ShiftRecord, period generic.Period) PeriodSummary {
	s := PeriodSummary{
		Period:         period,
		BasePay:        decimal.Zero,
		PremiumPay:     decimal.Zero,
		GrossPay:       decimal.Zero,
		VacationPay:    decimal.Zero,
		TotalBeforeTax: decimal.Zero,
		Tax:            decimal.Zero,
		NetPay:         decimal.Zero,
	}
	index := make(map[string]int)

	for _, r := range records {
		if !period.Contains(r.Input.Date) {
			continue
		}
		if !r.Valid() {
			s.InvalidShifts++
			continue
		}
		b := r.Breakdown
		s.Shifts++
		s.WorkedMinutes += b.WorkedMinutes
		s.BreakMinutes += b.BreakMinutes
		s.BasePay = s.BasePay.Add(b.BasePay)
		s.PremiumPay = s.PremiumPay.Add(b.PremiumPay)
		s.GrossPay = s.GrossPay.Add(b.GrossPay)
		s.VacationPay = s.VacationPay.Add(b.VacationPay)
		s.TotalBeforeTax = s.TotalBeforeTax.Add(b.TotalBeforeTax)
		s.Tax = s.Tax.Add(b.Tax)
		s.NetPay = s.NetPay.Add(b.NetPay)

		for _, p := range b.Premiums {
			if i, ok := index[p.Label]; ok {
				s.Premiums[i].Minutes += p.Minutes
				s.Premiums[i].Amount = s.Premiums[i].Amount.Add(p.Amount)
				continue
			}
			index[p.Label] = len(s.Premiums)
			s.Premiums = append(s.Premiums, p)
		}
	}
	return s
}

// WorkedHours is the summed worked time in decimal hours.
func (s PeriodSummary) WorkedHours() decimal.Decimal { return generic.MinutesToHours(s.WorkedMinutes) }
