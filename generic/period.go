package generic

import "time"

// =============================================================================
// PERIOD - Pay period boundaries
// =============================================================================

// Period is an inclusive range of days [Start, End].
//
// Examples:
//   - Calendar month: Mar 1 - Mar 31
//   - Offset month with cut-off on the 25th: Mar 25 - Apr 24
//   - ISO week: Monday - Sunday
type Period struct {
	Start Date
	End   Date
}

func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the date is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how pay periods are laid out
type PeriodType string

const (
	PeriodCalendarMonth PeriodType = "calendar_month" // 1st - last day of month
	PeriodOffsetMonth   PeriodType = "offset_month"   // StartDay - StartDay-1 of next month
	PeriodISOWeek       PeriodType = "iso_week"       // Monday - Sunday
)

// PeriodConfig defines how to calculate pay periods
type PeriodConfig struct {
	Type PeriodType

	// For offset months: day of month the period starts on (1-28)
	StartDay int
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// PeriodFor returns the period that contains the given date
func (pc PeriodConfig) PeriodFor(d Date) Period {
	switch pc.Type {
	case PeriodOffsetMonth:
		return pc.offsetMonthPeriod(d)

	case PeriodISOWeek:
		offset := int(d.Weekday()) - int(time.Monday)
		if offset < 0 {
			offset = 6 // Sunday
		}
		start := d.AddDays(-offset)
		return Period{Start: start, End: start.AddDays(6)}

	default:
		return Period{Start: StartOfMonth(d.Year, d.Month), End: EndOfMonth(d.Year, d.Month)}
	}
}

func (pc PeriodConfig) offsetMonthPeriod(d Date) Period {
	startDay := pc.StartDay
	if startDay < 1 || startDay > 28 {
		startDay = 1
	}

	start := NewDate(d.Year, d.Month, startDay)
	// Before this month's cut-off we're still in the previous period
	if d.Before(start) {
		start = start.AddMonths(-1)
	}
	return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
}

// Next returns the period following p under the same config.
func (pc PeriodConfig) Next(p Period) Period { return pc.PeriodFor(p.End.AddDays(1)) }

// Previous returns the period before p under the same config.
func (pc PeriodConfig) Previous(p Period) Period { return pc.PeriodFor(p.Start.AddDays(-1)) }
