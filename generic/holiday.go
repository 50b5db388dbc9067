package generic

// =============================================================================
// HOLIDAY CALENDAR - Red-day lookup injected into the pay engine
// =============================================================================

// Holiday is a public holiday or a user-designated red day.
type Holiday struct {
	ID        string
	Date      Date
	Name      string
	Recurring bool // same month/day every year
}

// HolidayCalendar answers "is this a red day?" for the pay engine.
// The calculator itself only consumes the ShiftInput.RedDay flag; callers
// (session manager, schedule expansion, API) set that flag from a calendar.
type HolidayCalendar interface {
	IsHoliday(date Date) bool

	// HolidayName returns the name of the holiday on date, if any.
	HolidayName(date Date) (string, bool)

	// Holidays returns every holiday in the given year, ordered by date.
	Holidays(year int) []Holiday
}

// NoHolidays is the empty calendar.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool             { return false }
func (NoHolidays) HolidayName(Date) (string, bool) { return "", false }
func (NoHolidays) Holidays(int) []Holiday          { return nil }

var _ HolidayCalendar = NoHolidays{}

// Matches reports whether the holiday falls on date, honoring Recurring.
func (h Holiday) Matches(date Date) bool {
	if h.Recurring {
		return h.Date.Month == date.Month && h.Date.Day == date.Day
	}
	return h.Date == date
}

// In returns the occurrence of h in year. A recurring Feb 29 has none in a
// non-leap year, matching Matches.
func (h Holiday) In(year int) (Holiday, bool) {
	if !h.Recurring {
		return h, h.Date.Year == year
	}
	d := NewDate(year, h.Date.Month, h.Date.Day)
	if d.Month != h.Date.Month || d.Day != h.Date.Day {
		return Holiday{}, false
	}
	h.Date = d
	return h, true
}
