package holiday

import (
	"sort"

	"github.com/warp/payroll-engine/generic"
)

// List is a fixed set of holidays, e.g. user-designated red days.
type List []generic.Holiday

var _ generic.HolidayCalendar = List(nil)

func (l List) IsHoliday(date generic.Date) bool {
	_, ok := l.HolidayName(date)
	return ok
}

func (l List) HolidayName(date generic.Date) (string, bool) {
	for _, h := range l {
		if h.Matches(date) {
			return h.Name, true
		}
	}
	return "", false
}

// Holidays returns the holidays falling in year; recurring entries are
// moved into that year.
func (l List) Holidays(year int) []generic.Holiday {
	var out []generic.Holiday
	for _, h := range l {
		if occ, ok := h.In(year); ok {
			out = append(out, occ)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Chain consults several calendars in order. A date is a holiday when any
// calendar says so; the first calendar naming it wins.
type Chain []generic.HolidayCalendar

var _ generic.HolidayCalendar = Chain(nil)

func (c Chain) IsHoliday(date generic.Date) bool {
	for _, cal := range c {
		if cal.IsHoliday(date) {
			return true
		}
	}
	return false
}

func (c Chain) HolidayName(date generic.Date) (string, bool) {
	for _, cal := range c {
		if name, ok := cal.HolidayName(date); ok {
			return name, true
		}
	}
	return "", false
}

// Holidays merges all calendars, one entry per date.
func (c Chain) Holidays(year int) []generic.Holiday {
	seen := make(map[generic.Date]bool)
	var out []generic.Holiday
	for _, cal := range c {
		for _, h := range cal.Holidays(year) {
			if seen[h.Date] {
				continue
			}
			seen[h.Date] = true
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Func resolves the calendar on every call, so a calendar that depends on
// settings follows them without being rebuilt.
type Func func() generic.HolidayCalendar

var _ generic.HolidayCalendar = Func(nil)

func (f Func) IsHoliday(date generic.Date) bool { return f().IsHoliday(date) }

func (f Func) HolidayName(date generic.Date) (string, bool) { return f().HolidayName(date) }

func (f Func) Holidays(year int) []generic.Holiday { return f().Holidays(year) }
