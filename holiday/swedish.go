// Package holiday provides red-day calendars for the pay engine.
package holiday

import (
	"sort"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// Swedish is the Swedish public holiday calendar. Eves (midsummer, Christmas,
// New Year, Easter and Pentecost eve) are not public holidays by law but most
// agreements pay them as red days; IncludeEves adds them.
type Swedish struct {
	IncludeEves bool
}

var _ generic.HolidayCalendar = Swedish{}

func (s Swedish) IsHoliday(date generic.Date) bool {
	_, ok := s.HolidayName(date)
	return ok
}

func (s Swedish) HolidayName(date generic.Date) (string, bool) {
	for _, h := range s.Holidays(date.Year) {
		if h.Date == date {
			return h.Name, true
		}
	}
	return "", false
}

// Holidays returns the year's holidays ordered by date.
func (s Swedish) Holidays(year int) []generic.Holiday {
	easter := Easter(year)
	d := func(m time.Month, day int) generic.Date { return generic.NewDate(year, m, day) }

	list := []generic.Holiday{
		{Date: d(time.January, 1), Name: "Nyårsdagen"},
		{Date: d(time.January, 6), Name: "Trettondedag jul"},
		{Date: easter.AddDays(-2), Name: "Långfredagen"},
		{Date: easter, Name: "Påskdagen"},
		{Date: easter.AddDays(1), Name: "Annandag påsk"},
		{Date: d(time.May, 1), Name: "Första maj"},
		{Date: easter.AddDays(39), Name: "Kristi himmelsfärdsdag"},
		{Date: easter.AddDays(49), Name: "Pingstdagen"},
		{Date: d(time.June, 6), Name: "Sveriges nationaldag"},
		{Date: firstWeekdayFrom(d(time.June, 20), time.Saturday), Name: "Midsommardagen"},
		{Date: firstWeekdayFrom(d(time.October, 31), time.Saturday), Name: "Alla helgons dag"},
		{Date: d(time.December, 25), Name: "Juldagen"},
		{Date: d(time.December, 26), Name: "Annandag jul"},
	}
	if s.IncludeEves {
		list = append(list,
			generic.Holiday{Date: easter.AddDays(-1), Name: "Påskafton"},
			generic.Holiday{Date: easter.AddDays(48), Name: "Pingstafton"},
			generic.Holiday{Date: firstWeekdayFrom(d(time.June, 19), time.Friday), Name: "Midsommarafton"},
			generic.Holiday{Date: d(time.December, 24), Name: "Julafton"},
			generic.Holiday{Date: d(time.December, 31), Name: "Nyårsafton"},
		)
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	return list
}

// Easter returns Easter Sunday of the Gregorian calendar (anonymous
// Gregorian computus).
func Easter(year int) generic.Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return generic.NewDate(year, time.Month(month), day)
}

func firstWeekdayFrom(from generic.Date, wd time.Weekday) generic.Date {
	offset := (int(wd) - int(from.Weekday()) + 7) % 7
	return from.AddDays(offset)
}
