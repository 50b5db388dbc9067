package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day without a time of day
// =============================================================================

// Date is a calendar day. Shifts, holidays and pay periods are keyed by Date;
// wall-clock positions within the day are ClockTime values.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes overflowing values the way time.Date does (Jan 32 -> Feb 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func Today() Date { return DateOf(time.Now()) }

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

// In returns midnight of the day in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Comparison
func (d Date) Before(o Date) bool        { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool         { return d.Time().After(o.Time()) }
func (d Date) Equal(o Date) bool         { return d == o }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.Time().AddDate(0, n, 0)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsZero() bool          { return d.Year == 0 && d.Month == 0 && d.Day == 0 }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.Time().Format("2006-01-02") }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func DaysBetween(from, to Date) int { return int(to.Time().Sub(from.Time()).Hours() / 24) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date   { return NewDate(year, month+1, 1).AddDays(-1) }

// =============================================================================
// CLOCK TIME - Minute of the day
// =============================================================================

// ClockTime is a wall-clock position in minutes since midnight.
// EndOfDay (24:00) is only meaningful as the end of a window.
type ClockTime int

const (
	Midnight  ClockTime = 0
	EndOfDay  ClockTime = 24 * 60
	dayMinute           = 24 * 60
)

func Clock(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ClockOf truncates t to the minute.
func ClockOf(t time.Time) ClockTime { return Clock(t.Hour(), t.Minute()) }

// ParseClock accepts "HH:MM", "H:MM" and "24:00".
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || len(hh) == 0 || len(hh) > 2 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return Clock(h, m), nil
}

func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Hour() int    { return int(c) / 60 }
func (c ClockTime) Minute() int  { return int(c) % 60 }
func (c ClockTime) Minutes() int { return int(c) }
func (c ClockTime) Valid() bool  { return c >= Midnight && c <= EndOfDay }

// On places the clock time on a calendar day in loc.
func (c ClockTime) On(d Date, loc *time.Location) time.Time {
	return d.In(loc).Add(time.Duration(c) * time.Minute)
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// WINDOW - Daily time window, possibly wrapping past midnight
// =============================================================================

// Window is a half-open daily window [Start, End). A window whose End precedes
// its Start wraps past midnight (23:00-06:00).
type Window struct {
	Start ClockTime
	End   ClockTime
}

var WholeDay = Window{Start: Midnight, End: EndOfDay}

func NewWindow(start, end ClockTime) Window { return Window{Start: start, End: end} }

func (w Window) Wraps() bool { return w.End < w.Start }

// Contains reports whether the minute starting at c lies inside the window.
func (w Window) Contains(c ClockTime) bool {
	if w.Wraps() {
		return c >= w.Start || c < w.End
	}
	return c >= w.Start && c < w.End
}

// OverlapMinutes returns how many minutes of [from, to) fall inside the window.
// from and to are minutes since the midnight the window is anchored to.
// Wrapping windows are split into [Start, 24:00) and [00:00, End).
func (w Window) OverlapMinutes(from, to int) int {
	if w.Wraps() {
		return overlap(from, to, int(w.Start), dayMinute) + overlap(from, to, 0, int(w.End))
	}
	return overlap(from, to, int(w.Start), int(w.End))
}

func (w Window) Minutes() int {
	if w.Wraps() {
		return dayMinute - int(w.Start) + int(w.End)
	}
	return int(w.End) - int(w.Start)
}

func (w Window) String() string { return w.Start.String() + "–" + w.End.String() }

func overlap(aStart, aEnd, bStart, bEnd int) int {
	start := max(aStart, bStart)
	end := min(aEnd, bEnd)
	if end <= start {
		return 0
	}
	return end - start
}
