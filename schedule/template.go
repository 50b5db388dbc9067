/*
template.go - Recurring shift templates

PURPOSE:
  A Template describes a shift that repeats on an RFC 5545 recurrence rule
  ("FREQ=WEEKLY;BYDAY=MO,TU,WE"). Expanding it over a pay period yields one
  ShiftInput per occurrence, red-day flags set from a holiday calendar.

SEE ALSO:
  - forecast.go: Pay forecast over expanded templates
  - pay/calculator.go: ComputePay
*/
package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// Template is a recurring shift.
type Template struct {
	ID          string
	Name        string
	RRule       string
	StartDate   generic.Date // first possible occurrence (DTSTART)
	Start       generic.ClockTime
	End         generic.ClockTime
	EndsNextDay bool

	// BreakMinutes of 0 leaves the break to the automatic tiers.
	BreakMinutes int

	// SkipHolidays drops occurrences on red days instead of paying them as such.
	SkipHolidays bool
	Description  string
}

// Occurrence is one expanded instance of a template.
type Occurrence struct {
	TemplateID  string
	Input       pay.ShiftInput
	HolidayName string
}

// Validate checks the recurrence rule and the times.
func (t Template) Validate() error {
	if t.Name == "" {
		return generic.Invalid(generic.ReasonInvalidSchedule, "name", "template name is required")
	}
	if t.StartDate.IsZero() {
		return generic.Invalid(generic.ReasonInvalidSchedule, "start_date", "start date is required")
	}
	if _, err := t.rule(); err != nil {
		return err
	}
	if !t.EndsNextDay && t.End <= t.Start {
		return generic.Invalid(generic.ReasonEndBeforeStart, "end_time",
			"template ends %s at or before it starts %s", t.End, t.Start)
	}
	if t.BreakMinutes < 0 {
		return generic.Invalid(generic.ReasonInvalidSchedule, "break_minutes",
			"break minutes %d must not be negative", t.BreakMinutes)
	}
	return nil
}

func (t Template) rule() (*rrule.RRule, error) {
	opt, err := rrule.StrToROption(t.RRule)
	if err != nil {
		return nil, generic.Invalid(generic.ReasonInvalidSchedule, "rrule",
			"invalid recurrence rule %q: %v", t.RRule, err)
	}
	opt.Dtstart = t.StartDate.Time()
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, generic.Invalid(generic.ReasonInvalidSchedule, "rrule",
			"invalid recurrence rule %q: %v", t.RRule, err)
	}
	return rr, nil
}

// Expand lists the template's occurrences inside period.
func (t Template) Expand(period generic.Period, cal generic.HolidayCalendar) ([]Occurrence, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	rr, err := t.rule()
	if err != nil {
		return nil, err
	}
	if cal == nil {
		cal = generic.NoHolidays{}
	}

	set := rrule.Set{}
	set.RRule(rr)
	instances := set.Between(period.Start.Time(), period.End.Time().Add(24*time.Hour-time.Nanosecond), true)

	out := make([]Occurrence, 0, len(instances))
	for _, inst := range instances {
		date := generic.DateOf(inst.UTC())
		name, red := cal.HolidayName(date)
		if red && t.SkipHolidays {
			continue
		}

		input := pay.NewShift(date, t.Start, t.End)
		input.EndsNextDay = t.EndsNextDay
		input.RedDay = red
		if t.BreakMinutes > 0 {
			input.Break = pay.BreakOf(t.BreakMinutes)
		}
		out = append(out, Occurrence{TemplateID: t.ID, Input: input, HolidayName: name})
	}
	return out, nil
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%s %s %s–%s", o.TemplateID, o.Input.Date, o.Input.Start, o.Input.End)
}
