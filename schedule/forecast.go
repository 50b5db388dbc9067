package schedule

import (
	"sort"
	"time"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// Forecast is the projected pay of a period from recurring templates.
type Forecast struct {
	Period  generic.Period
	Summary pay.PeriodSummary
	Shifts  []pay.ShiftRecord
	Errors  []TemplateError
}

// TemplateError records a template that could not be expanded.
type TemplateError struct {
	TemplateID string
	Err        error
}

// ForecastPeriod expands every template over period and prices the result.
// Broken templates are reported in Errors and skipped; invalid rates fail
// the whole forecast.
func ForecastPeriod(templates []Template, period generic.Period, rates pay.RateSchedule, cal generic.HolidayCalendar, now time.Time) (Forecast, error) {
	if err := pay.ValidateRates(rates); err != nil {
		return Forecast{}, err
	}

	f := Forecast{Period: period}
	for _, t := range templates {
		occurrences, err := t.Expand(period, cal)
		if err != nil {
			f.Errors = append(f.Errors, TemplateError{TemplateID: t.ID, Err: err})
			continue
		}
		for _, o := range occurrences {
			id := o.TemplateID + "@" + o.Input.Date.String()
			rec, err := pay.NewShiftRecord(id, o.Input, t.Name, rates, now)
			if err != nil {
				return Forecast{}, err
			}
			f.Shifts = append(f.Shifts, rec)
		}
	}

	sort.SliceStable(f.Shifts, func(i, j int) bool {
		return f.Shifts[i].Input.Date.Before(f.Shifts[j].Input.Date)
	})
	f.Summary = pay.Summarize(f.Shifts, period)
	return f, nil
}
