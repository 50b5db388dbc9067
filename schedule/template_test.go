package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/schedule"
)

func weekdays() schedule.Template {
	return schedule.Template{
		ID:        "tpl-1",
		Name:      "Weekday store",
		RRule:     "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR",
		StartDate: generic.NewDate(2025, time.January, 1),
		Start:     generic.Clock(8, 0),
		End:       generic.Clock(17, 0),
	}
}

func april2025() generic.Period {
	return generic.PeriodConfig{Type: generic.PeriodCalendarMonth}.PeriodFor(generic.NewDate(2025, time.April, 1))
}

func TestTemplate_ExpandMarksRedDays(t *testing.T) {
	// GIVEN: Weekday shifts over April 2025 (Good Friday 18th, Easter Monday 21st)
	tpl := weekdays()

	// WHEN: Expanding with the Swedish calendar
	occ, err := tpl.Expand(april2025(), holiday.Swedish{})
	require.NoError(t, err)

	// THEN: 22 weekdays, two of them red
	assert.Len(t, occ, 22)
	red := 0
	for _, o := range occ {
		if o.Input.RedDay {
			red++
			assert.NotEmpty(t, o.HolidayName)
		}
		assert.NotEqual(t, time.Saturday, o.Input.Date.Weekday())
		assert.NotEqual(t, time.Sunday, o.Input.Date.Weekday())
	}
	assert.Equal(t, 2, red)
	assert.Equal(t, generic.NewDate(2025, time.April, 1), occ[0].Input.Date)
	assert.Equal(t, generic.NewDate(2025, time.April, 30), occ[len(occ)-1].Input.Date)
}

func TestTemplate_SkipHolidays(t *testing.T) {
	tpl := weekdays()
	tpl.SkipHolidays = true

	occ, err := tpl.Expand(april2025(), holiday.Swedish{})
	require.NoError(t, err)
	assert.Len(t, occ, 20)
}

func TestTemplate_BreakMinutes(t *testing.T) {
	tpl := weekdays()
	tpl.BreakMinutes = 45

	occ, err := tpl.Expand(april2025(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, occ)
	assert.Equal(t, pay.BreakMinutes, occ[0].Input.Break.Mode())
	assert.Equal(t, 45, occ[0].Input.Break.Minutes())
}

func TestTemplate_Validate(t *testing.T) {
	bad := weekdays()
	bad.RRule = "FREQ=SOMETIMES"
	err := bad.Validate()
	require.Error(t, err)
	assert.Equal(t, generic.ReasonInvalidSchedule, generic.ReasonOf(err))

	inverted := weekdays()
	inverted.End = generic.Clock(7, 0)
	assert.Equal(t, generic.ReasonEndBeforeStart, generic.ReasonOf(inverted.Validate()))

	night := weekdays()
	night.Start, night.End, night.EndsNextDay = generic.Clock(22, 0), generic.Clock(6, 0), true
	assert.NoError(t, night.Validate())
}

func TestForecastPeriod(t *testing.T) {
	// GIVEN: The weekday template and a broken one
	broken := weekdays()
	broken.ID = "tpl-bad"
	broken.RRule = "nonsense"
	rates := pay.DefaultRateSchedule(pay.WorkplaceRetail)
	now := time.Date(2025, time.March, 30, 12, 0, 0, 0, time.UTC)

	// WHEN: Forecasting April
	f, err := schedule.ForecastPeriod([]schedule.Template{weekdays(), broken}, april2025(), rates, holiday.Swedish{}, now)
	require.NoError(t, err)

	// THEN: Every occurrence is priced and the broken template is reported
	assert.Len(t, f.Shifts, 22)
	require.Len(t, f.Errors, 1)
	assert.Equal(t, "tpl-bad", f.Errors[0].TemplateID)
	assert.Equal(t, 22, f.Summary.Shifts)
	assert.Equal(t, 22*480, f.Summary.WorkedMinutes) // 9h minus the 8h tier break
	assert.True(t, f.Summary.PremiumPay.IsPositive(), "red days pay a premium")
}

func TestForecastPeriod_InvalidRates(t *testing.T) {
	rates := pay.DefaultRateSchedule(pay.WorkplaceRetail)
	rates.TaxRate = generic.MustParseDecimal("120")

	_, err := schedule.ForecastPeriod([]schedule.Template{weekdays()}, april2025(), rates, nil, time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}
