package generic_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

func TestPeriodFor_CalendarMonth(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodCalendarMonth}
	p := pc.PeriodFor(generic.NewDate(2024, time.February, 14))

	assert.Equal(t, generic.NewDate(2024, time.February, 1), p.Start)
	assert.Equal(t, generic.NewDate(2024, time.February, 29), p.End)
	assert.Len(t, p.Days(), 29)
}

func TestPeriodFor_OffsetMonth(t *testing.T) {
	// GIVEN: Pay periods starting on the 25th
	pc := generic.PeriodConfig{Type: generic.PeriodOffsetMonth, StartDay: 25}

	// WHEN: A date before the cut-off
	p := pc.PeriodFor(generic.NewDate(2025, time.March, 10))

	// THEN: It belongs to the period that started last month
	assert.Equal(t, generic.NewDate(2025, time.February, 25), p.Start)
	assert.Equal(t, generic.NewDate(2025, time.March, 24), p.End)

	// AND: On the cut-off a new period starts
	p = pc.PeriodFor(generic.NewDate(2025, time.March, 25))
	assert.Equal(t, generic.NewDate(2025, time.March, 25), p.Start)
	assert.Equal(t, generic.NewDate(2025, time.April, 24), p.End)
}

func TestPeriodFor_ISOWeek(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodISOWeek}

	p := pc.PeriodFor(generic.NewDate(2025, time.January, 19)) // Sunday
	assert.Equal(t, generic.NewDate(2025, time.January, 13), p.Start)
	assert.Equal(t, generic.NewDate(2025, time.January, 19), p.End)
}

func TestPeriod_NextPrevious(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodCalendarMonth}
	jan := pc.PeriodFor(generic.NewDate(2025, time.January, 1))

	feb := pc.Next(jan)
	assert.Equal(t, generic.NewDate(2025, time.February, 28), feb.End)
	assert.Equal(t, jan, pc.Previous(feb))
}

func TestNewPeriod_Inverted(t *testing.T) {
	_, err := generic.NewPeriod(generic.NewDate(2025, 2, 1), generic.NewDate(2025, 1, 1))
	require.ErrorIs(t, err, generic.ErrInvalidPeriod)
	assert.True(t, generic.IsClientError(err))
}

func TestMoney(t *testing.T) {
	base := decimal.NewFromInt(163)

	assert.Equal(t, "1304", generic.HourlyAmount(base, 480).String())
	assert.Equal(t, "81.5", generic.Percent(base, decimal.NewFromInt(50)).String())
	assert.Equal(t, "7.5", generic.MinutesToHours(450).String())
	assert.Equal(t, 438.14, generic.Float(generic.MustParseDecimal("438.144")))
}

func TestValidationError(t *testing.T) {
	err := generic.Invalid(generic.ReasonTaxRateRange, "tax_rate", "tax %d%% too high", 120)

	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	assert.Equal(t, generic.ReasonTaxRateRange, generic.ReasonOf(err))
	assert.Contains(t, err.Error(), "tax_rate")
	assert.True(t, generic.IsClientError(err))

	nf := &generic.NotFoundError{Kind: "entry", ID: "x"}
	assert.True(t, generic.IsNotFound(nf))
	assert.False(t, generic.IsClientError(nf))
}
