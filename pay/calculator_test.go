package pay_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	wednesday = generic.NewDate(2025, time.January, 15)
	tuesday   = generic.NewDate(2025, time.January, 14)
	saturday  = generic.NewDate(2025, time.January, 18)
	sunday    = generic.NewDate(2025, time.January, 19)
	monday    = generic.NewDate(2025, time.January, 13)
)

func clock(s string) generic.ClockTime { return generic.MustParseClock(s) }

func shift(date generic.Date, start, end string) pay.ShiftInput {
	return pay.NewShift(date, clock(start), clock(end))
}

func overnight(date generic.Date, start, end string) pay.ShiftInput {
	s := shift(date, start, end)
	s.EndsNextDay = true
	return s
}

func retail() pay.RateSchedule    { return pay.DefaultRateSchedule(pay.WorkplaceRetail) }
func warehouse() pay.RateSchedule { return pay.DefaultRateSchedule(pay.WorkplaceWarehouse) }

func withoutAutoBreak(r pay.RateSchedule) pay.RateSchedule {
	r.AutoBreak.Enabled = false
	return r
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msg)
}

func assertComposition(t *testing.T, b pay.PayBreakdown) {
	t.Helper()
	assert.True(t, b.BasePay.Add(b.PremiumPay).Equal(b.GrossPay), "base + premium == gross")
	assert.True(t, b.GrossPay.Add(b.VacationPay).Equal(b.TotalBeforeTax), "gross + vacation == total")
	assert.True(t, b.TotalBeforeTax.Sub(b.Tax).Equal(b.NetPay), "total - tax == net")

	sum := decimal.Zero
	for _, p := range b.Premiums {
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(b.PremiumPay), "premium lines sum to premium pay")
}

// =============================================================================
// EXAMPLE SCENARIOS
// =============================================================================

func TestComputePay_RetailWeekdayDayShift(t *testing.T) {
	// GIVEN: Wednesday 08:00-17:00 with a 60 minute explicit break
	in := shift(wednesday, "08:00", "17:00")
	in.Break = pay.BreakOf(60)

	// WHEN: Computing with stock retail rates
	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	// THEN: 8 worked hours, no premiums, exact tax composition
	assert.Equal(t, 480, b.WorkedMinutes)
	assert.True(t, b.WorkedHours.Equal(decimal.NewFromInt(8)))
	assertMoney(t, "1304.00", b.BasePay, "base")
	assert.True(t, b.PremiumPay.IsZero())
	assert.Empty(t, b.Premiums)
	assertMoney(t, "1304.00", b.GrossPay, "gross")
	assertMoney(t, "156.48", b.VacationPay, "vacation")
	assertMoney(t, "1460.48", b.TotalBeforeTax, "total")
	assertMoney(t, "438.14", b.Tax, "tax")
	assertMoney(t, "1022.34", b.NetPay, "net")
	assert.False(t, b.AutoBreakApplied)
	assertComposition(t, b)
}

func TestComputePay_RetailSundayWholeDay(t *testing.T) {
	// GIVEN: Sunday 10:00-18:00, no break
	in := shift(sunday, "10:00", "18:00")

	b, err := pay.ComputePay(in, withoutAutoBreak(retail()))
	require.NoError(t, err)

	// THEN: all 8 hours at +100 %
	assertMoney(t, "1304.00", b.PremiumPay, "premium = 8 x base x 1.0")
	require.Len(t, b.Premiums, 1)
	assert.Equal(t, "+100% (Sunday)", b.Premiums[0].Label)
	assert.Equal(t, 480, b.Premiums[0].Minutes)
	assertComposition(t, b)
}

func TestComputePay_WarehouseOvernightTuesdayToWednesday(t *testing.T) {
	// GIVEN: Tuesday 22:00 to Wednesday 07:00
	in := overnight(tuesday, "22:00", "07:00")

	b, err := pay.ComputePay(in, withoutAutoBreak(warehouse()))
	require.NoError(t, err)

	// THEN: evening 22-23, night 23-06, morning 06-07 and no minute counted twice
	evening, ok := b.PremiumByLabel("+35% (18:00–23:00)")
	require.True(t, ok)
	assert.Equal(t, 60, evening.Minutes)

	night, ok := b.PremiumByLabel("+55% (23:00–06:00)")
	require.True(t, ok)
	assert.Equal(t, 420, night.Minutes)

	morning, ok := b.PremiumByLabel("+30% (06:00–07:00)")
	require.True(t, ok)
	assert.Equal(t, 60, morning.Minutes)

	total := 0
	for _, p := range b.Premiums {
		total += p.Minutes
	}
	assert.Equal(t, 540, total)
	assert.Equal(t, 540, b.WorkedMinutes)

	assertMoney(t, "57.05", evening.Amount, "evening")
	assertMoney(t, "627.55", night.Amount, "night")
	assertMoney(t, "48.90", morning.Amount, "morning")
	assertMoney(t, "733.50", b.PremiumPay, "premium")
	assertComposition(t, b)
}

func TestComputePay_SickDayOneIsWaitingDay(t *testing.T) {
	// GIVEN: A nine hour shift declared as sick day 1
	in := shift(wednesday, "08:00", "17:00")
	in.Sick = &pay.SickDay{DayNumber: 1, Hours: decimal.NewFromInt(9)}

	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	assert.Equal(t, 0, b.WorkedMinutes)
	assert.True(t, b.WorkedHours.IsZero())
	assert.True(t, b.GrossPay.IsZero())
	assert.True(t, b.NetPay.IsZero())
}

func TestComputePay_SickDayThreePaysEightyPercent(t *testing.T) {
	in := pay.ShiftInput{
		Date: wednesday,
		Sick: &pay.SickDay{DayNumber: 3, Hours: decimal.NewFromInt(6)},
	}

	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	assertMoney(t, "782.40", b.GrossPay, "6 x 163 x 0.8")
	assert.True(t, b.PremiumPay.IsZero())
	assert.Empty(t, b.Premiums)
	assert.Equal(t, 360, b.WorkedMinutes)
	assertComposition(t, b)
}

func TestComputePay_AutomaticBreakSecondTier(t *testing.T) {
	// GIVEN: A 7.5 hour shift with stock tiers 4h/6h/8h
	in := shift(wednesday, "08:00", "15:30")

	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	// THEN: 30 minutes, not 15+30
	assert.Equal(t, 30, b.BreakMinutes)
	assert.True(t, b.AutoBreakApplied)
	assert.Equal(t, 420, b.WorkedMinutes)
}

// =============================================================================
// BREAK RESOLUTION
// =============================================================================

func TestAutoBreakMinutes_Tiers(t *testing.T) {
	cfg := retail().AutoBreak

	tests := []struct {
		name    string
		minutes int
		want    int
	}{
		{"below first tier", 239, 0},
		{"exactly four hours", 240, 15},
		{"five hours", 300, 15},
		{"exactly six hours", 360, 30},
		{"seven and a half hours", 450, 30},
		{"exactly eight hours", 480, 60},
		{"twelve hours", 720, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pay.AutoBreakMinutes(cfg, tt.minutes))
		})
	}
}

func TestAutoBreakMinutes_Monotonic(t *testing.T) {
	cfg := retail().AutoBreak
	prev := 0
	for m := 0; m <= 24*60; m++ {
		got := pay.AutoBreakMinutes(cfg, m)
		if got < prev {
			t.Fatalf("break decreased at %d minutes: %d < %d", m, got, prev)
		}
		prev = got
	}
}

func TestAutoBreakMinutes_Disabled(t *testing.T) {
	cfg := retail().AutoBreak
	cfg.Enabled = false
	assert.Equal(t, 0, pay.AutoBreakMinutes(cfg, 600))
}

func TestComputePay_BreakPriority(t *testing.T) {
	rates := retail()

	t.Run("window wins over minutes", func(t *testing.T) {
		in := shift(wednesday, "08:00", "17:00")
		in.Break = pay.BreakBetween(clock("12:00"), clock("12:45"))
		b, err := pay.ComputePay(in, rates)
		require.NoError(t, err)
		assert.Equal(t, 45, b.BreakMinutes)
		assert.Equal(t, 495, b.WorkedMinutes)
		assert.False(t, b.AutoBreakApplied)
	})

	t.Run("zero minutes falls back to automatic", func(t *testing.T) {
		in := shift(wednesday, "08:00", "17:00")
		in.Break = pay.BreakOf(0)
		b, err := pay.ComputePay(in, rates)
		require.NoError(t, err)
		assert.Equal(t, 60, b.BreakMinutes)
		assert.True(t, b.AutoBreakApplied)
	})

	t.Run("recorded zero stays zero", func(t *testing.T) {
		in := shift(wednesday, "08:00", "17:00")
		in.Break = pay.RecordedBreak(0)
		b, err := pay.ComputePay(in, rates)
		require.NoError(t, err)
		assert.Equal(t, 0, b.BreakMinutes)
		assert.False(t, b.AutoBreakApplied)
		assert.Equal(t, 540, b.WorkedMinutes)
	})

	t.Run("overnight break after midnight", func(t *testing.T) {
		in := overnight(tuesday, "22:00", "07:00")
		in.Break = pay.BreakBetween(clock("02:00"), clock("02:30"))
		b, err := pay.ComputePay(in, warehouse())
		require.NoError(t, err)
		assert.Equal(t, 30, b.BreakMinutes)
		assert.Equal(t, 510, b.WorkedMinutes)
	})
}

func TestComputePay_PremiumsIgnoreBreak(t *testing.T) {
	// GIVEN: The same evening shift with and without a break inside the window
	with := shift(wednesday, "17:00", "21:00")
	with.Break = pay.BreakBetween(clock("19:00"), clock("19:30"))
	without := shift(wednesday, "17:00", "21:00")
	without.Break = pay.RecordedBreak(0)

	a, err := pay.ComputePay(with, retail())
	require.NoError(t, err)
	b, err := pay.ComputePay(without, retail())
	require.NoError(t, err)

	// THEN: premiums are evaluated over the full window
	assert.True(t, a.PremiumPay.Equal(b.PremiumPay))
	assert.True(t, a.BasePay.LessThan(b.BasePay))
}

// =============================================================================
// PREMIUM RULES
// =============================================================================

func TestComputePay_RetailWeekdayEvening(t *testing.T) {
	in := shift(wednesday, "17:00", "21:00")
	in.Break = pay.RecordedBreak(0)

	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	require.Len(t, b.Premiums, 2)
	assert.Equal(t, "+50% (18:15–20:00)", b.Premiums[0].Label)
	assert.Equal(t, 105, b.Premiums[0].Minutes)
	assert.Equal(t, "+70% (20:00–24:00)", b.Premiums[1].Label)
	assert.Equal(t, 60, b.Premiums[1].Minutes)
	assertComposition(t, b)
}

func TestComputePay_RetailSaturdayAfternoon(t *testing.T) {
	in := shift(saturday, "10:00", "16:00")
	in.Break = pay.RecordedBreak(0)

	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	require.Len(t, b.Premiums, 1)
	assert.Equal(t, 240, b.Premiums[0].Minutes)
	assertMoney(t, "652.00", b.PremiumPay, "4h at +100%")
}

func TestComputePay_RedDayOverridesEverything(t *testing.T) {
	// GIVEN: A weekday evening shift flagged as red day
	in := shift(wednesday, "17:00", "22:00")
	in.RedDay = true
	in.Break = pay.RecordedBreak(0)

	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)

	// THEN: one whole-shift line at the red-day rate
	require.Len(t, b.Premiums, 1)
	assert.Equal(t, "+100% (red day)", b.Premiums[0].Label)
	assert.Equal(t, 300, b.Premiums[0].Minutes)
	assertMoney(t, "815.00", b.PremiumPay, "5h at +100%")
}

func TestComputePay_WarehouseMondayEarlyMorning(t *testing.T) {
	in := shift(monday, "04:00", "08:00")
	in.Break = pay.RecordedBreak(0)

	b, err := pay.ComputePay(in, warehouse())
	require.NoError(t, err)

	mn, ok := b.PremiumByLabel("+110% (00:00–06:00)")
	require.True(t, ok)
	assert.Equal(t, 120, mn.Minutes)
	morning, ok := b.PremiumByLabel("+30% (06:00–07:00)")
	require.True(t, ok)
	assert.Equal(t, 60, morning.Minutes)
	assert.Len(t, b.Premiums, 2)
}

func TestComputePay_WarehouseSaturdayIntoSunday(t *testing.T) {
	// GIVEN: Saturday 22:00 to Sunday 02:00
	in := overnight(saturday, "22:00", "02:00")
	in.Break = pay.RecordedBreak(0)

	b, err := pay.ComputePay(in, warehouse())
	require.NoError(t, err)

	day, ok := b.PremiumByLabel("+65% (06:00–23:00)")
	require.True(t, ok)
	assert.Equal(t, 60, day.Minutes)
	late, ok := b.PremiumByLabel("+110% (23:00–24:00)")
	require.True(t, ok)
	assert.Equal(t, 60, late.Minutes)
	sun, ok := b.PremiumByLabel("+110% (Sunday)")
	require.True(t, ok)
	assert.Equal(t, 120, sun.Minutes)
}

func TestComputePay_ZeroRateProducesNoLine(t *testing.T) {
	rates := retail()
	rates.Retail.WeekdayEvening = decimal.Zero

	in := shift(wednesday, "17:00", "20:00")
	in.Break = pay.RecordedBreak(0)
	b, err := pay.ComputePay(in, rates)
	require.NoError(t, err)
	assert.Empty(t, b.Premiums)
	assert.True(t, b.PremiumPay.IsZero())
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestComputePay_Idempotent(t *testing.T) {
	in := overnight(tuesday, "21:30", "06:15")
	in.Break = pay.BreakOf(45)

	a, err := pay.ComputePay(in, warehouse())
	require.NoError(t, err)
	b, err := pay.ComputePay(in, warehouse())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputePay_CompositionAcrossShapes(t *testing.T) {
	inputs := []pay.ShiftInput{
		shift(wednesday, "06:00", "14:00"),
		shift(saturday, "11:00", "23:30"),
		shift(sunday, "00:00", "24:00"),
		overnight(monday, "20:00", "04:00"),
		overnight(generic.NewDate(2025, time.January, 17), "21:00", "07:00"),
	}
	for _, rates := range []pay.RateSchedule{retail(), warehouse()} {
		for _, in := range inputs {
			b, err := pay.ComputePay(in, rates)
			require.NoError(t, err)
			assertComposition(t, b)
			assert.Equal(t, b.WorkedMinutes+b.BreakMinutes, mustSpan(in))
		}
	}
}

func mustSpan(in pay.ShiftInput) int {
	to := in.End.Minutes()
	if in.EndsNextDay {
		to += 24 * 60
	}
	return to - in.Start.Minutes()
}

func TestComputePay_MissingTimesYieldZero(t *testing.T) {
	in := pay.ShiftInput{Date: wednesday}
	b, err := pay.ComputePay(in, retail())
	require.NoError(t, err)
	assert.Equal(t, 0, b.WorkedMinutes)
	assert.True(t, b.NetPay.IsZero())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestComputePay_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pay.ShiftInput, *pay.RateSchedule)
		reason generic.Reason
	}{
		{"end before start", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			*s = shift(wednesday, "17:00", "08:00")
		}, generic.ReasonEndBeforeStart},
		{"end equals start", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			*s = shift(wednesday, "08:00", "08:00")
		}, generic.ReasonEndBeforeStart},
		{"tax above 100", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.TaxRate = decimal.NewFromInt(101)
		}, generic.ReasonTaxRateRange},
		{"negative tax", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.TaxRate = decimal.NewFromInt(-1)
		}, generic.ReasonTaxRateRange},
		{"negative vacation", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.VacationRate = decimal.NewFromInt(-5)
		}, generic.ReasonVacationRateRange},
		{"negative base", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.BasePay = decimal.NewFromInt(-1)
		}, generic.ReasonNegativeBasePay},
		{"negative premium", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.Retail.Saturday = decimal.NewFromInt(-10)
		}, generic.ReasonNegativeRate},
		{"unknown workplace", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.Workplace = "office"
		}, generic.ReasonUnknownWorkplace},
		{"inverted break", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			s.Break = pay.BreakBetween(clock("13:00"), clock("12:00"))
		}, generic.ReasonBreakInverted},
		{"break outside shift", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			s.Break = pay.BreakBetween(clock("07:00"), clock("07:30"))
		}, generic.ReasonBreakOutsideShift},
		{"break exceeds shift", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			s.Break = pay.BreakOf(600)
		}, generic.ReasonBreakExceedsShift},
		{"negative recorded break", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			s.Break = pay.RecordedBreak(-1)
		}, generic.ReasonNegativeWorked},
		{"sick day zero", func(s *pay.ShiftInput, _ *pay.RateSchedule) {
			s.Sick = &pay.SickDay{DayNumber: 0, Hours: decimal.NewFromInt(8)}
		}, generic.ReasonInvalidSickDay},
		{"descending tiers", func(_ *pay.ShiftInput, r *pay.RateSchedule) {
			r.AutoBreak.Tiers[2].AfterHours = 5
		}, generic.ReasonInvalidBreakTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := shift(wednesday, "08:00", "17:00")
			rates := retail()
			tt.mutate(&in, &rates)

			_, err := pay.ComputePay(in, rates)
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
			assert.Equal(t, tt.reason, generic.ReasonOf(err))
		})
	}
}

// =============================================================================
// PREMIUM AT INSTANT
// =============================================================================

func TestPremiumAt(t *testing.T) {
	rate, label, ok := pay.PremiumAt(retail(), wednesday, clock("19:00"), false)
	assert.True(t, ok)
	assert.Equal(t, "+50% (18:15–20:00)", label)
	assert.True(t, rate.Equal(decimal.NewFromInt(50)))

	_, _, ok = pay.PremiumAt(retail(), wednesday, clock("10:00"), false)
	assert.False(t, ok)

	rate, _, ok = pay.PremiumAt(warehouse(), tuesday, clock("02:00"), false)
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(55)))

	_, label, ok = pay.PremiumAt(retail(), wednesday, clock("10:00"), true)
	assert.True(t, ok)
	assert.Equal(t, "+100% (red day)", label)
}
