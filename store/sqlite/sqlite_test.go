package sqlite_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/schedule"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func nightEntry(id string, date generic.Date) sqlite.Entry {
	in := pay.NewShift(date, generic.Clock(22, 0), generic.Clock(7, 0))
	in.EndsNextDay = true
	in.Break = pay.BreakBetween(generic.Clock(2, 0), generic.Clock(2, 30))
	return sqlite.Entry{
		ID:          id,
		Input:       in,
		Description: "inventory",
		CreatedAt:   time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestEntries_SaveGetList(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	// GIVEN: Three entries across two weeks
	jan14 := generic.NewDate(2025, time.January, 14)
	require.NoError(t, store.SaveEntry(ctx, nightEntry("b", jan14)))
	require.NoError(t, store.SaveEntry(ctx, nightEntry("a", jan14.AddDays(-7))))
	require.NoError(t, store.SaveEntry(ctx, nightEntry("c", jan14.AddDays(7))))

	// WHEN: Reading one back
	got, err := store.GetEntry(ctx, "b")
	require.NoError(t, err)

	// THEN: The raw input round-trips exactly
	assert.Equal(t, nightEntry("b", jan14).Input, got.Input)
	assert.Equal(t, "inventory", got.Description)

	// AND: Range queries are inclusive and ordered by date
	all, err := store.ListEntries(ctx, generic.Date{}, generic.Date{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)

	week, err := store.ListEntries(ctx, jan14, jan14.AddDays(6))
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, "b", week[0].ID)
}

func TestEntries_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	date := generic.NewDate(2025, time.January, 15)

	e := nightEntry("x", date)
	require.NoError(t, store.SaveEntry(ctx, e))

	e.Description = "changed"
	require.NoError(t, store.SaveEntry(ctx, e))

	got, err := store.GetEntry(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Description)

	require.NoError(t, store.DeleteEntry(ctx, "x"))
	_, err = store.GetEntry(ctx, "x")
	assert.True(t, generic.IsNotFound(err))
	assert.True(t, generic.IsNotFound(store.DeleteEntry(ctx, "x")))
}

func TestEntry_RecordIsPricedOnRead(t *testing.T) {
	// GIVEN: A stored night shift and two different base rates
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveEntry(ctx, nightEntry("n", generic.NewDate(2025, time.January, 14))))
	e, err := store.GetEntry(ctx, "n")
	require.NoError(t, err)

	low := factory.DefaultSettings(pay.WorkplaceWarehouse).Rates
	high := low
	high.BasePay = low.BasePay.Add(generic.MustParseDecimal("10"))

	// WHEN: Pricing it under each
	a, err := e.Record(low)
	require.NoError(t, err)
	b, err := e.Record(high)
	require.NoError(t, err)

	// THEN: Worked time is stable and pay follows the current rates
	assert.Equal(t, 510, a.Breakdown.WorkedMinutes)
	assert.Equal(t, a.Breakdown.WorkedMinutes, b.Breakdown.WorkedMinutes)
	assert.True(t, b.Breakdown.GrossPay.GreaterThan(a.Breakdown.GrossPay))
}

func TestSettings_Versioned(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	rec, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	sj := factory.DefaultSettingsJSON(pay.WorkplaceRetail)
	require.NoError(t, store.SaveSettings(ctx, sj))
	sj.BasePay = 170
	require.NoError(t, store.SaveSettings(ctx, sj))

	rec, err = store.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, 170.0, rec.Settings.BasePay)
}

func TestHolidays_Calendar(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	// GIVEN: A one-off company day and a recurring local holiday
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{
		ID: "h1", Date: generic.NewDate(2025, time.March, 3), Name: "Company day",
	}))
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{
		ID: "h2", Date: generic.NewDate(2020, time.August, 12), Name: "Town day", Recurring: true,
	}))

	// THEN: The one-off matches only its year
	assert.True(t, store.IsHoliday(generic.NewDate(2025, time.March, 3)))
	assert.False(t, store.IsHoliday(generic.NewDate(2026, time.March, 3)))

	// AND: The recurring one matches every year
	name, ok := store.HolidayName(generic.NewDate(2027, time.August, 12))
	assert.True(t, ok)
	assert.Equal(t, "Town day", name)

	h2025 := store.Holidays(2025)
	require.Len(t, h2025, 2)
	assert.Equal(t, generic.NewDate(2025, time.August, 12), h2025[1].Date)
	assert.Len(t, store.Holidays(2026), 1)

	// AND: Duplicates are rejected, deletes are reported
	err := store.SaveHoliday(ctx, generic.Holiday{ID: "h3", Date: generic.NewDate(2025, time.March, 3), Name: "Company day"})
	assert.True(t, generic.IsConflict(err))
	require.NoError(t, store.DeleteHoliday(ctx, "h1"))
	assert.False(t, store.IsHoliday(generic.NewDate(2025, time.March, 3)))
	assert.True(t, generic.IsNotFound(store.DeleteHoliday(ctx, "h1")))
}

func TestHolidays_RecurringLeapDay(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	// GIVEN: A recurring holiday on Feb 29
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{
		ID: "leap", Date: generic.NewDate(2024, time.February, 29), Name: "Leap day", Recurring: true,
	}))

	// THEN: Common years neither list nor match it
	assert.Empty(t, store.Holidays(2025))
	assert.False(t, store.IsHoliday(generic.NewDate(2025, time.March, 1)))

	// AND: Leap years list it on the day the lookup matches
	h2028 := store.Holidays(2028)
	require.Len(t, h2028, 1)
	assert.Equal(t, generic.NewDate(2028, time.February, 29), h2028[0].Date)
	assert.True(t, store.IsHoliday(h2028[0].Date))
}

func TestHolidayName_LogsLookupFailure(t *testing.T) {
	// GIVEN: A store whose database has gone away
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store, err := sqlite.New(":memory:", sqlite.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// WHEN: Looking up a date
	_, ok := store.HolidayName(generic.NewDate(2025, time.March, 3))

	// THEN: It is not a holiday, and the failure is logged
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "holiday lookup failed")
}

func TestHolidayName_MissIsSilent(t *testing.T) {
	var buf bytes.Buffer
	store, err := sqlite.New(":memory:", sqlite.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, ok := store.HolidayName(generic.NewDate(2025, time.March, 3))

	assert.False(t, ok)
	assert.Empty(t, buf.String())
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	tmpl := schedule.Template{
		ID:           "t1",
		Name:         "Weekday days",
		RRule:        "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR",
		StartDate:    generic.NewDate(2025, time.January, 1),
		Start:        generic.Clock(8, 0),
		End:          generic.Clock(17, 0),
		BreakMinutes: 60,
		SkipHolidays: true,
	}
	require.NoError(t, store.SaveTemplate(ctx, tmpl))

	list, err := store.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tmpl, list[0])

	require.NoError(t, store.DeleteTemplate(ctx, "t1"))
	assert.True(t, generic.IsNotFound(store.DeleteTemplate(ctx, "t1")))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveEntry(ctx, nightEntry("a", generic.NewDate(2025, time.January, 14))))
	require.NoError(t, store.SaveSettings(ctx, factory.DefaultSettingsJSON(pay.WorkplaceRetail)))

	require.NoError(t, store.Reset(ctx))

	entries, err := store.ListEntries(ctx, generic.Date{}, generic.Date{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	rec, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
