package factory_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

func TestParseSettings_Defaults(t *testing.T) {
	// GIVEN: Settings without rate sections
	f := factory.NewSettingsFactory()

	s, err := f.ParseSettings(`{"workplace":"warehouse","base_pay":180.5,"tax_rate":32,"vacation_rate":12}`)
	require.NoError(t, err)

	// THEN: Workplace defaults fill the missing sections
	assert.Equal(t, pay.WorkplaceWarehouse, s.Rates.Workplace)
	assert.Equal(t, "180.5", s.Rates.BasePay.String())
	assert.Equal(t, "110", s.Rates.Warehouse.MondayNight.String())
	assert.True(t, s.Rates.AutoBreak.Enabled)
	assert.Equal(t, generic.PeriodCalendarMonth, s.Period.Type)
}

func TestParseSettings_Invalid(t *testing.T) {
	f := factory.NewSettingsFactory()

	tests := []struct {
		name   string
		json   string
		reason generic.Reason
	}{
		{"unknown workplace", `{"workplace":"office","base_pay":100}`, generic.ReasonUnknownWorkplace},
		{"tax out of range", `{"base_pay":100,"tax_rate":130}`, generic.ReasonTaxRateRange},
		{"two tiers", `{"base_pay":100,"auto_break":{"enabled":true,"tiers":[{"after_hours":4,"minutes":15}]}}`, generic.ReasonInvalidBreakTier},
		{"bad period", `{"base_pay":100,"period":{"type":"offset_month","start_day":31}}`, generic.ReasonInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseSettings(tt.json)
			require.Error(t, err)
			assert.Equal(t, tt.reason, generic.ReasonOf(err))
		})
	}

	_, err := f.ParseSettings(`{not json`)
	assert.Error(t, err)
}

func TestSettings_RoundTrip(t *testing.T) {
	f := factory.NewSettingsFactory()
	original := factory.DefaultSettings(pay.WorkplaceRetail)
	original.Period = generic.PeriodConfig{Type: generic.PeriodOffsetMonth, StartDay: 25}

	raw, err := json.Marshal(factory.ToJSON(original))
	require.NoError(t, err)
	parsed, err := f.ParseSettings(string(raw))
	require.NoError(t, err)

	assert.True(t, original.Rates.BasePay.Equal(parsed.Rates.BasePay))
	assert.True(t, original.Rates.Retail.WeekdayNight.Equal(parsed.Rates.Retail.WeekdayNight))
	assert.Equal(t, original.Rates.AutoBreak, parsed.Rates.AutoBreak)
	assert.Equal(t, original.Period, parsed.Period)
	assert.Equal(t, original.IncludeEves, parsed.IncludeEves)
}

// =============================================================================
// DOCUMENT
// =============================================================================

func sampleRecords(t *testing.T, rates pay.RateSchedule) []pay.ShiftRecord {
	t.Helper()
	created := time.Date(2025, time.January, 15, 18, 0, 0, 0, time.UTC)

	day := pay.NewShift(generic.NewDate(2025, time.January, 15), generic.Clock(8, 0), generic.Clock(17, 0))
	day.Break = pay.BreakOf(60)

	night := pay.NewShift(generic.NewDate(2025, time.January, 14), generic.Clock(22, 0), generic.Clock(7, 0))
	night.EndsNextDay = true
	night.Break = pay.BreakBetween(generic.Clock(2, 0), generic.Clock(2, 30))

	sick := pay.ShiftInput{
		Date: generic.NewDate(2025, time.January, 16),
		Sick: &pay.SickDay{DayNumber: 2, Hours: generic.MustParseDecimal("7.5")},
	}

	broken := pay.NewShift(generic.NewDate(2025, time.January, 17), generic.Clock(12, 0), generic.Clock(11, 0))

	var out []pay.ShiftRecord
	for i, in := range []pay.ShiftInput{day, night, sick, broken} {
		rec, err := pay.NewShiftRecord(string(rune('a'+i)), in, "", rates, created)
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestDocument_ExportImport(t *testing.T) {
	// GIVEN: Four records, one of them invalid
	settings := factory.DefaultSettings(pay.WorkplaceWarehouse)
	records := sampleRecords(t, settings.Rates)

	// WHEN: Exporting and importing again
	var buf bytes.Buffer
	require.NoError(t, factory.ExportDocument(&buf, settings, records, time.Now()))
	imported, got, err := factory.ImportDocument(&buf)
	require.NoError(t, err)

	// THEN: Inputs survive and breakdowns are recomputed identically
	assert.Equal(t, pay.WorkplaceWarehouse, imported.Rates.Workplace)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i].Input, got[i].Input, "entry %d", i)
		assert.Equal(t, records[i].Invalid, got[i].Invalid, "entry %d", i)
		assert.True(t, records[i].Breakdown.NetPay.Equal(got[i].Breakdown.NetPay), "entry %d", i)
	}
	assert.False(t, got[3].Valid())
}

func TestDocument_ImportRejectsMalformedEntry(t *testing.T) {
	doc := `{"version":1,"settings":{"workplace":"retail","base_pay":163,"tax_rate":30,"vacation_rate":12},
		"entries":[{"id":"x","date":"2025-01-15","start_time":"8 am","end_time":"17:00"}]}`

	_, _, err := factory.ImportDocument(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 0 (x)")
	assert.Equal(t, generic.ReasonInvalidClock, generic.ReasonOf(err))
}

func TestWriteCSV(t *testing.T) {
	settings := factory.DefaultSettings(pay.WorkplaceRetail)
	records := sampleRecords(t, settings.Rates)

	var buf bytes.Buffer
	require.NoError(t, factory.WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "2025-01-15", rows[1][1])
	assert.Equal(t, "1022.34", rows[1][13])
	assert.NotEmpty(t, rows[4][17], "invalid reason column")
}
