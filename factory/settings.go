/*
Package factory provides JSON to Go settings conversion.

PURPOSE:
  Converts JSON (or YAML) settings into a pay.RateSchedule plus the pay
  period layout, and back. Settings live in the database and in the config
  file as this JSON shape, so the rate table can change without code changes.

JSON SCHEMA:
  {
    "workplace": "retail",
    "base_pay": 163,
    "tax_rate": 30,
    "vacation_rate": 12,
    "retail": {
      "weekday_evening": 50, "weekday_night": 70,
      "saturday": 100, "sunday": 100, "red_day": 100
    },
    "auto_break": {
      "enabled": true,
      "tiers": [
        {"after_hours": 4, "minutes": 15},
        {"after_hours": 6, "minutes": 30},
        {"after_hours": 8, "minutes": 60}
      ]
    },
    "period": {"type": "offset_month", "start_day": 25},
    "include_eves": true
  }

KEY FEATURES:
  - Missing rate sections fall back to the workplace defaults
  - Validates through pay.ValidateRates
  - Round-trips: ToJSON(FromJSON(x)) keeps every value

USAGE:
  f := NewSettingsFactory()
  settings, err := f.ParseSettings(jsonString)
  breakdown, err := pay.ComputePay(shift, settings.Rates)

SEE ALSO:
  - pay/types.go: RateSchedule
  - document.go: Export/import document
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the JSON representation of the user's settings.
type SettingsJSON struct {
	Workplace    string         `json:"workplace" yaml:"workplace"`
	BasePay      float64        `json:"base_pay" yaml:"base_pay"`
	TaxRate      float64        `json:"tax_rate" yaml:"tax_rate"`
	VacationRate float64        `json:"vacation_rate" yaml:"vacation_rate"`
	Retail       *RetailJSON    `json:"retail,omitempty" yaml:"retail,omitempty"`
	Warehouse    *WarehouseJSON `json:"warehouse,omitempty" yaml:"warehouse,omitempty"`
	AutoBreak    *AutoBreakJSON `json:"auto_break,omitempty" yaml:"auto_break,omitempty"`
	Period       *PeriodJSON    `json:"period,omitempty" yaml:"period,omitempty"`
	IncludeEves  bool           `json:"include_eves" yaml:"include_eves"`
}

// RetailJSON holds retail premium percentages.
type RetailJSON struct {
	WeekdayEvening float64 `json:"weekday_evening" yaml:"weekday_evening"`
	WeekdayNight   float64 `json:"weekday_night" yaml:"weekday_night"`
	Saturday       float64 `json:"saturday" yaml:"saturday"`
	Sunday         float64 `json:"sunday" yaml:"sunday"`
	RedDay         float64 `json:"red_day" yaml:"red_day"`
}

// WarehouseJSON holds warehouse premium percentages.
type WarehouseJSON struct {
	MondayNight   float64 `json:"monday_night" yaml:"monday_night"`
	Morning       float64 `json:"morning" yaml:"morning"`
	Evening       float64 `json:"evening" yaml:"evening"`
	Night         float64 `json:"night" yaml:"night"`
	SaturdayNight float64 `json:"saturday_night" yaml:"saturday_night"`
	SaturdayDay   float64 `json:"saturday_day" yaml:"saturday_day"`
	SaturdayLate  float64 `json:"saturday_late" yaml:"saturday_late"`
	Sunday        float64 `json:"sunday" yaml:"sunday"`
	RedDay        float64 `json:"red_day" yaml:"red_day"`
}

// AutoBreakJSON represents the automatic break tiers.
type AutoBreakJSON struct {
	Enabled bool            `json:"enabled" yaml:"enabled"`
	Tiers   []BreakTierJSON `json:"tiers" yaml:"tiers"`
}

type BreakTierJSON struct {
	AfterHours float64 `json:"after_hours" yaml:"after_hours"`
	Minutes    int     `json:"minutes" yaml:"minutes"`
}

// PeriodJSON represents the pay period layout.
type PeriodJSON struct {
	Type     string `json:"type" yaml:"type"` // calendar_month, offset_month, iso_week
	StartDay int    `json:"start_day,omitempty" yaml:"start_day,omitempty"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the parsed, validated form of SettingsJSON.
type Settings struct {
	Rates       pay.RateSchedule
	Period      generic.PeriodConfig
	IncludeEves bool
}

// DefaultSettings returns the stock settings for a workplace.
func DefaultSettings(workplace pay.Workplace) Settings {
	return Settings{
		Rates:       pay.DefaultRateSchedule(workplace),
		Period:      generic.PeriodConfig{Type: generic.PeriodCalendarMonth},
		IncludeEves: true,
	}
}

// =============================================================================
// SETTINGS FACTORY
// =============================================================================

// SettingsFactory converts JSON settings to Go structs.
type SettingsFactory struct{}

func NewSettingsFactory() *SettingsFactory {
	return &SettingsFactory{}
}

// ParseSettings parses a JSON string into Settings.
func (f *SettingsFactory) ParseSettings(jsonStr string) (Settings, error) {
	var sj SettingsJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts SettingsJSON to Settings and validates the rates.
func (f *SettingsFactory) FromJSON(sj SettingsJSON) (Settings, error) {
	workplace := pay.Workplace(sj.Workplace)
	if sj.Workplace == "" {
		workplace = pay.WorkplaceRetail
	}
	if !workplace.Valid() {
		return Settings{}, generic.Invalid(generic.ReasonUnknownWorkplace, "workplace",
			"unknown workplace %q", sj.Workplace)
	}

	defaults := pay.DefaultRateSchedule(workplace)
	rates := pay.RateSchedule{
		Workplace:    workplace,
		BasePay:      decimal.NewFromFloat(sj.BasePay),
		TaxRate:      decimal.NewFromFloat(sj.TaxRate),
		VacationRate: decimal.NewFromFloat(sj.VacationRate),
		Retail:       defaults.Retail,
		Warehouse:    defaults.Warehouse,
		AutoBreak:    defaults.AutoBreak,
	}

	if sj.Retail != nil {
		rates.Retail = parseRetail(*sj.Retail)
	}
	if sj.Warehouse != nil {
		rates.Warehouse = parseWarehouse(*sj.Warehouse)
	}
	if sj.AutoBreak != nil {
		ab, err := parseAutoBreak(*sj.AutoBreak)
		if err != nil {
			return Settings{}, err
		}
		rates.AutoBreak = ab
	}

	if err := pay.ValidateRates(rates); err != nil {
		return Settings{}, err
	}

	period, err := parsePeriod(sj.Period)
	if err != nil {
		return Settings{}, err
	}

	return Settings{Rates: rates, Period: period, IncludeEves: sj.IncludeEves}, nil
}

// ToJSON converts Settings back to the JSON shape. Both rate sections are
// always written.
func ToJSON(s Settings) SettingsJSON {
	r := s.Rates
	tiers := make([]BreakTierJSON, 0, len(r.AutoBreak.Tiers))
	for _, t := range r.AutoBreak.Tiers {
		tiers = append(tiers, BreakTierJSON{AfterHours: t.AfterHours, Minutes: t.Minutes})
	}
	return SettingsJSON{
		Workplace:    string(r.Workplace),
		BasePay:      r.BasePay.InexactFloat64(),
		TaxRate:      r.TaxRate.InexactFloat64(),
		VacationRate: r.VacationRate.InexactFloat64(),
		Retail: &RetailJSON{
			WeekdayEvening: r.Retail.WeekdayEvening.InexactFloat64(),
			WeekdayNight:   r.Retail.WeekdayNight.InexactFloat64(),
			Saturday:       r.Retail.Saturday.InexactFloat64(),
			Sunday:         r.Retail.Sunday.InexactFloat64(),
			RedDay:         r.Retail.RedDay.InexactFloat64(),
		},
		Warehouse: &WarehouseJSON{
			MondayNight:   r.Warehouse.MondayNight.InexactFloat64(),
			Morning:       r.Warehouse.Morning.InexactFloat64(),
			Evening:       r.Warehouse.Evening.InexactFloat64(),
			Night:         r.Warehouse.Night.InexactFloat64(),
			SaturdayNight: r.Warehouse.SaturdayNight.InexactFloat64(),
			SaturdayDay:   r.Warehouse.SaturdayDay.InexactFloat64(),
			SaturdayLate:  r.Warehouse.SaturdayLate.InexactFloat64(),
			Sunday:        r.Warehouse.Sunday.InexactFloat64(),
			RedDay:        r.Warehouse.RedDay.InexactFloat64(),
		},
		AutoBreak:   &AutoBreakJSON{Enabled: r.AutoBreak.Enabled, Tiers: tiers},
		Period:      &PeriodJSON{Type: string(s.Period.Type), StartDay: s.Period.StartDay},
		IncludeEves: s.IncludeEves,
	}
}

// DefaultSettingsJSON is ToJSON(DefaultSettings(workplace)).
func DefaultSettingsJSON(workplace pay.Workplace) SettingsJSON {
	return ToJSON(DefaultSettings(workplace))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func pct(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func parseRetail(rj RetailJSON) pay.RetailRates {
	return pay.RetailRates{
		WeekdayEvening: pct(rj.WeekdayEvening),
		WeekdayNight:   pct(rj.WeekdayNight),
		Saturday:       pct(rj.Saturday),
		Sunday:         pct(rj.Sunday),
		RedDay:         pct(rj.RedDay),
	}
}

func parseWarehouse(wj WarehouseJSON) pay.WarehouseRates {
	return pay.WarehouseRates{
		MondayNight:   pct(wj.MondayNight),
		Morning:       pct(wj.Morning),
		Evening:       pct(wj.Evening),
		Night:         pct(wj.Night),
		SaturdayNight: pct(wj.SaturdayNight),
		SaturdayDay:   pct(wj.SaturdayDay),
		SaturdayLate:  pct(wj.SaturdayLate),
		Sunday:        pct(wj.Sunday),
		RedDay:        pct(wj.RedDay),
	}
}

func parseAutoBreak(aj AutoBreakJSON) (pay.AutoBreakConfig, error) {
	cfg := pay.AutoBreakConfig{Enabled: aj.Enabled}
	if len(aj.Tiers) != len(cfg.Tiers) {
		return pay.AutoBreakConfig{}, generic.Invalid(generic.ReasonInvalidBreakTier, "auto_break.tiers",
			"expected %d tiers, got %d", len(cfg.Tiers), len(aj.Tiers))
	}
	for i, t := range aj.Tiers {
		cfg.Tiers[i] = pay.BreakTier{AfterHours: t.AfterHours, Minutes: t.Minutes}
	}
	return cfg, nil
}

func parsePeriod(pj *PeriodJSON) (generic.PeriodConfig, error) {
	if pj == nil || pj.Type == "" {
		return generic.PeriodConfig{Type: generic.PeriodCalendarMonth}, nil
	}
	switch generic.PeriodType(pj.Type) {
	case generic.PeriodCalendarMonth, generic.PeriodISOWeek:
		return generic.PeriodConfig{Type: generic.PeriodType(pj.Type)}, nil
	case generic.PeriodOffsetMonth:
		if pj.StartDay < 1 || pj.StartDay > 28 {
			return generic.PeriodConfig{}, generic.Invalid(generic.ReasonInvalidPeriod, "period.start_day",
				"start day %d must be between 1 and 28", pj.StartDay)
		}
		return generic.PeriodConfig{Type: generic.PeriodOffsetMonth, StartDay: pj.StartDay}, nil
	default:
		return generic.PeriodConfig{}, generic.Invalid(generic.ReasonInvalidPeriod, "period.type",
			"unknown period type %q", pj.Type)
	}
}
