package factory

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = 1

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// Document is the export/import file: settings plus all entries.
type Document struct {
	Version    int          `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Settings   SettingsJSON `json:"settings"`
	Entries    []EntryJSON  `json:"entries"`
}

// EntryJSON is one shift record. Breakdown is informational: imports
// recompute it from the raw fields.
type EntryJSON struct {
	ID            string         `json:"id"`
	Date          string         `json:"date"`
	StartTime     string         `json:"start_time,omitempty"`
	EndTime       string         `json:"end_time,omitempty"`
	EndsNextDay   bool           `json:"ends_next_day,omitempty"`
	BreakMinutes  *int           `json:"break_minutes,omitempty"`
	BreakStart    string         `json:"break_start,omitempty"`
	BreakEnd      string         `json:"break_end,omitempty"`
	BreakRecorded bool           `json:"break_recorded,omitempty"`
	RedDay        bool           `json:"red_day,omitempty"`
	SickDayNumber int            `json:"sick_day_number,omitempty"`
	SickHours     float64        `json:"sick_hours,omitempty"`
	Description   string         `json:"description,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Breakdown     *BreakdownJSON `json:"breakdown,omitempty"`
	Invalid       string         `json:"invalid,omitempty"`
}

// BreakdownJSON is a PayBreakdown rounded for display.
type BreakdownJSON struct {
	WorkedMinutes    int           `json:"worked_minutes"`
	WorkedHours      float64       `json:"worked_hours"`
	BreakMinutes     int           `json:"break_minutes"`
	AutoBreakApplied bool          `json:"auto_break_applied"`
	BasePay          float64       `json:"base_pay"`
	PremiumPay       float64       `json:"premium_pay"`
	GrossPay         float64       `json:"gross_pay"`
	VacationPay      float64       `json:"vacation_pay"`
	TotalBeforeTax   float64       `json:"total_before_tax"`
	Tax              float64       `json:"tax"`
	NetPay           float64       `json:"net_pay"`
	Premiums         []PremiumJSON `json:"premiums"`
}

type PremiumJSON struct {
	Label   string  `json:"label"`
	Minutes int     `json:"minutes"`
	Rate    float64 `json:"rate"`
	Amount  float64 `json:"amount"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// BreakdownToJSON rounds a breakdown to öre.
func BreakdownToJSON(b pay.PayBreakdown) BreakdownJSON {
	premiums := make([]PremiumJSON, 0, len(b.Premiums))
	for _, p := range b.Premiums {
		premiums = append(premiums, PremiumJSON{
			Label:   p.Label,
			Minutes: p.Minutes,
			Rate:    p.Rate.InexactFloat64(),
			Amount:  generic.Float(p.Amount),
		})
	}
	return BreakdownJSON{
		WorkedMinutes:    b.WorkedMinutes,
		WorkedHours:      generic.Float(b.WorkedHours),
		BreakMinutes:     b.BreakMinutes,
		AutoBreakApplied: b.AutoBreakApplied,
		BasePay:          generic.Float(b.BasePay),
		PremiumPay:       generic.Float(b.PremiumPay),
		GrossPay:         generic.Float(b.GrossPay),
		VacationPay:      generic.Float(b.VacationPay),
		TotalBeforeTax:   generic.Float(b.TotalBeforeTax),
		Tax:              generic.Float(b.Tax),
		NetPay:           generic.Float(b.NetPay),
		Premiums:         premiums,
	}
}

// EntryToInput parses the raw fields of an entry.
func EntryToInput(e EntryJSON) (pay.ShiftInput, error) {
	date, err := generic.ParseDate(e.Date)
	if err != nil {
		return pay.ShiftInput{}, generic.Invalid(generic.ReasonInvalidClock, "date", "%v", err)
	}
	in := pay.ShiftInput{Date: date, EndsNextDay: e.EndsNextDay, RedDay: e.RedDay}

	if in.Start, err = optionalClock(e.StartTime, "start_time"); err != nil {
		return pay.ShiftInput{}, err
	}
	if in.End, err = optionalClock(e.EndTime, "end_time"); err != nil {
		return pay.ShiftInput{}, err
	}

	switch {
	case e.BreakStart != "" || e.BreakEnd != "":
		bs, err := generic.ParseClock(e.BreakStart)
		if err != nil {
			return pay.ShiftInput{}, generic.Invalid(generic.ReasonInvalidClock, "break_start", "%v", err)
		}
		be, err := generic.ParseClock(e.BreakEnd)
		if err != nil {
			return pay.ShiftInput{}, generic.Invalid(generic.ReasonInvalidClock, "break_end", "%v", err)
		}
		in.Break = pay.BreakBetween(bs, be)
	case e.BreakMinutes != nil && e.BreakRecorded:
		in.Break = pay.RecordedBreak(*e.BreakMinutes)
	case e.BreakMinutes != nil:
		in.Break = pay.BreakOf(*e.BreakMinutes)
	}

	if e.SickDayNumber != 0 {
		in.Sick = &pay.SickDay{DayNumber: e.SickDayNumber, Hours: decimal.NewFromFloat(e.SickHours)}
	}
	return in, nil
}

func optionalClock(s, field string) (*generic.ClockTime, error) {
	if s == "" {
		return nil, nil
	}
	c, err := generic.ParseClock(s)
	if err != nil {
		return nil, generic.Invalid(generic.ReasonInvalidClock, field, "%v", err)
	}
	return &c, nil
}

// RecordToEntry is the inverse of EntryToInput, with the breakdown attached.
func RecordToEntry(rec pay.ShiftRecord) EntryJSON {
	in := rec.Input
	e := EntryJSON{
		ID:          rec.ID,
		Date:        in.Date.String(),
		EndsNextDay: in.EndsNextDay,
		RedDay:      in.RedDay,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		Invalid:     rec.Invalid,
	}
	if in.Start != nil {
		e.StartTime = in.Start.String()
	}
	if in.End != nil {
		e.EndTime = in.End.String()
	}
	switch in.Break.Mode() {
	case pay.BreakWindow:
		s, end, _ := in.Break.Window()
		e.BreakStart, e.BreakEnd = s.String(), end.String()
	case pay.BreakMinutes:
		m := in.Break.Minutes()
		e.BreakMinutes = &m
	case pay.BreakRecorded:
		m := in.Break.Minutes()
		e.BreakMinutes = &m
		e.BreakRecorded = true
	}
	if in.Sick != nil {
		e.SickDayNumber = in.Sick.DayNumber
		e.SickHours = in.Sick.Hours.InexactFloat64()
	}
	if rec.Valid() {
		b := BreakdownToJSON(rec.Breakdown)
		e.Breakdown = &b
	}
	return e
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// ExportDocument writes settings and records as an indented JSON document.
func ExportDocument(w io.Writer, settings Settings, records []pay.ShiftRecord, now time.Time) error {
	doc := Document{
		Version:    DocumentVersion,
		ExportedAt: now.UTC(),
		Settings:   ToJSON(settings),
		Entries:    make([]EntryJSON, 0, len(records)),
	}
	for _, rec := range records {
		doc.Entries = append(doc.Entries, RecordToEntry(rec))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// ImportDocument reads a document and recomputes every entry under the
// document's own settings. Entries that fail validation are kept as invalid
// records; entries that cannot be parsed at all abort the import.
func ImportDocument(r io.Reader) (Settings, []pay.ShiftRecord, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Settings{}, nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Version > DocumentVersion {
		return Settings{}, nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}

	settings, err := NewSettingsFactory().FromJSON(doc.Settings)
	if err != nil {
		return Settings{}, nil, fmt.Errorf("invalid settings: %w", err)
	}

	records := make([]pay.ShiftRecord, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		in, err := EntryToInput(e)
		if err != nil {
			return Settings{}, nil, fmt.Errorf("entry %d (%s): %w", i, e.ID, err)
		}
		rec, err := pay.NewShiftRecord(e.ID, in, e.Description, settings.Rates, e.CreatedAt)
		if err != nil {
			return Settings{}, nil, fmt.Errorf("entry %d (%s): %w", i, e.ID, err)
		}
		records = append(records, rec)
	}
	return settings, records, nil
}
