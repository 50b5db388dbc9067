/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Requests carry
  validator tags checked before anything reaches the pay engine; responses
  render decimals as floats rounded to öre.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Entries:   EntryRequest, CalculateRequest, RecordDTO
  Summaries: SummaryDTO, ForecastDTO
  Session:   SessionDTO, ActiveSessionDTO, EarningsDTO, BreakDTO,
             StartSessionRequest, StartBreakRequest
  Holidays:  HolidayRequest, HolidayDTO
  Templates: TemplateRequest

VALIDATION:
  Structural checks (required fields, formats, enums) live in struct tags
  and are enforced by validator.go. Pay rules (end before start, tax range,
  break fit) stay in the pay package and come back as ValidationError.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/document.go: EntryJSON, BreakdownJSON
*/
package api

import (
	"time"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/schedule"
	"github.com/warp/payroll-engine/session"
)

// =============================================================================
// ENTRIES
// =============================================================================

// EntryRequest is one shift as entered by the user.
type EntryRequest struct {
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string  `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime       string  `json:"end_time,omitempty" validate:"omitempty,clock"`
	EndsNextDay   bool    `json:"ends_next_day,omitempty"`
	BreakMinutes  *int    `json:"break_minutes,omitempty"`
	BreakStart    string  `json:"break_start,omitempty" validate:"omitempty,clock,required_with=BreakEnd"`
	BreakEnd      string  `json:"break_end,omitempty" validate:"omitempty,clock,required_with=BreakStart"`
	RedDay        *bool   `json:"red_day,omitempty"`
	SickDayNumber int     `json:"sick_day_number,omitempty"`
	SickHours     float64 `json:"sick_hours,omitempty"`
	Description   string  `json:"description,omitempty" validate:"max=500"`
}

// toEntryJSON maps the request onto the document shape. RedDay is left for
// the handler to resolve against the calendar when not given.
func (r EntryRequest) toEntryJSON(id string) factory.EntryJSON {
	e := factory.EntryJSON{
		ID:            id,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		EndsNextDay:   r.EndsNextDay,
		BreakMinutes:  r.BreakMinutes,
		BreakStart:    r.BreakStart,
		BreakEnd:      r.BreakEnd,
		SickDayNumber: r.SickDayNumber,
		SickHours:     r.SickHours,
		Description:   r.Description,
	}
	if r.RedDay != nil {
		e.RedDay = *r.RedDay
	}
	return e
}

// CalculateRequest prices a shift without storing it. Settings override the
// stored settings for this call only.
type CalculateRequest struct {
	Shift    EntryRequest          `json:"shift"`
	Settings *factory.SettingsJSON `json:"settings,omitempty"`
}

// RecordDTO is a priced entry.
type RecordDTO struct {
	factory.EntryJSON
	Reason string `json:"reason,omitempty"`
}

func toRecordDTO(rec pay.ShiftRecord) RecordDTO {
	return RecordDTO{EntryJSON: factory.RecordToEntry(rec), Reason: string(rec.Reason)}
}

func toRecordDTOs(records []pay.ShiftRecord) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(rec))
	}
	return dtos
}

// =============================================================================
// SUMMARIES
// =============================================================================

// SummaryDTO is a pay period summary.
type SummaryDTO struct {
	PeriodStart    string                `json:"period_start"`
	PeriodEnd      string                `json:"period_end"`
	Shifts         int                   `json:"shifts"`
	InvalidShifts  int                   `json:"invalid_shifts"`
	WorkedMinutes  int                   `json:"worked_minutes"`
	WorkedHours    float64               `json:"worked_hours"`
	BreakMinutes   int                   `json:"break_minutes"`
	BasePay        float64               `json:"base_pay"`
	PremiumPay     float64               `json:"premium_pay"`
	GrossPay       float64               `json:"gross_pay"`
	VacationPay    float64               `json:"vacation_pay"`
	TotalBeforeTax float64               `json:"total_before_tax"`
	Tax            float64               `json:"tax"`
	NetPay         float64               `json:"net_pay"`
	Premiums       []factory.PremiumJSON `json:"premiums"`
	Entries        []RecordDTO           `json:"entries,omitempty"`
}

func toSummaryDTO(s pay.PeriodSummary) SummaryDTO {
	premiums := make([]factory.PremiumJSON, 0, len(s.Premiums))
	for _, p := range s.Premiums {
		premiums = append(premiums, factory.PremiumJSON{
			Label:   p.Label,
			Minutes: p.Minutes,
			Rate:    p.Rate.InexactFloat64(),
			Amount:  generic.Float(p.Amount),
		})
	}
	return SummaryDTO{
		PeriodStart:    s.Period.Start.String(),
		PeriodEnd:      s.Period.End.String(),
		Shifts:         s.Shifts,
		InvalidShifts:  s.InvalidShifts,
		WorkedMinutes:  s.WorkedMinutes,
		WorkedHours:    generic.Float(s.WorkedHours()),
		BreakMinutes:   s.BreakMinutes,
		BasePay:        generic.Float(s.BasePay),
		PremiumPay:     generic.Float(s.PremiumPay),
		GrossPay:       generic.Float(s.GrossPay),
		VacationPay:    generic.Float(s.VacationPay),
		TotalBeforeTax: generic.Float(s.TotalBeforeTax),
		Tax:            generic.Float(s.Tax),
		NetPay:         generic.Float(s.NetPay),
		Premiums:       premiums,
	}
}

// ForecastDTO is the projected pay of a period from templates.
type ForecastDTO struct {
	Summary SummaryDTO         `json:"summary"`
	Errors  []TemplateErrorDTO `json:"errors,omitempty"`
}

type TemplateErrorDTO struct {
	TemplateID string `json:"template_id"`
	Error      string `json:"error"`
}

func toForecastDTO(f schedule.Forecast) ForecastDTO {
	dto := ForecastDTO{Summary: toSummaryDTO(f.Summary)}
	dto.Summary.Entries = toRecordDTOs(f.Shifts)
	for _, e := range f.Errors {
		dto.Errors = append(dto.Errors, TemplateErrorDTO{TemplateID: e.TemplateID, Error: e.Err.Error()})
	}
	return dto
}

// =============================================================================
// SESSION
// =============================================================================

// StartSessionRequest starts a live session.
type StartSessionRequest struct {
	Description string `json:"description,omitempty" validate:"max=500"`
}

// StartBreakRequest starts a break of the given kind (regular by default).
type StartBreakRequest struct {
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=regular lunch snack other"`
}

// SessionDTO is the state plus the active session, if any.
type SessionDTO struct {
	State   string            `json:"state"`
	Session *ActiveSessionDTO `json:"session,omitempty"`
}

type ActiveSessionDTO struct {
	ID             string      `json:"id"`
	Date           string      `json:"date"`
	StartedAt      time.Time   `json:"started_at"`
	Now            time.Time   `json:"now"`
	Description    string      `json:"description,omitempty"`
	OnBreak        bool        `json:"on_break"`
	BreakStartedAt *time.Time  `json:"break_started_at,omitempty"`
	BreakKind      string      `json:"break_kind,omitempty"`
	BreakMinutes   int         `json:"break_minutes"`
	Breaks         []BreakDTO  `json:"breaks"`
	Earnings       EarningsDTO `json:"earnings"`
}

type BreakDTO struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Kind    string    `json:"kind"`
	Minutes int       `json:"minutes"`
}

type EarningsDTO struct {
	WorkedMinutes       int       `json:"worked_minutes"`
	BreakMinutes        int       `json:"break_minutes"`
	BasePay             float64   `json:"base_pay"`
	PremiumPay          float64   `json:"premium_pay"`
	GrossPay            float64   `json:"gross_pay"`
	VacationPay         float64   `json:"vacation_pay"`
	TotalBeforeTax      float64   `json:"total_before_tax"`
	Tax                 float64   `json:"tax"`
	NetPay              float64   `json:"net_pay"`
	CurrentPremiumRate  float64   `json:"current_premium_rate"`
	CurrentPremiumLabel string    `json:"current_premium_label,omitempty"`
	InPremiumWindow     bool      `json:"in_premium_window"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toSessionDTO(state session.State, s *session.ActiveSession) SessionDTO {
	dto := SessionDTO{State: string(state)}
	if s == nil {
		return dto
	}

	breaks := make([]BreakDTO, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breaks = append(breaks, BreakDTO{Start: b.Start, End: b.End, Kind: string(b.Kind), Minutes: b.Minutes()})
	}
	e := s.Earnings
	dto.Session = &ActiveSessionDTO{
		ID:             s.ID,
		Date:           s.Date.String(),
		StartedAt:      s.StartedAt,
		Now:            s.Now,
		Description:    s.Description,
		OnBreak:        s.OnBreak,
		BreakStartedAt: s.BreakStartedAt,
		BreakKind:      string(s.BreakKind),
		BreakMinutes:   s.BreakMinutes,
		Breaks:         breaks,
		Earnings: EarningsDTO{
			WorkedMinutes:       e.WorkedMinutes,
			BreakMinutes:        e.BreakMinutes,
			BasePay:             generic.Float(e.BasePay),
			PremiumPay:          generic.Float(e.PremiumPay),
			GrossPay:            generic.Float(e.GrossPay),
			VacationPay:         generic.Float(e.VacationPay),
			TotalBeforeTax:      generic.Float(e.TotalBeforeTax),
			Tax:                 generic.Float(e.Tax),
			NetPay:              generic.Float(e.NetPay),
			CurrentPremiumRate:  e.CurrentPremiumRate.InexactFloat64(),
			CurrentPremiumLabel: e.CurrentPremiumLabel,
			InPremiumWindow:     e.InPremiumWindow,
			UpdatedAt:           e.UpdatedAt,
		},
	}
	return dto
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"required,max=100"`
	Recurring bool   `json:"recurring"`
}

type HolidayDTO struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
	Custom    bool   `json:"custom"`
}

func toHolidayDTO(h generic.Holiday, custom bool) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name, Recurring: h.Recurring, Custom: custom}
}

// =============================================================================
// TEMPLATES
// =============================================================================

type TemplateRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	RRule        string `json:"rrule" validate:"required"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required,clock"`
	EndTime      string `json:"end_time" validate:"required,clock"`
	EndsNextDay  bool   `json:"ends_next_day,omitempty"`
	BreakMinutes int    `json:"break_minutes,omitempty" validate:"min=0"`
	SkipHolidays bool   `json:"skip_holidays,omitempty"`
	Description  string `json:"description,omitempty" validate:"max=500"`
}

func (r TemplateRequest) toJSON(id string) factory.TemplateJSON {
	return factory.TemplateJSON{
		ID:           id,
		Name:         r.Name,
		RRule:        r.RRule,
		StartDate:    r.StartDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		EndsNextDay:  r.EndsNextDay,
		BreakMinutes: r.BreakMinutes,
		SkipHolidays: r.SkipHolidays,
		Description:  r.Description,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Reason  string            `json:"reason,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
