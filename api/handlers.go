/*
handlers.go - HTTP API handlers for the pay engine

PURPOSE:
  Exposes the pay calculator, stored entries, the live session and the
  settings via REST API. Handles HTTP request/response, JSON serialization,
  and delegates to the pay, session and schedule packages.

ENDPOINTS:
  Calculation:
    POST   /api/calculate              Price a shift without storing it

  Entries:
    GET    /api/entries                List entries (?from=&to=)
    POST   /api/entries                Create entry (invalid input is kept)
    GET    /api/entries/{id}           Get entry
    DELETE /api/entries/{id}           Delete entry
    GET    /api/summary                Pay period summary (?date=&offset=)

  Settings:
    GET    /api/settings               Current settings
    PUT    /api/settings               Replace settings

  Session:
    GET    /api/session                State and active session
    POST   /api/session/start          Start (no-op when running)
    POST   /api/session/stop           Stop and store the entry
    POST   /api/session/pause          Pause
    POST   /api/session/resume         Resume
    POST   /api/session/break/start    Start a break
    POST   /api/session/break/end      End the break

  Holidays / templates / forecast:
    GET    /api/holidays               Red days of a year (?year=)
    POST   /api/holidays               Add a custom red day
    DELETE /api/holidays/{id}          Remove a custom red day
    GET    /api/templates              List recurring shift templates
    POST   /api/templates              Create template
    DELETE /api/templates/{id}         Delete template
    GET    /api/forecast               Projected pay of a period (?date=)

  Data:
    GET    /api/export                 JSON document (settings + entries)
    GET    /api/export.csv             CSV of all entries
    POST   /api/import                 Import a JSON document

ARCHITECTURE:
  Handler holds all dependencies. Stored entries keep raw input only; every
  read prices them under the current settings, so a settings change is
  reflected everywhere at once.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, failed validation, pay rule violations (with reason)
  - 404: Entry, holiday or template not found
  - 409: Duplicate holiday, no active session
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/schedule"
	"github.com/warp/payroll-engine/session"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           *sqlite.Store
	SettingsFactory *factory.SettingsFactory

	// Sessions and Refresher drive the live session; both may be nil when
	// the API runs without one (tests, read-only tools).
	Sessions  *session.Manager
	Refresher *session.Refresher

	// Defaults are used until settings are saved.
	Defaults factory.SettingsJSON

	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string

	// BaseContext outlives requests; the refresher runs under it.
	BaseContext context.Context

	validate *validator.Validate
	newID    func() string
	now      func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, defaults factory.SettingsJSON) *Handler {
	return &Handler{
		Store:           store,
		SettingsFactory: factory.NewSettingsFactory(),
		Defaults:        defaults,
		Logger:          slog.Default(),
		BaseContext:     context.Background(),
		validate:        newValidator(),
		newID:           uuid.NewString,
		now:             time.Now,
	}
}

// CurrentSettings returns the stored settings, or the defaults when none
// were saved.
func (h *Handler) CurrentSettings(ctx context.Context) (factory.Settings, error) {
	sj := h.Defaults
	rec, err := h.Store.GetSettings(ctx)
	if err != nil {
		return factory.Settings{}, err
	}
	if rec != nil {
		sj = rec.Settings
	}
	return h.SettingsFactory.FromJSON(sj)
}

// Rates is a session.RatesFunc backed by the current settings.
func (h *Handler) Rates(ctx context.Context) (*pay.RateSchedule, error) {
	s, err := h.CurrentSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &s.Rates, nil
}

// Calendar returns the red-day calendar under the current settings: the
// Swedish public holidays (eves per settings) plus the stored custom days.
func (h *Handler) Calendar() generic.HolidayCalendar {
	return holiday.Func(func() generic.HolidayCalendar {
		s, err := h.CurrentSettings(h.BaseContext)
		if err != nil {
			h.Logger.Warn("settings unavailable, using public holidays only", "error", err)
			return holiday.Chain{holiday.Swedish{IncludeEves: true}, h.Store}
		}
		return h.calendarFor(s)
	})
}

func (h *Handler) calendarFor(s factory.Settings) generic.HolidayCalendar {
	return holiday.Chain{holiday.Swedish{IncludeEves: s.IncludeEves}, h.Store}
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate prices a shift without storing it.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeDomainError(w, err)
		return
	}

	settings, err := h.CurrentSettings(r.Context())
	if req.Settings != nil {
		settings, err = h.SettingsFactory.FromJSON(*req.Settings)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	in, err := h.entryInput(req.Shift, "", settings)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	b, err := pay.ComputePay(in, settings.Rates)
	h.recordCalculation(err)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTO(pay.ShiftRecord{
		Input:       in,
		Description: req.Shift.Description,
		Breakdown:   b,
		CreatedAt:   h.now(),
	}))
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns stored entries priced under the current settings.
// GET /api/entries?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	var from, to generic.Date
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = generic.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = generic.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}

	records, _, err := h.pricedEntries(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// CreateEntry stores a shift. Input that fails pay validation is stored too
// and comes back marked invalid.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeDomainError(w, err)
		return
	}

	ctx := r.Context()
	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id := h.newID()
	in, err := h.entryInput(req, id, settings)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entry := sqlite.Entry{ID: id, Input: in, Description: req.Description, CreatedAt: h.now()}
	if err := h.Store.SaveEntry(ctx, entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}

	rec, err := entry.Record(settings.Rates)
	h.recordCalculation(recordErr(rec, err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// GetEntry returns one entry.
// GET /api/entries/{id}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, err := h.Store.GetEntry(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := entry.Record(settings.Rates)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// DeleteEntry removes an entry.
// DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetSummary totals the pay period containing date, shifted by offset
// periods (offset=-1 is the previous period).
// GET /api/summary?date=YYYY-MM-DD&offset=0
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	period, err := h.periodParam(r, settings)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period parameters", err)
		return
	}

	records, _, err := h.pricedEntries(ctx, period.Start, period.End)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := toSummaryDTO(pay.Summarize(records, period))
	dto.Entries = toRecordDTOs(records)
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current settings.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.CurrentSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToJSON(settings))
}

// UpdateSettings validates and replaces the settings.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var sj factory.SettingsJSON
	if err := h.decodeAndValidate(r, &sj, false); err != nil {
		writeDomainError(w, err)
		return
	}

	settings, err := h.SettingsFactory.FromJSON(sj)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	normalized := factory.ToJSON(settings)
	if err := h.Store.SaveSettings(r.Context(), normalized); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	h.Logger.Info("settings updated", "workplace", normalized.Workplace)
	writeJSON(w, http.StatusOK, normalized)
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// GetSession returns the state and the active session.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}
	h.writeSession(w, http.StatusOK)
}

// StartSession starts a live session and its earnings refresher.
// POST /api/session/start
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}
	var req StartSessionRequest
	if err := h.decodeAndValidate(r, &req, true); err != nil {
		writeDomainError(w, err)
		return
	}

	h.Sessions.Start(req.Description)
	if rates, err := h.Rates(r.Context()); err == nil {
		h.Sessions.UpdateEarnings(rates)
	}
	if h.Refresher != nil {
		h.Refresher.Start(h.BaseContext)
	}
	h.writeSession(w, http.StatusOK)
}

// StopSession ends the session and stores the worked shift as an entry.
// POST /api/session/stop
func (h *Handler) StopSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}

	done, ok := h.Sessions.Stop()
	if !ok {
		writeDomainError(w, generic.ErrNoActiveSession)
		return
	}
	if h.Refresher != nil {
		h.Refresher.Stop()
	}

	ctx := r.Context()
	entry := sqlite.Entry{
		ID:          done.SessionID,
		Input:       done.Input,
		Description: done.Description,
		CreatedAt:   h.now(),
	}
	if err := h.Store.SaveEntry(ctx, entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}

	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := entry.Record(settings.Rates)
	h.recordCalculation(recordErr(rec, err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// PauseSession pauses the session. Without a session it changes nothing.
// POST /api/session/pause
func (h *Handler) PauseSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}
	h.Sessions.Pause()
	h.writeSession(w, http.StatusOK)
}

// ResumeSession resumes a paused session.
// POST /api/session/resume
func (h *Handler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}
	h.Sessions.Resume()
	h.writeSession(w, http.StatusOK)
}

// StartBreak starts a break.
// POST /api/session/break/start
func (h *Handler) StartBreak(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}
	var req StartBreakRequest
	if err := h.decodeAndValidate(r, &req, true); err != nil {
		writeDomainError(w, err)
		return
	}
	kind := session.BreakRegular
	if req.Kind != "" {
		kind = session.BreakKind(req.Kind)
	}
	h.Sessions.StartBreakOf(kind)
	h.writeSession(w, http.StatusOK)
}

// EndBreak ends the break in progress.
// POST /api/session/break/end
func (h *Handler) EndBreak(w http.ResponseWriter, r *http.Request) {
	if !h.requireSessions(w) {
		return
	}
	h.Sessions.EndBreak()
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) requireSessions(w http.ResponseWriter) bool {
	if h.Sessions == nil {
		writeError(w, http.StatusNotImplemented, "Live sessions are not enabled", nil)
		return false
	}
	return true
}

func (h *Handler) writeSession(w http.ResponseWriter, status int) {
	writeJSON(w, status, toSessionDTO(h.Sessions.State(), h.Sessions.Session()))
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns every red day of a year, public and custom.
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year := h.now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1583 || y > 9999 {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}

	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	custom := make(map[generic.Date]bool)
	for _, hol := range h.Store.Holidays(year) {
		custom[hol.Date] = true
	}

	holidays := h.calendarFor(settings).Holidays(year)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol, custom[hol.Date] && hol.ID != ""))
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "holidays": dtos})
}

// CreateHoliday adds a custom red day.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeDomainError(w, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	hol := generic.Holiday{ID: h.newID(), Date: date, Name: req.Name, Recurring: req.Recurring}
	if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(hol, true))
}

// DeleteHoliday removes a custom red day.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// TEMPLATE ENDPOINTS
// =============================================================================

// ListTemplates returns all recurring shift templates.
// GET /api/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Store.ListTemplates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]factory.TemplateJSON, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, factory.TemplateToJSON(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTemplate stores a recurring shift template.
// POST /api/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeDomainError(w, err)
		return
	}
	t, err := factory.TemplateFromJSON(req.toJSON(h.newID()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveTemplate(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save template", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.TemplateToJSON(t))
}

// DeleteTemplate removes a template.
// DELETE /api/templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetForecast projects the pay of a period from the templates.
// GET /api/forecast?date=YYYY-MM-DD&offset=0
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	period, err := h.periodParam(r, settings)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period parameters", err)
		return
	}
	templates, err := h.Store.ListTemplates(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	forecast, err := schedule.ForecastPeriod(templates, period, settings.Rates, h.calendarFor(settings), h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toForecastDTO(forecast))
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// Export downloads settings and all entries as a JSON document.
// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	records, settings, err := h.pricedEntries(r.Context(), generic.Date{}, generic.Date{})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="obpay-export.json"`)
	if err := factory.ExportDocument(w, settings, records, h.now()); err != nil {
		h.Logger.Error("export failed", "error", err)
	}
}

// ExportCSV downloads all entries as CSV.
// GET /api/export.csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records, _, err := h.pricedEntries(r.Context(), generic.Date{}, generic.Date{})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="obpay-entries.csv"`)
	if err := factory.WriteCSV(w, records); err != nil {
		h.Logger.Error("csv export failed", "error", err)
	}
}

// Import reads a JSON document, replaces the settings and upserts every
// entry. Entries failing pay validation are imported and reported invalid.
// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	settings, records, err := factory.ImportDocument(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.SaveSettings(ctx, factory.ToJSON(settings)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	invalid := 0
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = h.newID()
		}
		if !rec.Valid() {
			invalid++
		}
		entry := sqlite.Entry{ID: rec.ID, Input: rec.Input, Description: rec.Description, CreatedAt: rec.CreatedAt}
		if err := h.Store.SaveEntry(ctx, entry); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
			return
		}
	}

	h.Logger.Info("document imported", "entries", len(records), "invalid", invalid)
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(records), "invalid": invalid})
}

// =============================================================================
// HELPERS
// =============================================================================

// entryInput parses a request into a ShiftInput and fills the red-day flag
// from the calendar when the client left it unset.
func (h *Handler) entryInput(req EntryRequest, id string, settings factory.Settings) (pay.ShiftInput, error) {
	in, err := factory.EntryToInput(req.toEntryJSON(id))
	if err != nil {
		return pay.ShiftInput{}, err
	}
	if req.RedDay == nil {
		in.RedDay = h.calendarFor(settings).IsHoliday(in.Date)
	}
	return in, nil
}

// pricedEntries loads entries in [from, to] and prices them under the
// current settings.
func (h *Handler) pricedEntries(ctx context.Context, from, to generic.Date) ([]pay.ShiftRecord, factory.Settings, error) {
	settings, err := h.CurrentSettings(ctx)
	if err != nil {
		return nil, factory.Settings{}, err
	}
	entries, err := h.Store.ListEntries(ctx, from, to)
	if err != nil {
		return nil, factory.Settings{}, err
	}

	records := make([]pay.ShiftRecord, 0, len(entries))
	for _, e := range entries {
		rec, err := e.Record(settings.Rates)
		if err != nil {
			return nil, factory.Settings{}, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		records = append(records, rec)
	}
	return records, settings, nil
}

func (h *Handler) periodParam(r *http.Request, settings factory.Settings) (generic.Period, error) {
	date := generic.DateOf(h.now())
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := generic.ParseDate(v)
		if err != nil {
			return generic.Period{}, err
		}
		date = d
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < -120 || n > 120 {
			return generic.Period{}, fmt.Errorf("offset %q out of range", v)
		}
		offset = n
	}

	period := settings.Period.PeriodFor(date)
	for ; offset > 0; offset-- {
		period = settings.Period.Next(period)
	}
	for ; offset < 0; offset++ {
		period = settings.Period.Previous(period)
	}
	return period, nil
}

func (h *Handler) recordCalculation(err error) {
	if h.Metrics != nil {
		h.Metrics.RecordCalculation(err)
	}
}

// recordErr turns an invalid record back into its validation outcome for
// metrics.
func recordErr(rec pay.ShiftRecord, err error) error {
	if err != nil {
		return err
	}
	if !rec.Valid() {
		return generic.Invalid(rec.Reason, "", "%s", rec.Invalid)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps an error onto a status code.
func writeDomainError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   reqErr.msg,
			Details: reqErr.err.Error(),
			Fields:  reqErr.fields,
		})
	case errors.Is(err, generic.ErrNoActiveSession), generic.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid input",
			Reason:  string(generic.ReasonOf(err)),
			Details: err.Error(),
		})
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
