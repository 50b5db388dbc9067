/*
Package sqlite provides the SQLite-backed persistence of the pay engine.

PURPOSE:
  Stores what the user enters: shift entries (raw input only), the settings
  document, custom red days and recurring shift templates. Pay breakdowns
  are never stored; they are recomputed from the input under the current
  settings whenever they are read.

KEY TABLES:
  entries:   One row per shift, raw input as JSON
  settings:  The settings document (versioned)
  holidays:  User-designated red days
  templates: Recurring shift templates

INTERFACES IMPLEMENTED:
  generic.HolidayCalendar: Custom red days (chain with holiday.Swedish)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so the earnings refresher
  can read settings while the API writes entries.

USAGE:
  store, err := sqlite.New("./data/obpay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory/document.go: Entry JSON shape
  - factory/settings.go: Settings JSON shape
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/schedule"
)

const dateLayout = "2006-01-02"

// Store implements persistence using SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for lookups that cannot return an error.
func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives as long as its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Shift entries (raw input, breakdown is derived)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		input_json TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date
		ON entries(date);

	-- Settings document
	CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Custom red days
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL,
		UNIQUE(date, name)
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);

	-- Recurring shift templates
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset removes all data (for tests and the import endpoint).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"entries", "settings", "holidays", "templates"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// ENTRY STORE
// =============================================================================

// Entry is a stored shift.
type Entry struct {
	ID          string
	Input       pay.ShiftInput
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record prices the entry under rates.
func (e Entry) Record(rates pay.RateSchedule) (pay.ShiftRecord, error) {
	return pay.NewShiftRecord(e.ID, e.Input, e.Description, rates, e.CreatedAt)
}

// SaveEntry inserts or replaces an entry.
func (s *Store) SaveEntry(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := encodeInput(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entries (id, date, input_json, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			input_json = excluded.input_json,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx, query,
		e.ID,
		e.Input.Date.String(),
		raw,
		nullString(e.Description),
		created.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, input_json, description, created_at, updated_at FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, &generic.NotFoundError{Kind: "entry", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries returns entries with from <= date <= to, ordered by date.
// A zero bound is open.
func (s *Store) ListEntries(ctx context.Context, from, to generic.Date) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, input_json, description, created_at, updated_at FROM entries WHERE 1=1"
	var args []any
	if !from.IsZero() {
		query += " AND date >= ?"
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += " AND date <= ?"
		args = append(args, to.String())
	}
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &generic.NotFoundError{Kind: "entry", ID: id}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                    Entry
		raw                  string
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&e.ID, &raw, &description, &createdAt, &updatedAt); err != nil {
		return Entry{}, err
	}

	var ej factory.EntryJSON
	if err := json.Unmarshal([]byte(raw), &ej); err != nil {
		return Entry{}, fmt.Errorf("failed to decode entry %s: %w", e.ID, err)
	}
	in, err := factory.EntryToInput(ej)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to decode entry %s: %w", e.ID, err)
	}

	e.Input = in
	e.Description = description.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func encodeInput(e Entry) (string, error) {
	ej := factory.RecordToEntry(pay.ShiftRecord{ID: e.ID, Input: e.Input})
	ej.Breakdown = nil
	raw, err := json.Marshal(ej)
	if err != nil {
		return "", fmt.Errorf("failed to encode entry: %w", err)
	}
	return string(raw), nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

const settingsID = "default"

// SettingsRecord is the stored settings document.
type SettingsRecord struct {
	Settings  factory.SettingsJSON
	Version   int
	UpdatedAt time.Time
}

// SaveSettings stores the settings document, bumping its version.
func (s *Store) SaveSettings(ctx context.Context, sj factory.SettingsJSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(sj)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO settings (id, config_json, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			version = settings.version + 1,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, settingsID, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings returns the stored settings, or nil when none were saved.
func (s *Store) GetSettings(ctx context.Context) (*SettingsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec       SettingsRecord
		raw       string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, version, updated_at FROM settings WHERE id = ?", settingsID,
	).Scan(&raw, &rec.Version, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(raw), &rec.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

var _ generic.HolidayCalendar = (*Store)(nil)

// SaveHoliday saves a custom red day. The same name on the same date is a
// duplicate.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.Date.String(),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("holiday %s on %s: %w", h.Name, h.Date, generic.ErrDuplicate)
	}
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &generic.NotFoundError{Kind: "holiday", ID: id}
	}
	return nil
}

// ListHolidays returns every stored holiday (for the settings UI).
func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, name, recurring FROM holidays ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// Holidays returns the stored holidays falling in year; recurring ones are
// moved into that year.
func (s *Store) Holidays(year int) []generic.Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, date, name, recurring
		FROM holidays
		WHERE recurring = TRUE OR strftime('%Y', date) = ?
		ORDER BY strftime('%m-%d', date) ASC
	`
	rows, err := s.db.Query(query, fmt.Sprintf("%04d", year))
	if err != nil {
		s.logger.Error("holiday listing failed", "year", year, "error", err)
		return nil
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			s.logger.Warn("skipping unreadable holiday", "error", err)
			continue
		}
		if occ, ok := h.In(year); ok {
			holidays = append(holidays, occ)
		}
	}
	return holidays
}

// IsHoliday checks if a date is a custom red day.
func (s *Store) IsHoliday(date generic.Date) bool {
	_, ok := s.HolidayName(date)
	return ok
}

// HolidayName returns the name of the custom red day on date.
func (s *Store) HolidayName(date generic.Date) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT name FROM holidays
		WHERE (recurring = FALSE AND date = ?)
		   OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
		ORDER BY recurring ASC
		LIMIT 1
	`
	var name string
	err := s.db.QueryRow(query, date.String(), fmt.Sprintf("%02d-%02d", date.Month, date.Day)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Error("holiday lookup failed", "date", date.String(), "error", err)
		return "", false
	}
	return name, true
}

func scanHoliday(row scanner) (generic.Holiday, error) {
	var h generic.Holiday
	var dateStr string
	if err := row.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
		return generic.Holiday{}, err
	}
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return generic.Holiday{}, fmt.Errorf("holiday %s: %w", h.ID, err)
	}
	h.Date = generic.DateOf(t)
	return h, nil
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

// SaveTemplate inserts or replaces a recurring shift template.
func (s *Store) SaveTemplate(ctx context.Context, t schedule.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(factory.TemplateToJSON(t))
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}

	query := `
		INSERT INTO templates (id, name, config_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json
	`
	_, err = s.db.ExecContext(ctx, query, t.ID, t.Name, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// ListTemplates returns all templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]schedule.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, config_json FROM templates ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []schedule.Template
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		t, err := factory.ParseTemplate(raw)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &generic.NotFoundError{Kind: "template", ID: id}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
