/*
manager.go - The live work session

PURPOSE:
  Manager owns the one active session of a process. It is constructed by the
  composition root and handed to whoever needs it (API handlers, the earnings
  refresher); nothing reaches it through package state.

STATE MACHINE:
  STOPPED --Start--> RUNNING --StartBreak--> ON_BREAK --EndBreak--> RUNNING
  RUNNING/ON_BREAK --Pause--> PAUSED --Resume--> RUNNING or ON_BREAK
  any --Stop--> STOPPED

  Calls that make no sense in the current state are no-ops, never errors.
  Pause only changes the state label; elapsed time keeps accruing.

CONCURRENCY:
  Transitions and earnings refreshes serialize on one mutex. Readers go
  through the observable cells and never take it.

SEE ALSO:
  - refresher.go: The ~1 s earnings tick
  - pay/calculator.go: ComputePay
*/
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// Recorder receives session events, typically for metrics.
type Recorder interface {
	Transition(from, to State)
	Tick(err error)
}

type nopRecorder struct{}

func (nopRecorder) Transition(State, State) {}
func (nopRecorder) Tick(error)              {}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithIDGenerator replaces the UUID session ID generator.
func WithIDGenerator(newID func() string) Option { return func(m *Manager) { m.newID = newID } }

// WithCalendar sets the red-day lookup used for live earnings and for the
// shift handed back by Stop.
func WithCalendar(cal generic.HolidayCalendar) Option { return func(m *Manager) { m.calendar = cal } }

func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.logger = l } }

func WithRecorder(r Recorder) Option { return func(m *Manager) { m.recorder = r } }

// WithLocation sets the time zone wall-clock times are read in.
func WithLocation(loc *time.Location) Option { return func(m *Manager) { m.loc = loc } }

// Manager is the session state machine.
type Manager struct {
	mu sync.Mutex

	now      func() time.Time
	newID    func() string
	calendar generic.HolidayCalendar
	logger   *slog.Logger
	recorder Recorder
	loc      *time.Location

	session *Value[*ActiveSession]
	state   *Value[State]
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		now:      time.Now,
		newID:    uuid.NewString,
		calendar: generic.NoHolidays{},
		logger:   slog.Default(),
		recorder: nopRecorder{},
		loc:      time.Local,
		session:  NewValue[*ActiveSession](nil),
		state:    NewValue(StateStopped),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// =============================================================================
// OBSERVABLE READS
// =============================================================================

// Session returns the current snapshot, nil when no session is active.
func (m *Manager) Session() *ActiveSession { return m.session.Get() }

func (m *Manager) State() State { return m.state.Get() }

// Active reports whether a session exists and the lifecycle is not stopped.
func (m *Manager) Active() bool {
	return m.session.Get() != nil && m.state.Get() != StateStopped
}

func (m *Manager) SubscribeSession() (<-chan *ActiveSession, func()) { return m.session.Subscribe() }

func (m *Manager) SubscribeState() (<-chan State, func()) { return m.state.Subscribe() }

// =============================================================================
// TRANSITIONS
// =============================================================================

// Start begins a session. With a session already active it returns that
// session unchanged.
func (m *Manager) Start(description string) *ActiveSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.session.Get(); cur != nil {
		return cur
	}

	now := m.clock()
	s := &ActiveSession{
		ID:          m.newID(),
		Date:        generic.DateOf(now),
		StartedAt:   now,
		Now:         now,
		Description: description,
	}
	m.session.Set(s)
	m.setState(StateRunning)
	m.logger.Info("session started", "session_id", s.ID, "date", s.Date.String())
	return s
}

// StartBreak begins a regular break.
func (m *Manager) StartBreak() bool { return m.StartBreakOf(BreakRegular) }

// StartBreakOf begins a break of the given kind. It reports whether a break
// was started.
func (m *Manager) StartBreakOf(kind BreakKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.session.Get()
	if cur == nil || cur.OnBreak {
		return false
	}
	if !kind.Valid() {
		kind = BreakRegular
	}

	now := m.clock()
	s := cur.clone()
	s.OnBreak = true
	s.BreakStartedAt = &now
	s.BreakKind = kind
	s.Now = now
	m.session.Set(s)
	m.setState(StateOnBreak)
	return true
}

// EndBreak closes the open break. It reports whether one was open.
func (m *Manager) EndBreak() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.session.Get()
	if cur == nil || !cur.OnBreak {
		return false
	}
	s := closeBreak(cur, m.clock())
	m.session.Set(s)
	m.setState(StateRunning)
	return true
}

// Pause changes the displayed state only.
func (m *Manager) Pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Get() == nil || m.state.Get() == StatePaused {
		return false
	}
	m.setState(StatePaused)
	return true
}

// Resume returns to RUNNING, or ON_BREAK when a break is still open.
func (m *Manager) Resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.session.Get()
	if cur == nil {
		return false
	}
	if cur.OnBreak {
		m.setState(StateOnBreak)
	} else {
		m.setState(StateRunning)
	}
	return true
}

// Stop ends the session and returns the shift it produced. Without an active
// session it returns false and changes nothing.
func (m *Manager) Stop() (Completed, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.session.Get()
	if cur == nil {
		return Completed{}, false
	}

	now := m.clock()
	s := cur
	if s.OnBreak {
		s = closeBreak(s, now)
	}
	input, worked := m.shiftInput(s, now, s.BreakMinutes)

	m.session.Set(nil)
	m.setState(StateStopped)
	m.logger.Info("session stopped",
		"session_id", s.ID,
		"worked_minutes", worked,
		"break_minutes", s.BreakMinutes,
	)

	return Completed{
		SessionID:     s.ID,
		Description:   s.Description,
		Input:         input,
		WorkedMinutes: worked,
		Breaks:        s.Breaks,
	}, true
}

// =============================================================================
// EARNINGS
// =============================================================================

// UpdateEarnings refreshes the session's clock and, when rates are given,
// recomputes its earnings. Calculation failures are logged and leave the
// previous earnings in place.
func (m *Manager) UpdateEarnings(rates *pay.RateSchedule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.session.Get()
	if cur == nil {
		return
	}

	now := m.clock()
	s := cur.clone()
	s.Now = now
	if rates == nil {
		m.session.Set(s)
		return
	}

	breakMinutes := s.BreakMinutes + s.openBreakMinutes(now)
	input, _ := m.shiftInput(s, now, breakMinutes)
	b, err := pay.ComputePay(input, *rates)
	if err != nil {
		m.logger.Debug("earnings refresh skipped", "session_id", s.ID, "error", err)
		m.session.Set(s)
		return
	}

	rate, label, inWindow := pay.PremiumAt(*rates, generic.DateOf(now), generic.ClockOf(now), m.calendar.IsHoliday(generic.DateOf(now)))
	s.Earnings = Earnings{
		WorkedMinutes:       b.WorkedMinutes,
		BreakMinutes:        b.BreakMinutes,
		BasePay:             b.BasePay,
		PremiumPay:          b.PremiumPay,
		GrossPay:            b.GrossPay,
		VacationPay:         b.VacationPay,
		TotalBeforeTax:      b.TotalBeforeTax,
		Tax:                 b.Tax,
		NetPay:              b.NetPay,
		CurrentPremiumRate:  rate,
		CurrentPremiumLabel: label,
		InPremiumWindow:     inWindow,
		UpdatedAt:           now,
	}
	m.session.Set(s)
}

// RatesFunc supplies the rate schedule for a refresh; nil means none is
// configured yet.
type RatesFunc func(ctx context.Context) (*pay.RateSchedule, error)

// RefreshTick adapts UpdateEarnings to a Refresher tick. A failing rates
// source still refreshes the timestamp and reports the error.
func (m *Manager) RefreshTick(rates RatesFunc) func(context.Context) error {
	return func(ctx context.Context) error {
		r, err := rates(ctx)
		if err != nil {
			m.UpdateEarnings(nil)
			return fmt.Errorf("load rates: %w", err)
		}
		m.UpdateEarnings(r)
		return nil
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Manager) clock() time.Time { return m.now().In(m.loc) }

func (m *Manager) setState(next State) {
	prev := m.state.Get()
	if prev == next {
		return
	}
	m.state.Set(next)
	m.recorder.Transition(prev, next)
	m.logger.Debug("session state changed", "from", string(prev), "to", string(next))
}

const maxShift = 24 * time.Hour

// shiftInput converts a session into a calculator input ending at now.
func (m *Manager) shiftInput(s *ActiveSession, now time.Time, breakMinutes int) (pay.ShiftInput, int) {
	start := generic.ClockOf(s.StartedAt)
	end := generic.ClockOf(now)
	nextDay := generic.DateOf(now).After(s.Date)

	// A shift spans at most 24 hours; a longer session is priced as ending
	// at its start time on the following day.
	if now.Sub(s.StartedAt) >= maxShift {
		end = start
		nextDay = true
	}

	input := pay.ShiftInput{
		Date:        s.Date,
		Start:       &start,
		End:         &end,
		EndsNextDay: nextDay,
		Break:       pay.RecordedBreak(breakMinutes),
		RedDay:      m.calendar.IsHoliday(s.Date),
	}

	to := end.Minutes()
	if input.EndsNextDay {
		to += int(generic.EndOfDay)
	}
	worked := to - start.Minutes() - breakMinutes
	if worked < 0 {
		worked = 0
	}
	return input, worked
}

// closeBreak appends the open break to the history.
func closeBreak(cur *ActiveSession, now time.Time) *ActiveSession {
	s := cur.clone()
	period := BreakPeriod{Start: *s.BreakStartedAt, End: now, Kind: s.BreakKind}
	s.Breaks = append(s.Breaks, period)
	s.BreakMinutes += period.Minutes()
	s.OnBreak = false
	s.BreakStartedAt = nil
	s.BreakKind = ""
	s.Now = now
	return s
}
