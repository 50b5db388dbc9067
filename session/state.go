// Package session tracks one live work session: its lifecycle state, its
// breaks, and the earnings the pay engine derives from it while it runs.
package session

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/pay"
)

// State is the lifecycle state of the session manager.
type State string

const (
	StateStopped State = "STOPPED"
	StateRunning State = "RUNNING"
	StateOnBreak State = "ON_BREAK"
	StatePaused  State = "PAUSED"
)

// BreakKind labels a break in the history.
type BreakKind string

const (
	BreakRegular BreakKind = "regular"
	BreakLunch   BreakKind = "lunch"
	BreakSnack   BreakKind = "snack"
	BreakOther   BreakKind = "other"
)

func (k BreakKind) Valid() bool {
	switch k {
	case BreakRegular, BreakLunch, BreakSnack, BreakOther:
		return true
	}
	return false
}

// BreakPeriod is one finished break.
type BreakPeriod struct {
	Start time.Time
	End   time.Time
	Kind  BreakKind
}

// Minutes is the whole minutes between Start and End.
func (b BreakPeriod) Minutes() int { return wholeMinutes(b.End.Sub(b.Start)) }

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Earnings is the latest pay snapshot of a running session.
type Earnings struct {
	WorkedMinutes  int
	BreakMinutes   int
	BasePay        decimal.Decimal
	PremiumPay     decimal.Decimal
	GrossPay       decimal.Decimal
	VacationPay    decimal.Decimal
	TotalBeforeTax decimal.Decimal
	Tax            decimal.Decimal
	NetPay         decimal.Decimal

	// Premium in force at UpdatedAt.
	CurrentPremiumRate  decimal.Decimal
	CurrentPremiumLabel string
	InPremiumWindow     bool

	UpdatedAt time.Time
}

// ActiveSession is an immutable snapshot. Every change publishes a new value;
// holders of an older pointer never see it mutate.
type ActiveSession struct {
	ID          string
	Date        generic.Date
	StartedAt   time.Time
	Now         time.Time
	Description string

	OnBreak        bool
	BreakStartedAt *time.Time
	BreakKind      BreakKind
	BreakMinutes   int // finished breaks only
	Breaks         []BreakPeriod

	Earnings Earnings
}

// clone copies the snapshot so the copy can be modified and republished.
func (s *ActiveSession) clone() *ActiveSession {
	c := *s
	c.Breaks = append([]BreakPeriod(nil), s.Breaks...)
	if s.BreakStartedAt != nil {
		t := *s.BreakStartedAt
		c.BreakStartedAt = &t
	}
	return &c
}

// openBreakMinutes is the length of an in-progress break at now.
func (s *ActiveSession) openBreakMinutes(now time.Time) int {
	if !s.OnBreak || s.BreakStartedAt == nil {
		return 0
	}
	return wholeMinutes(now.Sub(*s.BreakStartedAt))
}

// Completed is what Stop hands back for persistence.
type Completed struct {
	SessionID     string
	Description   string
	Input         pay.ShiftInput
	WorkedMinutes int
	Breaks        []BreakPeriod
}
