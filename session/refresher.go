/*
refresher.go - Periodic earnings refresh

PURPOSE:
  Drives a tick callback at a fixed cadence while a session is active. The
  callback is injected, so the loop knows nothing about sessions or pay.

DESIGN:
  - Sleeps Interval between ticks, Backoff after a failed tick
  - A panicking tick counts as a failed tick
  - Ends when the context is cancelled, Stop is called, or Active reports false

USAGE:
  r := session.NewRefresher(manager.RefreshTick(rates), manager.Active, logger)
  r.Start(ctx)
  // ... later
  r.Stop()
*/
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultRefreshInterval = time.Second
	DefaultRefreshBackoff  = 5 * time.Second
)

// Refresher calls Tick every Interval while Active returns true.
type Refresher struct {
	Interval time.Duration
	Backoff  time.Duration
	Tick     func(ctx context.Context) error
	Active   func() bool
	Logger   *slog.Logger
	Recorder Recorder

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(tick func(ctx context.Context) error, active func() bool, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		Interval: DefaultRefreshInterval,
		Backoff:  DefaultRefreshBackoff,
		Tick:     tick,
		Active:   active,
		Logger:   logger,
		Recorder: nopRecorder{},
	}
}

// Start launches the loop in the background. It reports false when a loop
// is already running.
func (r *Refresher) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running() {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer cancel()
		r.Run(ctx)
	}()

	r.logger().Debug("refresher started", "interval", r.interval())
	return true
}

// Stop ends a running loop and waits for it to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a background loop is alive.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running()
}

func (r *Refresher) running() bool {
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Run executes the loop in the calling goroutine.
func (r *Refresher) Run(ctx context.Context) {
	for ctx.Err() == nil && r.active() {
		wait := r.interval()
		err := r.safeTick(ctx)
		r.recorder().Tick(err)
		if err != nil {
			r.logger().Warn("earnings refresh failed", "error", err, "retry_in", r.backoff())
			wait = r.backoff()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (r *Refresher) safeTick(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("tick panicked: %v", p)
		}
	}()
	if r.Tick == nil {
		return nil
	}
	return r.Tick(ctx)
}

func (r *Refresher) active() bool { return r.Active == nil || r.Active() }

func (r *Refresher) interval() time.Duration {
	if r.Interval <= 0 {
		return DefaultRefreshInterval
	}
	return r.Interval
}

func (r *Refresher) backoff() time.Duration {
	if r.Backoff <= 0 {
		return DefaultRefreshBackoff
	}
	return r.Backoff
}

func (r *Refresher) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Refresher) recorder() Recorder {
	if r.Recorder == nil {
		return nopRecorder{}
	}
	return r.Recorder
}
