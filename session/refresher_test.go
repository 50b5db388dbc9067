package session_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/session"
)

func noRates(context.Context) (*pay.RateSchedule, error) { return nil, nil }

func TestRefresher_RunStopsWhenInactive(t *testing.T) {
	var ticks atomic.Int32
	r := session.NewRefresher(
		func(context.Context) error { ticks.Add(1); return nil },
		func() bool { return ticks.Load() < 3 },
		nil,
	)
	r.Interval = time.Millisecond

	r.Run(context.Background())

	assert.Equal(t, int32(3), ticks.Load())
}

func TestRefresher_SurvivesErrorsAndPanics(t *testing.T) {
	// GIVEN: A tick that fails, then panics, then succeeds
	var calls atomic.Int32
	rec := &countingRecorder{}
	r := session.NewRefresher(func(context.Context) error {
		switch calls.Add(1) {
		case 1:
			return errors.New("boom")
		case 2:
			panic("bad snapshot")
		}
		return nil
	}, func() bool { return calls.Load() < 3 }, nil)
	r.Interval = time.Millisecond
	r.Backoff = 2 * time.Millisecond
	r.Recorder = rec

	// WHEN: Running the loop
	r.Run(context.Background())

	// THEN: Every tick ran and both failures were reported
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, rec.ticks)
	assert.Equal(t, 2, rec.failures)
}

func TestRefresher_EndsOnCancel(t *testing.T) {
	r := session.NewRefresher(func(context.Context) error { return nil }, nil, nil)
	r.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}

func TestRefresher_StartIsIdempotent(t *testing.T) {
	var ticks atomic.Int32
	r := session.NewRefresher(func(context.Context) error { ticks.Add(1); return nil }, nil, nil)
	r.Interval = time.Millisecond

	require.True(t, r.Start(context.Background()))
	assert.False(t, r.Start(context.Background()))
	assert.True(t, r.Running())

	r.Stop()
	assert.False(t, r.Running())
	assert.Positive(t, ticks.Load())

	// A stopped refresher can be started again.
	require.True(t, r.Start(context.Background()))
	r.Stop()
}

func TestRefresher_DrivesManager(t *testing.T) {
	m, clock := newTestManager()
	m.Start("")
	clock.Advance(time.Hour)

	r := session.NewRefresher(m.RefreshTick(noRates), m.Active, nil)
	r.Interval = time.Millisecond
	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return m.Session().Now.Equal(clock.Now())
	}, time.Second, time.Millisecond)

	m.Stop()
	require.Eventually(t, func() bool { return !r.Running() }, time.Second, time.Millisecond)
}

func TestValue_LatestWins(t *testing.T) {
	v := session.NewValue(1)
	ch, cancel := v.Subscribe()

	v.Set(2)
	v.Set(3)

	assert.Equal(t, 3, <-ch)
	assert.Equal(t, 3, v.Get())

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}
