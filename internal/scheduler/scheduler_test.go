package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallagher/wxjournal/internal/logger"
)

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name string
		now  time.Time
		at   string
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2024, 3, 1, 9, 0, 0, 0, loc),
			at:   "13:30",
			want: time.Date(2024, 3, 1, 13, 30, 0, 0, loc),
		},
		{
			name: "already passed rolls to tomorrow",
			now:  time.Date(2024, 3, 1, 14, 0, 0, 0, loc),
			at:   "13:30",
			want: time.Date(2024, 3, 2, 13, 30, 0, 0, loc),
		},
		{
			name: "exactly now rolls to tomorrow",
			now:  time.Date(2024, 3, 1, 13, 30, 0, 0, loc),
			at:   "13:30",
			want: time.Date(2024, 3, 2, 13, 30, 0, 0, loc),
		},
		{
			name: "midnight",
			now:  time.Date(2024, 3, 1, 23, 59, 0, 0, loc),
			at:   "00:00",
			want: time.Date(2024, 3, 2, 0, 0, 0, 0, loc),
		},
		{
			name: "month boundary",
			now:  time.Date(2024, 2, 29, 22, 0, 0, 0, loc),
			at:   "06:00",
			want: time.Date(2024, 3, 1, 6, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(tt.now, tt.at)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNextRun_Invalid(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, at := range []string{"25:00", "12:60", "invalid", "", "9am"} {
		t.Run(at, func(t *testing.T) {
			_, err := NextRun(now, at)
			assert.Error(t, err)
		})
	}
}

func TestNew_InvalidRunTime(t *testing.T) {
	_, err := New("25:00", func(context.Context) {}, logger.NewNop())
	assert.Error(t, err)
}

func TestScheduler_FiresJob(t *testing.T) {
	var runs atomic.Int32
	fired := make(chan struct{}, 1)
	job := func(context.Context) {
		runs.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	// Pin the clock 50ms before the run time so the one-shot delay is tiny.
	target := time.Date(2024, 3, 1, 13, 30, 0, 0, time.Local)
	s, err := New("13:30", job, logger.NewNop(),
		WithNowFunc(func() time.Time { return target.Add(-50 * time.Millisecond) }))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RestartDuringJobKeepsSingleTrigger(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	job := func(context.Context) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
	}

	target := time.Date(2024, 3, 1, 13, 30, 0, 0, time.Local)
	s, err := New("13:30", job, logger.NewNop(),
		WithNowFunc(func() time.Time { return target.Add(-20 * time.Millisecond) }))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	// Rearm while the first job is still in flight, as a config reload does.
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.ticker != nil
	}, 2*time.Second, 5*time.Millisecond, "rearmed schedule never fired")

	s.mu.Lock()
	armed := s.ticker
	s.mu.Unlock()

	// Let the first job finish; its trigger is stale and must not replace
	// the recurring interval the rearmed schedule owns.
	close(release)
	time.Sleep(100 * time.Millisecond)

	s.mu.Lock()
	assert.Same(t, armed, s.ticker)
	s.mu.Unlock()
}

func TestScheduler_RestartIsIdempotent(t *testing.T) {
	s, err := New("12:00", func(context.Context) {}, logger.NewNop())
	require.NoError(t, err)

	// Start repeatedly: each call replaces the pending trigger.
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	s.Stop()
	s.Stop()

	require.NoError(t, s.Start())
	s.Stop()
}
