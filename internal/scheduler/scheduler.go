// Package scheduler runs a job once per day at a configured local time.
// The scheduler owns its cancellation handles: Start cancels any pending
// triggers before arming new ones, so rescheduling after a settings edit
// is idempotent.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgallagher/wxjournal/internal/logger"
)

const dayInterval = 24 * time.Hour

// NextRun computes the next occurrence of the local time hhmm ("HH:MM")
// after now: today if still in the future, else tomorrow.
func NextRun(now time.Time, hhmm string) (time.Time, error) {
	at, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid run time %q: %w", hhmm, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// Scheduler arms a one-shot trigger for the next run time and then repeats
// every 24 hours.
type Scheduler struct {
	runTime string
	job     func(context.Context)
	log     *logger.Logger
	nowFn   func() time.Time

	mu     sync.Mutex
	timer  *time.Timer
	ticker *time.Ticker
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNowFunc substitutes the clock. Used in tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Scheduler) { s.nowFn = now }
}

// New creates a scheduler that runs job daily at runTime ("HH:MM" local).
func New(runTime string, job func(context.Context), log *logger.Logger, opts ...Option) (*Scheduler, error) {
	if _, err := NextRun(time.Now(), runTime); err != nil {
		return nil, err
	}
	s := &Scheduler{
		runTime: runTime,
		job:     job,
		log:     log.Named("scheduler"),
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start arms the one-shot trigger. Any previously pending trigger and
// recurring interval are cancelled first.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	now := s.nowFn()
	next, err := NextRun(now, s.runTime)
	if err != nil {
		return err
	}
	delay := next.Sub(now)
	done := make(chan struct{})
	s.done = done
	s.timer = time.AfterFunc(delay, func() { s.fire(done) })

	s.log.Info("daily run scheduled",
		zap.String("at", next.Format(time.RFC3339)),
		zap.Duration("in", delay))
	return nil
}

// fire runs the job once and then arms the recurring 24-hour interval.
// done identifies the generation that armed this trigger: if Start or Stop
// replaced it while the job ran, the recurring interval belongs to the new
// generation and this one must not arm its own.
func (s *Scheduler) fire(done chan struct{}) {
	s.runJob()

	s.mu.Lock()
	if s.done != done {
		s.mu.Unlock()
		return
	}
	s.ticker = time.NewTicker(dayInterval)
	ticker := s.ticker
	s.mu.Unlock()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.runJob()
		}
	}
}

func (s *Scheduler) runJob() {
	s.log.Info("daily run firing")
	s.job(context.Background())
}

// Stop cancels all pending triggers. A job already in flight runs to
// completion. Stop is safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}
