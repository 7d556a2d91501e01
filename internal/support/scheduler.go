package support

import (
	"context"
	"errors"
	"sync"
	"time"

	"storechat/internal/logging"
)

// Clock is the time source used by the widget and scheduler.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// TickerFunc starts a ticker and returns its channel and stop func.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

var ErrSchedulerRunning = errors.New("scheduler already running")

// Scheduler runs fn on every tick until stopped. fn runs on the scheduler
// goroutine, so two invocations never overlap.
type Scheduler struct {
	interval time.Duration
	ticker   TickerFunc
	fn       func(ctx context.Context, now time.Time)
	logger   logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type SchedulerOption func(*Scheduler)

func WithTicker(ticker TickerFunc) SchedulerOption {
	return func(s *Scheduler) {
		if ticker != nil {
			s.ticker = ticker
		}
	}
}

func WithSchedulerLogger(logger logging.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewScheduler(interval time.Duration, fn func(ctx context.Context, now time.Time), opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = defaultPollTick
	}
	s := &Scheduler{
		interval: interval,
		ticker:   realTicker,
		fn:       fn,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start launches the tick loop. The loop ends when ctx is cancelled or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return ErrSchedulerRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := s.ticker(s.interval)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.logger.Debug("scheduler_started", logging.F("interval", s.interval))
	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-loopCtx.Done():
				return
			case now, ok := <-ticks:
				if !ok {
					return
				}
				if loopCtx.Err() != nil {
					return
				}
				if s.fn != nil {
					s.fn(loopCtx, now)
				}
			}
		}
	}()
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Debug("scheduler_stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}
