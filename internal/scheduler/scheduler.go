// Package scheduler runs the engine's recurring triggers: one per frequency
// class, each on its own cadence, all anchored to the business time zone.
// Triggers survive handler failures, skip instead of re-entering a pass that
// is still running, and optionally extend the overlap guard across process
// instances with a distributed lock.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

// Handler is the work a trigger runs.
type Handler func(ctx context.Context) error

// Locker extends the single-process overlap guard across instances.  Acquire
// returns ok=false when another instance holds the trigger; release frees it.
// Lock failures are advisory: correctness rests on the store's uniqueness
// constraint, so an errored Acquire lets the run proceed.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// TriggerStatus is the externally visible state of one trigger.
type TriggerStatus struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
	Running  bool          `json:"running"`
	NextRun  time.Time     `json:"next_run"`
	LastRun  time.Time     `json:"last_run,omitempty"`
	LastErr  string        `json:"last_error,omitempty"`
	Runs     int64         `json:"runs"`
	Skips    int64         `json:"skips"`
}

type trigger struct {
	name     string
	interval time.Duration
	handler  Handler

	running atomic.Bool

	mu      sync.Mutex
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int64
	skips   int64
}

// Scheduler owns a set of named triggers in a fixed civil time zone.
type Scheduler struct {
	logger logging.Logger
	loc    *time.Location
	locker Locker

	mu       sync.Mutex
	triggers []*trigger
	cancel   context.CancelFunc
	started  bool
	wg       sync.WaitGroup
}

// Option configures optional Scheduler collaborators.
type Option func(*Scheduler)

// WithLocker attaches a distributed lock provider.
func WithLocker(l Locker) Option { return func(s *Scheduler) { s.locker = l } }

// New builds a Scheduler anchored to loc.  All trigger times reported by
// Status are civil times in loc, never the host's zone.
func New(loc *time.Location, logger logging.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger: logger.Named("scheduler"),
		loc:    loc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a trigger.  Registration after Start is an error; the
// trigger set is fixed at startup.
func (s *Scheduler) Register(name string, interval time.Duration, handler Handler) error {
	if interval <= 0 {
		return errors.InvalidParam("trigger interval must be positive")
	}
	if handler == nil {
		return errors.InvalidParam("trigger handler cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.InvalidState("scheduler already started")
	}
	for _, t := range s.triggers {
		if t.name == name {
			return errors.Conflict("trigger " + name)
		}
	}
	s.triggers = append(s.triggers, &trigger{name: name, interval: interval, handler: handler})
	return nil
}

// Start launches every registered trigger.  It returns immediately; triggers
// run until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.InvalidState("scheduler already started")
	}
	if len(s.triggers) == 0 {
		return errors.InvalidState("no triggers registered")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	for _, t := range s.triggers {
		t.mu.Lock()
		t.nextRun = time.Now().In(s.loc).Add(t.interval)
		t.mu.Unlock()

		s.wg.Add(1)
		go s.loop(runCtx, t)
	}
	s.logger.Info("scheduler started",
		logging.Int("triggers", len(s.triggers)),
		logging.String("time_zone", s.loc.String()))
	return nil
}

// Stop cancels every trigger and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	s.logger.Info("scheduler stopped")
}

// Status reports every trigger's cadence, next run, and run counters.
func (s *Scheduler) Status() []TriggerStatus {
	s.mu.Lock()
	triggers := make([]*trigger, len(s.triggers))
	copy(triggers, s.triggers)
	s.mu.Unlock()

	out := make([]TriggerStatus, 0, len(triggers))
	for _, t := range triggers {
		t.mu.Lock()
		st := TriggerStatus{
			Name:     t.name,
			Interval: t.interval,
			Running:  t.running.Load(),
			NextRun:  t.nextRun,
			LastRun:  t.lastRun,
			Runs:     t.runs,
			Skips:    t.skips,
		}
		if t.lastErr != nil {
			st.LastErr = t.lastErr.Error()
		}
		t.mu.Unlock()
		out = append(out, st)
	}
	return out
}

// Trigger runs the named trigger immediately, subject to the same overlap
// guard as scheduled runs.  Used by the admin surface for manual passes.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	var found *trigger
	for _, t := range s.triggers {
		if t.name == name {
			found = t
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return errors.NotFound("trigger " + name)
	}
	if !s.run(ctx, found) {
		return errors.Newf(errors.ErrCodeInvalidState, "trigger %q is already running", name)
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, t *trigger) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, t)
			t.mu.Lock()
			t.nextRun = time.Now().In(s.loc).Add(t.interval)
			t.mu.Unlock()
		}
	}
}

// run executes the trigger once.  It returns false when the overlap guard
// (in-process flag or distributed lock) skipped the run.
func (s *Scheduler) run(ctx context.Context, t *trigger) bool {
	log := s.logger.With(logging.String("trigger", t.name))

	if !t.running.CompareAndSwap(false, true) {
		t.mu.Lock()
		t.skips++
		t.mu.Unlock()
		log.Warn("previous run still in progress, skipping")
		return false
	}
	defer t.running.Store(false)

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, t.name, t.interval)
		if err != nil {
			log.Warn("distributed lock unavailable, proceeding on local guard", logging.Err(err))
		} else if !ok {
			t.mu.Lock()
			t.skips++
			t.mu.Unlock()
			log.Info("another instance holds the trigger, skipping")
			return false
		} else {
			defer release()
		}
	}

	started := time.Now().In(s.loc)
	err := s.invoke(ctx, t)

	t.mu.Lock()
	t.lastRun = started
	t.lastErr = err
	t.runs++
	t.mu.Unlock()

	if err != nil {
		// The trigger stays registered; next tick retries.
		log.Error("trigger run failed", logging.Err(err))
	}
	return true
}

// invoke runs the handler, converting a panic into an error so one bad pass
// never takes the scheduler down.
func (s *Scheduler) invoke(ctx context.Context, t *trigger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeInternal, "trigger %q panicked: %v", t.name, r)
		}
	}()
	return t.handler(ctx)
}
