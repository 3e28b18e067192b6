package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// DefaultMaxDelta caps a single tick so a suspended host cannot inject a
// huge step.
const DefaultMaxDelta = 40 * time.Millisecond

// Callback receives the clamped frame delta and the accumulated elapsed
// time, both in seconds. It must not block.
type Callback func(delta, elapsed float64)

type Handle uint64

type entry struct {
	handle Handle
	fn     Callback
	dead   bool
}

// Scheduler owns the frame loop. It holds no simulation state, only the
// callback registry and the clock. It is not safe for concurrent use; all
// calls belong on the goroutine that ticks it.
type Scheduler struct {
	clock    Clock
	maxDelta time.Duration
	redraw   func()
	logger   *slog.Logger

	entries []*entry
	next    Handle

	running bool
	last    time.Time
	elapsed float64
	ticks   uint64
}

type Option func(*Scheduler)

func WithMaxDelta(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxDelta = d
		}
	}
}

// WithRedraw sets the hook signalled after every tick's callbacks ran.
func WithRedraw(fn func()) Option {
	return func(s *Scheduler) { s.redraw = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(clock Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	s := &Scheduler{
		clock:    clock,
		maxDelta: DefaultMaxDelta,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register appends fn to the tick order and returns its handle.
func (s *Scheduler) Register(fn Callback) Handle {
	s.next++
	s.entries = append(s.entries, &entry{handle: s.next, fn: fn})
	s.logger.Debug("scheduler: register", "handle", s.next, "callbacks", len(s.entries))
	return s.next
}

// Unregister removes a callback. Called from inside a tick, the callback
// is not invoked again, not even later in the same tick.
func (s *Scheduler) Unregister(h Handle) bool {
	for i, e := range s.entries {
		if e.handle == h {
			e.dead = true
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			s.logger.Debug("scheduler: unregister", "handle", h, "callbacks", len(s.entries))
			return true
		}
	}
	return false
}

func (s *Scheduler) Len() int { return len(s.entries) }

func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.last = s.clock.Now()
	s.logger.Debug("scheduler: start")
}

func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.logger.Debug("scheduler: stop", "ticks", s.ticks, "elapsed", s.elapsed)
}

func (s *Scheduler) Running() bool { return s.running }

// Elapsed is the sum of all clamped deltas, in seconds.
func (s *Scheduler) Elapsed() float64 { return s.elapsed }

func (s *Scheduler) Ticks() uint64 { return s.ticks }

// Tick runs one frame if the scheduler is running and reports whether it
// did. Callbacks run in registration order, then the redraw hook.
func (s *Scheduler) Tick() bool {
	if !s.running {
		return false
	}
	now := s.clock.Now()
	d := now.Sub(s.last)
	s.last = now
	if d < 0 {
		d = 0
	}
	if d > s.maxDelta {
		d = s.maxDelta
	}
	delta := d.Seconds()
	s.elapsed += delta
	s.ticks++

	snapshot := append([]*entry(nil), s.entries...)
	for _, e := range snapshot {
		if e.dead {
			continue
		}
		e.fn(delta, s.elapsed)
		if !s.running {
			return true
		}
	}
	if s.redraw != nil {
		s.redraw()
	}
	return true
}

// Run starts the scheduler and ticks it every interval on the calling
// goroutine until ctx is done or a callback stops the scheduler.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	s.Start()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-ticker.C:
			if !s.running {
				return nil
			}
			s.Tick()
		}
	}
}

// Step advances a ManualClock by d and ticks once. It is the fixed-step
// driver for headless runs.
func (s *Scheduler) Step(clock *ManualClock, d time.Duration) bool {
	clock.Advance(d)
	return s.Tick()
}
