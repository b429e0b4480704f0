package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/clock"
)

// Engine drives one countdown session at a time. Commands are expected from
// a single caller (the UI); the tick loop runs on clock callbacks and is
// serialized with commands by an internal mutex.
type Engine struct {
	mu sync.Mutex

	clock    clock.Clock
	facts    FactSource
	notifier Notifier
	reporter OutcomeReporter
	log      *logrus.Entry

	duration time.Duration
	tick     time.Duration
	demo     bool

	sess session

	// gen identifies the live loop. Stopping or restarting the loop bumps
	// it so a callback already in flight sees a mismatch and exits.
	gen     uint64
	pending clock.Timer

	// reported is set once the current session has emitted its Outcome.
	reported bool
	closed   bool

	subs    map[int]chan Snapshot
	nextSub int
}

type session struct {
	id        string
	phase     Phase
	remaining time.Duration
	fact      string
	zone      BrushZone
	overlay   bool
	startedAt time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source for the tick loop.
func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithFacts sets the rotating fact source.
func WithFacts(f FactSource) Option { return func(e *Engine) { e.facts = f } }

// WithNotifier sets the sink told about finished sessions.
func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithReporter sets the receiver of session outcomes.
func WithReporter(r OutcomeReporter) Option { return func(e *Engine) { e.reporter = r } }

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l.WithField("component", "timer") }
}

// WithDuration sets the session length. It must exceed TongueThreshold.
func WithDuration(d time.Duration) Option { return func(e *Engine) { e.duration = d } }

// WithTick sets the countdown granularity.
func WithTick(d time.Duration) Option { return func(e *Engine) { e.tick = d } }

// WithDemoFinish enables DemoFinish.
func WithDemoFinish(enabled bool) Option { return func(e *Engine) { e.demo = enabled } }

// New creates an Engine holding a fresh session in the Begin phase.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:    clock.System,
		duration: DefaultDuration,
		tick:     DefaultTick,
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.StandardLogger().WithField("component", "timer")
	}
	if e.tick <= 0 {
		e.tick = DefaultTick
	}
	if e.duration <= TongueThreshold {
		e.duration = DefaultDuration
	}
	e.sess = e.freshSession(e.fetchFact())
	return e
}

// Snapshot returns the current session state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// DemoEnabled reports whether DemoFinish is accepted.
func (e *Engine) DemoEnabled() bool { return e.demo }

// Start begins the countdown from Begin or resumes it from Paused. Calling it
// while the countdown is already running is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	switch e.sess.phase {
	case Counting, Resumed:
		e.mu.Unlock()
		return nil
	case Begin:
		e.sess.startedAt = e.clock.Now()
		e.setPhaseLocked(Counting)
	case Paused:
		e.setPhaseLocked(Resumed)
	default:
		err := e.rejectLocked("start")
		e.mu.Unlock()
		return err
	}
	e.startLoopLocked()
	e.mu.Unlock()

	e.publish()
	return nil
}

// Pause freezes the countdown at its current remaining time.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if !e.sess.phase.Running() {
		err := e.rejectLocked("pause")
		e.mu.Unlock()
		return err
	}
	e.stopLoopLocked()
	e.setPhaseLocked(Paused)
	e.mu.Unlock()

	e.publish()
	return nil
}

// Cancel ends the session without reward. Remaining time is kept for display.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.sess.phase.Terminal() {
		err := e.rejectLocked("cancel")
		e.mu.Unlock()
		return err
	}
	e.stopLoopLocked()
	e.setPhaseLocked(Cancelled)
	out := e.outcomeLocked(ResultCancelled, false)
	e.mu.Unlock()

	e.settle(out)
	e.publish()
	return nil
}

// ResetSession discards the current session and starts a new one in Begin.
// It is allowed from any phase and does nothing once the engine is closed.
func (e *Engine) ResetSession() {
	fact := e.fetchFact()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopLoopLocked()
	prev := e.sess.phase
	e.sess = e.freshSession(fact)
	e.reported = false
	e.log.WithFields(logrus.Fields{
		"session": e.sess.id,
		"from":    prev,
	}).Debug("session reset")
	e.mu.Unlock()

	e.publish()
}

// DemoFinish jumps a running countdown straight to Finished.
func (e *Engine) DemoFinish() error {
	if !e.demo {
		return ErrDemoDisabled
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if !e.sess.phase.Running() {
		err := e.rejectLocked("demo finish")
		e.mu.Unlock()
		return err
	}
	out := e.finishLocked(true)
	e.mu.Unlock()

	e.settle(out)
	e.publish()
	return nil
}

// ToggleOverlay flips the tooth overlay flag. It does not affect the phase.
func (e *Engine) ToggleOverlay() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.sess.overlay = !e.sess.overlay
	e.mu.Unlock()

	e.publish()
}

// Subscribe returns a channel that receives the current snapshot immediately
// and then the latest snapshot after every change. Slow readers only see the
// most recent value. The returned func unsubscribes.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	ch <- e.snapshotLocked()
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the loop and closes every subscription channel.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLoopLocked()
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}

// onTick is one iteration of the countdown loop.
func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.sess.phase.Running() {
		e.mu.Unlock()
		return
	}
	e.pending = nil

	var (
		out    *Outcome
		reroll bool
	)
	if e.sess.remaining <= 0 {
		out = e.finishLocked(false)
	} else {
		prev := e.sess.remaining
		e.sess.remaining = max(prev-e.tick, 0)
		reroll = e.advanceZoneLocked(prev)
		if e.sess.remaining == 0 {
			out = e.finishLocked(false)
		} else {
			e.scheduleLocked(gen)
		}
	}
	e.mu.Unlock()

	if reroll {
		e.rerollFact(gen)
	}
	e.settle(out)
	e.publish()
}

// advanceZoneLocked flips Upper/Lower whenever the countdown crosses a
// multiple of ZoneInterval and pins the zone to Tongue for the final
// stretch. It reports whether the fact should be re-rolled.
func (e *Engine) advanceZoneLocked(prev time.Duration) bool {
	r := e.sess.remaining
	mark := (prev - 1) / ZoneInterval * ZoneInterval
	crossed := mark > 0 && mark >= r
	if crossed {
		if e.sess.zone == Upper {
			e.sess.zone = Lower
		} else {
			e.sess.zone = Upper
		}
	}
	if r <= TongueThreshold {
		e.sess.zone = Tongue
	}
	return crossed
}

func (e *Engine) rerollFact(gen uint64) {
	fact := e.fetchFact()

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.gen {
		e.sess.fact = fact
	}
}

func (e *Engine) finishLocked(demo bool) *Outcome {
	e.stopLoopLocked()
	e.sess.remaining = 0
	e.sess.zone = Tongue
	e.setPhaseLocked(Finished)
	return e.outcomeLocked(ResultFinished, demo)
}

// outcomeLocked returns the session's Outcome the first time it is called
// and nil afterwards, until the next ResetSession.
func (e *Engine) outcomeLocked(result Result, demo bool) *Outcome {
	if e.reported {
		return nil
	}
	e.reported = true
	return &Outcome{
		SessionID: e.sess.id,
		Result:    result,
		Duration:  e.duration,
		Remaining: e.sess.remaining,
		StartedAt: e.sess.startedAt,
		EndedAt:   e.clock.Now(),
		Demo:      demo,
	}
}

// settle hands a terminal outcome to the collaborators. Their failures are
// logged and do not touch timer state.
func (e *Engine) settle(out *Outcome) {
	if out == nil {
		return
	}
	log := e.log.WithFields(logrus.Fields{
		"session": out.SessionID,
		"result":  out.Result,
	})
	if out.Result == ResultFinished && e.notifier != nil {
		if err := e.notifier.NotifyFinished(); err != nil {
			log.WithError(err).Warn("finish notification failed")
		}
	}
	if e.reporter != nil {
		if err := e.reporter.ReportOutcome(*out); err != nil {
			log.WithError(err).Warn("report outcome failed")
		}
	}
	log.Info("session ended")
}

func (e *Engine) startLoopLocked() {
	e.stopLoopLocked()
	if e.closed {
		return
	}
	e.scheduleLocked(e.gen)
}

func (e *Engine) stopLoopLocked() {
	e.gen++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) scheduleLocked(gen uint64) {
	e.pending = e.clock.AfterFunc(e.tick, func() { e.onTick(gen) })
}

func (e *Engine) setPhaseLocked(p Phase) {
	e.log.WithFields(logrus.Fields{
		"session":   e.sess.id,
		"from":      e.sess.phase,
		"to":        p,
		"remaining": e.sess.remaining,
	}).Debug("phase change")
	e.sess.phase = p
}

func (e *Engine) rejectLocked(cmd string) error {
	e.log.WithFields(logrus.Fields{
		"session": e.sess.id,
		"phase":   e.sess.phase,
		"command": cmd,
	}).Debug("command rejected")
	return fmt.Errorf("%s from %s: %w", cmd, e.sess.phase, ErrInvalidTransition)
}

func (e *Engine) freshSession(fact string) session {
	return session{
		id:        uuid.NewString(),
		phase:     Begin,
		remaining: e.duration,
		fact:      fact,
		zone:      Upper,
	}
}

func (e *Engine) fetchFact() string {
	if e.facts == nil {
		return FallbackFact
	}
	fact, err := e.facts.RandomFact()
	if err != nil || fact == "" {
		if err != nil {
			e.log.WithError(err).Warn("fact source failed")
		}
		return FallbackFact
	}
	return fact
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: e.sess.id,
		Phase:     e.sess.phase,
		Remaining: e.sess.remaining,
		Duration:  e.duration,
		Fact:      e.sess.fact,
		Zone:      e.sess.zone,
		Overlay:   e.sess.overlay,
		StartedAt: e.sess.startedAt,
	}
}

// publish delivers the current snapshot to every subscriber, replacing any
// value the subscriber has not read yet.
func (e *Engine) publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
