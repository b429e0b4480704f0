// Package timer implements the toothbrushing countdown: a single session
// moving through Begin, Counting, Paused, Resumed, Cancelled and Finished,
// driven by a one-tick-per-second background loop.
package timer

import (
	"errors"
	"fmt"
	"time"
)

// Timing constants for a standard two-minute session.
const (
	DefaultDuration = 120 * time.Second
	DefaultTick     = time.Second
	ZoneInterval    = 10 * time.Second
	TongueThreshold = 10 * time.Second
)

// FallbackFact is shown when the fact source fails.
const FallbackFact = "Keep brushing!"

var (
	// ErrInvalidTransition is returned when a command is issued from a phase
	// that does not allow it. State is left untouched.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrDemoDisabled is returned by DemoFinish unless demo mode is on.
	ErrDemoDisabled = errors.New("demo finish disabled")

	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("engine closed")
)

// Phase is the current member of the session state machine.
type Phase int

const (
	Begin Phase = iota
	Counting
	Paused
	Resumed
	Cancelled
	Finished
)

var phaseNames = [...]string{"begin", "counting", "paused", "resumed", "cancelled", "finished"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, n := range phaseNames {
		if n == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Running reports whether the countdown loop should be active.
func (p Phase) Running() bool { return p == Counting || p == Resumed }

// Terminal reports whether only ResetSession can leave this phase.
func (p Phase) Terminal() bool { return p == Finished || p == Cancelled }

// BrushZone is the mouth region the user should be brushing.
type BrushZone int

const (
	Upper BrushZone = iota
	Lower
	Tongue
)

var zoneNames = [...]string{"upper", "lower", "tongue"}

func (z BrushZone) String() string {
	if z < 0 || int(z) >= len(zoneNames) {
		return fmt.Sprintf("zone(%d)", int(z))
	}
	return zoneNames[z]
}

// MarshalText encodes the zone by name.
func (z BrushZone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText decodes a zone name.
func (z *BrushZone) UnmarshalText(b []byte) error {
	for i, n := range zoneNames {
		if n == string(b) {
			*z = BrushZone(i)
			return nil
		}
	}
	return fmt.Errorf("unknown zone %q", b)
}

// Snapshot is a point-in-time copy of the session for observers.
type Snapshot struct {
	SessionID string        `json:"sessionId"`
	Phase     Phase         `json:"phase"`
	Remaining time.Duration `json:"remaining"`
	Duration  time.Duration `json:"duration"`
	Fact      string        `json:"fact"`
	Zone      BrushZone     `json:"zone"`
	Overlay   bool          `json:"overlay"`
	StartedAt time.Time     `json:"startedAt,omitzero"`
}

// Progress returns the elapsed fraction of the session in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Duration-s.Remaining) / float64(s.Duration)
	return min(max(p, 0), 1)
}

// Result is the terminal result of a session.
type Result string

const (
	ResultFinished  Result = "finished"
	ResultCancelled Result = "cancelled"
)

// Outcome is handed to the OutcomeReporter exactly once per session that
// reaches a terminal phase.
type Outcome struct {
	SessionID string
	Result    Result
	Duration  time.Duration
	Remaining time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	Demo      bool
}

// FactSource supplies the rotating display fact.
type FactSource interface {
	RandomFact() (string, error)
}

// Notifier is told when a session finishes through countdown or demo.
type Notifier interface {
	NotifyFinished() error
}

// OutcomeReporter receives the terminal outcome of each session.
type OutcomeReporter interface {
	ReportOutcome(Outcome) error
}
