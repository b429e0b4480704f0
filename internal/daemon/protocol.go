// Package daemon provides the control socket that lets other processes drive
// and watch the running timer using NDJSON over a Unix socket.
package daemon

import (
	"time"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"
)

// Command names accepted by the server.
const (
	CmdStatus        = "status"
	CmdStart         = "start"
	CmdPause         = "pause"
	CmdCancel        = "cancel"
	CmdReset         = "reset"
	CmdDemoFinish    = "demo_finish"
	CmdToggleOverlay = "toggle_overlay"
	CmdSubscribe     = "subscribe"
)

// EventSnapshot is the only streamed event type.
const EventSnapshot = "snapshot"

// Command is sent from a client to the server.
type Command struct {
	Cmd string `json:"cmd"`
}

// Response is returned by the server after processing a command.
type Response struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error,omitempty"`
	Session *Session `json:"session,omitempty"`
}

// Event is streamed to subscribed clients.
type Event struct {
	Event   string   `json:"event"`
	Session *Session `json:"session,omitempty"`
}

// Session is the wire form of a timer snapshot.
type Session struct {
	ID          string `json:"id"`
	Phase       string `json:"phase"`
	RemainingMs int64  `json:"remainingMs"`
	DurationMs  int64  `json:"durationMs"`
	Fact        string `json:"fact,omitempty"`
	Zone        string `json:"zone"`
	Overlay     bool   `json:"overlay"`
}

// SessionFromSnapshot converts a snapshot to its wire form.
func SessionFromSnapshot(s timer.Snapshot) *Session {
	return &Session{
		ID:          s.SessionID,
		Phase:       s.Phase.String(),
		RemainingMs: s.Remaining.Milliseconds(),
		DurationMs:  s.Duration.Milliseconds(),
		Fact:        s.Fact,
		Zone:        s.Zone.String(),
		Overlay:     s.Overlay,
	}
}

// Remaining returns the remaining time as a Duration.
func (s *Session) Remaining() time.Duration {
	return time.Duration(s.RemainingMs) * time.Millisecond
}
