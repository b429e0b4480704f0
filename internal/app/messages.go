package app

import (
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ledger"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"
)

// SnapshotMsg carries a snapshot published by the engine.
type SnapshotMsg struct {
	Snapshot timer.Snapshot
}

// SubscriptionClosedMsg is sent when the engine stops publishing.
type SubscriptionClosedMsg struct{}

// CommandResultMsg carries the result of a command run against the engine.
type CommandResultMsg struct {
	Cmd string
	Err error
}

// StatsLoadedMsg carries the ledger summary.
type StatsLoadedMsg struct {
	Summary ledger.Summary
	Err     error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
