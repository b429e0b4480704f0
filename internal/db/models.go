// Package db provides SQLite persistence for brushing session outcomes.
package db

import "time"

// Result values stored in brush_sessions.result.
const (
	ResultFinished  = "finished"
	ResultCancelled = "cancelled"
)

// BrushSession is one terminal timer session.
type BrushSession struct {
	ID        string
	Result    string
	Points    int
	Duration  time.Duration
	Remaining time.Duration
	Demo      bool
	StartedAt *time.Time
	EndedAt   time.Time
	CreatedAt time.Time
}

// Stats aggregates the whole ledger.
type Stats struct {
	Completed    int
	Cancelled    int
	TotalPoints  int
	LastFinished *time.Time
}
