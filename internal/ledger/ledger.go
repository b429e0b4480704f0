// Package ledger turns timer outcomes into points and streaks and persists
// them through the db store.
package ledger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/db"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"
)

// DefaultPointsPerSession is awarded for every finished session.
const DefaultPointsPerSession = 10

// Store is the persistence the ledger needs.
type Store interface {
	RecordSession(db.BrushSession) (bool, error)
	Stats() (db.Stats, error)
	FinishedTimes() ([]time.Time, error)
}

// Summary is the ledger as shown to the user.
type Summary struct {
	db.Stats
	CurrentStreak int
	BestStreak    int
}

// Ledger implements timer.OutcomeReporter.
type Ledger struct {
	store  Store
	points int
	log    *logrus.Entry
	now    func() time.Time
}

// New creates a Ledger awarding points for each finished session.
func New(store Store, points int, log logrus.FieldLogger) *Ledger {
	return &Ledger{
		store:  store,
		points: points,
		log:    log.WithField("component", "ledger"),
		now:    time.Now,
	}
}

// PointsFor returns the award for an outcome: per for a finish, zero otherwise.
func PointsFor(o timer.Outcome, per int) int {
	if o.Result == timer.ResultFinished {
		return per
	}
	return 0
}

// ReportOutcome records the session. A session ID seen before is ignored.
func (l *Ledger) ReportOutcome(o timer.Outcome) error {
	b := db.BrushSession{
		ID:        o.SessionID,
		Result:    string(o.Result),
		Points:    PointsFor(o, l.points),
		Duration:  o.Duration,
		Remaining: o.Remaining,
		Demo:      o.Demo,
		EndedAt:   o.EndedAt,
		CreatedAt: l.now(),
	}
	if !o.StartedAt.IsZero() {
		started := o.StartedAt
		b.StartedAt = &started
	}

	inserted, err := l.store.RecordSession(b)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	log := l.log.WithFields(logrus.Fields{
		"session": o.SessionID,
		"result":  o.Result,
		"points":  b.Points,
	})
	if !inserted {
		log.Warn("duplicate outcome ignored")
		return nil
	}
	log.Info("outcome recorded")
	return nil
}

// Summary returns totals and streaks.
func (l *Ledger) Summary() (Summary, error) {
	st, err := l.store.Stats()
	if err != nil {
		return Summary{}, fmt.Errorf("load stats: %w", err)
	}
	times, err := l.store.FinishedTimes()
	if err != nil {
		return Summary{}, fmt.Errorf("load finished times: %w", err)
	}
	cur, best := Streaks(times, l.now())
	return Summary{Stats: st, CurrentStreak: cur, BestStreak: best}, nil
}

// Streaks counts consecutive calendar days (in now's location) with at least
// one finished session. The current streak is still alive if the last
// session was yesterday.
func Streaks(times []time.Time, now time.Time) (current, best int) {
	loc := now.Location()
	days := make(map[int64]bool, len(times))
	for _, t := range times {
		days[dayNumber(t.In(loc))] = true
	}
	if len(days) == 0 {
		return 0, 0
	}

	for d := range days {
		if days[d-1] {
			continue
		}
		run := 1
		for days[d+int64(run)] {
			run++
		}
		best = max(best, run)
	}

	today := dayNumber(now)
	start := today
	if !days[today] {
		start = today - 1
	}
	for days[start-int64(current)] {
		current++
	}
	return current, best
}

// dayNumber maps a time to a day index in its own location.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
