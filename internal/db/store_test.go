package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// createTestStore creates an in-memory store with the ledger schema.
func createTestStore(t *testing.T) *Store {
	t.Helper()

	rawDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Each pooled connection would get its own in-memory database.
	rawDB.SetMaxOpenConns(1)

	store := &Store{db: rawDB}
	if err := store.migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })
	return store
}

func session(id, result string, points int, ended time.Time) BrushSession {
	started := ended.Add(-2 * time.Minute)
	return BrushSession{
		ID:        id,
		Result:    result,
		Points:    points,
		Duration:  2 * time.Minute,
		StartedAt: &started,
		EndedAt:   ended,
	}
}

func TestRecordAndStats(t *testing.T) {
	store := createTestStore(t)
	now := time.Now()

	for _, b := range []BrushSession{
		session("s-1", ResultFinished, 10, now.Add(-48*time.Hour)),
		session("s-2", ResultCancelled, 0, now.Add(-24*time.Hour)),
		session("s-3", ResultFinished, 10, now),
	} {
		if _, err := store.RecordSession(b); err != nil {
			t.Fatalf("RecordSession(%s): %v", b.ID, err)
		}
	}

	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Completed != 2 {
		t.Errorf("completed = %d, want 2", st.Completed)
	}
	if st.Cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", st.Cancelled)
	}
	if st.TotalPoints != 20 {
		t.Errorf("points = %d, want 20", st.TotalPoints)
	}
	if st.LastFinished == nil || st.LastFinished.Sub(now).Abs() > time.Millisecond {
		t.Errorf("lastFinished = %v, want ~%v", st.LastFinished, now)
	}
}

func TestStatsEmpty(t *testing.T) {
	store := createTestStore(t)

	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Completed != 0 || st.Cancelled != 0 || st.TotalPoints != 0 {
		t.Errorf("stats = %+v, want zero", st)
	}
	if st.LastFinished != nil {
		t.Errorf("lastFinished = %v, want nil", st.LastFinished)
	}
}

func TestRecordSessionIdempotent(t *testing.T) {
	store := createTestStore(t)
	b := session("s-1", ResultFinished, 10, time.Now())

	inserted, err := store.RecordSession(b)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	b.Points = 99
	inserted, err = store.RecordSession(b)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("duplicate session id should not insert")
	}

	st, _ := store.Stats()
	if st.TotalPoints != 10 {
		t.Errorf("points = %d, want 10 from first row", st.TotalPoints)
	}
}

func TestRecentSessions(t *testing.T) {
	store := createTestStore(t)
	now := time.Now()

	store.RecordSession(session("old", ResultFinished, 10, now.Add(-time.Hour)))
	store.RecordSession(session("mid", ResultCancelled, 0, now.Add(-time.Minute)))
	newest := session("new", ResultFinished, 10, now)
	newest.Demo = true
	newest.Remaining = 90 * time.Second
	store.RecordSession(newest)

	got, err := store.RecentSessions(2)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "mid" {
		t.Errorf("order = %s, %s; want new, mid", got[0].ID, got[1].ID)
	}
	if !got[0].Demo {
		t.Error("demo flag lost")
	}
	if got[0].Duration != 2*time.Minute || got[0].Remaining != 90*time.Second {
		t.Errorf("durations = %v/%v", got[0].Duration, got[0].Remaining)
	}
	if got[0].StartedAt == nil {
		t.Error("startedAt should be set")
	}
}

func TestRecordSessionWithoutStart(t *testing.T) {
	store := createTestStore(t)

	b := BrushSession{ID: "s-1", Result: ResultCancelled, Duration: 2 * time.Minute,
		Remaining: 2 * time.Minute, EndedAt: time.Now()}
	if _, err := store.RecordSession(b); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	got, err := store.RecentSessions(1)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(got) != 1 || got[0].StartedAt != nil {
		t.Errorf("got %+v, want one session with nil StartedAt", got)
	}
}

func TestFinishedTimes(t *testing.T) {
	store := createTestStore(t)
	now := time.Now()

	store.RecordSession(session("a", ResultFinished, 10, now.Add(-time.Hour)))
	store.RecordSession(session("b", ResultCancelled, 0, now.Add(-time.Minute)))
	store.RecordSession(session("c", ResultFinished, 10, now))

	got, err := store.FinishedTimes()
	if err != nil {
		t.Fatalf("FinishedTimes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
	if !got[0].After(got[1]) {
		t.Errorf("times not newest first: %v", got)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.sqlite")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.RecordSession(session("s-1", ResultFinished, 10, time.Now())); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	st, err := reopened.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Completed != 1 {
		t.Errorf("completed = %d after reopen, want 1", st.Completed)
	}
}
