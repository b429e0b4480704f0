package app

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/clock"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/db"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ledger"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

// nextSnapshot pulls the latest published snapshot into the model.
func nextSnapshot(t *testing.T, m Model, updates <-chan timer.Snapshot) (Model, tea.Cmd) {
	t.Helper()
	select {
	case snap := <-updates:
		return applyUpdate(m, SnapshotMsg{Snapshot: snap})
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
		return m, nil
	}
}

// TestLiveTUIFlow drives the model against a real engine, ledger and
// SQLite store through a whole session and then a cancelled one.
func TestLiveTUIFlow(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := db.Open(filepath.Join(t.TempDir(), "brushtimer.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	led := ledger.New(store, 10, log)

	fc := clock.NewFake(time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local))
	engine := timer.New(timer.WithClock(fc), timer.WithReporter(led), timer.WithLogger(log))
	defer engine.Close()

	updates, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	m := New(engine, updates, led, 10)
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = nextSnapshot(t, m, updates)
	m, _ = applyUpdate(m, loadStatsCmd(led)())
	t.Logf("=== Begin View ===\n%s", m.View())

	// Start
	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m, _ = applyUpdate(m, cmd())
	m, _ = nextSnapshot(t, m, updates)
	if m.snap.Phase != timer.Counting {
		t.Fatalf("phase = %s, want counting", m.snap.Phase)
	}

	fc.Advance(15 * time.Second)
	m, _ = nextSnapshot(t, m, updates)
	if m.snap.Remaining != 105*time.Second || m.snap.Zone != timer.Lower {
		t.Errorf("remaining=%v zone=%s", m.snap.Remaining, m.snap.Zone)
	}
	if !strings.Contains(m.View(), "1:45") {
		t.Errorf("counting view missing clock:\n%s", m.View())
	}
	t.Logf("=== Counting View ===\n%s", m.View())

	// Run to the end
	fc.Advance(105 * time.Second)
	m, cmd = nextSnapshot(t, m, updates)
	if m.snap.Phase != timer.Finished {
		t.Fatalf("phase = %s, want finished", m.snap.Phase)
	}
	if cmd == nil {
		t.Fatal("finish should reload stats")
	}
	m, _ = applyUpdate(m, loadStatsCmd(led)())
	if m.summary.TotalPoints != 10 || m.summary.Completed != 1 {
		t.Errorf("summary = %+v", m.summary)
	}
	view := m.View()
	if !strings.Contains(view, "+10 points") {
		t.Errorf("finish view:\n%s", view)
	}
	t.Logf("=== Finished View ===\n%s", view)

	// Reset, start and cancel
	m, cmd = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m, _ = applyUpdate(m, cmd())
	m, _ = nextSnapshot(t, m, updates)
	if m.snap.Phase != timer.Begin {
		t.Fatalf("phase = %s, want begin", m.snap.Phase)
	}

	m, cmd = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m, _ = applyUpdate(m, cmd())
	fc.Advance(5 * time.Second)
	m, cmd = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = applyUpdate(m, cmd())
	m, _ = nextSnapshot(t, m, updates)
	if m.snap.Phase != timer.Cancelled {
		t.Fatalf("phase = %s, want cancelled", m.snap.Phase)
	}
	m, _ = applyUpdate(m, loadStatsCmd(led)())
	if m.summary.Cancelled != 1 || m.summary.TotalPoints != 10 {
		t.Errorf("summary after cancel = %+v", m.summary)
	}
	t.Logf("=== Cancelled View ===\n%s", m.View())

	// A second cancel is rejected and shown as a transient error.
	m, cmd = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = applyUpdate(m, cmd())
	if !strings.Contains(m.errorMessage, "invalid transition") {
		t.Errorf("error = %q", m.errorMessage)
	}
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	newModel, cmd := m.Update(msg)
	return newModel.(Model), cmd
}
