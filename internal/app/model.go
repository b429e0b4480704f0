package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ledger"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Engine is the part of the timer engine the TUI drives.
type Engine interface {
	Start() error
	Pause() error
	Cancel() error
	ResetSession()
	DemoFinish() error
	ToggleOverlay()
	Snapshot() timer.Snapshot
	DemoEnabled() bool
}

// StatsLoader provides the ledger summary shown on the begin and finish
// screens.
type StatsLoader interface {
	Summary() (ledger.Summary, error)
}

// Model is the root bubbletea model for the brushtimer TUI.
type Model struct {
	engine  Engine
	updates <-chan timer.Snapshot
	stats   StatsLoader
	points  int
	queue   *commandQueue

	// Engine state
	snap   timer.Snapshot
	closed bool

	// Ledger
	summary  ledger.Summary
	statsErr string

	// UI state
	width  int
	height int

	// Errors
	errorMessage   string
	errorTransient bool
}

// New creates a Model showing the engine's current session. updates is the
// engine subscription; points is the award shown on the finish screen.
func New(engine Engine, updates <-chan timer.Snapshot, stats StatsLoader, points int) Model {
	return Model{
		engine:  engine,
		updates: updates,
		stats:   stats,
		points:  points,
		queue:   newCommandQueue(),
		snap:    engine.Snapshot(),
	}
}

// Init starts waiting for snapshots and loads the ledger.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitSnapshotCmd(m.updates), loadStatsCmd(m.stats))
}

// waitSnapshotCmd blocks until the engine publishes the next snapshot.
func waitSnapshotCmd(updates <-chan timer.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return SubscriptionClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// loadStatsCmd reads the ledger summary.
func loadStatsCmd(stats StatsLoader) tea.Cmd {
	return func() tea.Msg {
		sum, err := stats.Summary()
		return StatsLoadedMsg{Summary: sum, Err: err}
	}
}

// commandQueue runs engine commands on one worker, in key press order, off
// the update loop. Outcome reporting can touch the database.
type commandQueue struct {
	mu      sync.Mutex
	reqs    chan commandRequest
	stopped bool
}

type commandRequest struct {
	name  string
	fn    func() error
	reply chan CommandResultMsg
}

func newCommandQueue() *commandQueue {
	q := &commandQueue{reqs: make(chan commandRequest, 16)}
	go func() {
		for r := range q.reqs {
			r.reply <- CommandResultMsg{Cmd: r.name, Err: r.fn()}
		}
	}()
	return q
}

// submit enqueues fn immediately and returns a command that waits for its
// result. It returns nil once the queue is stopped.
func (q *commandQueue) submit(name string, fn func() error) tea.Cmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil
	}
	reply := make(chan CommandResultMsg, 1)
	q.reqs <- commandRequest{name: name, fn: fn, reply: reply}
	return func() tea.Msg {
		return <-reply
	}
}

// stop ends the worker once queued commands have run.
func (q *commandQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.stopped {
		q.stopped = true
		close(q.reqs)
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SnapshotMsg:
		prev := m.snap
		m.snap = msg.Snapshot
		next := waitSnapshotCmd(m.updates)
		// The outcome is recorded before the terminal snapshot is published.
		if m.snap.Phase.Terminal() && (!prev.Phase.Terminal() || prev.SessionID != m.snap.SessionID) {
			return m, tea.Batch(next, loadStatsCmd(m.stats))
		}
		return m, next

	case SubscriptionClosedMsg:
		m.closed = true
		return m, nil

	case CommandResultMsg:
		if msg.Err != nil {
			m.errorMessage = fmt.Sprintf("%s: %v", msg.Cmd, msg.Err)
			m.errorTransient = true
			return m, clearTransientErrorCmd()
		}
		return m, nil

	case StatsLoadedMsg:
		if msg.Err != nil {
			m.statsErr = msg.Err.Error()
			return m, nil
		}
		m.summary = msg.Summary
		m.statsErr = ""
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		m.queue.stop()
		return m, tea.Quit

	case KeySpace:
		if m.closed {
			return m, nil
		}
		switch m.snap.Phase {
		case timer.Begin, timer.Paused:
			return m, m.queue.submit("start", m.engine.Start)
		case timer.Counting, timer.Resumed:
			return m, m.queue.submit("pause", m.engine.Pause)
		}
		return m, nil

	case KeyCancel, KeyCancelUpper:
		if m.closed {
			return m, nil
		}
		return m, m.queue.submit("cancel", m.engine.Cancel)

	case KeyReset, KeyResetUpper:
		if m.closed {
			return m, nil
		}
		return m, m.queue.submit("reset", func() error {
			m.engine.ResetSession()
			return nil
		})

	case KeyOverlay:
		if m.closed {
			return m, nil
		}
		return m, m.queue.submit("overlay", func() error {
			m.engine.ToggleOverlay()
			return nil
		})

	case KeyDemoFinish:
		if m.closed || !m.engine.DemoEnabled() {
			return m, nil
		}
		return m, m.queue.submit("finish", m.engine.DemoFinish)
	}

	return m, nil
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch m.snap.Phase {
	case timer.Begin:
		sections = append(sections, m.renderBegin())
	case timer.Cancelled:
		sections = append(sections, m.renderCancelled())
	case timer.Finished:
		sections = append(sections, m.renderFinished())
	default:
		sections = append(sections, m.renderCounting())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("BRUSHTIMER")
	phase := m.snap.Phase.String()
	badge := ui.PhaseBadge(phase).Render(" " + strings.ToUpper(phase))

	var demo string
	if m.engine.DemoEnabled() {
		demo = ui.DemoBadgeStyle.Render(" [DEMO]")
	}

	var closed string
	if m.closed {
		closed = ui.DimStyle.Render(" (stopped)")
	}
	return title + badge + demo + closed
}

func (m Model) renderBegin() string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  Brush for "+formatClock(m.snap.Duration)+".")
	lines = append(lines, ui.DimStyle.Render("  Start on your upper teeth, switch every 10 seconds,"))
	lines = append(lines, ui.DimStyle.Render("  and finish on your tongue."))
	lines = append(lines, "")
	lines = append(lines, "  "+m.renderTotals())
	lines = append(lines, "")
	lines = append(lines, ui.DimStyle.Render("  Press Space to start brushing"))
	return strings.Join(lines, "\n")
}

func (m Model) renderCounting() string {
	var lines []string
	lines = append(lines, "")

	style := ui.CountdownStyle
	switch {
	case m.snap.Phase == timer.Paused:
		style = ui.CountdownPausedStyle
	case m.snap.Remaining <= timer.TongueThreshold:
		style = ui.CountdownFinalStyle
	}
	clock := style.Render(formatClock(m.snap.Remaining))
	if m.snap.Phase == timer.Paused {
		clock += ui.CountdownPausedStyle.Render("  PAUSED")
	}
	lines = append(lines, "  "+clock)
	lines = append(lines, "  "+renderProgressBar(m.snap.Progress(), m.progressWidth()))
	lines = append(lines, "")
	lines = append(lines, "  "+renderZones(m.snap.Zone))

	if m.snap.Overlay {
		lines = append(lines, "")
		for _, l := range toothOverlay(m.snap.Zone) {
			lines = append(lines, "  "+l)
		}
	}

	lines = append(lines, "")
	for _, wl := range wrapText(m.snap.Fact, max(10, m.width-4)) {
		lines = append(lines, "  "+ui.FactStyle.Render(wl))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCancelled() string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  "+ui.CancelledStyle.Render("Session cancelled."))
	lines = append(lines, ui.DimStyle.Render("  No points this time."))
	lines = append(lines, "")
	lines = append(lines, "  "+m.renderTotals())
	lines = append(lines, "")
	lines = append(lines, ui.DimStyle.Render("  Press r to try again"))
	return strings.Join(lines, "\n")
}

func (m Model) renderFinished() string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  "+ui.PointsStyle.Render("All done!"))
	lines = append(lines, "  "+ui.PointsStyle.Render(fmt.Sprintf("+%d points", m.points)))
	lines = append(lines, "")
	lines = append(lines, "  "+m.renderTotals())
	lines = append(lines, "")
	lines = append(lines, ui.DimStyle.Render("  Press r for a new session"))
	return strings.Join(lines, "\n")
}

func (m Model) renderTotals() string {
	if m.statsErr != "" {
		return ui.ErrorTextStyle.Render("Stats unavailable: " + m.statsErr)
	}
	s := m.summary
	return fmt.Sprintf("Points: %s  Streak: %s  Sessions: %d",
		ui.PointsStyle.Render(fmt.Sprint(s.TotalPoints)),
		ui.PointsStyle.Render(pluralDays(s.CurrentStreak)),
		s.Completed)
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	var parts []string
	key := func(k, desc string) {
		parts = append(parts, ui.FooterKeyStyle.Render(k)+ui.FooterDescStyle.Render(" "+desc))
	}

	if !m.closed {
		switch m.snap.Phase {
		case timer.Begin:
			key("Space", "Start")
			key("o", "Overlay")
		case timer.Counting, timer.Resumed:
			key("Space", "Pause")
			key("c", "Cancel")
			key("o", "Overlay")
			if m.engine.DemoEnabled() {
				key("f", "Finish")
			}
		case timer.Paused:
			key("Space", "Resume")
			key("c", "Cancel")
			key("r", "Reset")
			key("o", "Overlay")
		default:
			key("r", "Reset")
		}
	}

	key("q", "Quit")

	return strings.Join(parts, "  ")
}

func (m Model) progressWidth() int {
	if m.width == 0 {
		return 40
	}
	return min(40, max(10, m.width-10))
}

func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	filled = min(max(filled, 0), width)
	bar := ui.ProgressFilledStyle.Render(strings.Repeat("█", filled)) +
		ui.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return bar + ui.DimStyle.Render(fmt.Sprintf(" %3d%%", int(progress*100)))
}

func renderZones(active timer.BrushZone) string {
	var parts []string
	for _, z := range []timer.BrushZone{timer.Upper, timer.Lower, timer.Tongue} {
		label := strings.ToUpper(z.String())
		if z == active {
			parts = append(parts, ui.ZoneActiveStyle.Render("▸ "+label))
		} else {
			parts = append(parts, ui.ZoneIdleStyle.Render("  "+label))
		}
	}
	return strings.Join(parts, "  ")
}

// toothOverlay draws a small mouth diagram with the active zone lit.
func toothOverlay(active timer.BrushZone) []string {
	rows := []struct {
		zone timer.BrushZone
		text string
	}{
		{timer.Upper, "╭─┬─┬─┬─┬─┬─╮"},
		{timer.Upper, "│ │ │ │ │ │ │"},
		{timer.Upper, "╰─┴─┴─┴─┴─┴─╯"},
		{timer.Tongue, "  \\_______/  "},
		{timer.Lower, "╭─┬─┬─┬─┬─┬─╮"},
		{timer.Lower, "│ │ │ │ │ │ │"},
		{timer.Lower, "╰─┴─┴─┴─┴─┴─╯"},
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		style := ui.ZoneIdleStyle
		if r.zone == active {
			style = ui.OverlayStyle
		}
		lines = append(lines, style.Render(r.text))
	}
	return lines
}

// Helpers

func formatClock(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
