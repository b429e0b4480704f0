// Package mcpserver exposes the brushing history to MCP clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/db"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ledger"
)

// Version is reported to MCP clients.
var Version = "dev"

const (
	defaultLimit = 10
	maxLimit     = 100
)

// SummarySource provides the points and streak totals.
type SummarySource interface {
	Summary() (ledger.Summary, error)
}

// SessionLister provides recorded sessions, newest first.
type SessionLister interface {
	RecentSessions(limit int) ([]db.BrushSession, error)
}

// New creates an MCP server with the brushing tools registered.
func New(summary SummarySource, sessions SessionLister) *server.MCPServer {
	s := server.NewMCPServer(
		"brushtimer",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	stats := &StatsTool{source: summary}
	s.AddTool(stats.Definition(), stats.Handle)

	recent := &RecentTool{lister: sessions}
	s.AddTool(recent.Definition(), recent.Handle)

	return s
}

// StatsTool reports totals for all recorded sessions.
type StatsTool struct {
	source SummarySource
}

type statsResult struct {
	Completed     int        `json:"completed"`
	Cancelled     int        `json:"cancelled"`
	TotalPoints   int        `json:"totalPoints"`
	CurrentStreak int        `json:"currentStreak"`
	BestStreak    int        `json:"bestStreak"`
	LastFinished  *time.Time `json:"lastFinished,omitempty"`
}

func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("brushing_stats",
		mcp.WithDescription("Completed and cancelled brushing sessions, total points and daily streaks."),
	)
}

func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := t.source.Summary()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load stats: %v", err)), nil
	}
	return jsonResult(statsResult{
		Completed:     sum.Completed,
		Cancelled:     sum.Cancelled,
		TotalPoints:   sum.TotalPoints,
		CurrentStreak: sum.CurrentStreak,
		BestStreak:    sum.BestStreak,
		LastFinished:  sum.LastFinished,
	})
}

// RecentTool lists the latest recorded sessions.
type RecentTool struct {
	lister SessionLister
}

type sessionResult struct {
	ID          string     `json:"id"`
	Result      string     `json:"result"`
	Points      int        `json:"points"`
	DurationSec float64    `json:"durationSec"`
	RemainSec   float64    `json:"remainingSec"`
	Demo        bool       `json:"demo,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     time.Time  `json:"endedAt"`
}

func (t *RecentTool) Definition() mcp.Tool {
	return mcp.NewTool("recent_sessions",
		mcp.WithDescription("Most recent brushing sessions, newest first."),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Number of sessions to return (default %d, max %d)", defaultLimit, maxLimit)),
		),
	)
}

func (t *RecentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}
	limit = min(limit, maxLimit)

	sessions, err := t.lister.RecentSessions(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load sessions: %v", err)), nil
	}

	out := make([]sessionResult, 0, len(sessions))
	for _, b := range sessions {
		out = append(out, sessionResult{
			ID:          b.ID,
			Result:      b.Result,
			Points:      b.Points,
			DurationSec: b.Duration.Seconds(),
			RemainSec:   b.Remaining.Seconds(),
			Demo:        b.Demo,
			StartedAt:   b.StartedAt,
			EndedAt:     b.EndedAt,
		})
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio runs s on stdin and stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
