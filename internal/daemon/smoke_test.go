package daemon

import (
	"fmt"
	"os"
	"testing"
)

// TestLiveControlSocket connects to a running brushtimer and queries status.
// Skipped if the control socket doesn't exist.
func TestLiveControlSocket(t *testing.T) {
	sockPath := DefaultSocketPath()
	if _, err := os.Stat(sockPath); os.IsNotExist(err) {
		t.Skip("brushtimer not running (no socket at", sockPath, ")")
	}

	client, err := Connect(sockPath)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	resp, err := client.SendCommand(Command{Cmd: CmdStatus})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !resp.OK {
		t.Fatalf("status not ok: %s", resp.Error)
	}
	fmt.Printf("Status: phase=%s remaining=%dms zone=%s\n",
		resp.Session.Phase, resp.Session.RemainingMs, resp.Session.Zone)
}
