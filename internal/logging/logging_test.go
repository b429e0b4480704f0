package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "brushtimer.log")

	logger, closeFn, err := Open(path, "debug")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.WithField("component", "timer").Debug("tick")
	logger.Info("session ended")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"component=timer", "msg=tick", `msg="session ended"`, "level=debug"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brushtimer.log")
	for _, msg := range []string{"first", "second"} {
		logger, closeFn, err := Open(path, "info")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		logger.Info(msg)
		closeFn()
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "msg=first") || !strings.Contains(string(data), "msg=second") {
		t.Errorf("log = %s", data)
	}
}

func TestOpenLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brushtimer.log")
	logger, closeFn, err := Open(path, "warn")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", logger.GetLevel())
	}
	logger.Info("hidden")
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("info line written at warn level")
	}
}

func TestOpenBadLevel(t *testing.T) {
	if _, _, err := Open("", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOpenEmptyPathDiscards(t *testing.T) {
	logger, closeFn, err := Open("", "info")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Info("nowhere")
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}
