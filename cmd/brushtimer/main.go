// Command brushtimer runs a two-minute toothbrushing timer in the terminal.
//
//	brushtimer [flags]            run the timer TUI
//	brushtimer [flags] ctl <cmd>  send a command to a running timer
//	brushtimer [flags] mcp        serve brushing history over MCP stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/app"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/audio"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/config"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/daemon"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/db"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/facts"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ledger"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/logging"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/mcpserver"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "brushtimer:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("brushtimer", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath(), "path to config file")
	demo := fs.Bool("demo", false, "enable the demo finish key")
	noSound := fs.Bool("no-sound", false, "disable the completion chime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *demo {
		cfg.DemoFinish = true
	}
	if *noSound {
		cfg.Sound = false
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return runTUI(cfg)
	}
	switch rest[0] {
	case "ctl":
		return runCtl(cfg, rest[1:], stdout)
	case "mcp":
		return runMCP(cfg)
	default:
		return fmt.Errorf("unknown subcommand %q", rest[0])
	}
}

func runTUI(cfg config.Config) error {
	log, closeLog, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	led := ledger.New(store, cfg.PointsPerSession, log)

	provider, err := loadFacts(cfg.FactsPath)
	if err != nil {
		return err
	}

	chime := audio.NewChime(cfg.Sound, cfg.Volume, log)
	chime.Initialize()
	defer chime.Cleanup()

	engine := timer.New(
		timer.WithDuration(cfg.Duration),
		timer.WithTick(cfg.Tick),
		timer.WithDemoFinish(cfg.DemoFinish),
		timer.WithFacts(provider),
		timer.WithNotifier(chime),
		timer.WithReporter(led),
		timer.WithLogger(log),
	)
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan struct{})
	go func() {
		defer close(served)
		srv := daemon.NewServer(engine, log)
		if err := srv.ListenAndServe(ctx, cfg.SocketPath); err != nil {
			log.WithError(err).Warn("control socket stopped")
		}
	}()

	updates, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	log.WithFields(logrus.Fields{
		"duration": cfg.Duration,
		"demo":     cfg.DemoFinish,
		"sound":    !chime.Silent(),
	}).Info("brushtimer started")

	model := app.New(engine, updates, led, cfg.PointsPerSession)
	_, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()

	cancel()
	<-served
	if runErr != nil {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}

func loadFacts(path string) (*facts.Provider, error) {
	list := append([]string(nil), facts.Default...)
	if path != "" {
		extra, err := facts.LoadFile(path)
		if err != nil {
			return nil, err
		}
		list = append(list, extra...)
	}
	return facts.New(list), nil
}

func runCtl(cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: brushtimer ctl <status|start|pause|cancel|reset|demo_finish|toggle_overlay|subscribe>")
	}

	client, err := daemon.Connect(cfg.SocketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.SendCommand(daemon.Command{Cmd: args[0]})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if args[0] != daemon.CmdSubscribe || !resp.OK {
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("%s: %s", args[0], resp.Error)
		}
		return nil
	}

	for {
		ev, err := client.ReadEvent()
		if err != nil {
			if errors.Is(err, daemon.ErrConnectionClosed) {
				return nil
			}
			return err
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
}

func runMCP(cfg config.Config) error {
	// Stdout carries the protocol, so logs never go there.
	log, closeLog, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	led := ledger.New(store, cfg.PointsPerSession, log)
	log.WithField("component", "mcp").Info("serving MCP on stdio")
	return mcpserver.ServeStdio(mcpserver.New(led, store))
}
