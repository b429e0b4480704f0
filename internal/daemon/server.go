package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"
)

// ErrUnknownCommand is reported for a cmd the server does not recognize.
var ErrUnknownCommand = errors.New("unknown command")

// Controller is the part of the timer engine the server drives.
type Controller interface {
	Start() error
	Pause() error
	Cancel() error
	ResetSession()
	DemoFinish() error
	ToggleOverlay()
	Snapshot() timer.Snapshot
	Subscribe() (<-chan timer.Snapshot, func())
}

// Server accepts control connections for a single Controller.
type Server struct {
	ctl Controller
	log *logrus.Entry

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer creates a server for ctl.
func NewServer(ctl Controller, log logrus.FieldLogger) *Server {
	return &Server{
		ctl:   ctl,
		log:   log.WithField("component", "control"),
		conns: make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on a Unix socket at path, replacing a stale socket
// file, and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	defer os.Remove(path)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It closes ln and
// every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
		s.closeConns()
	}()

	s.log.WithField("addr", ln.Addr().String()).Info("control socket listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.closeConns()
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.track(conn)
		if ctx.Err() != nil {
			conn.Close()
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 64*1024)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		var cmd Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			if enc.Encode(Response{OK: false, Error: "invalid command: " + err.Error()}) != nil {
				return
			}
			continue
		}

		if cmd.Cmd == CmdSubscribe {
			s.stream(ctx, scanner, enc)
			return
		}

		if err := enc.Encode(s.dispatch(cmd)); err != nil {
			s.log.WithError(err).Debug("write response failed")
			return
		}
	}
}

// dispatch runs a single command and builds its response.
func (s *Server) dispatch(cmd Command) Response {
	var err error
	switch cmd.Cmd {
	case CmdStatus:
	case CmdStart:
		err = s.ctl.Start()
	case CmdPause:
		err = s.ctl.Pause()
	case CmdCancel:
		err = s.ctl.Cancel()
	case CmdReset:
		s.ctl.ResetSession()
	case CmdDemoFinish:
		err = s.ctl.DemoFinish()
	case CmdToggleOverlay:
		s.ctl.ToggleOverlay()
	default:
		err = fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Cmd)
	}

	resp := Response{OK: err == nil, Session: SessionFromSnapshot(s.ctl.Snapshot())}
	if err != nil {
		resp.Error = err.Error()
		s.log.WithError(err).WithField("cmd", cmd.Cmd).Debug("command failed")
	}
	return resp
}

// stream acknowledges a subscribe and forwards snapshots until the client
// hangs up, the engine closes or ctx is cancelled. Lines sent after
// subscribe are read and dropped so a hang-up is seen even while the engine
// is idle.
func (s *Server) stream(ctx context.Context, scanner *bufio.Scanner, enc *json.Encoder) {
	ch, unsubscribe := s.ctl.Subscribe()
	defer unsubscribe()

	hungUp := make(chan struct{})
	go func() {
		defer close(hungUp)
		for scanner.Scan() {
		}
	}()

	if err := enc.Encode(Response{OK: true}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-hungUp:
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(Event{Event: EventSnapshot, Session: SessionFromSnapshot(snap)}); err != nil {
				return
			}
		}
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	conn.Close()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
