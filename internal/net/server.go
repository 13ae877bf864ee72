package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/peterkuimelis/versusbattle/internal/game"
	"github.com/peterkuimelis/versusbattle/internal/log"
)

// Server hosts matches for TCP clients. Every connection gets its own match
// against the computer; the level store is shared.
type Server struct {
	Port      string
	Store     game.LevelStore
	Logger    *slog.Logger
	RunConfig game.RunConfig
	Seed      int64 // 0 for random
}

// Run listens on Port and serves clients until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.logger().Info("waiting for players", "addr", ln.Addr().String())
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. It closes ln when ctx is done and waits for
// open sessions to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger := s.logger().With("remote", conn.RemoteAddr().String())
			logger.Info("player connected")
			if err := s.ServeConn(ctx, conn); err != nil {
				logger.Warn("session ended", "err", err)
				return
			}
			logger.Info("player left")
		}()
	}
}

// ServeConn runs one player session on conn: each join message starts (or
// continues) a match, which is played out before the next join is read.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger := s.logger().With("remote", conn.RemoteAddr().String())
	ctrl := NewNetworkController(conn)
	m := game.NewMatch(game.MatchConfig{
		Logger: log.NewSlogLogger(logger),
		Store:  s.Store,
		Seed:   s.Seed,
	})
	if err := m.LoadPersistedBestLevel(ctx); err != nil {
		logger.Warn("best level unavailable", "err", err)
	}

	for {
		msg, err := ctrl.Recv()
		if err != nil {
			if disconnected(ctx, err) {
				return nil
			}
			return fmt.Errorf("read join: %w", err)
		}
		if msg.Type != MsgJoin {
			if err := ctrl.Send(ServerMessage{Type: MsgError, Result: fmt.Sprintf("expected join, got %q", msg.Type)}); err != nil {
				return err
			}
			continue
		}
		if err := startMatch(m, msg); err != nil {
			if err := ctrl.Send(ServerMessage{Type: MsgError, Result: err.Error()}); err != nil {
				return err
			}
			continue
		}

		if err := m.Run(ctx, ctrl, s.RunConfig); err != nil {
			if disconnected(ctx, err) {
				logger.Info("player left mid-match", "turn", m.State.Turn)
				return nil
			}
			return fmt.Errorf("run match: %w", err)
		}
		if err := ctrl.SendGameOver(m.Snapshot()); err != nil {
			return fmt.Errorf("send game_over: %w", err)
		}
	}
}

// startMatch applies a join request. Joining the mode that just finished
// continues it; anything else starts over from the menu.
func startMatch(m *game.Match, join ClientMessage) error {
	health := join.Health
	if health == 0 {
		health = game.DefaultVersusHealth
	}

	gs := m.State
	if gs.Phase == game.PhaseGameOver && (join.Mode == "" || join.Mode == modeName(gs.Mode)) {
		if err := m.Continue(); err != nil {
			return err
		}
		if gs.Phase == game.PhaseHealthSelection {
			return m.StartVersus(health)
		}
		return nil
	}

	m.ReturnToMenu()
	switch join.Mode {
	case ModeAdventure:
		return m.StartAdventure()
	case ModeVersus, "":
		if err := m.SelectVersus(); err != nil {
			return err
		}
		return m.StartVersus(health)
	default:
		return fmt.Errorf("unknown mode %q", join.Mode)
	}
}

// disconnected reports whether err means the session is simply over.
func disconnected(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// PlayLocal runs a session over an in-memory pipe with the terminal client on
// the other end.
func (s *Server) PlayLocal(ctx context.Context, client *Client) error {
	serverConn, clientConn := net.Pipe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ServeConn(ctx, serverConn)
	}()

	client.conn = clientConn
	err := client.Run(ctx)
	clientConn.Close()
	cancel()
	if serr := <-errCh; err == nil {
		err = serr
	}
	return err
}
