package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/peterkuimelis/versusbattle/internal/game"
	"github.com/peterkuimelis/versusbattle/internal/log"
	vbnet "github.com/peterkuimelis/versusbattle/internal/net"
)

// DecisionType identifies what kind of decision the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseMove DecisionType = "choose_move"
	DecisionGameOver   DecisionType = "game_over"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type   DecisionType
	Result string // game over only

	snap *game.Snapshot // state the decision was asked on
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []vbnet.EventView `json:"events"`
	State    *vbnet.StateView  `json:"state,omitempty"`
	Pending  DecisionType      `json:"pending,omitempty"`
	Hint     *HintView         `json:"hint,omitempty"`
	GameOver bool              `json:"game_over"`
	Result   string            `json:"result,omitempty"`
}

// HintView is a suggested play. Empty indices mean skip.
type HintView struct {
	Indices []int    `json:"indices"`
	Cards   []string `json:"cards"`
	Shape   string   `json:"shape,omitempty"`
}

// Options configures new sessions.
type Options struct {
	Store      game.LevelStore
	Logger     *slog.Logger
	Seed       int64
	ThinkDelay time.Duration
	MaxTurns   int
}

// GameSession holds one match played by the agent on the human side. The
// match is reused across games so adventure progress and the best level
// survive between them.
type GameSession struct {
	match *game.Match
	ctrl  *MCPController
	run   game.RunConfig

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision
	running        bool
	cancel         context.CancelFunc

	mu     sync.Mutex
	events []vbnet.EventView
}

// NewGameSession creates a session sitting in the menu.
func NewGameSession(opts Options) *GameSession {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sess := &GameSession{
		match: game.NewMatch(game.MatchConfig{
			Logger: log.NewSlogLogger(logger),
			Store:  opts.Store,
			Seed:   opts.Seed,
		}),
		run:       game.RunConfig{ThinkDelay: opts.ThinkDelay, MaxTurns: opts.MaxTurns},
		pendingCh: make(chan *PendingDecision, 1),
	}
	sess.ctrl = NewMCPController(sess)
	if err := sess.match.LoadPersistedBestLevel(context.Background()); err != nil {
		logger.Warn("best level unavailable", "err", err)
	}
	return sess
}

// Running reports whether a match is in progress.
func (s *GameSession) Running() bool {
	return s.running
}

// start launches the match loop after a phase operation has put the match
// into play, then waits for the first decision.
func (s *GameSession) start(ctx context.Context) (*ToolResponse, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.currentPending = nil

	go func() {
		err := s.match.Run(runCtx, s.ctrl, s.run)
		snap := s.match.Snapshot()
		pending := &PendingDecision{
			Type:   DecisionGameOver,
			Result: vbnet.GameOverText(snap),
			snap:   snap,
		}
		if err != nil {
			pending.Result = fmt.Sprintf("error: %v", err)
		}
		s.pendingCh <- pending
	}()

	return s.waitForPending(ctx)
}

// Close stops a running match.
func (s *GameSession) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// respond hands the agent's move to the engine and waits for the next decision.
func (s *GameSession) respond(ctx context.Context, move game.Move) (*ToolResponse, error) {
	select {
	case s.ctrl.responseCh <- move:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.currentPending = nil
	return s.waitForPending(ctx)
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev vbnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []vbnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []vbnet.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the game engine,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.accept(pending)
	return s.response(), nil
}

func (s *GameSession) accept(pending *PendingDecision) {
	s.currentPending = pending
	if pending.Type == DecisionGameOver {
		s.running = false
		s.cancel()
	}
}

// poll picks up a decision that arrived after an abandoned wait.
func (s *GameSession) poll() {
	if !s.running || s.currentPending != nil {
		return
	}
	select {
	case pending := <-s.pendingCh:
		s.accept(pending)
	default:
	}
}

// response describes the current decision along with any new events. Only
// valid while the engine is blocked on the agent or finished.
func (s *GameSession) response() *ToolResponse {
	s.poll()
	resp := &ToolResponse{Events: s.drainEvents()}
	pending := s.currentPending
	if pending == nil {
		if !s.running {
			resp.State = vbnet.BuildStateView(s.match.Snapshot())
		}
		return resp
	}
	resp.Pending = pending.Type
	resp.State = vbnet.BuildStateView(s.match.Snapshot())
	if pending.Type == DecisionGameOver {
		resp.GameOver = true
		resp.Result = pending.Result
		resp.Pending = ""
	}
	return resp
}

// awaitingMove returns the open move prompt, or an error message for the agent.
func (s *GameSession) awaitingMove() (*PendingDecision, string) {
	s.poll()
	if !s.running {
		return nil, "No match is running. Use start_versus or start_adventure first."
	}
	if s.currentPending == nil || s.currentPending.Type != DecisionChooseMove {
		return nil, "Not your turn."
	}
	return s.currentPending, ""
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
