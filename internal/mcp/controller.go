package mcp

import (
	"context"

	"github.com/peterkuimelis/versusbattle/internal/game"
	"github.com/peterkuimelis/versusbattle/internal/log"
	"github.com/peterkuimelis/versusbattle/internal/net"
)

// MCPController implements game.PlayerController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type MCPController struct {
	session    *GameSession
	responseCh chan game.Move
}

// NewMCPController creates a controller for the session's human side.
func NewMCPController(session *GameSession) *MCPController {
	return &MCPController{
		session:    session,
		responseCh: make(chan game.Move),
	}
}

// ChooseMove implements game.PlayerController.
func (c *MCPController) ChooseMove(ctx context.Context, snap *game.Snapshot) (game.Move, error) {
	pending := &PendingDecision{
		Type: DecisionChooseMove,
		snap: snap,
	}
	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return game.Move{}, ctx.Err()
	}

	select {
	case move := <-c.responseCh:
		return move, nil
	case <-ctx.Done():
		return game.Move{}, ctx.Err()
	}
}

// Notify implements game.PlayerController.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(*net.BuildEventView(event))
	return nil
}
