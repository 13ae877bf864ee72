package mcp

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/versusbattle/internal/game"
)

// Tools owns the single game session of a stdio process and serves the
// game tools. Calls are serialized.
type Tools struct {
	opts Options

	mu      sync.Mutex
	session *GameSession
}

// NewTools creates the tool set; the session is created on first use.
func NewTools(opts Options) *Tools {
	return &Tools{opts: opts}
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer, t *Tools) {
	s.AddTool(startVersusTool(), t.handleStartVersus)
	s.AddTool(startAdventureTool(), t.handleStartAdventure)
	s.AddTool(continueGameTool(), t.handleContinueGame)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
	s.AddTool(toggleCardTool(), t.handleToggleCard)
	s.AddTool(playSelectedTool(), t.handlePlaySelected)
	s.AddTool(playCardsTool(), t.handlePlayCards)
	s.AddTool(skipTurnTool(), t.handleSkipTurn)
	s.AddTool(suggestMoveTool(), t.handleSuggestMove)
}

// Close stops any running match.
func (t *Tools) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		t.session.Close()
	}
}

func (t *Tools) sessionLocked() *GameSession {
	if t.session == nil {
		t.session = NewGameSession(t.opts)
	}
	return t.session
}

// --- Tool definitions ---

func startVersusTool() mcp.Tool {
	return mcp.NewTool("start_versus",
		mcp.WithDescription("Start a versus match against the computer. Both sides start at the chosen health. "+
			"You play the human side: form combinations from your hand (single, pair, triplet, or a run of three "+
			"consecutive numbers in one suit). Returns the state when it is your turn."),
		mcp.WithNumber("health", mcp.Description("Starting health for both sides, 500-2500 (default 1000)")),
	)
}

func startAdventureTool() mcp.Tool {
	return mcp.NewTool("start_adventure",
		mcp.WithDescription("Start an adventure run at level 1: you have 1000 health, the enemy 500 plus 200 per level. "+
			"Defeating an enemy advances the level and keeps your health."),
	)
}

func continueGameTool() mcp.Tool {
	return mcp.NewTool("continue_game",
		mcp.WithDescription("After a match ends: play another versus match, retry the adventure after a defeat, "+
			"or go on to the next level after an adventure victory."),
		mcp.WithNumber("health", mcp.Description("Starting health for a new versus match (defaults to the previous one)")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

func toggleCardTool() mcp.Tool {
	return mcp.NewTool("toggle_card",
		mcp.WithDescription("Select or deselect a card in your hand. Use play_selected to play the selection."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the card in your hand")),
	)
}

func playSelectedTool() mcp.Tool {
	return mcp.NewTool("play_selected",
		mcp.WithDescription("Play the currently selected cards as one combination. Invalid combinations keep your turn open."),
	)
}

func playCardsTool() mcp.Tool {
	return mcp.NewTool("play_cards",
		mcp.WithDescription("Play cards from your hand as one combination. Invalid combinations keep your turn open."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based hand indices (e.g. '0 2 3')")),
	)
}

func skipTurnTool() mcp.Tool {
	return mcp.NewTool("skip_turn",
		mcp.WithDescription("Pass without playing. Your hand grows by one card; holding more than 18 cards loses the match."),
	)
}

func suggestMoveTool() mcp.Tool {
	return mcp.NewTool("suggest_move",
		mcp.WithDescription("Ask for the play the computer opponent would make with your hand. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartVersus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.sessionLocked()
	if sess.Running() {
		return mcp.NewToolResultError("A match is already running. Finish it first."), nil
	}

	health := request.GetInt("health", game.DefaultVersusHealth)
	m := sess.match
	m.ReturnToMenu()
	if err := m.SelectVersus(); err != nil {
		return mcp.NewToolResultErrorf("Cannot start versus: %v", err), nil
	}
	if err := m.StartVersus(health); err != nil {
		return mcp.NewToolResultErrorf("Cannot start versus: %v", err), nil
	}
	return t.startLocked(ctx, sess)
}

func (t *Tools) handleStartAdventure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.sessionLocked()
	if sess.Running() {
		return mcp.NewToolResultError("A match is already running. Finish it first."), nil
	}

	m := sess.match
	m.ReturnToMenu()
	if err := m.StartAdventure(); err != nil {
		return mcp.NewToolResultErrorf("Cannot start adventure: %v", err), nil
	}
	return t.startLocked(ctx, sess)
}

func (t *Tools) handleContinueGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.session
	if sess == nil || sess.Running() || sess.match.State.Phase != game.PhaseGameOver {
		return mcp.NewToolResultError("No finished match to continue."), nil
	}

	m := sess.match
	health := request.GetInt("health", m.State.Player().MaxHealth)
	if err := m.Continue(); err != nil {
		return mcp.NewToolResultErrorf("Cannot continue: %v", err), nil
	}
	if m.State.Phase == game.PhaseHealthSelection {
		if err := m.StartVersus(health); err != nil {
			return mcp.NewToolResultErrorf("Cannot start versus: %v", err), nil
		}
	}
	return t.startLocked(ctx, sess)
}

func (t *Tools) startLocked(ctx context.Context, sess *GameSession) (*mcp.CallToolResult, error) {
	resp, err := sess.start(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return mcp.NewToolResultError("No game is running. Use start_versus or start_adventure first."), nil
	}
	return mcp.NewToolResultText(respondJSON(t.session.response())), nil
}

func (t *Tools) handleToggleCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, pending, errResult := t.moveLocked()
	if errResult != nil {
		return errResult, nil
	}

	hand := pending.snap.Player.Hand
	index := request.GetInt("index", -1)
	if index < 0 || index >= len(hand) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(hand)-1), nil
	}
	if _, err := sess.match.ToggleSelection(hand[index].ID); err != nil {
		return mcp.NewToolResultErrorf("Cannot select card: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.response())), nil
}

func (t *Tools) handlePlaySelected(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, _, errResult := t.moveLocked()
	if errResult != nil {
		return errResult, nil
	}

	cards := sess.match.SelectedCards()
	if len(cards) == 0 {
		return mcp.NewToolResultError("No cards selected. Use toggle_card first."), nil
	}
	return t.respondLocked(ctx, sess, game.Move{Cards: cards})
}

func (t *Tools) handlePlayCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, pending, errResult := t.moveLocked()
	if errResult != nil {
		return errResult, nil
	}

	hand := pending.snap.Player.Hand
	var cards []*game.Card
	for _, p := range strings.Fields(request.GetString("indices", "")) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		if idx < 0 || idx >= len(hand) {
			return mcp.NewToolResultErrorf("Index %d out of range. Must be 0-%d.", idx, len(hand)-1), nil
		}
		cards = append(cards, hand[idx])
	}
	if len(cards) == 0 {
		return mcp.NewToolResultError("No cards given. Use skip_turn to pass."), nil
	}
	return t.respondLocked(ctx, sess, game.Move{Cards: cards})
}

func (t *Tools) handleSkipTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, _, errResult := t.moveLocked()
	if errResult != nil {
		return errResult, nil
	}
	return t.respondLocked(ctx, sess, game.Move{Skip: true})
}

func (t *Tools) handleSuggestMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, pending, errResult := t.moveLocked()
	if errResult != nil {
		return errResult, nil
	}

	hint := &HintView{Indices: []int{}, Cards: []string{}}
	if combo, ok := pending.snap.SuggestMove(); ok {
		hint.Indices = pending.snap.HandIndices(combo.Cards)
		hint.Cards = game.CardNames(combo.Cards)
		hint.Shape = combo.Shape.String()
	}
	resp := sess.response()
	resp.Hint = hint
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// moveLocked checks that the engine is waiting for the agent's move.
func (t *Tools) moveLocked() (*GameSession, *PendingDecision, *mcp.CallToolResult) {
	if t.session == nil {
		return nil, nil, mcp.NewToolResultError("No game is running. Use start_versus or start_adventure first.")
	}
	pending, msg := t.session.awaitingMove()
	if pending == nil {
		return nil, nil, mcp.NewToolResultError(msg)
	}
	return t.session, pending, nil
}

func (t *Tools) respondLocked(ctx context.Context, sess *GameSession, move game.Move) (*mcp.CallToolResult, error) {
	resp, err := sess.respond(ctx, move)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
