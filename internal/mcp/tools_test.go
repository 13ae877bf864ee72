package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/peterkuimelis/versusbattle/internal/game"
)

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestTools(t *testing.T) *Tools {
	t.Helper()
	tools := NewTools(Options{Store: game.NewMemoryLevelStore(), Seed: 42, MaxTurns: 5000})
	t.Cleanup(tools.Close)
	return tools
}

// call invokes a handler and decodes its JSON response. Tool errors are
// returned as the message with a nil response.
func call(t *testing.T, h handler, args map[string]any) (*ToolResponse, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	if res.IsError {
		return nil, text.Text
	}
	var resp ToolResponse
	if err := json.Unmarshal([]byte(text.Text), &resp); err != nil {
		t.Fatalf("decode %q: %v", text.Text, err)
	}
	return &resp, ""
}

func mustCall(t *testing.T, h handler, args map[string]any) *ToolResponse {
	t.Helper()
	resp, msg := call(t, h, args)
	if resp == nil {
		t.Fatalf("tool error: %s", msg)
	}
	return resp
}

// playOut follows the suggested move every turn until the match ends.
func playOut(t *testing.T, tools *Tools, resp *ToolResponse) *ToolResponse {
	t.Helper()
	for i := 0; i < 5000 && !resp.GameOver; i++ {
		if resp.Pending != DecisionChooseMove || !resp.State.IsYourTurn {
			t.Fatalf("pending = %q, your turn = %v", resp.Pending, resp.State.IsYourTurn)
		}
		hint := mustCall(t, tools.handleSuggestMove, nil).Hint
		if len(hint.Indices) == 0 {
			resp = mustCall(t, tools.handleSkipTurn, nil)
			continue
		}
		var parts []string
		for _, idx := range hint.Indices {
			parts = append(parts, strconv.Itoa(idx))
		}
		resp = mustCall(t, tools.handlePlayCards, map[string]any{"indices": strings.Join(parts, " ")})
		if resp.State.InvalidMove {
			t.Fatalf("suggested move %v was rejected", hint.Cards)
		}
	}
	if !resp.GameOver {
		t.Fatal("match did not finish")
	}
	return resp
}

func TestStartVersusAndPlayOut(t *testing.T) {
	tools := newTestTools(t)

	resp := mustCall(t, tools.handleStartVersus, map[string]any{"health": 500})
	if resp.State.Mode != "versus" || resp.State.Opponent.MaxHP != 500 {
		t.Fatalf("state = %+v", resp.State)
	}
	if len(resp.State.You.Hand) < game.InitialHandSize {
		t.Errorf("hand has %d cards", len(resp.State.You.Hand))
	}

	final := playOut(t, tools, resp)
	if final.Result == "" || final.State.Phase != game.PhaseGameOver.String() {
		t.Errorf("final = %+v", final)
	}
	if _, msg := call(t, tools.handleSkipTurn, nil); msg == "" {
		t.Error("skip after game over should fail")
	}

	next := mustCall(t, tools.handleContinueGame, nil)
	if next.GameOver || next.State.You.MaxHP != 500 {
		t.Errorf("continue should start another 500 HP match, got %+v", next.State)
	}
}

func TestToggleAndPlaySelected(t *testing.T) {
	tools := newTestTools(t)
	resp := mustCall(t, tools.handleStartVersus, nil)
	if resp.State.You.MaxHP != game.DefaultVersusHealth {
		t.Errorf("max hp = %d", resp.State.You.MaxHP)
	}

	resp = mustCall(t, tools.handleToggleCard, map[string]any{"index": 0})
	if !resp.State.You.Hand[0].Selected {
		t.Fatal("card 0 should be selected")
	}
	resp = mustCall(t, tools.handleToggleCard, map[string]any{"index": 0})
	if resp.State.You.Hand[0].Selected {
		t.Fatal("card 0 should be deselected")
	}
	if _, msg := call(t, tools.handlePlaySelected, nil); !strings.Contains(msg, "No cards selected") {
		t.Errorf("msg = %q", msg)
	}

	hint := mustCall(t, tools.handleSuggestMove, nil).Hint
	if len(hint.Indices) == 0 {
		t.Skip("opening hand has no valid combination")
	}
	for _, idx := range hint.Indices {
		mustCall(t, tools.handleToggleCard, map[string]any{"index": idx})
	}
	handBefore := len(resp.State.You.Hand)
	resp = mustCall(t, tools.handlePlaySelected, nil)
	if resp.State.InvalidMove {
		t.Fatal("suggested selection was rejected")
	}
	if !resp.GameOver && len(resp.State.You.Hand) > handBefore-len(hint.Indices)+1 {
		t.Errorf("hand %d after playing %d of %d", len(resp.State.You.Hand), len(hint.Indices), handBefore)
	}
	if len(resp.Events) == 0 {
		t.Error("expected events from the play and the opponent's turn")
	}
}

func TestStartAdventure(t *testing.T) {
	tools := newTestTools(t)
	resp := mustCall(t, tools.handleStartAdventure, nil)
	if resp.State.Mode != "adventure" || resp.State.Level != 1 || resp.State.You.MaxHP != game.AdventurePlayerHealth {
		t.Errorf("state = %+v", resp.State)
	}
	if resp.State.Opponent.MaxHP != game.EnemyHealthForLevel(1) {
		t.Errorf("enemy max hp = %d", resp.State.Opponent.MaxHP)
	}
}

func TestToolErrors(t *testing.T) {
	tools := newTestTools(t)

	if _, msg := call(t, tools.handleGetGameState, nil); msg == "" {
		t.Error("get_game_state before start should fail")
	}
	if _, msg := call(t, tools.handlePlayCards, map[string]any{"indices": "0"}); msg == "" {
		t.Error("play before start should fail")
	}
	if _, msg := call(t, tools.handleStartVersus, map[string]any{"health": 100}); !strings.Contains(msg, "outside") {
		t.Errorf("bad health: %q", msg)
	}

	mustCall(t, tools.handleStartVersus, nil)
	if _, msg := call(t, tools.handleStartAdventure, nil); !strings.Contains(msg, "already running") {
		t.Errorf("second start: %q", msg)
	}
	if _, msg := call(t, tools.handleContinueGame, nil); msg == "" {
		t.Error("continue during a match should fail")
	}
	if _, msg := call(t, tools.handleToggleCard, map[string]any{"index": 99}); !strings.Contains(msg, "Invalid index") {
		t.Errorf("toggle 99: %q", msg)
	}
	for _, bad := range []string{"x", "99", ""} {
		if _, msg := call(t, tools.handlePlayCards, map[string]any{"indices": bad}); msg == "" {
			t.Errorf("play %q should fail", bad)
		}
	}

	state := mustCall(t, tools.handleGetGameState, nil)
	if state.Pending != DecisionChooseMove || state.GameOver {
		t.Errorf("state after errors = %+v", state)
	}
}
