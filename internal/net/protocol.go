package net

import (
	"github.com/peterkuimelis/versusbattle/internal/game"
	"github.com/peterkuimelis/versusbattle/internal/log"
)

// Message types for the JSON protocol over TCP.
const (
	MsgJoin = "join"
	MsgPlay = "play"
	MsgSkip = "skip"
	MsgHint = "hint"

	MsgNotify     = "notify"
	MsgChooseMove = "choose_move"
	MsgError      = "error"
	MsgGameOver   = "game_over"
)

// Join modes.
const (
	ModeVersus    = "versus"
	ModeAdventure = "adventure"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_move" and "game_over"
	State *StateView `json:"state,omitempty"`

	// For "hint": hand positions of the suggested play (empty means skip)
	Indices []int `json:"indices,omitempty"`

	// For "error" and "game_over"
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Turn    int      `json:"turn"`
	Phase   string   `json:"phase"`
	Side    string   `json:"side"`
	Type    string   `json:"type"`
	Cards   []string `json:"cards,omitempty"`
	Amount  int      `json:"amount,omitempty"`
	Details string   `json:"details"`
}

// CardView is one card in the player's hand.
type CardView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Selected bool   `json:"selected,omitempty"`
}

// SideView shows one combatant.
type SideView struct {
	HP        int        `json:"hp"`
	MaxHP     int        `json:"max_hp"`
	HandCount int        `json:"hand_count"`
	Hand      []CardView `json:"hand,omitempty"` // only for "you"
}

// PlayView is the last combination played.
type PlayView struct {
	Shape string   `json:"shape"`
	Cards []string `json:"cards"`
}

// StateView is the match from the human player's perspective.
type StateView struct {
	Mode        string    `json:"mode"`
	Phase       string    `json:"phase"`
	Turn        int       `json:"turn"`
	IsYourTurn  bool      `json:"is_your_turn"`
	You         SideView  `json:"you"`
	Opponent    SideView  `json:"opponent"`
	DeckCount   int       `json:"deck_count"`
	LastPlay    *PlayView `json:"last_play,omitempty"`
	InvalidMove bool      `json:"invalid_move,omitempty"`
	Result      string    `json:"result"`
	EndReason   string    `json:"end_reason,omitempty"`
	Level       int       `json:"level,omitempty"`
	BestLevel   int       `json:"best_level,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join"
	Mode   string `json:"mode,omitempty"`
	Health int    `json:"health,omitempty"`

	// For "play": 0-based hand positions
	Indices []int `json:"indices,omitempty"`
}

// BuildStateView creates a StateView from a snapshot. The enemy hand is
// reduced to a count.
func BuildStateView(snap *game.Snapshot) *StateView {
	sv := &StateView{
		Mode:        modeName(snap.Mode),
		Phase:       snap.Phase.String(),
		Turn:        snap.Turn,
		IsYourTurn:  snap.IsPlayerTurn(),
		DeckCount:   snap.DeckCount,
		InvalidMove: snap.InvalidMove,
		Result:      snap.Result.String(),
	}
	if snap.EndReason != game.EndNone {
		sv.EndReason = snap.EndReason.String()
	}
	if snap.Mode == game.ModeAdventure {
		sv.Level = snap.Level
		sv.BestLevel = snap.BestLevel
	}

	sv.You = SideView{
		HP:        snap.Player.Health,
		MaxHP:     snap.Player.MaxHealth,
		HandCount: len(snap.Player.Hand),
	}
	for i, c := range snap.Player.Hand {
		sv.You.Hand = append(sv.You.Hand, CardView{
			Index:    i,
			Name:     c.Name(),
			Category: c.Kind.Category.String(),
			Selected: snap.IsSelected(c.ID),
		})
	}
	sv.Opponent = SideView{
		HP:        snap.Enemy.Health,
		MaxHP:     snap.Enemy.MaxHealth,
		HandCount: len(snap.Enemy.Hand),
	}

	if last := snap.LastCombination; last != nil {
		sv.LastPlay = &PlayView{Shape: last.Shape.String(), Cards: game.CardNames(last.Cards)}
	}
	return sv
}

// BuildEventView converts a game event for the wire.
func BuildEventView(event log.GameEvent) *EventView {
	return &EventView{
		Turn:    event.Turn,
		Phase:   event.Phase,
		Side:    log.SideName(event.Side),
		Type:    event.Type.String(),
		Cards:   event.Cards,
		Amount:  event.Amount,
		Details: event.Details,
	}
}

func modeName(m game.Mode) string {
	if m == game.ModeAdventure {
		return ModeAdventure
	}
	return ModeVersus
}
