package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/peterkuimelis/versusbattle/internal/game"
	"github.com/peterkuimelis/versusbattle/internal/log"
)

// NetworkController implements game.PlayerController over a TCP connection.
type NetworkController struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	mu   sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn) *NetworkController {
	return &NetworkController{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// Send sends a message outside of a move prompt.
func (nc *NetworkController) Send(msg ServerMessage) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(msg)
}

// Recv reads the next client message outside of a move prompt.
func (nc *NetworkController) Recv() (ClientMessage, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.recv()
}

// ChooseMove implements game.PlayerController. Hints and malformed plays are
// answered in place; the prompt ends on a play or a skip.
func (nc *NetworkController) ChooseMove(ctx context.Context, snap *game.Snapshot) (game.Move, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if err := nc.send(ServerMessage{Type: MsgChooseMove, State: BuildStateView(snap)}); err != nil {
		return game.Move{}, fmt.Errorf("send choose_move: %w", err)
	}

	for {
		resp, err := nc.recv()
		if err != nil {
			return game.Move{}, fmt.Errorf("recv move: %w", err)
		}

		switch resp.Type {
		case MsgSkip:
			return game.Move{Skip: true}, nil

		case MsgPlay:
			cards, err := cardsAt(snap.Player.Hand, resp.Indices)
			if err == nil {
				return game.Move{Cards: cards}, nil
			}
			if err := nc.send(ServerMessage{Type: MsgError, Result: err.Error()}); err != nil {
				return game.Move{}, fmt.Errorf("send error: %w", err)
			}

		case MsgHint:
			var indices []int
			if combo, ok := snap.SuggestMove(); ok {
				indices = snap.HandIndices(combo.Cards)
			}
			if err := nc.send(ServerMessage{Type: MsgHint, Indices: indices}); err != nil {
				return game.Move{}, fmt.Errorf("send hint: %w", err)
			}

		default:
			msg := fmt.Sprintf("unexpected %q during your turn", resp.Type)
			if err := nc.send(ServerMessage{Type: MsgError, Result: msg}); err != nil {
				return game.Move{}, fmt.Errorf("send error: %w", err)
			}
		}
	}
}

// cardsAt maps hand positions to cards.
func cardsAt(hand []*game.Card, indices []int) ([]*game.Card, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("no cards chosen")
	}
	cards := make([]*game.Card, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(hand) {
			return nil, fmt.Errorf("card %d out of range (hand has %d)", idx+1, len(hand))
		}
		cards = append(cards, hand[idx])
	}
	return cards, nil
}

// SendGameOver sends a game_over message to the client.
func (nc *NetworkController) SendGameOver(snap *game.Snapshot) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgGameOver, State: BuildStateView(snap), Result: GameOverText(snap)})
}

// Notify implements game.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgNotify, Event: BuildEventView(event)})
}

// GameOverText is the end-of-match message shown to the player.
func GameOverText(snap *game.Snapshot) string {
	switch snap.Result {
	case game.ResultVictory:
		if snap.Mode == game.ModeAdventure {
			return fmt.Sprintf("Level %d complete! Ready for the next challenge?", snap.Level)
		}
		if snap.EndReason == game.EndTooManyCards {
			return "Victory! Your opponent accumulated too many cards (over 18) and lost!"
		}
		return "Victory! You've defeated your opponent in battle!"
	case game.ResultDefeat:
		if snap.EndReason == game.EndTooManyCards {
			return "Defeat! You accumulated too many cards (over 18). Play cards more often to avoid this!"
		}
		if snap.Mode == game.ModeAdventure {
			return fmt.Sprintf("Defeat at level %d (best: %d). Better luck next time!", snap.Level, snap.BestLevel)
		}
		return "Defeat. Better luck next time!"
	default:
		return ""
	}
}
