package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peterkuimelis/versusbattle/internal/log"
)

// PlayerController is implemented by every human-side surface: the terminal
// client over TCP, the MCP agent bridge and scripted tests.
type PlayerController interface {
	// ChooseMove is called on each of the player's turns and blocks until
	// the player decides.
	ChooseMove(ctx context.Context, snap *Snapshot) (Move, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// Move is the player's decision for one turn.
type Move struct {
	Skip  bool
	Cards []*Card
}

// RunConfig tunes the caller loop.
type RunConfig struct {
	ThinkDelay time.Duration // pause before each computer move
	MaxTurns   int           // stop after this many turns (0 = no limit)
}

// Run drives a started match until it ends: the human is asked for each
// player move, the computer answers after ThinkDelay, and every event is
// forwarded to human.Notify. Invalid plays are reported and asked again.
func (m *Match) Run(ctx context.Context, human PlayerController, cfg RunConfig) error {
	switch m.State.Phase {
	case PhasePlaying:
	case PhaseGameOver:
		return nil
	default:
		return fmt.Errorf("run from %s: %w", m.State.Phase, ErrNotPlaying)
	}

	m.ctx = ctx
	m.observer = func(event log.GameEvent) {
		_ = human.Notify(ctx, event)
	}
	defer func() {
		m.ctx = context.Background()
		m.observer = nil
	}()

	turns := 0
	for m.State.Phase == PhasePlaying {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cfg.MaxTurns > 0 && turns >= cfg.MaxTurns {
			return ErrTurnLimit
		}

		var (
			res TurnResult
			err error
		)
		if m.State.Active == SidePlayer {
			res, err = m.playerTurn(ctx, human)
		} else {
			res, err = m.enemyTurn(ctx, cfg.ThinkDelay)
		}
		if err != nil {
			return err
		}
		if res.Valid {
			turns++
		}
	}
	return nil
}

func (m *Match) playerTurn(ctx context.Context, human PlayerController) (TurnResult, error) {
	move, err := human.ChooseMove(ctx, m.Snapshot())
	if err != nil {
		return TurnResult{}, fmt.Errorf("choose move: %w", err)
	}
	m.ClearInvalidMove()

	if move.Skip {
		return m.SkipTurn()
	}
	res, err := m.PlayCards(move.Cards)
	if errors.Is(err, ErrCardNotInHand) {
		m.State.InvalidMove = true
		m.log(log.NewInvalidPlayEvent(m.State.Turn, m.State.Phase.String(), int(SidePlayer), CardNames(move.Cards)))
		return res, nil
	}
	return res, err
}

func (m *Match) enemyTurn(ctx context.Context, delay time.Duration) (TurnResult, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return TurnResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	return m.PlayEnemyTurn()
}
