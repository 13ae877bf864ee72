package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/peterkuimelis/versusbattle/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of moves.
// Used in tests to deterministically drive the runner.
type ScriptedController struct {
	t     *testing.T
	name  string
	moves []ScriptedMove
	pos   int

	// Snapshots seen on each ChooseMove call.
	seen   []*Snapshot
	events []log.GameEvent
}

// ScriptedMove picks cards by name from the current hand, or skips.
type ScriptedMove struct {
	Skip  bool
	Names []string
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddPlay(names ...string) *ScriptedController {
	sc.moves = append(sc.moves, ScriptedMove{Names: names})
	return sc
}

func (sc *ScriptedController) AddSkip() *ScriptedController {
	sc.moves = append(sc.moves, ScriptedMove{Skip: true})
	return sc
}

func (sc *ScriptedController) ChooseMove(ctx context.Context, snap *Snapshot) (Move, error) {
	sc.seen = append(sc.seen, snap)
	if sc.pos >= len(sc.moves) {
		// Default: play the hinted move, otherwise skip.
		if combo, ok := snap.SuggestMove(); ok {
			return Move{Cards: combo.Cards}, nil
		}
		return Move{Skip: true}, nil
	}

	scripted := sc.moves[sc.pos]
	sc.pos++
	if scripted.Skip {
		return Move{Skip: true}, nil
	}

	cards, err := pickByName(snap.Player.Hand, scripted.Names)
	if err != nil {
		return Move{}, fmt.Errorf("[%s] %w", sc.name, err)
	}
	return Move{Cards: cards}, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	sc.events = append(sc.events, event)
	return nil
}

// pickByName picks distinct cards from hand matching names, in order.
func pickByName(hand []*Card, names []string) ([]*Card, error) {
	used := make(map[*Card]bool)
	var out []*Card
	for _, name := range names {
		found := false
		for _, c := range hand {
			if !used[c] && c.Name() == name {
				used[c] = true
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("card %q not in hand %v", name, CardNames(hand))
		}
	}
	return out, nil
}

// mustPick is pickByName for tests that rig the hand themselves.
func mustPick(t *testing.T, hand []*Card, names ...string) []*Card {
	t.Helper()
	cards, err := pickByName(hand, names)
	if err != nil {
		t.Fatal(err)
	}
	return cards
}

// newTestMatch returns a match in the menu with a memory logger and a fixed seed.
func newTestMatch(t *testing.T) (*Match, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	return NewMatch(MatchConfig{Logger: logger, Seed: 42}), logger
}

// riggedVersus starts a versus match and replaces both hands, the active
// side and the deck with known contents. The deck is unshuffled, so the
// next card dealt is always "Dots 1".
func riggedVersus(t *testing.T, health int, active Side, playerHand, enemyHand []string) (*Match, *log.MemoryLogger) {
	t.Helper()
	m, logger := newTestMatch(t)
	if err := m.SelectVersus(); err != nil {
		t.Fatalf("SelectVersus: %v", err)
	}
	if err := m.StartVersus(health); err != nil {
		t.Fatalf("StartVersus: %v", err)
	}
	rig(m, active, playerHand, enemyHand)
	return m, logger
}

// riggedAdventure is riggedVersus for an adventure run at level 1.
func riggedAdventure(t *testing.T, active Side, playerHand, enemyHand []string) (*Match, *log.MemoryLogger) {
	t.Helper()
	m, logger := newTestMatch(t)
	if err := m.StartAdventure(); err != nil {
		t.Fatalf("StartAdventure: %v", err)
	}
	rig(m, active, playerHand, enemyHand)
	return m, logger
}

func rig(m *Match, active Side, playerHand, enemyHand []string) {
	gs := m.State
	gs.Player().Hand = LookupCards(playerHand...)
	SortCards(gs.Player().Hand)
	gs.Enemy().Hand = LookupCards(enemyHand...)
	gs.Active = active
	gs.Deck = BuildDeck()
	gs.Selection = make(map[uuid.UUID]bool)
}

// repeat returns n copies of name.
func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

// runToCompletion runs the match with the given controller and returns the logger for inspection.
func runToCompletion(t *testing.T, m *Match, logger *log.MemoryLogger, human PlayerController, maxTurns int) error {
	t.Helper()
	err := m.Run(context.Background(), human, RunConfig{MaxTurns: maxTurns})
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	return err
}
