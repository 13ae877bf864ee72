package game

import "github.com/google/uuid"

// CombatantSnapshot is a copied view of one side.
type CombatantSnapshot struct {
	Health    int
	MaxHealth int
	Hand      []*Card
}

// Snapshot is a read-only copy of the match state. Every slice and map is
// copied, but the cards are the engine's own: callers must not write through
// the *Card pointers in Player.Hand, Enemy.Hand or LastCombination.
type Snapshot struct {
	Mode   Mode
	Phase  Phase
	Active Side
	Turn   int

	Player CombatantSnapshot
	Enemy  CombatantSnapshot

	DeckCount       int
	Selected        []uuid.UUID // in hand order
	LastCombination *Combination
	InvalidMove     bool

	Result    Result
	EndReason EndReason
	Level     int
	BestLevel int
}

// Snapshot copies the current state for presentation.
func (m *Match) Snapshot() *Snapshot {
	return m.State.Snapshot()
}

// Snapshot copies the state for presentation.
func (s *MatchState) Snapshot() *Snapshot {
	snap := &Snapshot{
		Mode:        s.Mode,
		Phase:       s.Phase,
		Active:      s.Active,
		Turn:        s.Turn,
		Player:      snapshotCombatant(s.Player()),
		Enemy:       snapshotCombatant(s.Enemy()),
		DeckCount:   len(s.Deck),
		InvalidMove: s.InvalidMove,
		Result:      s.Result,
		EndReason:   s.EndReason,
		Level:       s.Level,
		BestLevel:   s.BestLevel,
	}
	for _, c := range s.SelectedCards() {
		snap.Selected = append(snap.Selected, c.ID)
	}
	if s.LastCombination != nil {
		last := Combination{
			Cards: append([]*Card(nil), s.LastCombination.Cards...),
			Shape: s.LastCombination.Shape,
		}
		snap.LastCombination = &last
	}
	return snap
}

func snapshotCombatant(c *Combatant) CombatantSnapshot {
	return CombatantSnapshot{
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
		Hand:      append([]*Card(nil), c.Hand...),
	}
}

// Side returns the snapshot of the given side.
func (s *Snapshot) Side(side Side) CombatantSnapshot {
	if side == SideEnemy {
		return s.Enemy
	}
	return s.Player
}

// IsPlayerTurn reports whether the human may act.
func (s *Snapshot) IsPlayerTurn() bool {
	return s.Phase == PhasePlaying && s.Active == SidePlayer
}

// IsSelected reports whether the card is staged.
func (s *Snapshot) IsSelected(id uuid.UUID) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// SuggestMove runs the opponent search on the player's hand as a hint.
func (s *Snapshot) SuggestMove() (Combination, bool) {
	state := &MatchState{
		Combatants: [2]*Combatant{
			{Health: s.Player.Health, MaxHealth: s.Player.MaxHealth, Hand: s.Player.Hand},
			{Health: s.Enemy.Health, MaxHealth: s.Enemy.MaxHealth, Hand: s.Enemy.Hand},
		},
	}
	return FindBestMove(state, SidePlayer)
}

// HandIndices maps cards to their positions in the player's hand. Cards not
// in the hand are skipped.
func (s *Snapshot) HandIndices(cards []*Card) []int {
	var indices []int
	for _, c := range cards {
		for i, h := range s.Player.Hand {
			if h.ID == c.ID {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}
