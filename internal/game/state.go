package game

import (
	"github.com/google/uuid"
)

// Combatant represents one side's entire state.
type Combatant struct {
	Health    int
	MaxHealth int
	Hand      []*Card
	sorted    bool // player hands are kept in comparator order
}

// HandCount returns the number of cards in hand.
func (c *Combatant) HandCount() int {
	return len(c.Hand)
}

// MissingHealth is how much a full heal would restore.
func (c *Combatant) MissingHealth() int {
	return c.MaxHealth - c.Health
}

// AddToHand appends cards and re-sorts when this hand is kept sorted.
func (c *Combatant) AddToHand(cards ...*Card) {
	c.Hand = append(c.Hand, cards...)
	if c.sorted {
		SortCards(c.Hand)
	}
}

// RemoveFromHand removes exactly the given cards by identity.
func (c *Combatant) RemoveFromHand(cards []*Card) {
	remove := make(map[uuid.UUID]bool, len(cards))
	for _, card := range cards {
		remove[card.ID] = true
	}
	kept := c.Hand[:0:0]
	for _, card := range c.Hand {
		if !remove[card.ID] {
			kept = append(kept, card)
		}
	}
	c.Hand = kept
}

// setHealth clamps to [0, MaxHealth] and returns the previous value.
func (c *Combatant) setHealth(hp int) int {
	old := c.Health
	switch {
	case hp < 0:
		hp = 0
	case hp > c.MaxHealth:
		hp = c.MaxHealth
	}
	c.Health = hp
	return old
}

func (c *Combatant) reset(health int) {
	c.Health = health
	c.MaxHealth = health
	c.Hand = nil
}

// --- MatchState ---

// MatchState holds the complete authoritative state of a match.
type MatchState struct {
	Mode   Mode
	Phase  Phase
	Active Side
	Turn   int // 1-based turn counter, bumped on every side switch

	Combatants [2]*Combatant
	Deck       []*Card // front of the slice is the top of the deck

	// Player-only staging of tentatively chosen cards.
	Selection map[uuid.UUID]bool

	LastCombination *Combination
	InvalidMove     bool

	Result    Result
	EndReason EndReason

	// Adventure only.
	Level     int
	BestLevel int
}

// NewMatchState creates a fresh state sitting in the menu.
func NewMatchState() *MatchState {
	return &MatchState{
		Mode:  ModeVersus,
		Phase: PhaseMenu,
		Combatants: [2]*Combatant{
			{Health: DefaultVersusHealth, MaxHealth: DefaultVersusHealth, sorted: true},
			{Health: DefaultVersusHealth, MaxHealth: DefaultVersusHealth},
		},
		Selection: make(map[uuid.UUID]bool),
		Level:     1,
		BestLevel: 1,
	}
}

// Side returns the Combatant for the given side.
func (s *MatchState) Side(side Side) *Combatant {
	return s.Combatants[side]
}

// Player returns the human side.
func (s *MatchState) Player() *Combatant {
	return s.Combatants[SidePlayer]
}

// Enemy returns the computer side.
func (s *MatchState) Enemy() *Combatant {
	return s.Combatants[SideEnemy]
}

// ActiveCombatant returns the Combatant whose turn it is.
func (s *MatchState) ActiveCombatant() *Combatant {
	return s.Combatants[s.Active]
}

// IsOver reports whether an end condition has fired.
func (s *MatchState) IsOver() bool {
	return s.Result != ResultOngoing
}

// SelectedCards returns the staged cards in hand order.
func (s *MatchState) SelectedCards() []*Card {
	var out []*Card
	for _, c := range s.Player().Hand {
		if s.Selection[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// clearRound wipes hands, deck and per-match flags ahead of a fresh deal.
func (s *MatchState) clearRound() {
	for _, c := range s.Combatants {
		c.Hand = nil
	}
	s.Deck = nil
	s.Selection = make(map[uuid.UUID]bool)
	s.LastCombination = nil
	s.InvalidMove = false
	s.Result = ResultOngoing
	s.EndReason = EndNone
	s.Turn = 1
}

// takeFromDeck removes count cards from the top of the deck. The caller
// makes sure the deck is long enough.
func (s *MatchState) takeFromDeck(count int) []*Card {
	dealt := make([]*Card, count)
	copy(dealt, s.Deck[:count])
	s.Deck = s.Deck[count:]
	return dealt
}
