package game

// FindBestMove searches every subset of one to four cards in the side's hand
// and returns the highest scoring legal combination. Singles are tried
// first, then each pair followed by its triples and each triple by its quads.
// Only a strictly higher score replaces the current best, so the first
// candidate found wins ties.
func FindBestMove(state *MatchState, side Side) (Combination, bool) {
	hand := state.Side(side).Hand
	s := searcher{state: state, side: side, bestScore: -1}

	for i := range hand {
		s.try(hand[i])
	}
	for i := 0; i < len(hand); i++ {
		for j := i + 1; j < len(hand); j++ {
			s.try(hand[i], hand[j])
			for k := j + 1; k < len(hand); k++ {
				s.try(hand[i], hand[j], hand[k])
				for l := k + 1; l < len(hand); l++ {
					s.try(hand[i], hand[j], hand[k], hand[l])
				}
			}
		}
	}
	return s.best, s.found
}

type searcher struct {
	state     *MatchState
	side      Side
	best      Combination
	bestScore int
	found     bool
}

func (s *searcher) try(cards ...*Card) {
	combo, ok := Evaluate(cards)
	if !ok {
		return
	}
	if score := ScoreMove(s.state, s.side, combo); score > s.bestScore {
		s.best = combo
		s.bestScore = score
		s.found = true
	}
}

// ScoreMove is the search heuristic: damage dealt, health actually restored
// (capped at what is missing) or percent damage against the opponent's max.
func ScoreMove(state *MatchState, side Side, combo Combination) int {
	switch combo.Category() {
	case CategoryHeal:
		self := state.Side(side)
		return min(combo.HealAmount(self.MaxHealth), self.MissingHealth())
	case CategoryPercentDamage:
		return combo.PercentDamageAmount(state.Side(side.Opponent()).MaxHealth)
	default:
		return combo.Damage()
	}
}
