package web

import (
	"fmt"

	"github.com/peterkuimelis/versusbattle/internal/game"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Suit     string       `json:"suit,omitempty"`
	Value    int          `json:"value"`
	Copies   int          `json:"copies"`
	Effects  []EffectInfo `json:"effects"`
}

// EffectInfo is what a same-card combination of the given shape does.
type EffectInfo struct {
	Shape  string `json:"shape"`
	Effect string `json:"effect"`
}

// buildCatalog lists every distinct card in deck order with the effect of
// playing it as a single, pair, triplet and quad.
func buildCatalog() []CardInfo {
	var cards []CardInfo
	for _, name := range game.RegistryNames() {
		c := game.LookupCard(name)
		ci := CardInfo{
			Name:     name,
			Category: c.Kind.Category.String(),
			Value:    c.Value,
			Copies:   game.CopiesPerCard,
		}
		if c.IsDamage() {
			ci.Suit = c.Kind.Suit.String()
		}
		for n := 1; n <= 4; n++ {
			names := make([]string, n)
			for i := range names {
				names[i] = name
			}
			combo, ok := game.Evaluate(game.LookupCards(names...))
			if !ok {
				continue
			}
			ci.Effects = append(ci.Effects, EffectInfo{Shape: combo.Shape.String(), Effect: describe(combo)})
		}
		cards = append(cards, ci)
	}
	return cards
}

func describe(combo game.Combination) string {
	switch combo.Category() {
	case game.CategoryHeal:
		return fmt.Sprintf("heal %.0f%% of your max health", combo.HealPercent()*100)
	case game.CategoryPercentDamage:
		return fmt.Sprintf("deal %.0f%% of the opponent's max health", combo.PercentDamagePercent()*100)
	default:
		return fmt.Sprintf("deal %d damage", combo.Damage())
	}
}
