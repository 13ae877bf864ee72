package game

import "sort"

// Combination is a validated group of 1..4 cards. Only Evaluate builds one.
type Combination struct {
	Cards []*Card // sorted by Less
	Shape Shape
}

// Category is the category of the first card, which decides how the play is routed.
func (c Combination) Category() Category {
	if len(c.Cards) == 0 {
		return CategoryDamage
	}
	return c.Cards[0].Kind.Category
}

// Evaluate classifies cards as a legal combination. The second return value
// is false when the cards form no legal play.
func Evaluate(cards []*Card) (Combination, bool) {
	switch n := len(cards); {
	case n == 1:
		if !cards[0].IsDamage() {
			return Combination{}, false
		}
		return newCombination(cards, ShapeSingle), true
	case n < 1 || n > 4:
		return Combination{}, false
	}

	if shape, ok := sameGroupShape(cards); ok {
		return newCombination(cards, shape), true
	}
	if len(cards) == 3 && isSequence(cards) {
		return newCombination(cards, ShapeSequence), true
	}
	return Combination{}, false
}

func newCombination(cards []*Card, shape Shape) Combination {
	sorted := make([]*Card, len(cards))
	copy(sorted, cards)
	SortCards(sorted)
	return Combination{Cards: sorted, Shape: shape}
}

// groupKey identifies cards that may form pairs, triplets and quads together.
// Heal and percent-damage cards group by variant alone.
type groupKey struct {
	category Category
	sub      int
	value    int
}

func keyOf(c *Card) groupKey {
	k := groupKey{category: c.Kind.Category, sub: c.subKind()}
	if c.IsDamage() {
		k.value = c.Value
	}
	return k
}

func sameGroupShape(cards []*Card) (Shape, bool) {
	key := keyOf(cards[0])
	for _, c := range cards[1:] {
		if keyOf(c) != key {
			return 0, false
		}
	}
	switch len(cards) {
	case 2:
		return ShapePair, true
	case 3:
		return ShapeTriplet, true
	case 4:
		return ShapeQuad, true
	}
	return 0, false
}

func isSequence(cards []*Card) bool {
	values := make([]int, 0, len(cards))
	for _, c := range cards {
		if !c.IsDamage() || c.Kind.Suit != cards[0].Kind.Suit {
			return false
		}
		values = append(values, c.Value)
	}
	sort.Ints(values)
	return values[1] == values[0]+1 && values[2] == values[1]+1
}

// --- Scoring ---

func (c Combination) sum() int {
	total := 0
	for _, card := range c.Cards {
		total += card.Value
	}
	return total
}

// Damage is the flat damage of the combination.
func (c Combination) Damage() int {
	switch c.Shape {
	case ShapeSingle:
		if len(c.Cards) == 0 {
			return 0
		}
		return c.Cards[0].Value
	case ShapePair:
		return c.sum()
	case ShapeTriplet:
		if c.Category() == CategoryDamage {
			return c.sum() * 2
		}
		return c.sum()
	case ShapeSequence:
		return c.sum() * 2
	case ShapeQuad:
		return c.sum() * 3
	default:
		return 0
	}
}

// percentBasisPoints is the shared heal and percent-damage table in 1/10000
// of max health. Triplets double when their cards are of the boosted category.
func (c Combination) percentBasisPoints(boosted Category) int {
	switch c.Shape {
	case ShapePair:
		return 200
	case ShapeTriplet:
		if c.Category() == boosted {
			return 600
		}
		return 300
	case ShapeQuad:
		return 500
	default: // singles and sequences never heal or deal percent damage
		return 0
	}
}

// HealPercent is the fraction of the healer's max health restored.
func (c Combination) HealPercent() float64 {
	return float64(c.percentBasisPoints(CategoryHeal)) / 10000
}

// PercentDamagePercent is the fraction of the target's max health removed.
func (c Combination) PercentDamagePercent() float64 {
	return float64(c.percentBasisPoints(CategoryPercentDamage)) / 10000
}

// HealAmount is floor(maxHealth * HealPercent()).
func (c Combination) HealAmount(maxHealth int) int {
	return maxHealth * c.percentBasisPoints(CategoryHeal) / 10000
}

// PercentDamageAmount is floor(maxHealth * PercentDamagePercent()).
func (c Combination) PercentDamageAmount(maxHealth int) int {
	return maxHealth * c.percentBasisPoints(CategoryPercentDamage) / 10000
}
