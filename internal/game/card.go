package game

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Kind is the semantic part of a card. Suit is only meaningful for damage
// cards and Variant only for heal and percent-damage cards.
type Kind struct {
	Category Category
	Suit     Suit
	Variant  int
}

// DamageKind returns the kind of a damage card of the given suit.
func DamageKind(suit Suit) Kind {
	return Kind{Category: CategoryDamage, Suit: suit}
}

// HealKind returns the kind of the given heal variant (1..4).
func HealKind(variant int) Kind {
	return Kind{Category: CategoryHeal, Variant: variant}
}

// PercentDamageKind returns the kind of the given percent-damage variant (1..3).
func PercentDamageKind(variant int) Kind {
	return Kind{Category: CategoryPercentDamage, Variant: variant}
}

// Card is a single physical card. Two cards with the same kind and value are
// still different cards; ID is what selection and removal go by.
type Card struct {
	ID    uuid.UUID
	Kind  Kind
	Value int
}

// NewDamageCard creates a damage card with a fresh identity.
func NewDamageCard(suit Suit, value int) *Card {
	return &Card{ID: uuid.New(), Kind: DamageKind(suit), Value: value}
}

// NewHealCard creates a heal card; its value equals its variant.
func NewHealCard(variant int) *Card {
	return &Card{ID: uuid.New(), Kind: HealKind(variant), Value: variant}
}

// NewPercentDamageCard creates a percent-damage card; its value equals its variant.
func NewPercentDamageCard(variant int) *Card {
	return &Card{ID: uuid.New(), Kind: PercentDamageKind(variant), Value: variant}
}

// Name is the display and registry name, e.g. "Dots 7", "Heal 2", "Skill 3".
func (c *Card) Name() string {
	switch c.Kind.Category {
	case CategoryDamage:
		return fmt.Sprintf("%s %d", c.Kind.Suit, c.Value)
	case CategoryHeal:
		return fmt.Sprintf("Heal %d", c.Kind.Variant)
	case CategoryPercentDamage:
		return fmt.Sprintf("Skill %d", c.Kind.Variant)
	default:
		return "Unknown"
	}
}

func (c *Card) String() string {
	return c.Name()
}

// IsDamage reports whether the card belongs to the damage category.
func (c *Card) IsDamage() bool {
	return c.Kind.Category == CategoryDamage
}

// subKind is the suit for damage cards and the variant otherwise.
func (c *Card) subKind() int {
	if c.Kind.Category == CategoryDamage {
		return int(c.Kind.Suit)
	}
	return c.Kind.Variant
}

// Less is the fixed hand comparator: category, then suit or variant, then value.
func Less(a, b *Card) bool {
	if a.Kind.Category != b.Kind.Category {
		return a.Kind.Category < b.Kind.Category
	}
	if a.subKind() != b.subKind() {
		return a.subKind() < b.subKind()
	}
	return a.Value < b.Value
}

// SortCards orders cards in place by Less. The sort is stable so duplicates
// keep their relative order.
func SortCards(cards []*Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return Less(cards[i], cards[j])
	})
}

// CardNames returns the display names of the given cards.
func CardNames(cards []*Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name()
	}
	return names
}

// ContainsCard reports whether cards holds a card with the given identity.
func ContainsCard(cards []*Card, id uuid.UUID) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}
