package game

import "math/rand"

const (
	// CopiesPerCard is how many physical copies of each distinct card a full deck holds.
	CopiesPerCard = 4

	// DistinctCards is the size of the card set: 27 damage, 4 heal, 3 percent-damage.
	DistinctCards = 3*9 + 4 + 3

	// FullDeckSize is the size of a freshly built deck.
	FullDeckSize = CopiesPerCard * DistinctCards

	healVariants          = 4
	percentDamageVariants = 3
)

// BuildCardSet returns exactly one card of each of the 34 distinct kind/value
// combinations, in comparator order.
func BuildCardSet() []*Card {
	cards := make([]*Card, 0, DistinctCards)
	for _, suit := range Suits {
		for value := 1; value <= 9; value++ {
			cards = append(cards, NewDamageCard(suit, value))
		}
	}
	for v := 1; v <= healVariants; v++ {
		cards = append(cards, NewHealCard(v))
	}
	for v := 1; v <= percentDamageVariants; v++ {
		cards = append(cards, NewPercentDamageCard(v))
	}
	return cards
}

// BuildDeck returns an unshuffled full deck: CopiesPerCard passes over the card set.
func BuildDeck() []*Card {
	deck := make([]*Card, 0, FullDeckSize)
	for i := 0; i < CopiesPerCard; i++ {
		deck = append(deck, BuildCardSet()...)
	}
	return deck
}

// BuildShuffledDeck returns a full deck in uniformly random order.
func BuildShuffledDeck(rng *rand.Rand) []*Card {
	deck := BuildDeck()
	ShuffleDeck(rng, deck)
	return deck
}

// ShuffleDeck randomizes the deck order in place.
func ShuffleDeck(rng *rand.Rand, deck []*Card) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
