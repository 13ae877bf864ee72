package game

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// CardRegistry maps card names to their constructor functions.
var CardRegistry = buildRegistry()

func buildRegistry() map[string]func() *Card {
	reg := make(map[string]func() *Card, DistinctCards)
	for _, proto := range BuildCardSet() {
		kind, value := proto.Kind, proto.Value
		reg[proto.Name()] = func() *Card {
			return &Card{ID: uuid.New(), Kind: kind, Value: value}
		}
	}
	return reg
}

// LookupCard looks up a card by name and returns a new instance.
// Panics if the card is not found.
func LookupCard(name string) *Card {
	ctor, ok := CardRegistry[name]
	if !ok {
		panic(fmt.Sprintf("card not found in registry: %q", name))
	}
	return ctor()
}

// LookupCards returns new instances for each name, in order.
func LookupCards(names ...string) []*Card {
	cards := make([]*Card, len(names))
	for i, name := range names {
		cards[i] = LookupCard(name)
	}
	return cards
}

// RegistryNames returns all registered card names in comparator order.
func RegistryNames() []string {
	cards := make([]*Card, 0, len(CardRegistry))
	for _, ctor := range CardRegistry {
		cards = append(cards, ctor())
	}
	sort.SliceStable(cards, func(i, j int) bool { return Less(cards[i], cards[j]) })
	return CardNames(cards)
}
