package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func TestBuildCardSet(t *testing.T) {
	set := BuildCardSet()
	if len(set) != DistinctCards {
		t.Fatalf("card set has %d cards, want %d", len(set), DistinctCards)
	}
	names := make(map[string]bool)
	for _, c := range set {
		if names[c.Name()] {
			t.Errorf("duplicate card %s", c)
		}
		names[c.Name()] = true
	}
	for _, want := range []string{"Dots 1", "Characters 9", "Bamboo 5", "Heal 4", "Skill 3"} {
		if !names[want] {
			t.Errorf("card set missing %s", want)
		}
	}
}

func TestBuildShuffledDeck(t *testing.T) {
	deck := BuildShuffledDeck(rand.New(rand.NewSource(7)))
	if len(deck) != FullDeckSize {
		t.Fatalf("deck has %d cards, want %d", len(deck), FullDeckSize)
	}

	ids := make(map[uuid.UUID]bool)
	counts := make(map[string]int)
	for _, c := range deck {
		if ids[c.ID] {
			t.Fatalf("duplicate identity %s", c.ID)
		}
		ids[c.ID] = true
		counts[c.Name()]++
	}
	for name, n := range counts {
		if n != CopiesPerCard {
			t.Errorf("%s: %d copies, want %d", name, n, CopiesPerCard)
		}
	}
	if len(counts) != DistinctCards {
		t.Errorf("%d distinct cards, want %d", len(counts), DistinctCards)
	}

	ordered := CardNames(BuildDeck())
	shuffled := CardNames(deck)
	same := true
	for i := range ordered {
		if ordered[i] != shuffled[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("shuffled deck is in build order")
	}
}

func TestSortCards(t *testing.T) {
	cards := LookupCards("Skill 1", "Heal 3", "Bamboo 2", "Dots 9", "Characters 1", "Dots 2", "Heal 1")
	SortCards(cards)
	want := []string{"Dots 2", "Dots 9", "Characters 1", "Bamboo 2", "Heal 1", "Heal 3", "Skill 1"}
	got := CardNames(cards)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", got, want)
		}
	}
}

func TestLookupCard(t *testing.T) {
	a := LookupCard("Dots 7")
	b := LookupCard("Dots 7")
	if a.ID == b.ID {
		t.Error("lookups should return distinct identities")
	}
	if a.Kind != b.Kind || a.Value != 7 || a.Kind.Suit != SuitDots {
		t.Errorf("unexpected card %+v", a)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown card")
		}
	}()
	LookupCard("Dots 10")
}

func TestRegistryNames(t *testing.T) {
	names := RegistryNames()
	if len(names) != DistinctCards {
		t.Fatalf("registry has %d names, want %d", len(names), DistinctCards)
	}
	if names[0] != "Dots 1" || names[len(names)-1] != "Skill 3" {
		t.Errorf("registry order: first %s, last %s", names[0], names[len(names)-1])
	}
}
