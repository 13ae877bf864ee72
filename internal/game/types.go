package game

import (
	"errors"

	"github.com/peterkuimelis/versusbattle/internal/log"
)

// --- Enums ---

// Side identifies one of the two combatants.
type Side int

const (
	SidePlayer Side = log.SidePlayer
	SideEnemy  Side = log.SideEnemy
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

func (s Side) String() string {
	return log.SideName(int(s))
}

type Mode int

const (
	ModeVersus Mode = iota
	ModeAdventure
)

func (m Mode) String() string {
	if m == ModeAdventure {
		return "Adventure"
	}
	return "Versus"
}

type Phase int

const (
	PhaseMenu Phase = iota
	PhaseHealthSelection
	PhasePlaying
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "Menu"
	case PhaseHealthSelection:
		return "Health Selection"
	case PhasePlaying:
		return "Playing"
	case PhaseGameOver:
		return "Game Over"
	default:
		return "None"
	}
}

type Result int

const (
	ResultOngoing Result = iota
	ResultVictory
	ResultDefeat
)

func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "Victory"
	case ResultDefeat:
		return "Defeat"
	default:
		return "Ongoing"
	}
}

type EndReason int

const (
	EndNone EndReason = iota
	EndHealthDepleted
	EndTooManyCards
)

func (r EndReason) String() string {
	switch r {
	case EndHealthDepleted:
		return "health depleted"
	case EndTooManyCards:
		return "too many cards"
	default:
		return "none"
	}
}

// Category is the top-level card kind; it decides which stat a play affects.
type Category int

const (
	CategoryDamage Category = iota
	CategoryHeal
	CategoryPercentDamage
)

func (c Category) String() string {
	switch c {
	case CategoryDamage:
		return "Damage"
	case CategoryHeal:
		return "Heal"
	case CategoryPercentDamage:
		return "PercentDamage"
	default:
		return "Unknown"
	}
}

// Suit is one of the three parallel damage suits.
type Suit int

const (
	SuitDots Suit = iota
	SuitCharacters
	SuitBamboo
)

// Suits lists the damage suits in comparator order.
var Suits = []Suit{SuitDots, SuitCharacters, SuitBamboo}

func (s Suit) String() string {
	switch s {
	case SuitDots:
		return "Dots"
	case SuitCharacters:
		return "Characters"
	case SuitBamboo:
		return "Bamboo"
	default:
		return "?"
	}
}

// Shape is the combinatorial pattern of a play.
type Shape int

const (
	ShapeSingle Shape = iota
	ShapePair
	ShapeTriplet
	ShapeQuad
	ShapeSequence
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "Single"
	case ShapePair:
		return "Pair"
	case ShapeTriplet:
		return "Triplet"
	case ShapeQuad:
		return "Quad"
	case ShapeSequence:
		return "Sequence"
	default:
		return "Unknown"
	}
}

// --- Rules constants ---

const (
	InitialHandSize = 8
	MaxHandSize     = 18

	MinVersusHealth     = 500
	MaxVersusHealth     = 2500
	VersusHealthStep    = 100
	DefaultVersusHealth = 1000

	AdventurePlayerHealth = 1000
	AdventureBaseHealth   = 500
	AdventureHealthStep   = 200
)

// HealthPresets are the quick picks offered on the health selection screen.
var HealthPresets = []int{500, 1000, 1500, 2500}

// --- Errors ---

var (
	ErrMatchOver         = errors.New("match is over")
	ErrNotPlaying        = errors.New("match is not in progress")
	ErrNotYourTurn       = errors.New("not this side's turn")
	ErrCardNotInHand     = errors.New("card not in acting hand")
	ErrInvalidHealth     = errors.New("invalid starting health")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrTurnLimit         = errors.New("turn limit reached")
)
