package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/versusbattle/internal/log"
)

// MatchConfig holds configuration for creating a new match.
type MatchConfig struct {
	Logger log.EventLogger
	Store  LevelStore // best-level persistence (nil for in-memory)
	Seed   int64      // RNG seed (0 for random)
}

// Match owns the authoritative MatchState and is the single entry point for
// every mutation. A Match must not be used from more than one goroutine at a time.
type Match struct {
	State    *MatchState
	Logger   log.EventLogger
	progress *Progression
	rng      *rand.Rand
	ctx      context.Context
	observer func(log.GameEvent)
}

// NewMatch creates a match sitting in the menu.
func NewMatch(cfg MatchConfig) *Match {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryLevelStore()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Match{
		State:    NewMatchState(),
		Logger:   logger,
		progress: NewProgression(store),
		rng:      rand.New(rand.NewSource(seed)),
		ctx:      context.Background(),
	}
}

// Effect describes the health change a play caused.
type Effect struct {
	Category     Category
	Target       Side
	Amount       int // computed amount before clamping
	HealthBefore int
	HealthAfter  int
}

// TurnResult is the outcome of PlayCards or SkipTurn: everything a caller
// needs to refresh without diffing state.
type TurnResult struct {
	Valid       bool
	Skipped     bool
	Combination *Combination
	Effect      *Effect
	Phase       Phase
	Result      Result
	EndReason   EndReason
	Active      Side
	LevelUp     bool
	Level       int
}

// --- Phase transitions ---

// SelectVersus moves from the menu (or a finished match) to health selection.
func (m *Match) SelectVersus() error {
	gs := m.State
	if gs.Phase != PhaseMenu && gs.Phase != PhaseGameOver {
		return fmt.Errorf("select versus from %s: %w", gs.Phase, ErrInvalidTransition)
	}
	gs.Mode = ModeVersus
	m.setPhase(PhaseHealthSelection)
	return nil
}

// StartVersus begins a versus match with both sides at the given health.
func (m *Match) StartVersus(health int) error {
	gs := m.State
	if gs.Phase != PhaseHealthSelection {
		return fmt.Errorf("start versus from %s: %w", gs.Phase, ErrInvalidTransition)
	}
	if health < MinVersusHealth || health > MaxVersusHealth {
		return fmt.Errorf("health %d outside [%d, %d]: %w", health, MinVersusHealth, MaxVersusHealth, ErrInvalidHealth)
	}
	gs.Mode = ModeVersus
	gs.Player().reset(health)
	gs.Enemy().reset(health)
	m.startRound()
	return nil
}

// StartAdventure begins an adventure run at level 1.
func (m *Match) StartAdventure() error {
	gs := m.State
	if gs.Phase != PhaseMenu && gs.Phase != PhaseGameOver {
		return fmt.Errorf("start adventure from %s: %w", gs.Phase, ErrInvalidTransition)
	}
	gs.Mode = ModeAdventure
	gs.Level = 1
	gs.Player().reset(AdventurePlayerHealth)
	gs.Enemy().reset(EnemyHealthForLevel(gs.Level))
	m.startRound()
	return nil
}

// ReturnToMenu abandons whatever is in progress.
func (m *Match) ReturnToMenu() {
	m.State.Selection = make(map[uuid.UUID]bool)
	m.setPhase(PhaseMenu)
}

// Continue is the primary action after a match ends: another versus match
// goes back to health selection, an adventure defeat restarts the run and an
// adventure victory moves on to the next level.
func (m *Match) Continue() error {
	gs := m.State
	if gs.Phase != PhaseGameOver {
		return fmt.Errorf("continue from %s: %w", gs.Phase, ErrInvalidTransition)
	}
	if gs.Mode == ModeVersus {
		return m.SelectVersus()
	}
	if gs.Result == ResultDefeat {
		return m.StartAdventure()
	}
	m.advanceLevel()
	return nil
}

func (m *Match) setPhase(phase Phase) {
	if m.State.Phase == phase {
		return
	}
	m.State.Phase = phase
	m.log(log.NewPhaseChangeEvent(m.State.Turn, phase.String()))
}

// startRound resets the deck and hands, picks who goes first and deals the
// opening hands. Health is left alone.
func (m *Match) startRound() {
	gs := m.State
	gs.clearRound()
	gs.Deck = BuildShuffledDeck(m.rng)
	gs.Active = Side(m.rng.Intn(2))
	m.setPhase(PhasePlaying)
	m.log(log.NewMatchStartEvent(gs.Turn, gs.Phase.String(), gs.Mode.String(), int(gs.Active),
		gs.Player().Health, gs.Enemy().Health))

	m.deal(SidePlayer, InitialHandSize)
	m.deal(SideEnemy, InitialHandSize)
	m.deal(gs.Active, 1)
}

// --- Turn Engine ---

// PlayCards plays the proposed cards for the active side. An illegal
// combination is not an error: it sets the invalid-move flag and returns a
// result with Valid false, leaving everything else untouched.
func (m *Match) PlayCards(cards []*Card) (TurnResult, error) {
	gs := m.State
	if err := m.checkCanAct(); err != nil {
		return m.result(false), err
	}
	if err := checkOwned(gs.ActiveCombatant(), cards); err != nil {
		return m.result(false), err
	}

	actor := gs.Active
	combo, ok := Evaluate(cards)
	if !ok {
		gs.InvalidMove = true
		m.log(log.NewInvalidPlayEvent(gs.Turn, gs.Phase.String(), int(actor), CardNames(cards)))
		return m.result(false), nil
	}

	level := gs.Level
	gs.ActiveCombatant().RemoveFromHand(combo.Cards)
	gs.LastCombination = &combo
	gs.Selection = make(map[uuid.UUID]bool)
	m.log(log.NewPlayEvent(gs.Turn, gs.Phase.String(), int(actor), combo.Shape.String(), CardNames(combo.Cards)))

	effect := m.applyEffect(actor, combo)
	m.passTurn()
	m.checkEndConditions()

	res := m.result(true)
	res.Combination = &combo
	res.Effect = &effect
	res.LevelUp = gs.Level > level
	return res, nil
}

// SkipTurn passes the turn without playing.
func (m *Match) SkipTurn() (TurnResult, error) {
	gs := m.State
	if err := m.checkCanAct(); err != nil {
		return m.result(false), err
	}
	level := gs.Level
	m.log(log.NewSkipEvent(gs.Turn, gs.Phase.String(), int(gs.Active)))
	m.passTurn()
	m.checkEndConditions()

	res := m.result(true)
	res.Skipped = true
	res.LevelUp = gs.Level > level
	return res, nil
}

// PlayEnemyTurn lets the computer choose and play its move, or skip when it
// has none.
func (m *Match) PlayEnemyTurn() (TurnResult, error) {
	if err := m.checkCanAct(); err != nil {
		return m.result(false), err
	}
	if m.State.Active != SideEnemy {
		return m.result(false), fmt.Errorf("enemy move: %w", ErrNotYourTurn)
	}
	if combo, ok := FindBestMove(m.State, SideEnemy); ok {
		return m.PlayCards(combo.Cards)
	}
	return m.SkipTurn()
}

func (m *Match) checkCanAct() error {
	switch m.State.Phase {
	case PhasePlaying:
		return nil
	case PhaseGameOver:
		return ErrMatchOver
	default:
		return fmt.Errorf("%s phase: %w", m.State.Phase, ErrNotPlaying)
	}
}

// checkOwned rejects cards the combatant does not hold, including the same
// card proposed twice.
func checkOwned(c *Combatant, cards []*Card) error {
	seen := make(map[uuid.UUID]bool, len(cards))
	for _, card := range cards {
		if card == nil || seen[card.ID] || !ContainsCard(c.Hand, card.ID) {
			name := "<nil>"
			if card != nil {
				name = card.Name()
			}
			return fmt.Errorf("%s: %w", name, ErrCardNotInHand)
		}
		seen[card.ID] = true
	}
	return nil
}

// applyEffect routes the combination by its first card's category.
func (m *Match) applyEffect(actor Side, combo Combination) Effect {
	gs := m.State
	opponent := actor.Opponent()
	var effect Effect
	switch combo.Category() {
	case CategoryDamage:
		effect = Effect{Category: CategoryDamage, Target: opponent, Amount: combo.Damage()}
	case CategoryHeal:
		effect = Effect{Category: CategoryHeal, Target: actor, Amount: combo.HealAmount(gs.Side(actor).MaxHealth)}
	case CategoryPercentDamage:
		effect = Effect{Category: CategoryPercentDamage, Target: opponent,
			Amount: combo.PercentDamageAmount(gs.Side(opponent).MaxHealth)}
	}

	target := gs.Side(effect.Target)
	newHP := target.Health - effect.Amount
	if effect.Category == CategoryHeal {
		newHP = target.Health + effect.Amount
	}
	effect.HealthBefore = target.setHealth(newHP)
	effect.HealthAfter = target.Health
	m.log(log.NewHPChangeEvent(gs.Turn, gs.Phase.String(), int(effect.Target),
		effect.HealthBefore, effect.HealthAfter, combo.Shape.String()+" "+effect.Category.String()))
	return effect
}

// passTurn switches the active side and deals it one card.
func (m *Match) passTurn() {
	gs := m.State
	gs.Active = gs.Active.Opponent()
	gs.Turn++
	m.log(log.NewTurnEvent(gs.Turn, gs.Phase.String(), int(gs.Active)))
	m.deal(gs.Active, 1)
}

func (m *Match) result(valid bool) TurnResult {
	gs := m.State
	return TurnResult{
		Valid:     valid,
		Phase:     gs.Phase,
		Result:    gs.Result,
		EndReason: gs.EndReason,
		Active:    gs.Active,
		Level:     gs.Level,
	}
}

// --- Dealing ---

// DealCards deals count cards from the deck to the given side.
func (m *Match) DealCards(side Side, count int) error {
	if err := m.checkCanAct(); err != nil {
		return err
	}
	if count < 0 || count > FullDeckSize {
		return fmt.Errorf("deal %d cards: count must be within [0, %d]", count, FullDeckSize)
	}
	m.deal(side, count)
	return nil
}

// deal moves cards from the front of the deck into a hand. A deck that is too
// short is replaced by a fresh full deck first.
func (m *Match) deal(side Side, count int) {
	gs := m.State
	if len(gs.Deck) < count {
		gs.Deck = BuildShuffledDeck(m.rng)
		m.log(log.NewReshuffleEvent(gs.Turn, gs.Phase.String(), len(gs.Deck)))
	}
	dealt := gs.takeFromDeck(count)
	gs.Side(side).AddToHand(dealt...)
	m.log(log.NewDealEvent(gs.Turn, gs.Phase.String(), int(side), CardNames(dealt)))
	m.checkEndConditions()
}

// --- End conditions ---

// checkEndConditions applies the first end condition that holds: health
// depletion before hand overflow, player before enemy.
func (m *Match) checkEndConditions() {
	gs := m.State
	if gs.Phase != PhasePlaying {
		return
	}
	switch {
	case gs.Player().Health <= 0:
		m.finish(ResultDefeat, EndHealthDepleted)
	case gs.Enemy().Health <= 0:
		if gs.Mode == ModeAdventure {
			m.advanceLevel()
			return
		}
		m.finish(ResultVictory, EndHealthDepleted)
	case gs.Player().HandCount() > MaxHandSize:
		m.finish(ResultDefeat, EndTooManyCards)
	case gs.Enemy().HandCount() > MaxHandSize:
		m.finish(ResultVictory, EndTooManyCards)
	}
}

func (m *Match) finish(result Result, reason EndReason) {
	gs := m.State
	gs.Result = result
	gs.EndReason = reason
	winner := SidePlayer
	if result == ResultDefeat {
		winner = SideEnemy
	}
	m.log(log.NewWinEvent(gs.Turn, gs.Phase.String(), int(winner), reason.String()))
	m.log(log.NewLoseEvent(gs.Turn, gs.Phase.String(), int(winner.Opponent()), reason.String()))
	m.setPhase(PhaseGameOver)
}

// advanceLevel moves an adventure run to the next level. The player keeps
// their current health; the enemy comes back stronger and the round restarts.
func (m *Match) advanceLevel() {
	gs := m.State
	gs.Level++
	m.recordBestLevel(gs.Level)
	enemyHP := EnemyHealthForLevel(gs.Level)
	gs.Enemy().reset(enemyHP)
	m.log(log.NewLevelUpEvent(gs.Turn, gs.Phase.String(), gs.Level, enemyHP))
	m.startRound()
}

// --- Player selection ---

// ToggleSelection stages or unstages a card from the player's hand and
// reports whether it is now selected.
func (m *Match) ToggleSelection(id uuid.UUID) (bool, error) {
	gs := m.State
	if err := m.checkCanAct(); err != nil {
		return false, err
	}
	if !ContainsCard(gs.Player().Hand, id) {
		return false, fmt.Errorf("select %s: %w", id, ErrCardNotInHand)
	}
	if gs.Selection[id] {
		delete(gs.Selection, id)
		return false, nil
	}
	gs.Selection[id] = true
	return true, nil
}

// ClearSelection unstages every card.
func (m *Match) ClearSelection() {
	m.State.Selection = make(map[uuid.UUID]bool)
}

// SelectedCards returns the staged cards in hand order.
func (m *Match) SelectedCards() []*Card {
	return m.State.SelectedCards()
}

// PlaySelection plays the staged cards for the player.
func (m *Match) PlaySelection() (TurnResult, error) {
	if err := m.checkCanAct(); err != nil {
		return m.result(false), err
	}
	if m.State.Active != SidePlayer {
		return m.result(false), fmt.Errorf("play selection: %w", ErrNotYourTurn)
	}
	return m.PlayCards(m.State.SelectedCards())
}

// ClearInvalidMove resets the invalid-move flag once it has been shown.
func (m *Match) ClearInvalidMove() {
	m.State.InvalidMove = false
}

// --- Progression ---

// LoadPersistedBestLevel reads the best level from the store. A failing store
// leaves the in-memory best level in place.
func (m *Match) LoadPersistedBestLevel(ctx context.Context) error {
	best, err := m.progress.Load(ctx)
	m.State.BestLevel = best
	if err != nil {
		m.log(log.NewStoreErrorEvent(m.State.Turn, m.State.Phase.String(), err))
		return fmt.Errorf("load best level: %w", err)
	}
	return nil
}

func (m *Match) recordBestLevel(level int) {
	gs := m.State
	improved, err := m.progress.Record(m.ctx, level)
	if improved {
		gs.BestLevel = level
		m.log(log.NewBestLevelEvent(gs.Turn, gs.Phase.String(), level))
	}
	if err != nil {
		m.log(log.NewStoreErrorEvent(gs.Turn, gs.Phase.String(), err))
	}
}

// log emits a game event through the logger and forwards it to the observer.
func (m *Match) log(event log.GameEvent) {
	m.Logger.Log(event)
	if m.observer != nil {
		m.observer(event)
	}
}
