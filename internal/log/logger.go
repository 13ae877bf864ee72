package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// EventLogger is the interface for logging match events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.record(event)
}

func (l *MemoryLogger) record(event GameEvent) GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
	return event
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	event = l.MemoryLogger.record(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- SlogLogger: mirrors events as structured records ---

// SlogLogger keeps events in memory and emits each one through a *slog.Logger.
type SlogLogger struct {
	MemoryLogger
	logger *slog.Logger
}

// NewSlogLogger returns a logger writing to the given slog logger, or slog.Default() when nil.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Log(event GameEvent) {
	event = l.MemoryLogger.record(event)
	level := slog.LevelDebug
	switch event.Type {
	case EventWin, EventLose, EventLevelUp, EventMatchStart:
		level = slog.LevelInfo
	case EventStoreError:
		level = slog.LevelWarn
	}
	l.logger.LogAttrs(context.Background(), level, event.Details,
		slog.Int("seq", event.Seq),
		slog.Int("turn", event.Turn),
		slog.String("phase", event.Phase),
		slog.String("side", SideName(event.Side)),
		slog.String("type", event.Type.String()),
		slog.Any("cards", event.Cards),
		slog.Int("amount", event.Amount),
	)
}

// --- Formatting ---

// SideName returns "Player" or "Enemy" for display.
func SideName(side int) string {
	if side == SideEnemy {
		return "Enemy"
	}
	return "Player"
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 16 chars for alignment
	for len(phase) < 16 {
		phase += " "
	}

	return fmt.Sprintf("T%-3d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewMatchStartEvent(turn int, phase, mode string, first int, playerHP, enemyHP int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    first,
		Type:    EventMatchStart,
		Details: fmt.Sprintf("=== %s match: Player %d HP vs Enemy %d HP, %s goes first ===", mode, playerHP, enemyHP, SideName(first)),
	}
}

func NewTurnEvent(turn int, phase string, side int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("--- Turn %d (%s) ---", turn, SideName(side)),
	}
}

// NewDealEvent names the dealt cards only for the player; the enemy hand stays hidden.
func NewDealEvent(turn int, phase string, side int, cards []string) GameEvent {
	details := fmt.Sprintf("%s is dealt %d card(s)", SideName(side), len(cards))
	if side == SidePlayer {
		details = fmt.Sprintf("%s is dealt %s", SideName(side), strings.Join(cards, ", "))
	}
	ev := GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventDeal,
		Amount:  len(cards),
		Details: details,
	}
	if side == SidePlayer {
		ev.Cards = cards
	}
	return ev
}

func NewReshuffleEvent(turn int, phase string, deckSize int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventReshuffle,
		Amount:  deckSize,
		Details: fmt.Sprintf("Deck ran short, a fresh deck of %d cards is shuffled in", deckSize),
	}
}

func NewPlayEvent(turn int, phase string, side int, shape string, cards []string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventPlay,
		Cards:   cards,
		Details: fmt.Sprintf("%s plays %s: %s", SideName(side), shape, strings.Join(cards, ", ")),
	}
}

func NewInvalidPlayEvent(turn int, phase string, side int, cards []string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventInvalidPlay,
		Cards:   cards,
		Details: fmt.Sprintf("%s tried an invalid combination: %s", SideName(side), strings.Join(cards, ", ")),
	}
}

func NewSkipEvent(turn int, phase string, side int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventSkip,
		Details: fmt.Sprintf("%s skips the turn", SideName(side)),
	}
}

func NewHPChangeEvent(turn int, phase string, side int, oldHP, newHP int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventHPChange,
		Amount:  newHP - oldHP,
		Details: fmt.Sprintf("%s HP: %d → %d (%s)", SideName(side), oldHP, newHP, reason),
	}
}

func NewLevelUpEvent(turn int, phase string, level, enemyHP int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    SidePlayer,
		Type:    EventLevelUp,
		Amount:  level,
		Details: fmt.Sprintf("Level cleared! Advancing to level %d (enemy HP %d)", level, enemyHP),
	}
}

func NewBestLevelEvent(turn int, phase string, level int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    SidePlayer,
		Type:    EventBestLevel,
		Amount:  level,
		Details: fmt.Sprintf("New best level: %d", level),
	}
}

func NewWinEvent(turn int, phase string, winner int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", SideName(winner), reason),
	}
}

func NewLoseEvent(turn int, phase string, loser int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    loser,
		Type:    EventLose,
		Details: fmt.Sprintf("%s loses (%s)", SideName(loser), reason),
	}
}

func NewStoreErrorEvent(turn int, phase string, err error) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventStoreError,
		Details: fmt.Sprintf("best level store: %v", err),
	}
}
