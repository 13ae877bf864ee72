package log

// EventType enumerates all observable match events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventMatchStart
	EventDeal
	EventReshuffle
	EventPlay
	EventInvalidPlay
	EventSkip
	EventHPChange
	EventNewTurn
	EventLevelUp
	EventBestLevel
	EventWin
	EventLose
	EventStoreError
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventMatchStart:
		return "MatchStart"
	case EventDeal:
		return "Deal"
	case EventReshuffle:
		return "Reshuffle"
	case EventPlay:
		return "Play"
	case EventInvalidPlay:
		return "InvalidPlay"
	case EventSkip:
		return "Skip"
	case EventHPChange:
		return "HPChange"
	case EventNewTurn:
		return "NewTurn"
	case EventLevelUp:
		return "LevelUp"
	case EventBestLevel:
		return "BestLevel"
	case EventWin:
		return "Win"
	case EventLose:
		return "Lose"
	case EventStoreError:
		return "StoreError"
	default:
		return "Unknown"
	}
}

// Side indices used by events. They mirror game.SidePlayer and game.SideEnemy.
const (
	SidePlayer = 0
	SideEnemy  = 1
)

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // match phase name (e.g. "Playing")
	Side    int       // acting side (SidePlayer or SideEnemy)
	Type    EventType // event type
	Cards   []string  // card names (if applicable)
	Amount  int       // damage, heal or card count
	Details string    // human-readable detail string
}
