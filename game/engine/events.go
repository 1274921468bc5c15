package engine

import "github.com/wricardo/acrohunt/game/catalog"

// EventType names an engine event.
type EventType string

const (
	EventPhase     EventType = "phase"
	EventMatch     EventType = "match"
	EventMiss      EventType = "miss"
	EventBonus     EventType = "bonus"
	EventGridReset EventType = "grid_reset"
	EventGameOver  EventType = "game_over"
)

// Event is a discrete notification emitted after a transition has been applied.
// Only the fields relevant to Type are set.
type Event struct {
	Type           EventType     `json:"type"`
	Phase          Phase         `json:"phase,omitempty"`
	Term           *catalog.Term `json:"term,omitempty"`
	Word           string        `json:"word,omitempty"`
	FirstFind      bool          `json:"first_find,omitempty"`
	Points         int           `json:"points"`
	Amount         int           `json:"amount"`
	ResetTriggered bool          `json:"reset_triggered,omitempty"`
	FinalScore     int           `json:"final_score"`
	Reason         MissReason    `json:"reason,omitempty"`
	Combo          int           `json:"combo"`
	Score          int           `json:"score"`
	Timestamp      int64         `json:"timestamp"`

	// Final is the state as it reached GameOver. Set on game_over only.
	Final *GameState `json:"-"`
}

// Listener receives engine events. Listeners run on the goroutine that
// applied the transition and must not call back into the engine.
type Listener func(Event)
