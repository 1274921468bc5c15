package engine

import (
	"encoding/json"
	"unicode"

	"github.com/wricardo/acrohunt/game/catalog"
)

// Cell holds a single uppercase letter, or Empty once consumed.
type Cell rune

// Empty marks a consumed cell.
const Empty Cell = 0

// IsEmpty reports whether the cell has been consumed.
func (c Cell) IsEmpty() bool {
	return c == Empty
}

func (c Cell) String() string {
	if c == Empty {
		return ""
	}
	return string(rune(c))
}

// MarshalJSON encodes a cell as a one-letter string ("" when empty).
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a one-letter string.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*c = Empty
		return nil
	}
	*c = Cell(unicode.ToUpper([]rune(s)[0]))
	return nil
}

// Coord addresses a grid cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Adjacent reports whether o touches c, diagonals included.
func (c Coord) Adjacent(o Coord) bool {
	return Chebyshev(c, o) == 1
}

// Direction is a placement direction for generated terms.
type Direction string

const (
	East      Direction = "E"
	South     Direction = "S"
	SouthEast Direction = "SE"
	NorthEast Direction = "NE"
)

// AllDirections lists every placement direction.
var AllDirections = []Direction{East, South, SouthEast, NorthEast}

// Delta returns the row and column step of the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case East:
		return 0, 1
	case South:
		return 1, 0
	case SouthEast:
		return 1, 1
	case NorthEast:
		return -1, 1
	}
	return 0, 0
}

// Placement is where a term was embedded during generation.
type Placement struct {
	Term      catalog.Term `json:"term"`
	Row       int          `json:"row"`
	Col       int          `json:"col"`
	Direction Direction    `json:"direction"`
}

// Path returns the cells covered by the placement, in spelling order.
func (p Placement) Path() []Coord {
	dr, dc := p.Direction.Delta()
	path := make([]Coord, len(p.Term.Abbreviation))
	for i := range path {
		path[i] = Coord{Row: p.Row + dr*i, Col: p.Col + dc*i}
	}
	return path
}

// Phase is a session state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseGameOver  Phase = "game_over"
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether the state machine may move from p to target.
// Countdown is reachable from every phase through a restart.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseIdle:      {PhaseCountdown},
		PhaseCountdown: {PhasePlaying, PhaseCountdown},
		PhasePlaying:   {PhaseGameOver, PhaseCountdown},
		PhaseGameOver:  {PhaseCountdown},
	}

	for _, allowed := range validTransitions[p] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AcceptsGameplay reports whether selection and submit operations are allowed.
func (p Phase) AcceptsGameplay() bool {
	return p == PhasePlaying
}

// GameState represents the complete state of one session.
type GameState struct {
	Phase         Phase           `json:"phase"`
	Grid          Grid            `json:"grid"`
	Selection     Selection       `json:"selection"`
	SelectedWord  string          `json:"selected_word"`
	CountdownLeft int             `json:"countdown_left"`
	TimeLeft      int             `json:"time_left"`
	TimeBudget    int             `json:"time_budget"`
	Score         int             `json:"score"`
	Combo         int             `json:"combo"`
	MaxCombo      int             `json:"max_combo"`
	Discovered    map[string]bool `json:"discovered"`
	Matches       int             `json:"matches"`
	Misses        int             `json:"misses"`
	GridResets    int             `json:"grid_resets"`
	Round         int             `json:"round"`
	Message       string          `json:"message"`
	ConfigName    string          `json:"config_name"`
	StartedAt     int64           `json:"started_at,omitempty"`
	FinishedAt    int64           `json:"finished_at,omitempty"`

	// Attempts lists every submit of the current round.
	Attempts []AttemptEntry `json:"attempts"`

	// Computed helper views, refreshed on every snapshot
	Remaining  int     `json:"remaining"`
	Multiplier float64 `json:"multiplier"`
}

// AttemptEntry records a single submitted selection.
type AttemptEntry struct {
	AttemptNumber int        `json:"attempt_number"`
	Word          string     `json:"word"`
	Path          []Coord    `json:"path"`
	Matched       bool       `json:"matched"`
	Abbreviation  string     `json:"abbreviation,omitempty"`
	FullName      string     `json:"full_name,omitempty"`
	Reason        MissReason `json:"reason,omitempty"`
	FirstFind     bool       `json:"first_find,omitempty"`
	Points        int        `json:"points"`
	Bonus         int        `json:"bonus,omitempty"`
	GridReset     bool       `json:"grid_reset,omitempty"`
	Combo         int        `json:"combo"`
	Timestamp     int64      `json:"timestamp"`
}

// SubmitResult describes the outcome of a submit.
type SubmitResult struct {
	// Accepted is false when the submit was ignored (wrong phase or empty selection).
	Accepted  bool          `json:"accepted"`
	Matched   bool          `json:"matched"`
	Word      string        `json:"word"`
	Term      *catalog.Term `json:"term,omitempty"`
	Reason    MissReason    `json:"reason,omitempty"`
	FirstFind bool          `json:"first_find,omitempty"`
	Points    int           `json:"points"`
	Bonus     int           `json:"bonus"`
	GridReset bool          `json:"grid_reset"`
	Combo     int           `json:"combo"`
	Score     int           `json:"score"`
	Remaining int           `json:"remaining"`
}
