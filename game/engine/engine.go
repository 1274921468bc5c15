package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wricardo/acrohunt/game/catalog"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Start() bool
	Tick() Phase
	Restart()

	// Selection and validation, accepted only while Playing
	Select(c Coord) SelectOutcome
	SelectPath(path []Coord) []SelectOutcome
	Backspace() bool
	ClearSelection() bool
	Submit() SubmitResult

	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Phase() Phase
	GetScore() int
	IsGameOver() bool

	// Configuration
	GetConfig() *GameConfig

	// Events
	Subscribe(l Listener) (cancel func())
}

var _ Engine = (*GameEngine)(nil)

// Option customizes a GameEngine.
type Option func(*GameEngine)

// WithSeed makes grid generation reproducible.
func WithSeed(seed uint64) Option {
	return func(e *GameEngine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source used for grid generation.
func WithRand(rng *rand.Rand) Option {
	return func(e *GameEngine) {
		e.rng = rng
	}
}

// WithNow overrides the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *GameEngine) {
		e.now = now
	}
}

// GameEngine is the session state machine. It is the sole owner of its
// GameState; every transition runs under one mutex and events are delivered
// in transition order after the transition has been applied.
type GameEngine struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex

	config     *GameConfig
	provider   catalog.Provider
	generator  *Generator
	scorer     *Scorer
	rng        *rand.Rand
	now        func() time.Time
	state      *GameState
	placements []Placement

	listeners    map[int]Listener
	nextListener int
	pending      []Event
}

// NewEngine creates an Idle engine. provider may be nil, in which case every
// grid is pure noise and every submit misses as catalog_unavailable.
func NewEngine(config *GameConfig, provider catalog.Provider, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:    config,
		provider:  provider,
		scorer:    NewScorer(config.Scoring),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.generator = NewGenerator(config.GridSize, config.MaxTerms, config.PlacementAttempts, e.rng)
	e.state = InitGameStateFromConfig(config)

	return e, nil
}

// NewEngineWithDefaults creates an engine with the classic preset and the
// embedded catalog.
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), catalog.Default(), opts...)
	if err != nil {
		panic(fmt.Sprintf("engine: default config is invalid: %v", err))
	}
	return e
}

// Subscribe registers l for future events and returns a function that removes it.
func (e *GameEngine) Subscribe(l Listener) func() {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	id := e.nextListener
	e.nextListener++
	e.listeners[id] = l

	return func() {
		e.dispatchMu.Lock()
		defer e.dispatchMu.Unlock()
		delete(e.listeners, id)
	}
}

// Start moves an Idle engine into Countdown and generates the grid.
func (e *GameEngine) Start() bool {
	e.mu.Lock()
	if e.state.Phase != PhaseIdle {
		e.mu.Unlock()
		return false
	}
	e.state.Round++
	e.enterCountdown()
	e.commit()
	return true
}

// Restart begins a new round from any phase with a fresh grid and zeroed
// score, combo and discovered terms.
func (e *GameEngine) Restart() {
	e.mu.Lock()
	round := e.state.Round
	e.state = InitGameStateFromConfig(e.config)
	e.state.Round = round + 1
	e.enterCountdown()
	e.commit()
}

// Tick advances the countdown or the time budget by one unit and returns
// the phase after the tick. It has no effect while Idle or GameOver.
func (e *GameEngine) Tick() Phase {
	e.mu.Lock()
	switch e.state.Phase {
	case PhaseCountdown:
		e.state.CountdownLeft--
		if e.state.CountdownLeft <= 0 {
			e.state.CountdownLeft = 0
			e.enterPlaying()
		}
	case PhasePlaying:
		e.state.TimeLeft--
		if e.state.TimeLeft <= 0 {
			e.state.TimeLeft = 0
			e.enterGameOver()
		}
	}
	phase := e.state.Phase
	e.commit()
	return phase
}

// Select appends c to the current selection.
func (e *GameEngine) Select(c Coord) SelectOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Phase.AcceptsGameplay() {
		return SelectRejected
	}
	outcome := e.state.Selection.Append(e.state.Grid, c)
	e.state.SelectedWord = e.state.Grid.Word(e.state.Selection)
	return outcome
}

// SelectPath appends each coordinate of path in order.
func (e *GameEngine) SelectPath(path []Coord) []SelectOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	outcomes := make([]SelectOutcome, len(path))
	for i, c := range path {
		if !e.state.Phase.AcceptsGameplay() {
			outcomes[i] = SelectRejected
			continue
		}
		outcomes[i] = e.state.Selection.Append(e.state.Grid, c)
	}
	e.state.SelectedWord = e.state.Grid.Word(e.state.Selection)
	return outcomes
}

// Backspace removes the last selected cell.
func (e *GameEngine) Backspace() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Phase.AcceptsGameplay() {
		return false
	}
	removed := e.state.Selection.Backspace()
	e.state.SelectedWord = e.state.Grid.Word(e.state.Selection)
	return removed
}

// ClearSelection empties the current selection.
func (e *GameEngine) ClearSelection() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Phase.AcceptsGameplay() {
		return false
	}
	e.state.Selection.Reset()
	e.state.SelectedWord = ""
	return true
}

// Submit validates the current selection, scores it, and clears it.
// Empty selections and submits outside Playing are ignored.
func (e *GameEngine) Submit() SubmitResult {
	e.mu.Lock()
	s := e.state

	if !s.Phase.AcceptsGameplay() || s.Selection.Len() == 0 {
		result := SubmitResult{Score: s.Score, Combo: s.Combo, Remaining: s.Grid.Remaining()}
		e.mu.Unlock()
		return result
	}

	path := s.Selection.Coords()
	v := Validate(s.Grid, s.Selection, e.provider)
	s.Selection.Reset()
	s.SelectedWord = ""

	result := SubmitResult{Accepted: true, Word: v.Word}
	entry := AttemptEntry{
		AttemptNumber: len(s.Attempts) + 1,
		Word:          v.Word,
		Path:          path,
		Timestamp:     e.now().UnixMilli(),
	}

	if !v.Matched {
		award := e.scorer.OnMiss()
		s.Score += award.Points
		s.Combo = award.NewCombo
		s.Misses++
		s.Message = e.missMessage(v)

		result.Reason = v.Reason
		entry.Reason = v.Reason
		e.emit(Event{Type: EventMiss, Word: v.Word, Reason: v.Reason})
	} else {
		term := *v.Term
		abbr := catalog.Normalize(term.Abbreviation)
		already := s.Discovered[abbr]
		award := e.scorer.OnMatch(term, s.Combo, already)

		s.Grid.Clear(path)
		s.Score += award.Points
		s.Combo = award.NewCombo
		s.MaxCombo = max(s.MaxCombo, s.Combo)
		s.Discovered[abbr] = true
		s.Matches++
		if already {
			s.Message = sprintf(e.config.Messages.RepeatMatch, abbr, award.Points)
		} else {
			s.Message = sprintf(e.config.Messages.Match, abbr, term.FullName, award.Points)
		}

		result.Matched = true
		result.Term = &term
		result.FirstFind = !already
		result.Points = award.Points
		entry.Matched = true
		entry.Abbreviation = abbr
		entry.FullName = term.FullName
		entry.FirstFind = !already
		entry.Points = award.Points
		e.emit(Event{Type: EventMatch, Term: &term, Word: v.Word, FirstFind: !already, Points: award.Points})

		bonus := e.scorer.Bonus(s.Grid.Remaining())
		if bonus.Amount > 0 || bonus.Reset {
			s.Score += bonus.Amount
			result.Bonus = bonus.Amount
			entry.Bonus = bonus.Amount
			if bonus.FullClear {
				s.Message = sprintf(e.config.Messages.FullClear, bonus.Amount)
			} else if bonus.Amount > 0 {
				s.Message = sprintf(e.config.Messages.Bonus, bonus.Amount)
			}
			e.emit(Event{Type: EventBonus, Amount: bonus.Amount, ResetTriggered: bonus.Reset})
		}
		if bonus.Reset {
			e.regenerate()
			s.Combo = 0
			s.GridResets++
			result.GridReset = true
			entry.GridReset = true
			e.emit(Event{Type: EventGridReset})
		}
	}

	result.Combo = s.Combo
	result.Score = s.Score
	result.Remaining = s.Grid.Remaining()
	entry.Combo = s.Combo
	s.Attempts = append(s.Attempts, entry)

	e.commit()
	return result
}

// GetState returns a deep copy of the current state with computed fields filled in.
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// SetState replaces the state, used when restoring a persisted session.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Phase == "" {
		return fmt.Errorf("state has no phase")
	}
	if state.Phase != PhaseIdle && state.Grid.Size() == 0 {
		return fmt.Errorf("state in phase %s has no grid", state.Phase)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = cloneState(state)
	if e.state.Discovered == nil {
		e.state.Discovered = make(map[string]bool)
	}
	e.placements = nil
	return nil
}

// Phase returns the current phase.
func (e *GameEngine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Phase
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Score
}

// IsGameOver reports whether the time budget has run out.
func (e *GameEngine) IsGameOver() bool {
	return e.Phase() == PhaseGameOver
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Placements returns where terms were hidden in the current grid. It is nil
// for restored states.
func (e *GameEngine) Placements() []Placement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Placement(nil), e.placements...)
}

// Provider returns the catalog the engine validates against.
func (e *GameEngine) Provider() catalog.Provider {
	return e.provider
}

func (e *GameEngine) enterCountdown() {
	e.regenerate()
	e.state.Phase = PhaseCountdown
	e.state.CountdownLeft = e.config.CountdownSeconds
	e.state.TimeLeft = e.config.TimeBudgetSeconds
	e.state.TimeBudget = e.config.TimeBudgetSeconds
	e.state.Message = e.config.Messages.Countdown
	e.emit(Event{Type: EventPhase, Phase: PhaseCountdown})

	if e.state.CountdownLeft <= 0 {
		e.enterPlaying()
	}
}

func (e *GameEngine) enterPlaying() {
	e.state.Phase = PhasePlaying
	e.state.StartedAt = e.now().Unix()
	e.state.Message = e.config.Messages.Playing
	e.emit(Event{Type: EventPhase, Phase: PhasePlaying})
}

func (e *GameEngine) enterGameOver() {
	e.state.Phase = PhaseGameOver
	e.state.Selection.Reset()
	e.state.SelectedWord = ""
	e.state.FinishedAt = e.now().Unix()
	e.state.Message = sprintf(e.config.Messages.GameOver, e.state.Score)
	e.emit(Event{Type: EventPhase, Phase: PhaseGameOver})
	e.emit(Event{Type: EventGameOver, FinalScore: e.state.Score, Final: e.snapshot()})
}

// regenerate replaces the grid. A catalog that cannot be fetched yields a noise grid.
func (e *GameEngine) regenerate() {
	var terms []catalog.Term
	if e.provider != nil {
		if all, err := e.provider.FetchAll(context.Background()); err == nil {
			terms = all
		}
	}
	board := e.generator.Generate(terms)
	e.state.Grid = board.Grid
	e.state.Selection = Selection{}
	e.state.SelectedWord = ""
	e.placements = board.Placements
}

func (e *GameEngine) missMessage(v Validation) string {
	switch v.Reason {
	case ReasonTooShort:
		return e.config.Messages.TooShort
	case ReasonCatalogUnavailable:
		return e.config.Messages.CatalogUnavailable
	}
	return sprintf(e.config.Messages.Miss, v.Word)
}

// emit queues an event; it is delivered by commit. Callers hold mu.
func (e *GameEngine) emit(ev Event) {
	ev.Combo = e.state.Combo
	ev.Score = e.state.Score
	ev.Timestamp = e.now().UnixMilli()
	e.pending = append(e.pending, ev)
}

// commit releases mu and delivers queued events. dispatchMu is taken before
// mu is released so deliveries keep transition order.
func (e *GameEngine) commit() {
	events := e.pending
	e.pending = nil
	e.dispatchMu.Lock()
	e.mu.Unlock()
	defer e.dispatchMu.Unlock()

	for _, ev := range events {
		for _, l := range e.listeners {
			l(ev)
		}
	}
}

func (e *GameEngine) snapshot() *GameState {
	out := cloneState(e.state)
	out.Remaining = out.Grid.Remaining()
	out.Multiplier = e.scorer.Multiplier(out.Combo)
	out.SelectedWord = out.Grid.Word(out.Selection)
	return out
}

func cloneState(s *GameState) *GameState {
	out := *s
	out.Grid = s.Grid.Clone()
	out.Selection = append(Selection{}, s.Selection...)
	out.Discovered = make(map[string]bool, len(s.Discovered))
	for k, v := range s.Discovered {
		out.Discovered[k] = v
	}
	out.Attempts = make([]AttemptEntry, len(s.Attempts))
	for i, a := range s.Attempts {
		a.Path = append([]Coord(nil), a.Path...)
		out.Attempts[i] = a
	}
	return &out
}

func sprintf(format string, args ...any) string {
	if format == "" {
		return ""
	}
	return fmt.Sprintf(format, args...)
}
