package engine

import (
	"math/rand/v2"
	"sync"

	"github.com/wricardo/acrohunt/game/catalog"
)

var aiTerm = catalog.Term{Abbreviation: "AI", FullName: "Artificial Intelligence"}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Term{
		aiTerm,
		{Abbreviation: "API", FullName: "Application Programming Interface"},
		{Abbreviation: "CPU", FullName: "Central Processing Unit"},
		{Abbreviation: "DNS", FullName: "Domain Name System"},
		{Abbreviation: "HTTP", FullName: "Hypertext Transfer Protocol"},
		{Abbreviation: "SQL", FullName: "Structured Query Language"},
		{Abbreviation: "TCP", FullName: "Transmission Control Protocol"},
		{Abbreviation: "RAM", FullName: "Random Access Memory"},
		{Abbreviation: "GPU", FullName: "Graphics Processing Unit"},
		{Abbreviation: "KUBECTL", FullName: "Kubernetes Control"},
	})
}

func createTestConfig() *GameConfig {
	cfg := DefaultGameConfig()
	cfg.Name = "Engine Test Config"
	cfg.Description = "Configuration for engine tests"
	cfg.CountdownSeconds = 3
	cfg.TimeBudgetSeconds = 5
	return cfg
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// playingState builds a Playing state over rows; '.' marks consumed cells.
func playingState(rows ...string) *GameState {
	s := InitGameStateFromConfig(createTestConfig())
	s.Phase = PhasePlaying
	s.Grid = GridFromRows(rows)
	s.Round = 1
	return s
}

func newTestEngine(t interface{ Fatalf(string, ...any) }, opts ...Option) *GameEngine {
	e, err := NewEngine(createTestConfig(), testCatalog(), append([]Option{WithSeed(7)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) listen(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *eventRecorder) last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}
