package engine

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/acrohunt/game/catalog"
)

func TestNewEngine(t *testing.T) {
	engine := newTestEngine(t)

	state := engine.GetState()
	if state.Phase != PhaseIdle {
		t.Errorf("Expected idle phase, got %s", state.Phase)
	}
	if state.Grid != nil {
		t.Error("Expected no grid while idle")
	}
	if engine.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", engine.GetScore())
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = ""

	if _, err := NewEngine(config, testCatalog()); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults(WithSeed(1))
	if engine.GetConfig().Name != "classic" {
		t.Errorf("Expected classic config, got %s", engine.GetConfig().Name)
	}
	engine.Start()
	if engine.GetState().Grid.Size() != DefaultGridSize {
		t.Errorf("Expected a %dx%d grid", DefaultGridSize, DefaultGridSize)
	}
}

func TestEngine_PhaseTransitions(t *testing.T) {
	engine := newTestEngine(t)

	if engine.Tick() != PhaseIdle {
		t.Error("Expected tick to have no effect while idle")
	}
	if engine.Select(Coord{0, 0}) != SelectRejected {
		t.Error("Expected selection to be rejected while idle")
	}

	if !engine.Start() {
		t.Fatal("Expected start to succeed from idle")
	}
	if engine.Start() {
		t.Error("Expected second start to be ignored")
	}

	countdown := engine.GetState()
	if countdown.Phase != PhaseCountdown {
		t.Fatalf("Expected countdown phase, got %s", countdown.Phase)
	}
	if !countdown.Grid.Full() {
		t.Error("Expected grid to be generated during countdown")
	}
	if engine.Select(Coord{0, 0}) != SelectRejected {
		t.Error("Expected selection to be rejected during countdown")
	}

	engine.Tick()
	engine.Tick()
	if engine.Phase() != PhaseCountdown {
		t.Fatalf("Expected countdown to last 3 ticks, got %s after 2", engine.Phase())
	}
	if engine.Tick() != PhasePlaying {
		t.Fatalf("Expected playing after countdown, got %s", engine.Phase())
	}

	playing := engine.GetState()
	if playing.Grid.String() != countdown.Grid.String() {
		t.Error("Expected the countdown grid to be kept when play begins")
	}
	if playing.TimeLeft != 5 {
		t.Errorf("Expected full time budget at start of play, got %d", playing.TimeLeft)
	}

	for i := 0; i < 4; i++ {
		engine.Tick()
	}
	if engine.GetState().TimeLeft != 1 {
		t.Errorf("Expected 1 second left, got %d", engine.GetState().TimeLeft)
	}
	if engine.Tick() != PhaseGameOver {
		t.Fatalf("Expected game over when time runs out, got %s", engine.Phase())
	}
	if !engine.IsGameOver() {
		t.Error("Expected IsGameOver to report true")
	}
}

func TestEngine_ZeroCountdownStartsPlaying(t *testing.T) {
	config := createTestConfig()
	config.CountdownSeconds = 0
	engine, err := NewEngine(config, testCatalog(), WithSeed(1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	engine.Start()
	if engine.Phase() != PhasePlaying {
		t.Errorf("Expected playing immediately, got %s", engine.Phase())
	}
}

func TestEngine_GameOverIsTerminal(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetState(playingState("AIZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ"))
	engine.Select(Coord{0, 0})

	for engine.Phase() != PhaseGameOver {
		engine.Tick()
	}
	state := engine.GetState()
	if state.Selection.Len() != 0 {
		t.Error("Expected selection to be cleared at game over")
	}

	if engine.Select(Coord{0, 1}) != SelectRejected {
		t.Error("Expected select to be rejected after game over")
	}
	if engine.Backspace() || engine.ClearSelection() {
		t.Error("Expected selection edits to be rejected after game over")
	}
	if res := engine.Submit(); res.Accepted {
		t.Error("Expected submit to be rejected after game over")
	}
	if engine.Start() {
		t.Error("Expected start to be rejected after game over")
	}
	if engine.Tick() != PhaseGameOver {
		t.Error("Expected game over to be terminal under ticks")
	}
	if engine.GetScore() != state.Score {
		t.Error("Expected score to be frozen after game over")
	}
}

func TestEngine_SubmitFirstFindAndRepeat(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetState(playingState(
		"AIZZZ",
		"ZZZZZ",
		"ZZZZZ",
		"ZZZAI",
		"ZZZZZ",
	))

	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	res := engine.Submit()
	if !res.Matched || !res.FirstFind {
		t.Fatalf("Expected a first-time match, got %+v", res)
	}
	if res.Points != 220 || res.Combo != 1 {
		t.Errorf("Expected 220 points and combo 1, got %d and %d", res.Points, res.Combo)
	}

	state := engine.GetState()
	if !state.Grid.At(Coord{0, 0}).IsEmpty() || !state.Grid.At(Coord{0, 1}).IsEmpty() {
		t.Error("Expected matched cells to be consumed")
	}
	if !state.Discovered["AI"] {
		t.Error("Expected AI to be discovered")
	}
	if state.Selection.Len() != 0 {
		t.Error("Expected selection to be cleared after submit")
	}

	engine.Select(Coord{3, 3})
	engine.Select(Coord{3, 4})
	res = engine.Submit()
	if !res.Matched || res.FirstFind {
		t.Fatalf("Expected a repeat match, got %+v", res)
	}
	if res.Points != 44 || res.Combo != 2 {
		t.Errorf("Expected 44 points and combo 2, got %d and %d", res.Points, res.Combo)
	}
	if res.Score != 264 {
		t.Errorf("Expected score 264, got %d", res.Score)
	}

	state = engine.GetState()
	if state.Matches != 2 || state.MaxCombo != 2 {
		t.Errorf("Expected 2 matches and max combo 2, got %d and %d", state.Matches, state.MaxCombo)
	}
	if state.Multiplier != 1.5 {
		t.Errorf("Expected display multiplier 1.5, got %g", state.Multiplier)
	}
	if len(state.Attempts) != 2 || state.Attempts[1].AttemptNumber != 2 {
		t.Errorf("Expected two recorded attempts, got %+v", state.Attempts)
	}
}

func TestEngine_MissResetsCombo(t *testing.T) {
	engine := newTestEngine(t)
	state := playingState("ZQZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ")
	state.Combo = 3
	state.Score = 500
	engine.SetState(state)

	rec := &eventRecorder{}
	engine.Subscribe(rec.listen)

	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	res := engine.Submit()
	if !res.Accepted || res.Matched {
		t.Fatalf("Expected an accepted miss, got %+v", res)
	}
	if res.Reason != ReasonNoMatch {
		t.Errorf("Expected reason no_match, got %s", res.Reason)
	}

	after := engine.GetState()
	if after.Combo != 0 {
		t.Errorf("Expected combo 0 after miss, got %d", after.Combo)
	}
	if after.Score != 500 {
		t.Errorf("Expected score unchanged by miss, got %d", after.Score)
	}
	if after.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", after.Misses)
	}
	if after.Grid.At(Coord{0, 0}).IsEmpty() {
		t.Error("Expected cells to survive a miss")
	}
	ev, ok := rec.last(EventMiss)
	if !ok || ev.Reason != ReasonNoMatch || ev.Combo != 0 {
		t.Errorf("Expected a miss event with combo 0, got %+v", ev)
	}
}

func TestEngine_SingleCellSubmitIsTooShort(t *testing.T) {
	engine := newTestEngine(t)
	state := playingState("AIZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ")
	state.Combo = 2
	engine.SetState(state)

	if res := engine.Submit(); res.Accepted {
		t.Error("Expected an empty submit to be ignored")
	}
	if engine.GetState().Combo != 2 {
		t.Error("Expected an empty submit to keep the combo")
	}

	engine.Select(Coord{0, 0})
	res := engine.Submit()
	if !res.Accepted || res.Reason != ReasonTooShort {
		t.Errorf("Expected a too_short miss, got %+v", res)
	}
	if engine.GetState().Combo != 0 {
		t.Error("Expected combo reset by a too_short miss")
	}
}

func TestEngine_NearClearBonus(t *testing.T) {
	engine := newTestEngine(t)
	// AI plus five other letters: five remain after the match
	engine.SetState(playingState(
		"AIZZZ",
		".....",
		".....",
		"....Z",
		"....Z",
	))

	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	res := engine.Submit()

	if res.Remaining != 5 {
		t.Fatalf("Expected 5 remaining cells, got %d", res.Remaining)
	}
	if res.Bonus != 50 {
		t.Errorf("Expected bonus 50, got %d", res.Bonus)
	}
	if res.GridReset {
		t.Error("Expected no grid reset with 5 cells left")
	}
	if res.Score != 270 {
		t.Errorf("Expected score 270, got %d", res.Score)
	}
}

func TestEngine_FullClearResetsGrid(t *testing.T) {
	engine := newTestEngine(t)
	state := playingState(
		"AI...",
		".....",
		".....",
		".....",
		".....",
	)
	state.Combo = 0
	state.Discovered["SQL"] = true
	state.Score = 100
	engine.SetState(state)

	rec := &eventRecorder{}
	engine.Subscribe(rec.listen)

	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	res := engine.Submit()

	if res.Bonus != 1000 {
		t.Errorf("Expected full clear bonus 1000, got %d", res.Bonus)
	}
	if !res.GridReset {
		t.Error("Expected the grid to reset")
	}
	if res.Combo != 0 {
		t.Errorf("Expected combo zeroed by reset, got %d", res.Combo)
	}
	if res.Score != 100+220+1000 {
		t.Errorf("Expected score %d, got %d", 100+220+1000, res.Score)
	}

	after := engine.GetState()
	if !after.Grid.Full() {
		t.Error("Expected a freshly populated grid after reset")
	}
	if !after.Discovered["SQL"] || !after.Discovered["AI"] {
		t.Errorf("Expected discovered terms to survive the reset, got %v", after.Discovered)
	}
	if after.GridResets != 1 {
		t.Errorf("Expected 1 grid reset, got %d", after.GridResets)
	}
	if after.Phase != PhasePlaying {
		t.Errorf("Expected to keep playing after a reset, got %s", after.Phase)
	}

	want := []EventType{EventMatch, EventBonus, EventGridReset}
	if got := rec.types(); !slices.Equal(got, want) {
		t.Errorf("Expected events %v, got %v", want, got)
	}
	if ev, _ := rec.last(EventBonus); !ev.ResetTriggered || ev.Amount != 1000 {
		t.Errorf("Expected bonus event with reset, got %+v", ev)
	}
}

func TestEngine_OneCellLeftResets(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetState(playingState(
		"AI...",
		".....",
		"..Q..",
		".....",
		".....",
	))

	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	res := engine.Submit()

	if res.Bonus != 250 || !res.GridReset {
		t.Errorf("Expected 250 bonus with reset, got bonus=%d reset=%v", res.Bonus, res.GridReset)
	}
}

func TestEngine_CatalogUnavailableIsAMiss(t *testing.T) {
	provider := catalog.NewAsyncProvider(nil)
	engine, err := NewEngine(createTestConfig(), provider, WithSeed(5))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	engine.SetState(playingState("AIZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ"))

	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	res := engine.Submit()
	if res.Matched {
		t.Fatal("Expected a miss while the catalog is loading")
	}
	if res.Reason != ReasonCatalogUnavailable {
		t.Errorf("Expected reason catalog_unavailable, got %s", res.Reason)
	}

	provider.Set(testCatalog())
	engine.Select(Coord{0, 0})
	engine.Select(Coord{0, 1})
	if res := engine.Submit(); !res.Matched {
		t.Errorf("Expected a match once the catalog is loaded, got %+v", res)
	}
}

func TestEngine_NilProviderGeneratesNoise(t *testing.T) {
	engine, err := NewEngine(createTestConfig(), nil, WithSeed(5))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	engine.Start()
	if !engine.GetState().Grid.Full() {
		t.Error("Expected a fully populated grid without a catalog")
	}
	if len(engine.Placements()) != 0 {
		t.Error("Expected no placements without a catalog")
	}
}

func TestEngine_Restart(t *testing.T) {
	engine := newTestEngine(t)
	state := playingState("AIZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ")
	state.Score = 900
	state.Combo = 4
	state.Discovered["AI"] = true
	engine.SetState(state)

	engine.Restart()
	after := engine.GetState()
	if after.Phase != PhaseCountdown {
		t.Errorf("Expected countdown after restart, got %s", after.Phase)
	}
	if after.Score != 0 || after.Combo != 0 || len(after.Discovered) != 0 {
		t.Errorf("Expected zeroed score, combo and discoveries, got %d %d %v", after.Score, after.Combo, after.Discovered)
	}
	if after.Round != 2 {
		t.Errorf("Expected round 2, got %d", after.Round)
	}
	if !after.Grid.Full() {
		t.Error("Expected a fresh grid after restart")
	}

	for engine.Phase() != PhaseGameOver {
		engine.Tick()
	}
	engine.Restart()
	if engine.Phase() != PhaseCountdown {
		t.Error("Expected restart to leave game over")
	}
}

func TestEngine_EventsInOrder(t *testing.T) {
	config := createTestConfig()
	config.CountdownSeconds = 1
	config.TimeBudgetSeconds = 1
	engine, _ := NewEngine(config, testCatalog(), WithSeed(9), WithNow(func() time.Time { return time.Unix(1700000000, 0) }))

	rec := &eventRecorder{}
	cancel := engine.Subscribe(rec.listen)

	engine.Start()
	engine.Tick()
	engine.Tick()

	want := []EventType{EventPhase, EventPhase, EventPhase, EventGameOver}
	if got := rec.types(); !slices.Equal(got, want) {
		t.Fatalf("Expected events %v, got %v", want, got)
	}
	phases := []Phase{rec.events[0].Phase, rec.events[1].Phase, rec.events[2].Phase}
	if !slices.Equal(phases, []Phase{PhaseCountdown, PhasePlaying, PhaseGameOver}) {
		t.Errorf("Unexpected phase order %v", phases)
	}
	if rec.events[3].Timestamp != 1700000000000 {
		t.Errorf("Expected injected timestamp, got %d", rec.events[3].Timestamp)
	}

	cancel()
	engine.Restart()
	if len(rec.types()) != 4 {
		t.Error("Expected no events after unsubscribing")
	}
}

func TestEngine_GameOverCarriesFinalState(t *testing.T) {
	config := createTestConfig()
	config.CountdownSeconds = 0
	config.TimeBudgetSeconds = 1
	engine, _ := NewEngine(config, testCatalog(), WithSeed(9))

	rec := &eventRecorder{}
	engine.Subscribe(rec.listen)
	engine.Start()
	engine.Tick()

	var over *Event
	for _, ev := range rec.events {
		if ev.Type == EventGameOver {
			over = &ev
		}
	}
	if over == nil {
		t.Fatal("Expected a game_over event")
	}
	if over.Final == nil || over.Final.Phase != PhaseGameOver {
		t.Fatalf("Expected final state in game over phase, got %+v", over.Final)
	}
	if over.Final.Score != over.FinalScore {
		t.Errorf("Expected final state score %d, got %d", over.FinalScore, over.Final.Score)
	}

	engine.Restart()
	if over.Final.Phase != PhaseGameOver || over.Final.Round != 1 {
		t.Errorf("Expected final state to be unaffected by restart, got %s round %d", over.Final.Phase, over.Final.Round)
	}

	t.Run("zero values are on the wire", func(t *testing.T) {
		data, err := json.Marshal(*over)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		for _, field := range []string{`"final_score":0`, `"points":0`, `"amount":0`} {
			if !strings.Contains(string(data), field) {
				t.Errorf("Expected %s in %s", field, data)
			}
		}
		if strings.Contains(string(data), "Final") {
			t.Errorf("Expected final state to stay off the wire, got %s", data)
		}
	})
}

func TestEngine_GetStateIsACopy(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetState(playingState("AIZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ"))

	snap := engine.GetState()
	snap.Grid[0][0] = Empty
	snap.Discovered["XX"] = true
	snap.Score = 12345

	fresh := engine.GetState()
	if fresh.Grid.At(Coord{0, 0}).IsEmpty() || fresh.Discovered["XX"] || fresh.Score == 12345 {
		t.Error("Expected mutations of a snapshot not to leak into the engine")
	}
}

func TestEngine_SetStateValidation(t *testing.T) {
	engine := newTestEngine(t)
	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
	if err := engine.SetState(&GameState{Phase: PhasePlaying}); err == nil {
		t.Error("Expected error for a playing state without grid")
	}
}

func TestEngine_SelectPathAndBackspace(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetState(playingState("APZZZ", "ZIZZZ", "ZZZZZ", "ZZZZZ", "ZZZZZ"))

	outcomes := engine.SelectPath([]Coord{{0, 0}, {0, 1}, {1, 1}, {3, 3}})
	want := []SelectOutcome{SelectAdded, SelectAdded, SelectAdded, SelectRejected}
	if !slices.Equal(outcomes, want) {
		t.Errorf("Expected outcomes %v, got %v", want, outcomes)
	}
	if w := engine.GetState().SelectedWord; w != "API" {
		t.Errorf("Expected selected word API, got %s", w)
	}

	if !engine.Backspace() {
		t.Error("Expected backspace to remove a cell")
	}
	if w := engine.GetState().SelectedWord; w != "AP" {
		t.Errorf("Expected selected word AP, got %s", w)
	}
	engine.ClearSelection()
	if engine.GetState().Selection.Len() != 0 {
		t.Error("Expected cleared selection")
	}
}

func TestEngine_ScoreMonotonic(t *testing.T) {
	engine := newTestEngine(t)
	engine.Start()
	for engine.Phase() != PhasePlaying {
		engine.Tick()
	}

	last := 0
	cat := testCatalog()
	for i := 0; i < 40; i++ {
		state := engine.GetState()
		found := FindWords(state.Grid, cat, 0)
		if i%3 == 0 || len(found) == 0 {
			engine.SelectPath([]Coord{{i % 5, 0}, {i % 5, 1}})
		} else {
			engine.SelectPath(found[0].Path)
		}
		res := engine.Submit()
		if res.Score < last {
			t.Fatalf("Score decreased from %d to %d", last, res.Score)
		}
		last = res.Score
	}
}
