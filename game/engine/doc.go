// Package engine provides the core puzzle logic for Acronym Hunt.
//
// The engine package implements the game mechanics including:
//   - Grid generation that hides catalog abbreviations in a square letter grid
//   - Selection tracking over adjacent (including diagonal) cells
//   - Validation of a selection against the term catalog
//   - Scoring, combo growth and decay, and field-clearing bonuses
//   - The session state machine (Idle, Countdown, Playing, GameOver)
//   - Configuration loading and validation
//
// Core Types:
//
// GameEngine is the session state machine. It owns a GameState and is the only
// thing that mutates it; callers receive deep copies from GetState and discrete
// Events through Subscribe. Generator, Selection, Validate and Scorer are the
// pure building blocks it composes, and can be used on their own.
//
// Usage:
//
//	cfg := engine.DefaultGameConfig()
//	eng, err := engine.NewEngine(cfg, catalog.Default(), engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Subscribe(func(ev engine.Event) {
//		fmt.Println(ev.Type, ev.Points)
//	})
//
//	eng.Start()            // Idle -> Countdown, grid generated
//	eng.Tick()             // one call per second from a Clock
//	eng.Select(engine.Coord{Row: 0, Col: 0})
//	eng.Select(engine.Coord{Row: 0, Col: 1})
//	result := eng.Submit() // validate, score, clear cells
//
// Game Rules:
//
// Players chain adjacent letters to spell abbreviations from the catalog. A
// first-time find scores the letters of the full name times (10 + combo); a
// repeat scores them times (1 + combo). Every match grows the combo, every miss
// resets it. Clearing the grid down to a handful of cells pays a field bonus,
// and clearing it (almost) completely regenerates the grid. The game ends when
// the time budget runs out.
package engine
