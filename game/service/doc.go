// Package service provides the business logic layer for Acrohunt.
//
// The service sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. It owns:
//   - session lifecycle on top of a SessionManager
//   - one clock driver goroutine per running session, which ticks the engine
//     once per time unit until GameOver
//   - phase gating, so gameplay calls outside Playing fail with ErrWrongPhase
//   - forwarding engine events and tick states to a Publisher
//   - handing finished-game summaries to a results.Sink
//
// Usage:
//
//	sessionMgr := session.NewManager(provider)
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithPublisher(hub),
//		service.WithResultSink(results.NewSubmitter(store, 5)),
//		service.WithLeaderboard(store),
//	)
//	defer gameService.Close()
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService.StartGame(ctx, info.ID)
//
// Tests replace the real-time clock with engine.NewManualClock through
// WithClock.
package service
