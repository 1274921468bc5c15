// Package mcp exposes Acrohunt to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON response is rendered as text.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - start_game, restart_game: lifecycle
//   - game_state: grid with row/col indices, selection, clock and score
//   - select_cell, select_path, backspace, clear_selection: selection editing
//   - submit_selection: validate and score the selected word
//   - attempt_history: paginated submits of the current round
//   - find_words: abbreviations currently spellable on the grid
//   - leaderboard, list_configs, game_instructions
//
// Transport Modes:
//
// The same server is served over stdio for local MCP clients, or mounted on
// the HTTP server at /mcp.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
