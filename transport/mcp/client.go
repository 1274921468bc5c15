package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/results"
	"github.com/wricardo/acrohunt/game/service"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Acrohunt",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Acrohunt - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find tech abbreviations (CPU, DNS, HTTP...) hidden in a letter grid before the clock runs out.
Build a word by selecting adjacent cells (including diagonals) and submit it.

TYPICAL FLOW:
1. create_session, then start_game
2. game_state until the phase is "playing" (there is a short countdown)
3. select_path with submit=true for each word you spot, or select_cell + submit_selection
4. find_words lists spellable abbreviations when you are stuck
5. restart_game to play again, leaderboard to compare scores

Call game_instructions for the full rules and scoring.`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnly(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}
}

func noArgs(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new idle game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(noArgs("list_sessions", "List all active game sessions"), c.handleListSessions)
	c.mcpServer.AddTool(sessionOnly("get_session", "Get details of a specific session"), c.handleGetSession)

	// Lifecycle
	c.mcpServer.AddTool(sessionOnly("start_game", "Start the countdown of an idle session"), c.handleStartGame)
	c.mcpServer.AddTool(sessionOnly("restart_game", "Start a new round with a fresh grid and zero score"), c.handleRestart)

	// Gameplay
	c.mcpServer.AddTool(sessionOnly("game_state", "Get the current grid, selection, clock and score"), c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_cell",
		Description: "Append one cell to the selection. It must be adjacent (including diagonals) to the last selected cell. Selecting the last cell again removes it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top to bottom)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left to right)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleSelectCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_path",
		Description: "Append several cells in order and optionally submit the resulting word",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"cells": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"row": map[string]interface{}{"type": "integer"},
							"col": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"row", "col"},
					},
					"description": "Cells to select, in spelling order",
				},
				"submit": map[string]interface{}{
					"type":        "boolean",
					"description": "Submit the selection after appending (default true)",
				},
			},
			Required: []string{"session_id", "cells"},
		},
	}, c.handleSelectPath)

	c.mcpServer.AddTool(sessionOnly("backspace", "Remove the last selected cell"), c.handleBackspace)
	c.mcpServer.AddTool(sessionOnly("clear_selection", "Clear the whole selection"), c.handleClearSelection)
	c.mcpServer.AddTool(sessionOnly("submit_selection", "Submit the selected word for validation and scoring"), c.handleSubmit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "attempt_history",
		Description: "Get submitted words of the current round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAttemptHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_words",
		Description: "List abbreviations that can currently be spelled on the grid, with their cell paths",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"max_len": map[string]interface{}{
					"type":        "integer",
					"description": "Longest word to search for (default 6)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleFindWords)

	// Results and configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Show the best finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of entries (default 10)",
				},
			},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(noArgs("list_configs", "List available game configurations"), c.handleListConfigs)
	c.mcpServer.AddTool(noArgs("game_instructions", "Get comprehensive game instructions and rules"), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]interface{}, key string, def int) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return def, false
}

func argBool(args map[string]interface{}, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := argString(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return id, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{}
	if configID := argString(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nPhase: %s\n\nCall start_game to begin the countdown.",
		info.ID, info.ConfigName, phaseOf(info.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score := 0
		if s.GameState != nil {
			score = s.GameState.Score
		}
		result += fmt.Sprintf("- %s (Config: %s, Phase: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, phaseOf(s.GameState), score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(ctx, request, "/start")
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(ctx, request, "/restart")
}

func (c *Client) lifecycle(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(response.State)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	row, okRow := argInt(args, "row", 0)
	col, okCol := argInt(args, "col", 0)
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var result service.SelectResult
	body := map[string]int{"row": row, "col": col}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Select (%d,%d): %s\n\n%s", row, col, result.Outcome, formatGameState(result.GameState))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleSelectPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	raw, ok := args["cells"].([]interface{})
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("cells must be a non-empty array of {row, col}"), nil
	}
	cells := make([]engine.Coord, 0, len(raw))
	for i, item := range raw {
		cell, ok := item.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("cells[%d] must be an object with row and col", i)), nil
		}
		row, okRow := argInt(cell, "row", 0)
		col, okCol := argInt(cell, "col", 0)
		if !okRow || !okCol {
			return mcp.NewToolResultError(fmt.Sprintf("cells[%d] needs integer row and col", i)), nil
		}
		cells = append(cells, engine.Coord{Row: row, Col: col})
	}

	body := map[string]interface{}{
		"cells":  cells,
		"submit": argBool(args, "submit", true),
	}
	var result service.PathResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select-path"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPathResult(cells, &result)), nil
}

func (c *Client) handleBackspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.edit(ctx, request, "/backspace")
}

func (c *Client) handleClearSelection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.edit(ctx, request, "/clear")
}

func (c *Client) edit(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response service.SubmitResponse
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/submit"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := formatSubmitResult(&response.Result) + "\n\n" + formatGameState(response.GameState)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleAttemptHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	query := url.Values{}
	if page, ok := argInt(args, "page", 0); ok && page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := argInt(args, "limit", 0); ok && limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleFindWords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	path := sessionPath(sessionID, "/hints")
	if maxLen, ok := argInt(args, "max_len", 0); ok && maxLen >= 2 {
		path += fmt.Sprintf("?max_len=%d", maxLen)
	}

	var response struct {
		Count int            `json:"count"`
		Words []engine.Found `json:"words"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFound(response.Words)), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, ok := argInt(arguments(request), "limit", 10)
	if !ok || limit <= 0 {
		limit = 10
	}

	var response struct {
		Count   int               `json:"count"`
		Entries []results.Summary `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/leaderboard?limit=%d", limit), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(response.Entries)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  Grid: %dx%d, Terms: %d, Time: %ds\n\n",
			cfg.ConfigID, cfg.Description, cfg.GridSize, cfg.GridSize, cfg.MaxTerms, cfg.TimeBudgetSeconds)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Acrohunt - Complete Instructions

GAME OBJECTIVE:
Find as many tech abbreviations as you can in the letter grid before time runs out.

PHASES:
• idle: session created, no grid yet. Call start_game.
• countdown: a fresh grid is shown, the clock has not started. Gameplay calls are rejected.
• playing: the clock ticks once per second. Select and submit words.
• game_over: the clock hit zero. Call restart_game to play again.

SELECTING:
• A selection is a path of cells. Each new cell must touch the previous one,
  horizontally, vertically or diagonally.
• A cell may appear only once in a path. Empty cells (.) cannot be selected.
• Selecting the last cell again removes it. backspace removes the last cell,
  clear_selection removes all of them.
• The word is the letters of the path, in order.

SUBMITTING:
• Words shorter than 2 letters are a miss (too_short).
• A word that matches a catalog abbreviation is a match. Its cells become empty.
• Anything else is a miss (no_match). A miss resets your combo.

SCORING:
• A match scores (letters in the full name) × (base + combo).
  The base is 10 for a first find and 1 for a repeat.
• The combo grows with each consecutive match and drops to 0 on a miss.
  The multiplier shown in game_state is a display view of the combo.
• Near-clear bonus: with 5 or fewer letters left after a match you earn
  (6 − remaining) × 50 points.
• Clearing the grid earns 1000 points. With 1 or 0 letters left a fresh grid
  is dealt and your combo restarts.

TIPS:
• find_words lists every abbreviation currently spellable, with its path.
• select_path with submit=true selects and submits a whole word in one call.
• Cells are addressed as row, col starting from 0 at the top left.
(Exact numbers depend on the session's configuration, see list_configs.)`
