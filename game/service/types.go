package service

import (
	"time"

	"github.com/wricardo/acrohunt/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Ticking        bool               `json:"ticking"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// SelectResult is the outcome of a single cell selection
type SelectResult struct {
	Outcome   engine.SelectOutcome `json:"outcome"`
	GameState *engine.GameState    `json:"game_state"`
}

// PathResult is the outcome of selecting several cells, optionally followed by a submit
type PathResult struct {
	Outcomes  []engine.SelectOutcome `json:"outcomes"`
	Added     int                    `json:"added"`
	Submitted bool                   `json:"submitted"`
	Result    *engine.SubmitResult   `json:"result,omitempty"`
	GameState *engine.GameState      `json:"game_state"`
}

// SubmitResponse wraps a submit outcome with the resulting state
type SubmitResponse struct {
	Result    engine.SubmitResult `json:"result"`
	Message   string              `json:"message"`
	GameState *engine.GameState   `json:"game_state"`
}

// HistoryOptions configures attempt history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated attempt history
type HistoryResponse struct {
	Attempts      []engine.AttemptEntry `json:"attempts"`
	TotalAttempts int                   `json:"total_attempts"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
	HasNext       bool                  `json:"has_next"`
	HasPrevious   bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename          string `json:"filename"`
	ConfigID          string `json:"config_id"` // The identifier to use for session creation
	Name              string `json:"name"`      // Display name
	Description       string `json:"description"`
	GridSize          int    `json:"grid_size"`
	MaxTerms          int    `json:"max_terms"`
	TimeBudgetSeconds int    `json:"time_budget_seconds"`
}
