package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/results"
)

var (
	// ErrWrongPhase is returned when an operation is not allowed in the session's current phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
	// ErrPathTooLong is returned when a select-path request exceeds the largest possible grid.
	ErrPathTooLong = errors.New("path too long")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Lifecycle
	StartGame(ctx context.Context, sessionID string) (*engine.GameState, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Gameplay, accepted only while Playing
	Select(ctx context.Context, sessionID string, cell engine.Coord) (*SelectResult, error)
	SelectPath(ctx context.Context, sessionID string, cells []engine.Coord, submit bool) (*PathResult, error)
	Backspace(ctx context.Context, sessionID string) (*engine.GameState, error)
	ClearSelection(ctx context.Context, sessionID string) (*engine.GameState, error)
	Submit(ctx context.Context, sessionID string) (*SubmitResponse, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetAttemptHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	FindWords(ctx context.Context, sessionID string, maxLen int) ([]engine.Found, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Results
	Leaderboard(ctx context.Context, limit int) ([]results.Summary, error)

	// Maintenance
	CleanupExpired(maxAge time.Duration) int
	Close()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	CleanupExpiredSessions(maxAge time.Duration) []string
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Publisher fans session updates out to live subscribers such as websocket clients.
type Publisher interface {
	PublishEvent(sessionID string, ev engine.Event)
	PublishState(sessionID string, state *engine.GameState)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
