package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Configuration limits and defaults
const (
	MinGridSize = 3
	MaxGridSize = 12

	DefaultGridSize          = 5
	DefaultMaxTerms          = 5
	DefaultPlacementAttempts = 20
	DefaultCountdownSeconds  = 3
	DefaultTimeBudgetSeconds = 120

	MaxPlacementAttempts = 1000
	MaxCountdownSeconds  = 60
	MaxTimeBudgetSeconds = 3600
)

// Messages are the player-facing texts of a preset. Format verbs are
// checked by ValidateGameConfig.
type Messages struct {
	Welcome            string `json:"welcome"`
	Countdown          string `json:"countdown"`
	Playing            string `json:"playing"`
	Match              string `json:"match"`        // abbreviation, full name, points
	RepeatMatch        string `json:"repeat_match"` // abbreviation, points
	Miss               string `json:"miss"`         // word
	TooShort           string `json:"too_short"`
	CatalogUnavailable string `json:"catalog_unavailable"`
	Bonus              string `json:"bonus"`      // amount
	FullClear          string `json:"full_clear"` // amount
	GameOver           string `json:"game_over"`  // final score
}

// GameConfig describes a game preset.
type GameConfig struct {
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	GridSize          int           `json:"grid_size"`
	MaxTerms          int           `json:"max_terms"`
	PlacementAttempts int           `json:"placement_attempts"`
	CountdownSeconds  int           `json:"countdown_seconds"`
	TimeBudgetSeconds int           `json:"time_budget_seconds"`
	Scoring           ScoringConfig `json:"scoring"`
	Messages          Messages      `json:"messages"`
}

// DefaultMessages returns the stock English texts.
func DefaultMessages() Messages {
	return Messages{
		Welcome:            "Welcome to Acronym Hunt! Chain adjacent letters to spell abbreviations.",
		Countdown:          "Get ready...",
		Playing:            "Go! Find as many abbreviations as you can.",
		Match:              "Found %s (%s)! +%d points",
		RepeatMatch:        "%s again! +%d points",
		Miss:               "%s is not in the catalog. Combo lost.",
		TooShort:           "Select at least two letters.",
		CatalogUnavailable: "Catalog still loading. Combo lost.",
		Bonus:              "Field bonus +%d!",
		FullClear:          "Full clear! +%d bonus and a fresh grid!",
		GameOver:           "Time's up! Final score: %d",
	}
}

// DefaultGameConfig returns the classic preset.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:              "classic",
		Description:       "Classic 5x5 grid, two minutes on the clock",
		GridSize:          DefaultGridSize,
		MaxTerms:          DefaultMaxTerms,
		PlacementAttempts: DefaultPlacementAttempts,
		CountdownSeconds:  DefaultCountdownSeconds,
		TimeBudgetSeconds: DefaultTimeBudgetSeconds,
		Scoring:           DefaultScoringConfig(),
		Messages:          DefaultMessages(),
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	cells := config.GridSize * config.GridSize
	if config.MaxTerms < 0 || config.MaxTerms > cells {
		return fmt.Errorf("config validation: max_terms must be between 0 and %d, got %d", cells, config.MaxTerms)
	}
	if config.PlacementAttempts < 1 || config.PlacementAttempts > MaxPlacementAttempts {
		return fmt.Errorf("config validation: placement_attempts must be between 1 and %d, got %d", MaxPlacementAttempts, config.PlacementAttempts)
	}
	if config.CountdownSeconds < 0 || config.CountdownSeconds > MaxCountdownSeconds {
		return fmt.Errorf("config validation: countdown_seconds must be between 0 and %d, got %d", MaxCountdownSeconds, config.CountdownSeconds)
	}
	if config.TimeBudgetSeconds < 1 || config.TimeBudgetSeconds > MaxTimeBudgetSeconds {
		return fmt.Errorf("config validation: time_budget_seconds must be between 1 and %d, got %d", MaxTimeBudgetSeconds, config.TimeBudgetSeconds)
	}

	s := config.Scoring
	if s.FirstFindBase < 0 || s.RepeatBase < 0 || s.FullClearBonus < 0 || s.NearClearUnit < 0 {
		return fmt.Errorf("config validation: scoring values must not be negative")
	}
	if s.NearClearWindow < 0 || s.NearClearWindow >= cells {
		return fmt.Errorf("config validation: scoring.near_clear_window must be between 0 and %d, got %d", cells-1, s.NearClearWindow)
	}
	if s.ResetThreshold < 0 || s.ResetThreshold >= cells {
		return fmt.Errorf("config validation: scoring.reset_threshold must be between 0 and %d, got %d", cells-1, s.ResetThreshold)
	}
	if s.MultiplierStep < 0 {
		return fmt.Errorf("config validation: scoring.multiplier_step must not be negative")
	}
	if s.MaxMultiplier < 1 {
		return fmt.Errorf("config validation: scoring.max_multiplier must be at least 1, got %g", s.MaxMultiplier)
	}

	m := config.Messages
	if m.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if m.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}
	formats := []struct {
		field, value string
		verbs        []string
	}{
		{"match", m.Match, []string{"%s", "%d"}},
		{"repeat_match", m.RepeatMatch, []string{"%s", "%d"}},
		{"miss", m.Miss, []string{"%s"}},
		{"bonus", m.Bonus, []string{"%d"}},
		{"full_clear", m.FullClear, []string{"%d"}},
		{"game_over", m.GameOver, []string{"%d"}},
	}
	for _, f := range formats {
		if f.value == "" {
			continue
		}
		for _, verb := range f.verbs {
			if !strings.Contains(f.value, verb) {
				return fmt.Errorf("config validation: messages.%s must contain %s", f.field, verb)
			}
		}
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file. Fields missing
// from the file keep their DefaultGameConfig values.
func LoadGameConfig(filename string) (*GameConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a JSON preset on top of the defaults.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	config := DefaultGameConfig()
	config.Name = ""
	config.Description = ""
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// InitGameStateFromConfig creates an Idle game state for config. The grid is
// generated later, when the game starts.
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	return &GameState{
		Phase:         PhaseIdle,
		CountdownLeft: config.CountdownSeconds,
		TimeLeft:      config.TimeBudgetSeconds,
		TimeBudget:    config.TimeBudgetSeconds,
		Discovered:    make(map[string]bool),
		Selection:     Selection{},
		Attempts:      []AttemptEntry{},
		Message:       config.Messages.Welcome,
		ConfigName:    config.Name,
		Multiplier:    DisplayMultiplier(0, config.Scoring.MultiplierStep, config.Scoring.MaxMultiplier),
	}
}
