package results

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/acrohunt/game/engine"
)

// ErrNotFinished is returned when a summary is requested for a running game.
var ErrNotFinished = errors.New("game is not over")

// DefaultLeaderboardLimit is used when a caller asks for a non-positive limit.
const DefaultLeaderboardLimit = 20

// Summary is the final record of one session round.
type Summary struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ConfigName string    `json:"config_name"`
	Round      int       `json:"round"`
	Score      int       `json:"score"`
	Matches    int       `json:"matches"`
	Misses     int       `json:"misses"`
	MaxCombo   int       `json:"max_combo"`
	GridResets int       `json:"grid_resets"`
	Discovered []string  `json:"discovered"`
	FinishedAt time.Time `json:"finished_at"`
}

// Sink receives summaries after GameOver.
type Sink interface {
	SubmitResult(ctx context.Context, s Summary) error
}

// Leaderboard lists the best summaries, highest score first.
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]Summary, error)
}

// Store is a Sink that also serves a leaderboard.
type Store interface {
	Sink
	Leaderboard
	Close() error
}

// NewSummary builds a summary from a finished game state.
func NewSummary(sessionID string, state *engine.GameState) (Summary, error) {
	if state == nil || state.Phase != engine.PhaseGameOver {
		return Summary{}, ErrNotFinished
	}

	discovered := make([]string, 0, len(state.Discovered))
	for abbr, ok := range state.Discovered {
		if ok {
			discovered = append(discovered, abbr)
		}
	}
	sort.Strings(discovered)

	finished := time.Now().UTC()
	if state.FinishedAt > 0 {
		finished = time.Unix(state.FinishedAt, 0).UTC()
	}

	return Summary{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		ConfigName: state.ConfigName,
		Round:      state.Round,
		Score:      state.Score,
		Matches:    state.Matches,
		Misses:     state.Misses,
		MaxCombo:   state.MaxCombo,
		GridResets: state.GridResets,
		Discovered: discovered,
		FinishedAt: finished,
	}, nil
}

// rank orders summaries by score, then earliest finish.
func rank(list []Summary) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].FinishedAt.Before(list[j].FinishedAt)
	})
}
