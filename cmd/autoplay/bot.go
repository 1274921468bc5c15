package main

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/acrohunt/game/engine"
)

// BotOptions tunes one round of play.
type BotOptions struct {
	// MaxWords stops the round after this many submits; 0 plays until GameOver.
	MaxWords int
	// MaxLen bounds the hint search depth.
	MaxLen int
	// Delay is waited between submits.
	Delay time.Duration
	// Poll bounds the wait between state checks when nothing can be spelled.
	Poll time.Duration
}

// RoundResult summarizes one round.
type RoundResult struct {
	Submits    int
	Matches    int
	Misses     int
	FirstFinds int
	Score      int
	GridResets int
	Phase      engine.Phase
}

var errGameOver = errors.New("game over")

// pickWord prefers undiscovered abbreviations, longest first. found is
// expected in solver order (longest first).
func pickWord(found []engine.Found, discovered map[string]bool) (engine.Found, bool) {
	if len(found) == 0 {
		return engine.Found{}, false
	}
	for _, f := range found {
		if !discovered[f.Term.Abbreviation] {
			return f, true
		}
	}
	return found[0], true
}

// waitForPlaying polls the session until the countdown is over.
func waitForPlaying(ctx context.Context, client *Client, poll time.Duration) (*engine.GameState, error) {
	b := &backoff.Backoff{Min: 50 * time.Millisecond, Max: poll, Factor: 2}
	for {
		state, err := client.State(ctx)
		if err != nil {
			return nil, err
		}
		switch state.Phase {
		case engine.PhasePlaying:
			return state, nil
		case engine.PhaseGameOver:
			return state, errGameOver
		case engine.PhaseIdle:
			if state, err = client.Start(ctx); err != nil {
				return nil, err
			}
			if state.Phase == engine.PhasePlaying {
				return state, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

// playRound spells hinted words until the round ends, MaxWords is reached or
// ctx is cancelled.
func playRound(ctx context.Context, client *Client, opts BotOptions) (RoundResult, error) {
	if opts.Poll <= 0 {
		opts.Poll = time.Second
	}

	var result RoundResult
	state, err := waitForPlaying(ctx, client, opts.Poll)
	if errors.Is(err, errGameOver) {
		result.Phase = state.Phase
		result.Score = state.Score
		return result, nil
	}
	if err != nil {
		return result, err
	}
	log.Info().Str("session", client.SessionID()).Int("time_left", state.TimeLeft).Msg("round started")

	idle := &backoff.Backoff{Min: 100 * time.Millisecond, Max: opts.Poll, Factor: 2}
	for opts.MaxWords == 0 || result.Submits < opts.MaxWords {
		found, err := client.Hints(ctx, opts.MaxLen)
		if err != nil {
			return result, err
		}

		word, ok := pickWord(found, state.Discovered)
		if !ok {
			// Nothing spellable: wait for the clock, the grid only changes on a match or restart.
			log.Debug().Str("session", client.SessionID()).Msg("no words on grid")
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(idle.Duration()):
			}
			if state, err = client.State(ctx); err != nil {
				return result, err
			}
			if state.Phase != engine.PhasePlaying {
				break
			}
			continue
		}
		idle.Reset()

		res, err := client.Spell(ctx, word.Path)
		if err != nil {
			// Most likely the clock ran out between hint and submit.
			log.Warn().Err(err).Str("word", word.Word).Msg("submit failed")
			if state, err = client.State(ctx); err != nil {
				return result, err
			}
			if state.Phase != engine.PhasePlaying {
				break
			}
			continue
		}
		state = res.GameState
		result.Submits++

		if sub := res.Result; sub != nil && sub.Matched {
			result.Matches++
			if sub.FirstFind {
				result.FirstFinds++
			}
			log.Info().
				Str("word", sub.Word).
				Int("points", sub.Points).
				Int("bonus", sub.Bonus).
				Int("combo", sub.Combo).
				Bool("grid_reset", sub.GridReset).
				Msg("match")
		} else {
			result.Misses++
			if res.Result != nil {
				log.Info().Str("word", res.Result.Word).Str("reason", string(res.Result.Reason)).Msg("miss")
			}
			// A rejected append leaves a partial selection behind.
			if len(state.Selection) > 0 {
				if err := client.Clear(ctx); err != nil {
					return result, err
				}
			}
		}

		if state.Phase != engine.PhasePlaying {
			break
		}
		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	result.Phase = state.Phase
	result.Score = state.Score
	result.GridResets = state.GridResets
	return result, nil
}
