// Command autoplay is a REST bot for Acrohunt. It creates (or resumes) a
// session, waits out the countdown, and spells the words the hint solver
// finds until the clock runs out, optionally for several rounds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play Acrohunt through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Game configuration id (classic, blitz, zen)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "rounds", Value: 1, Usage: "Rounds to play"},
			&cli.IntFlag{Name: "max-words", Usage: "Stop a round after this many submits (0 = until game over)"},
			&cli.IntFlag{Name: "max-len", Usage: "Longest word to look for (0 = server default)"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between submits in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client := NewClient(cmd.String("url"))
	log.Info().Str("url", cmd.String("url")).Msg("connecting to game server")

	if id := cmd.String("continue"); id != "" {
		if _, err := client.Resume(ctx, id); err != nil {
			return fmt.Errorf("resume session %s: %w", id, err)
		}
		log.Info().Str("session", id).Msg("resumed session")
	} else {
		info, err := client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		log.Info().Str("session", info.ID).Str("config", info.ConfigName).Msg("session created")
	}

	opts := BotOptions{
		MaxWords: cmd.Int("max-words"),
		MaxLen:   cmd.Int("max-len"),
		Delay:    time.Duration(cmd.Int("delay")) * time.Millisecond,
		Poll:     time.Second,
	}

	best := 0
	for round := 1; round <= cmd.Int("rounds"); round++ {
		if round > 1 {
			if _, err := client.Restart(ctx); err != nil {
				return fmt.Errorf("restart: %w", err)
			}
		}

		result, err := playRound(ctx, client, opts)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		best = max(best, result.Score)

		log.Info().
			Int("round", round).
			Int("score", result.Score).
			Int("matches", result.Matches).
			Int("first_finds", result.FirstFinds).
			Int("misses", result.Misses).
			Int("grid_resets", result.GridResets).
			Str("phase", string(result.Phase)).
			Msg("round finished")
	}

	log.Info().Str("session", client.SessionID()).Int("best_score", best).Msg("done")
	return nil
}
