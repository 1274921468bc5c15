// Command analyze prints quick, human-readable statistics about the term
// catalog and the game presets: abbreviation lengths, how many terms fit each
// preset's grid, and how many terms a sample of generated boards actually
// hides and leaves spellable.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/acrohunt/game/catalog"
	"github.com/wricardo/acrohunt/game/config"
	"github.com/wricardo/acrohunt/game/engine"
)

// CatalogStats summarizes abbreviation lengths in a catalog.
type CatalogStats struct {
	Terms    int
	Skipped  int
	ByLength map[int]int
	Longest  string
}

// Fitting returns how many terms have at most size letters.
func (s CatalogStats) Fitting(size int) int {
	n := 0
	for length, count := range s.ByLength {
		if length <= size {
			n += count
		}
	}
	return n
}

// SampleStats aggregates a batch of generated boards.
type SampleStats struct {
	Boards        int
	MinPlaced     int
	MaxPlaced     int
	TotalPlaced   int
	TotalSpelled  int
	NoiseOnly     int
	PlacedByTerms map[string]int
}

// AvgPlaced is the mean number of hidden terms per board.
func (s SampleStats) AvgPlaced() float64 {
	if s.Boards == 0 {
		return 0
	}
	return float64(s.TotalPlaced) / float64(s.Boards)
}

// AvgSpellable is the mean number of catalog words spellable per board,
// including accidental ones formed by filler letters.
func (s SampleStats) AvgSpellable() float64 {
	if s.Boards == 0 {
		return 0
	}
	return float64(s.TotalSpelled) / float64(s.Boards)
}

func analyzeCatalog(cat *catalog.Catalog) CatalogStats {
	stats := CatalogStats{
		Terms:    cat.Len(),
		Skipped:  len(cat.Skipped()),
		ByLength: make(map[int]int),
	}
	for _, t := range cat.Terms() {
		stats.ByLength[len(t.Abbreviation)]++
		if len(t.Abbreviation) > len(stats.Longest) {
			stats.Longest = t.Abbreviation
		}
	}
	return stats
}

// sampleBoards generates n boards for cfg with a seeded source.
func sampleBoards(cat *catalog.Catalog, cfg *engine.GameConfig, n int, seed uint64) SampleStats {
	rng := rand.New(rand.NewPCG(seed, seed))
	gen := engine.NewGenerator(cfg.GridSize, cfg.MaxTerms, cfg.PlacementAttempts, rng)
	terms := cat.Terms()

	stats := SampleStats{MinPlaced: -1, PlacedByTerms: make(map[string]int)}
	for i := 0; i < n; i++ {
		board := gen.Generate(terms)
		placed := len(board.Placements)

		stats.Boards++
		stats.TotalPlaced += placed
		if stats.MinPlaced < 0 || placed < stats.MinPlaced {
			stats.MinPlaced = placed
		}
		stats.MaxPlaced = max(stats.MaxPlaced, placed)
		if placed == 0 {
			stats.NoiseOnly++
		}
		for _, p := range board.Placements {
			stats.PlacedByTerms[p.Term.Abbreviation]++
		}
		stats.TotalSpelled += len(engine.FindWords(board.Grid, cat, engine.DefaultSolverDepth))
	}
	if stats.MinPlaced < 0 {
		stats.MinPlaced = 0
	}
	return stats
}

func printCatalog(w io.Writer, stats CatalogStats) {
	fmt.Fprintf(w, "Terms: %d (skipped %d)\n", stats.Terms, stats.Skipped)
	fmt.Fprintf(w, "Longest: %s (%d letters)\n", stats.Longest, len(stats.Longest))

	lengths := make([]int, 0, len(stats.ByLength))
	for l := range stats.ByLength {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	for _, l := range lengths {
		fmt.Fprintf(w, "  %2d letters: %3d %s\n", l, stats.ByLength[l], strings.Repeat("#", stats.ByLength[l]))
	}
}

func printSample(w io.Writer, cfg *engine.GameConfig, cstats CatalogStats, stats SampleStats) {
	fmt.Fprintf(w, "Grid: %dx%d, max terms %d, countdown %ds, budget %ds\n",
		cfg.GridSize, cfg.GridSize, cfg.MaxTerms, cfg.CountdownSeconds, cfg.TimeBudgetSeconds)
	fmt.Fprintf(w, "Terms fitting the grid: %d of %d\n", cstats.Fitting(cfg.GridSize), cstats.Terms)
	fmt.Fprintf(w, "Hidden per board: avg %.2f, min %d, max %d over %d boards\n",
		stats.AvgPlaced(), stats.MinPlaced, stats.MaxPlaced, stats.Boards)
	fmt.Fprintf(w, "Spellable per board: avg %.2f\n", stats.AvgSpellable())

	if stats.NoiseOnly > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d boards hid no terms at all\n", stats.NoiseOnly)
	} else {
		fmt.Fprintf(w, "✅ Every board hid at least one term\n")
	}
	if cstats.Fitting(cfg.GridSize) < cfg.MaxTerms {
		fmt.Fprintf(w, "⚠️  WARNING: only %d terms fit a %dx%d grid but max_terms is %d\n",
			cstats.Fitting(cfg.GridSize), cfg.GridSize, cfg.GridSize, cfg.MaxTerms)
	}
}

func run(w io.Writer, configDir, catalogFile string, samples int, seed uint64) error {
	cat := catalog.Default()
	if catalogFile != "" {
		loaded, err := catalog.LoadFile(catalogFile)
		if err != nil {
			return err
		}
		cat = loaded
	}

	cstats := analyzeCatalog(cat)
	fmt.Fprintf(w, "\n=== Catalog ===\n")
	printCatalog(w, cstats)

	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}
	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range presets {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError loading config: %v\n", info.Filename, err)
			continue
		}
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		printSample(w, cfg, cstats, sampleBoards(cat, cfg, samples, seed))
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "catalog and preset statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations"},
			&cli.StringFlag{Name: "catalog", Usage: "Term catalog file; empty uses the built-in catalog"},
			&cli.IntFlag{Name: "samples", Value: 200, Usage: "Boards to generate per preset"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Random seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), cmd.String("catalog"), cmd.Int("samples"), uint64(cmd.Int("seed")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
