package engine

import (
	"math/rand/v2"

	"github.com/wricardo/acrohunt/game/catalog"
)

// Board is a freshly generated grid together with the terms hidden in it.
type Board struct {
	Grid       Grid        `json:"grid"`
	Placements []Placement `json:"placements"`
}

// Generator hides catalog terms in a square grid and fills the rest with noise.
// It is not safe for concurrent use because it owns its random source.
type Generator struct {
	size     int
	maxTerms int
	attempts int
	rng      *rand.Rand
}

// NewGenerator creates a generator. A nil rng gets a randomly seeded source.
// Non-positive sizes and counts fall back to the defaults.
func NewGenerator(size, maxTerms, attempts int, rng *rand.Rand) *Generator {
	if size <= 0 {
		size = DefaultGridSize
	}
	if maxTerms < 0 {
		maxTerms = DefaultMaxTerms
	}
	if attempts <= 0 {
		attempts = DefaultPlacementAttempts
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{size: size, maxTerms: maxTerms, attempts: attempts, rng: rng}
}

// Size returns the edge length of generated grids.
func (g *Generator) Size() int {
	return g.size
}

// Generate builds a fully populated grid. Terms that cannot be placed are
// skipped; with no placeable terms the grid is pure noise.
func (g *Generator) Generate(terms []catalog.Term) *Board {
	grid := NewGrid(g.size)
	var placements []Placement

	for _, term := range g.candidates(terms) {
		if p, ok := g.place(grid, term); ok {
			placements = append(placements, p)
		}
	}

	for r := range grid {
		for c := range grid[r] {
			if grid[r][c].IsEmpty() {
				grid[r][c] = Cell('A' + g.rng.IntN(26))
			}
		}
	}

	return &Board{Grid: grid, Placements: placements}
}

// candidates picks up to maxTerms terms at random, preferring those that fit
// the grid edge and topping up with longer ones.
func (g *Generator) candidates(terms []catalog.Term) []catalog.Term {
	var short, long []catalog.Term
	for _, t := range terms {
		if catalog.ValidateTerm(t) != nil {
			continue
		}
		t.Abbreviation = catalog.Normalize(t.Abbreviation)
		if len(t.Abbreviation) <= g.size {
			short = append(short, t)
		} else {
			long = append(long, t)
		}
	}
	g.rng.Shuffle(len(short), func(i, j int) { short[i], short[j] = short[j], short[i] })
	g.rng.Shuffle(len(long), func(i, j int) { long[i], long[j] = long[j], long[i] })

	picked := short[:min(len(short), g.maxTerms)]
	if missing := g.maxTerms - len(picked); missing > 0 {
		picked = append(picked, long[:min(len(long), missing)]...)
	}
	return picked
}

// place tries every direction in random order, with a bounded number of
// random anchors each, and commits the first placement that fits.
func (g *Generator) place(grid Grid, term catalog.Term) (Placement, bool) {
	dirs := append([]Direction(nil), AllDirections...)
	g.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	length := len(term.Abbreviation)
	for _, dir := range dirs {
		rowLo, rowHi, colLo, colHi, ok := anchorRange(g.size, length, dir)
		if !ok {
			continue
		}
		for attempt := 0; attempt < g.attempts; attempt++ {
			p := Placement{
				Term:      term,
				Row:       rowLo + g.rng.IntN(rowHi-rowLo+1),
				Col:       colLo + g.rng.IntN(colHi-colLo+1),
				Direction: dir,
			}
			if fits(grid, p) {
				for i, c := range p.Path() {
					grid[c.Row][c.Col] = Cell(term.Abbreviation[i])
				}
				return p, true
			}
		}
	}
	return Placement{}, false
}

// anchorRange returns the inclusive anchor bounds that keep a span of length
// cells inside the grid, or ok=false when the span cannot fit at all.
func anchorRange(size, length int, dir Direction) (rowLo, rowHi, colLo, colHi int, ok bool) {
	if length > size {
		return 0, 0, 0, 0, false
	}
	dr, dc := dir.Delta()
	rowLo, rowHi = span(size, length, dr)
	colLo, colHi = span(size, length, dc)
	return rowLo, rowHi, colLo, colHi, true
}

func span(size, length, step int) (int, int) {
	switch step {
	case 1:
		return 0, size - length
	case -1:
		return length - 1, size - 1
	}
	return 0, size - 1
}

// fits reports whether every cell of p is in bounds and either empty or
// already holding the required letter.
func fits(grid Grid, p Placement) bool {
	for i, c := range p.Path() {
		if !grid.InBounds(c) {
			return false
		}
		cell := grid[c.Row][c.Col]
		if !cell.IsEmpty() && cell != Cell(p.Term.Abbreviation[i]) {
			return false
		}
	}
	return true
}
