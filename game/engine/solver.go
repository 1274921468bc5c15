package engine

import (
	"sort"

	"github.com/wricardo/acrohunt/game/catalog"
)

// DefaultSolverDepth bounds the path length FindWords explores by default.
const DefaultSolverDepth = 6

// Found is an abbreviation that can currently be spelled on a grid.
type Found struct {
	Word string       `json:"word"`
	Term catalog.Term `json:"term"`
	Path []Coord      `json:"path"`
}

// FindWords searches every path of 2..maxLen adjacent, distinct, non-empty
// cells and returns one path per catalog abbreviation it spells, ordered by
// word length (longest first) then alphabetically. A non-positive maxLen
// defaults to the grid size, capped at DefaultSolverDepth.
func FindWords(grid Grid, lookup Lookup, maxLen int) []Found {
	if lookup == nil || grid.Size() == 0 {
		return nil
	}
	if maxLen <= 0 {
		maxLen = min(grid.Size(), DefaultSolverDepth)
	}

	seen := make(map[string]Found)
	var path Selection
	var walk func(c Coord)
	walk = func(c Coord) {
		path = append(path, c)
		defer func() { path = path[:len(path)-1] }()

		if len(path) >= catalog.MinAbbreviationLength {
			word := grid.Word(path)
			if _, dup := seen[word]; !dup {
				if term, err := lookup.Lookup(word); err == nil {
					seen[word] = Found{Word: word, Term: term, Path: path.Coords()}
				}
			}
		}
		if len(path) == maxLen {
			return
		}
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				next := Coord{Row: c.Row + dr, Col: c.Col + dc}
				if (dr == 0 && dc == 0) || grid.At(next).IsEmpty() || path.Contains(next) {
					continue
				}
				walk(next)
			}
		}
	}

	for r := range grid {
		for col := range grid[r] {
			c := Coord{Row: r, Col: col}
			if !grid.At(c).IsEmpty() {
				walk(c)
			}
		}
	}

	found := make([]Found, 0, len(seen))
	for _, f := range seen {
		found = append(found, f)
	}
	sort.Slice(found, func(i, j int) bool {
		if len(found[i].Word) != len(found[j].Word) {
			return len(found[i].Word) > len(found[j].Word)
		}
		return found[i].Word < found[j].Word
	})
	return found
}
