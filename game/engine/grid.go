package engine

import "strings"

// Grid is a square matrix of cells indexed [row][col].
type Grid [][]Cell

// NewGrid allocates an empty size x size grid.
func NewGrid(size int) Grid {
	g := make(Grid, size)
	for i := range g {
		g[i] = make([]Cell, size)
	}
	return g
}

// GridFromRows builds a grid from row strings; '.' and ' ' mark empty cells.
func GridFromRows(rows []string) Grid {
	g := NewGrid(len(rows))
	for r, row := range rows {
		g[r] = make([]Cell, len(row))
		for c, ch := range strings.ToUpper(row) {
			if ch == '.' || ch == ' ' {
				continue
			}
			g[r][c] = Cell(ch)
		}
	}
	return g
}

// Size returns the number of rows.
func (g Grid) Size() int {
	return len(g)
}

// InBounds reports whether c addresses a cell of the grid.
func (g Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < len(g) && c.Col >= 0 && c.Col < len(g[c.Row])
}

// At returns the cell at c, or Empty when c is out of bounds.
func (g Grid) At(c Coord) Cell {
	if !g.InBounds(c) {
		return Empty
	}
	return g[c.Row][c.Col]
}

// Remaining counts non-empty cells.
func (g Grid) Remaining() int {
	count := 0
	for _, row := range g {
		for _, cell := range row {
			if !cell.IsEmpty() {
				count++
			}
		}
	}
	return count
}

// Full reports whether every cell holds a letter.
func (g Grid) Full() bool {
	if len(g) == 0 {
		return false
	}
	for _, row := range g {
		for _, cell := range row {
			if cell.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// Word concatenates the letters along path. Empty or out-of-bounds cells contribute nothing.
func (g Grid) Word(path []Coord) string {
	var b strings.Builder
	for _, c := range path {
		if cell := g.At(c); !cell.IsEmpty() {
			b.WriteRune(rune(cell))
		}
	}
	return b.String()
}

// Clear marks every in-bounds cell along path as consumed.
func (g Grid) Clear(path []Coord) {
	for _, c := range path {
		if g.InBounds(c) {
			g[c.Row][c.Col] = Empty
		}
	}
}

// Rows renders each row as a string, '.' for empty cells.
func (g Grid) Rows() []string {
	rows := make([]string, len(g))
	for i, row := range g {
		var b strings.Builder
		for _, cell := range row {
			if cell.IsEmpty() {
				b.WriteByte('.')
			} else {
				b.WriteRune(rune(cell))
			}
		}
		rows[i] = b.String()
	}
	return rows
}

func (g Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}
