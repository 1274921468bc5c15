package engine

// SelectOutcome reports what an append did to a selection.
type SelectOutcome string

const (
	SelectAdded    SelectOutcome = "added"
	SelectRemoved  SelectOutcome = "removed"
	SelectRejected SelectOutcome = "rejected"
)

// Selection is the ordered path of cells chosen for the current attempt.
// It never looks at game phase.
type Selection []Coord

// Append adds c to the selection following the adjacency rules:
// empty or out-of-bounds cells are rejected, re-selecting the tail removes it,
// re-selecting an earlier cell is ignored, and a new cell must touch the tail.
func (s *Selection) Append(grid Grid, c Coord) SelectOutcome {
	if grid.At(c).IsEmpty() {
		return SelectRejected
	}
	if last, ok := s.Last(); ok {
		if last == c {
			*s = (*s)[:len(*s)-1]
			return SelectRemoved
		}
		if s.Contains(c) || !last.Adjacent(c) {
			return SelectRejected
		}
	}
	*s = append(*s, c)
	return SelectAdded
}

// Backspace drops the last coordinate. It reports whether anything was removed.
func (s *Selection) Backspace() bool {
	if len(*s) == 0 {
		return false
	}
	*s = (*s)[:len(*s)-1]
	return true
}

// Reset clears the selection.
func (s *Selection) Reset() {
	*s = (*s)[:0]
}

// Len returns the number of selected cells.
func (s Selection) Len() int {
	return len(s)
}

// Last returns the most recently selected coordinate.
func (s Selection) Last() (Coord, bool) {
	if len(s) == 0 {
		return Coord{}, false
	}
	return s[len(s)-1], true
}

// Contains reports whether c is already selected.
func (s Selection) Contains(c Coord) bool {
	for _, x := range s {
		if x == c {
			return true
		}
	}
	return false
}

// Coords returns a copy of the selected coordinates.
func (s Selection) Coords() []Coord {
	return append([]Coord{}, s...)
}
