package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/results"
	"github.com/wricardo/acrohunt/game/service"
)

func phaseOf(state *engine.GameState) engine.Phase {
	if state == nil {
		return engine.PhaseIdle
	}
	return state.Phase
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\nLast access: %s\nTicking: %v\n\n",
		info.ID, info.ConfigName,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		info.LastAccessedAt.Format("2006-01-02 15:04:05"),
		info.Ticking)
	b.WriteString(formatGameState(info.GameState))
	return b.String()
}

// formatGrid renders the grid with row and column indices. Selected cells are
// bracketed and empty cells shown as '.'.
func formatGrid(state *engine.GameState) string {
	if state.Grid.Size() == 0 {
		return "(no grid yet)\n"
	}

	selected := make(map[engine.Coord]bool, len(state.Selection))
	for _, c := range state.Selection {
		selected[c] = true
	}

	var b strings.Builder
	b.WriteString("    ")
	for col := range state.Grid[0] {
		fmt.Fprintf(&b, " %d ", col)
	}
	b.WriteString("\n")
	for r, row := range state.Grid {
		fmt.Fprintf(&b, "%2d  ", r)
		for c, cell := range row {
			ch := "."
			if !cell.IsEmpty() {
				ch = cell.String()
			}
			if selected[engine.Coord{Row: r, Col: c}] {
				fmt.Fprintf(&b, "[%s]", ch)
			} else {
				fmt.Fprintf(&b, " %s ", ch)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s (round %d)\n", state.Phase, state.Round)
	switch state.Phase {
	case engine.PhaseCountdown:
		fmt.Fprintf(&b, "Starting in: %d\n", state.CountdownLeft)
	case engine.PhasePlaying:
		fmt.Fprintf(&b, "Time left: %ds of %ds\n", state.TimeLeft, state.TimeBudget)
	}
	fmt.Fprintf(&b, "Score: %d | Combo: %d (x%.2f) | Max combo: %d\n", state.Score, state.Combo, state.Multiplier, state.MaxCombo)
	fmt.Fprintf(&b, "Matches: %d | Misses: %d | Grid resets: %d | Letters left: %d\n",
		state.Matches, state.Misses, state.GridResets, state.Remaining)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\n")
	b.WriteString(formatGrid(state))

	if len(state.Selection) > 0 {
		cells := make([]string, len(state.Selection))
		for i, c := range state.Selection {
			cells[i] = fmt.Sprintf("(%d,%d)", c.Row, c.Col)
		}
		fmt.Fprintf(&b, "\nSelection: %s = %q\n", strings.Join(cells, " "), state.SelectedWord)
	}

	if found := discovered(state); len(found) > 0 {
		fmt.Fprintf(&b, "\nDiscovered: %s\n", strings.Join(found, ", "))
	}
	return b.String()
}

func discovered(state *engine.GameState) []string {
	out := make([]string, 0, len(state.Discovered))
	for abbr, ok := range state.Discovered {
		if ok {
			out = append(out, abbr)
		}
	}
	sort.Strings(out)
	return out
}

func formatSubmitResult(res *engine.SubmitResult) string {
	switch {
	case !res.Accepted:
		return "Nothing submitted (empty selection or not playing)."
	case res.Matched:
		var b strings.Builder
		name := ""
		if res.Term != nil {
			name = res.Term.FullName
		}
		kind := "repeat"
		if res.FirstFind {
			kind = "first find"
		}
		fmt.Fprintf(&b, "✓ %s (%s), %s: +%d points", res.Word, name, kind, res.Points)
		if res.Bonus > 0 {
			fmt.Fprintf(&b, ", bonus +%d", res.Bonus)
		}
		if res.GridReset {
			b.WriteString(", new grid dealt")
		}
		fmt.Fprintf(&b, ". Score %d, combo %d.", res.Score, res.Combo)
		return b.String()
	default:
		return fmt.Sprintf("✗ %q missed (%s). Combo reset. Score %d.", res.Word, res.Reason, res.Score)
	}
}

func formatPathResult(cells []engine.Coord, res *service.PathResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Selected %d of %d cells", res.Added, len(cells))
	for i, o := range res.Outcomes {
		if o != engine.SelectAdded && i < len(cells) {
			fmt.Fprintf(&b, "\n  (%d,%d): %s", cells[i].Row, cells[i].Col, o)
		}
	}
	b.WriteString("\n")
	if res.Result != nil {
		b.WriteString(formatSubmitResult(res.Result))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(res.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attempts (page %d/%d, total %d):\n\n", history.Page, history.TotalPages, history.TotalAttempts)
	for _, a := range history.Attempts {
		if a.Matched {
			fmt.Fprintf(&b, "#%d %s (%s) +%d", a.AttemptNumber, a.Word, a.FullName, a.Points)
			if a.Bonus > 0 {
				fmt.Fprintf(&b, " bonus +%d", a.Bonus)
			}
		} else {
			fmt.Fprintf(&b, "#%d %q miss: %s", a.AttemptNumber, a.Word, a.Reason)
		}
		b.WriteString("\n")
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d.\n", history.Page+1)
	}
	return b.String()
}

func formatFound(found []engine.Found) string {
	if len(found) == 0 {
		return "No abbreviations can be spelled on the current grid."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spellable abbreviations (%d):\n\n", len(found))
	for _, f := range found {
		cells := make([]string, len(f.Path))
		for i, c := range f.Path {
			cells[i] = fmt.Sprintf("(%d,%d)", c.Row, c.Col)
		}
		fmt.Fprintf(&b, "• %s (%s): %s\n", f.Word, f.Term.FullName, strings.Join(cells, " "))
	}
	return b.String()
}

func formatLeaderboard(entries []results.Summary) string {
	if len(entries) == 0 {
		return "No finished games yet."
	}

	var b strings.Builder
	b.WriteString("Leaderboard:\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %5d  session %s (%s) matches %d, max combo %d, finished %s\n",
			i+1, e.Score, e.SessionID, e.ConfigName, e.Matches, e.MaxCombo, e.FinishedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}
