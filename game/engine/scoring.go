package engine

import "github.com/wricardo/acrohunt/game/catalog"

// ScoringConfig holds the point formula constants.
type ScoringConfig struct {
	FirstFindBase   int     `json:"first_find_base"`
	RepeatBase      int     `json:"repeat_base"`
	FullClearBonus  int     `json:"full_clear_bonus"`
	NearClearUnit   int     `json:"near_clear_unit"`
	NearClearWindow int     `json:"near_clear_window"`
	ResetThreshold  int     `json:"reset_threshold"`
	MultiplierStep  float64 `json:"multiplier_step"`
	MaxMultiplier   float64 `json:"max_multiplier"`
}

// DefaultScoringConfig returns the standard scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		FirstFindBase:   10,
		RepeatBase:      1,
		FullClearBonus:  1000,
		NearClearUnit:   50,
		NearClearWindow: 5,
		ResetThreshold:  1,
		MultiplierStep:  0.25,
		MaxMultiplier:   3,
	}
}

// Award is the result of scoring one match or miss.
type Award struct {
	Points   int `json:"points"`
	NewCombo int `json:"new_combo"`
}

// FieldBonus is the post-match bonus based on how many cells are left.
type FieldBonus struct {
	Amount    int  `json:"amount"`
	Reset     bool `json:"reset"`
	FullClear bool `json:"full_clear"`
}

// Scorer applies a ScoringConfig. The zero value scores nothing; use NewScorer.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer for cfg.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scoring constants in use.
func (s *Scorer) Config() ScoringConfig {
	return s.cfg
}

// OnMatch scores a matched term. Repeats still grow the combo.
func (s *Scorer) OnMatch(term catalog.Term, combo int, alreadyDiscovered bool) Award {
	if combo < 0 {
		combo = 0
	}
	base := s.cfg.FirstFindBase
	if alreadyDiscovered {
		base = s.cfg.RepeatBase
	}
	return Award{
		Points:   LetterCount(term.FullName) * (base + combo),
		NewCombo: combo + 1,
	}
}

// OnMiss resets the combo.
func (s *Scorer) OnMiss() Award {
	return Award{}
}

// Bonus computes the field bonus for the number of non-empty cells left after a match.
// An empty grid always resets; otherwise the reset threshold decides.
func (s *Scorer) Bonus(remaining int) FieldBonus {
	switch {
	case remaining <= 0:
		return FieldBonus{Amount: s.cfg.FullClearBonus, Reset: true, FullClear: true}
	case remaining <= s.cfg.NearClearWindow:
		return FieldBonus{
			Amount: (s.cfg.NearClearWindow + 1 - remaining) * s.cfg.NearClearUnit,
			Reset:  remaining <= s.cfg.ResetThreshold,
		}
	case remaining <= s.cfg.ResetThreshold:
		return FieldBonus{Reset: true}
	}
	return FieldBonus{}
}

// Multiplier returns the display-only multiplier for combo.
func (s *Scorer) Multiplier(combo int) float64 {
	return DisplayMultiplier(combo, s.cfg.MultiplierStep, s.cfg.MaxMultiplier)
}
