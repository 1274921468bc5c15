package engine

import (
	"errors"

	"github.com/wricardo/acrohunt/game/catalog"
)

// Lookup resolves a letter sequence to a catalog term.
// catalog.Provider satisfies it.
type Lookup interface {
	Lookup(letters string) (catalog.Term, error)
}

// MissReason explains why a validation did not match.
type MissReason string

const (
	ReasonTooShort           MissReason = "too_short"
	ReasonNoMatch            MissReason = "no_match"
	ReasonCatalogUnavailable MissReason = "catalog_unavailable"
)

// Validation is the outcome of checking a selection.
type Validation struct {
	Matched bool          `json:"matched"`
	Term    *catalog.Term `json:"term,omitempty"`
	Word    string        `json:"word"`
	Reason  MissReason    `json:"reason,omitempty"`
}

// Validate spells the selection on the grid and looks the word up.
// Selections shorter than two cells miss without a lookup. Lookup failures
// other than ErrNotFound, and a nil lookup, are reported as
// ReasonCatalogUnavailable. Validate never mutates its inputs.
func Validate(grid Grid, sel Selection, lookup Lookup) Validation {
	word := grid.Word(sel)
	if sel.Len() < catalog.MinAbbreviationLength || len(word) < catalog.MinAbbreviationLength {
		return Validation{Word: word, Reason: ReasonTooShort}
	}
	if lookup == nil {
		return Validation{Word: word, Reason: ReasonCatalogUnavailable}
	}

	term, err := lookup.Lookup(word)
	switch {
	case err == nil:
		return Validation{Matched: true, Term: &term, Word: word}
	case errors.Is(err, catalog.ErrNotFound):
		return Validation{Word: word, Reason: ReasonNoMatch}
	default:
		return Validation{Word: word, Reason: ReasonCatalogUnavailable}
	}
}
