package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("term not found")
	ErrUnavailable = errors.New("catalog unavailable")
	ErrInvalidTerm = errors.New("invalid term")
)

// MinAbbreviationLength is the shortest abbreviation a selection can ever spell.
const MinAbbreviationLength = 2

// Term is a single dictionary entry.
type Term struct {
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"`
	FullName     string `json:"full_name" yaml:"full_name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Provider supplies terms to the grid generator and answers validator lookups.
type Provider interface {
	// FetchAll returns every known term.
	FetchAll(ctx context.Context) ([]Term, error)

	// Lookup finds a term by abbreviation, ignoring case.
	// It returns ErrNotFound for unknown letters and ErrUnavailable when
	// the provider has nothing loaded yet.
	Lookup(letters string) (Term, error)
}

// SkippedTerm records a term that was not indexed and why.
type SkippedTerm struct {
	Term   Term   `json:"term"`
	Reason string `json:"reason"`
}

// Catalog is an immutable, indexed set of terms.
type Catalog struct {
	terms   []Term
	index   map[string]Term
	skipped []SkippedTerm
}

// Normalize returns the canonical form of an abbreviation.
func Normalize(letters string) string {
	return strings.ToUpper(strings.TrimSpace(letters))
}

// ValidateTerm checks that a term can take part in play.
func ValidateTerm(t Term) error {
	abbr := Normalize(t.Abbreviation)
	if len(abbr) < MinAbbreviationLength {
		return fmt.Errorf("%w: abbreviation %q must have at least %d letters", ErrInvalidTerm, t.Abbreviation, MinAbbreviationLength)
	}
	for _, r := range abbr {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: abbreviation %q contains non-letter %q", ErrInvalidTerm, t.Abbreviation, r)
		}
	}
	if strings.TrimSpace(t.FullName) == "" {
		return fmt.Errorf("%w: full name is required for %q", ErrInvalidTerm, t.Abbreviation)
	}
	return nil
}

// New builds a catalog from terms. Invalid terms and duplicate abbreviations
// are left out of the index and listed by Skipped.
func New(terms []Term) *Catalog {
	c := &Catalog{
		terms: make([]Term, 0, len(terms)),
		index: make(map[string]Term, len(terms)),
	}

	for _, t := range terms {
		if err := ValidateTerm(t); err != nil {
			c.skipped = append(c.skipped, SkippedTerm{Term: t, Reason: err.Error()})
			continue
		}

		t.Abbreviation = Normalize(t.Abbreviation)
		t.FullName = strings.TrimSpace(t.FullName)
		if _, dup := c.index[t.Abbreviation]; dup {
			c.skipped = append(c.skipped, SkippedTerm{Term: t, Reason: "duplicate abbreviation"})
			continue
		}

		c.index[t.Abbreviation] = t
		c.terms = append(c.terms, t)
	}

	return c
}

// FetchAll returns a copy of all indexed terms in insertion order.
func (c *Catalog) FetchAll(ctx context.Context) ([]Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Terms(), nil
}

// Lookup implements Provider.
func (c *Catalog) Lookup(letters string) (Term, error) {
	if t, ok := c.index[Normalize(letters)]; ok {
		return t, nil
	}
	return Term{}, ErrNotFound
}

// Terms returns a copy of all indexed terms.
func (c *Catalog) Terms() []Term {
	out := make([]Term, len(c.terms))
	copy(out, c.terms)
	return out
}

// Len returns the number of indexed terms.
func (c *Catalog) Len() int {
	return len(c.terms)
}

// Skipped returns the terms rejected while building the catalog.
func (c *Catalog) Skipped() []SkippedTerm {
	out := make([]SkippedTerm, len(c.skipped))
	copy(out, c.skipped)
	return out
}
