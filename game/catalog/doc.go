// Package catalog provides the term dictionary for Acronym Hunt.
//
// A Term pairs a canonical uppercase abbreviation with its expanded name and
// a short description. Catalog indexes terms by abbreviation so lookups are
// exact and case-insensitive; the first occurrence of an abbreviation wins and
// later duplicates are reported through Skipped.
//
// Sources:
//
// Catalogs are read from JSON or YAML files (LoadFile) or taken from the
// embedded default set (Default). AsyncProvider wraps any loader and keeps
// retrying in the background with exponential backoff; until the first load
// succeeds it answers every call with ErrUnavailable so gameplay can treat the
// dictionary as "not yet there" instead of failing.
//
// Usage:
//
//	cat, err := catalog.LoadFile("catalogs/tech.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	term, err := cat.Lookup("api")
//	if errors.Is(err, catalog.ErrNotFound) {
//		// not a known abbreviation
//	}
package catalog
