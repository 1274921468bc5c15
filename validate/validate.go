// Command validate checks term catalogs and game presets before they ship.
//
// For catalog files (.json, .yaml, .yml) it checks:
//   - the file parses and contains at least one term
//   - every abbreviation has at least two letters, A-Z only
//   - every term has a full name
//   - no abbreviation appears twice (case-insensitive)
//   - every abbreviation fits the largest grid
//
// For presets in the configs directory it runs the engine's config validation
// and reports grid, term and clock settings.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/acrohunt/game/catalog"
	"github.com/wricardo/acrohunt/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateCatalog loads a catalog file and checks every term in it.
func validateCatalog(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	format, err := catalog.FormatFromPath(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	terms, err := catalog.Parse(data, format)
	if err != nil {
		result.fail("Invalid %s: %v", format, err)
		return result
	}
	if len(terms) == 0 {
		result.fail("Catalog is empty")
		return result
	}

	seen := make(map[string]int, len(terms))
	fitsDefault := 0
	longest := ""
	for i, t := range terms {
		if err := catalog.ValidateTerm(t); err != nil {
			result.fail("Term %d: %v", i+1, err)
			continue
		}

		abbr := catalog.Normalize(t.Abbreviation)
		if first, dup := seen[abbr]; dup {
			result.fail("Term %d: duplicate abbreviation %s (first at term %d)", i+1, abbr, first)
			continue
		}
		seen[abbr] = i + 1

		if len(abbr) > engine.MaxGridSize {
			result.fail("Term %d: %s is longer than the largest grid (%d)", i+1, abbr, engine.MaxGridSize)
		}
		if len(abbr) <= engine.DefaultGridSize {
			fitsDefault++
		}
		if len(abbr) > len(longest) {
			longest = abbr
		}
	}

	if result.Valid {
		result.info("Terms: %d", len(terms))
		result.info("Fit a %dx%d grid: %d", engine.DefaultGridSize, engine.DefaultGridSize, fitsDefault)
		result.info("Longest abbreviation: %s (%d)", longest, len(longest))
		if fitsDefault < engine.DefaultMaxTerms {
			result.info("Only %d terms fit the default grid; longer ones will often be dropped", fitsDefault)
		}
	}

	return result
}

// validateConfig loads a game preset and runs the engine's validation on it.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if id := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)); config.Name != id {
		result.fail("name %q does not match file name %q", config.Name, id)
	}

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", config.GridSize, config.GridSize)
		result.info("Max terms: %d", config.MaxTerms)
		result.info("Countdown: %ds", config.CountdownSeconds)
		result.info("Time budget: %ds", config.TimeBudgetSeconds)
	}

	return result
}

func printResult(result ValidationResult) bool {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Errors {
			fmt.Println("  " + info)
		}
		return true
	}

	fmt.Println("❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Println("  ❌ " + err)
		}
	}
	return false
}

// main validates ../configs/*.json presets plus the catalog files given as
// arguments (the built-in catalog when none are given), printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	configFiles, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	catalogFiles := os.Args[1:]
	if len(catalogFiles) == 0 {
		catalogFiles = []string{filepath.Join("..", "game", "catalog", "default_terms.yaml")}
	}

	allValid := true
	for _, file := range catalogFiles {
		if !printResult(validateCatalog(file)) {
			allValid = false
		}
	}
	for _, file := range configFiles {
		if !printResult(validateConfig(file)) {
			allValid = false
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All catalogs and configurations are valid!")
	} else {
		fmt.Println("❌ Some files have errors")
		os.Exit(1)
	}
}
