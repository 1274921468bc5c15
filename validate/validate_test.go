package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// Helper function to check if any message contains a substring
func hasMessage(result ValidationResult, substr string) bool {
	for _, msg := range result.Errors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateCatalog_Valid(t *testing.T) {
	path := writeFile(t, "terms.yaml", `
terms:
  - abbreviation: CPU
    full_name: Central Processing Unit
  - abbreviation: dns
    full_name: Domain Name System
  - abbreviation: HTTPS
    full_name: Hypertext Transfer Protocol Secure
`)

	result := validateCatalog(path)
	if !result.Valid {
		t.Fatalf("Expected valid catalog, but got errors: %v", result.Errors)
	}
	if result.File != "terms.yaml" {
		t.Errorf("Expected file name terms.yaml, got %s", result.File)
	}
	for _, want := range []string{"✓ Terms: 3", "✓ Fit a 5x5 grid: 3", "✓ Longest abbreviation: HTTPS (5)"} {
		if !hasMessage(result, want) {
			t.Errorf("Expected %q in %v", want, result.Errors)
		}
	}
}

func TestValidateCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "duplicate abbreviation",
			file:    "dup.json",
			content: `{"terms":[{"abbreviation":"API","full_name":"Application Programming Interface"},{"abbreviation":"api","full_name":"Again"}]}`,
			want:    "duplicate abbreviation API (first at term 1)",
		},
		{
			name:    "non-letter abbreviation",
			file:    "digits.json",
			content: `{"terms":[{"abbreviation":"I2C","full_name":"Inter-Integrated Circuit"}]}`,
			want:    "non-letter",
		},
		{
			name:    "missing full name",
			file:    "noname.json",
			content: `{"terms":[{"abbreviation":"RAM"}]}`,
			want:    "full name is required",
		},
		{
			name:    "too short",
			file:    "short.json",
			content: `{"terms":[{"abbreviation":"X","full_name":"Ex"}]}`,
			want:    "at least 2 letters",
		},
		{
			name:    "too long for any grid",
			file:    "long.json",
			content: `{"terms":[{"abbreviation":"ABCDEFGHIJKLM","full_name":"Alphabet"}]}`,
			want:    "longer than the largest grid",
		},
		{
			name:    "empty",
			file:    "empty.json",
			content: `{"terms":[]}`,
			want:    "Catalog is empty",
		},
		{
			name:    "broken json",
			file:    "broken.json",
			content: `{"terms":[`,
			want:    "Invalid json",
		},
		{
			name:    "unsupported extension",
			file:    "terms.txt",
			content: "CPU",
			want:    "unsupported catalog extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateCatalog(writeFile(t, tt.file, tt.content))
			if result.Valid {
				t.Fatal("Expected invalid catalog")
			}
			if !hasMessage(result, tt.want) {
				t.Errorf("Expected %q in %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateCatalog_NonExistentFile(t *testing.T) {
	result := validateCatalog("/non/existent/terms.json")
	if result.Valid {
		t.Error("Expected invalid result for non-existent file")
	}
	if !hasMessage(result, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateCatalog_BuiltIn(t *testing.T) {
	path := filepath.Join("..", "game", "catalog", "default_terms.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("Skipping test - built-in catalog not found")
	}

	result := validateCatalog(path)
	if !result.Valid {
		t.Errorf("Built-in catalog should be valid: %v", result.Errors)
	}
}

func TestValidateConfig(t *testing.T) {
	t.Run("valid preset", func(t *testing.T) {
		path := writeFile(t, "quick.json", `{"name":"quick","description":"Short game","grid_size":4,"max_terms":3,"countdown_seconds":1,"time_budget_seconds":45}`)

		result := validateConfig(path)
		if !result.Valid {
			t.Fatalf("Expected valid config, got %v", result.Errors)
		}
		for _, want := range []string{"✓ Grid: 4x4", "✓ Time budget: 45s", "✓ Countdown: 1s"} {
			if !hasMessage(result, want) {
				t.Errorf("Expected %q in %v", want, result.Errors)
			}
		}
	})

	t.Run("name mismatch", func(t *testing.T) {
		result := validateConfig(writeFile(t, "quick.json", `{"name":"slow","description":"Slow game"}`))
		if result.Valid || !hasMessage(result, "does not match file name") {
			t.Errorf("Expected name mismatch error, got %v", result.Errors)
		}
	})

	t.Run("out of range grid", func(t *testing.T) {
		result := validateConfig(writeFile(t, "huge.json", `{"name":"huge","description":"Huge","grid_size":40}`))
		if result.Valid {
			t.Error("Expected invalid config for grid_size 40")
		}
	})

	t.Run("shipped presets", func(t *testing.T) {
		files, _ := filepath.Glob(filepath.Join("..", "configs", "*.json"))
		if len(files) == 0 {
			t.Skip("Skipping test - configs directory not found")
		}
		for _, file := range files {
			if result := validateConfig(file); !result.Valid {
				t.Errorf("%s should be valid: %v", result.File, result.Errors)
			}
		}
	})
}
