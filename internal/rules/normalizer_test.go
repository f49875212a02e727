package rules_test

import (
	"testing"

	"github.com/bkyoung/quality-gate/internal/rules"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		tool string
		raw  string
		want string
	}{
		{"flake8 code", "flake8", "E501", "flake8:E501"},
		{"flake8 already prefixed", "flake8", "flake8:E501", "flake8:E501"},
		{"mypy bracketed category", "mypy", "error[name-defined]", "mypy:name-defined"},
		{"mypy nested brackets take last close", "mypy", "error[arg-type[inner]]", "mypy:arg-type[inner]"},
		{"mypy bare message", "mypy", "mypy-error", "mypy:mypy-error"},
		{"mypy already prefixed", "mypy", "mypy:misc", "mypy:misc"},
		{"bandit test id passes through", "bandit", "B101", "bandit:B101"},
		{"eslint rule", "eslint", "no-unused-vars", "eslint:no-unused-vars"},
		{"unknown tool uppercased", "Pylint", "C0301", "pylint:C0301"},
		{"tool with whitespace", "  flake8  ", "E302", "flake8:E302"},
		{"empty tool", "", "E501", ":E501"},
		{"empty raw code", "flake8", "", "flake8:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.Normalize(tt.tool, tt.raw); got != tt.want {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.tool, tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	first := rules.Normalize("mypy", "error[union-attr]")
	for i := 0; i < 100; i++ {
		if got := rules.Normalize("mypy", "error[union-attr]"); got != first {
			t.Fatalf("Normalize is not deterministic: %q vs %q", got, first)
		}
	}
}
