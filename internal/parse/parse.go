// Package parse converts raw output from the supported analysis tools
// into normalized findings. Every parser is total: malformed lines or
// records are skipped, never fatal, and parsing the same input twice
// yields the same findings in the same order.
package parse

import "github.com/bkyoung/quality-gate/internal/domain"

// Tool identifies one of the supported analysis tools. The set is closed:
// parsers are selected through the registry table below, not by runtime
// introspection.
type Tool int

const (
	ToolFlake8 Tool = iota
	ToolMypy
	ToolBandit
	ToolESLint
	ToolTsc
	ToolJest
	ToolPytest
)

// String returns the canonical lowercase tool name used in rule IDs.
func (t Tool) String() string {
	switch t {
	case ToolFlake8:
		return "flake8"
	case ToolMypy:
		return "mypy"
	case ToolBandit:
		return "bandit"
	case ToolESLint:
		return "eslint"
	case ToolTsc:
		return "tsc"
	case ToolJest:
		return "jest"
	case ToolPytest:
		return "pytest"
	default:
		return "unknown"
	}
}

// Func is the contract every parser satisfies: raw captured output in,
// ordered findings out, no side effects, never an error.
type Func func(output string) []domain.Finding

var registry = map[Tool]Func{
	ToolFlake8: Flake8,
	ToolMypy:   Mypy,
	ToolBandit: Bandit,
	ToolESLint: ESLint,
	ToolTsc:    Tsc,
	ToolJest:   Jest,
}

// ParserFor returns the parser for the given tool. The second return is
// false for tools outside the closed set.
func ParserFor(tool Tool) (Func, bool) {
	fn, ok := registry[tool]
	return fn, ok
}
