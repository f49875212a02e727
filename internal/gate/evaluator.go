// Package gate turns measurements and findings into pass/fail gate
// results. Gate failures are ordinary values with human-readable
// details, never errors.
package gate

import (
	"fmt"

	"github.com/bkyoung/quality-gate/internal/domain"
)

// Canonical gate names, matching the category each underlying tool
// covers.
const (
	NameCoverage = "Coverage"
	NameLint     = "Lint (flake8)"
	NameTypes    = "Static types (mypy)"
	NameSecurity = "Security (bandit)"
	NameJSLint   = "Lint (eslint)"
	NameJSTypes  = "Static types (tsc)"
	NameTests    = "Tests"
)

// Policy configures which categories may fail the overall run. A
// disabled category still reports its findings; it just cannot veto the
// summary.
type Policy struct {
	MinCoverage  float64
	FailOnLint   bool
	FailOnMypy   bool
	FailOnBandit bool
}

// DefaultPolicy mirrors the shipped configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		MinCoverage:  80,
		FailOnLint:   true,
		FailOnMypy:   true,
		FailOnBandit: true,
	}
}

// Coverage evaluates the coverage gate. The details string keeps the
// same "<percent>% >= <threshold>%" form whether the gate passes or
// fails; only Passed differs.
func Coverage(percent, threshold float64) domain.GateResult {
	return domain.GateResult{
		Name:    NameCoverage,
		Passed:  percent >= threshold,
		Details: fmt.Sprintf("%v%% >= %v%%", percent, threshold),
	}
}

// Findings evaluates a finding-based gate. The gate fails when any
// finding sits at or above failLevel; with enforce=false the category
// never fails the run even when findings exist.
func Findings(name string, findings []domain.Finding, failLevel domain.Level, enforce bool) domain.GateResult {
	count := 0
	for _, f := range findings {
		if atOrAbove(f.Level, failLevel) {
			count++
		}
	}

	passed := count == 0 || !enforce
	details := fmt.Sprintf("%d finding(s) at %s or above", count, failLevel)
	if count == 0 {
		details = "no findings"
	} else if !enforce {
		details += " (non-blocking)"
	}
	return domain.GateResult{Name: name, Passed: passed, Details: details}
}

// Tests evaluates the test-run gate from failure counts.
func Tests(failed, total int) domain.GateResult {
	if failed > 0 {
		return domain.GateResult{
			Name:     NameTests,
			Passed:   false,
			Details:  fmt.Sprintf("%d of %d tests failed", failed, total),
			ExitCode: 1,
		}
	}
	return domain.GateResult{
		Name:    NameTests,
		Passed:  true,
		Details: fmt.Sprintf("%d tests passed", total),
	}
}

// TestRun evaluates the test gate from a test runner's exit code plus
// any per-test failure counts. Explicit failure counts win; otherwise a
// non-zero exit fails the gate even when no individual failures were
// parsed.
func TestRun(exitCode, failed, total int) domain.GateResult {
	if failed > 0 {
		return Tests(failed, total)
	}
	if exitCode != 0 {
		return domain.GateResult{
			Name:     NameTests,
			Passed:   false,
			Details:  fmt.Sprintf("test run exited with code %d", exitCode),
			ExitCode: exitCode,
		}
	}
	return Tests(0, total)
}

// Unavailable records a tool that could not run (not found, timed out)
// as a failed gate instead of a propagating fault.
func Unavailable(name string, err error) domain.GateResult {
	details := "tool unavailable"
	if err != nil {
		details = err.Error()
	}
	return domain.GateResult{Name: name, Passed: false, Details: details, ExitCode: 1}
}

var levelRank = map[domain.Level]int{
	domain.LevelNote:    0,
	domain.LevelWarning: 1,
	domain.LevelError:   2,
}

func atOrAbove(level, threshold domain.Level) bool {
	return levelRank[level] >= levelRank[threshold]
}
