package gate_test

import (
	"errors"
	"testing"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/gate"
)

func TestCoverage_Boundary(t *testing.T) {
	if !gate.Coverage(80.0, 80.0).Passed {
		t.Error("coverage equal to threshold must pass")
	}
	if gate.Coverage(79.9, 80.0).Passed {
		t.Error("coverage below threshold must fail")
	}
}

func TestCoverage_SymmetricDetails(t *testing.T) {
	pass := gate.Coverage(85, 80)
	fail := gate.Coverage(42, 80)

	if pass.Details != "85% >= 80%" {
		t.Errorf("pass details = %q", pass.Details)
	}
	if fail.Details != "42% >= 80%" {
		t.Errorf("fail details = %q", fail.Details)
	}
}

func TestFindings(t *testing.T) {
	errorFinding := domain.Finding{RuleID: "bandit:B101", Level: domain.LevelError}
	warningFinding := domain.Finding{RuleID: "flake8:E501", Level: domain.LevelWarning}
	noteFinding := domain.Finding{RuleID: "mypy:note", Level: domain.LevelNote}

	t.Run("no findings passes", func(t *testing.T) {
		result := gate.Findings(gate.NameLint, nil, domain.LevelWarning, true)
		if !result.Passed || result.Details != "no findings" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("finding at fail level fails", func(t *testing.T) {
		result := gate.Findings(gate.NameLint, []domain.Finding{warningFinding}, domain.LevelWarning, true)
		if result.Passed {
			t.Error("warning at warning fail-level must fail")
		}
	})

	t.Run("finding above fail level fails", func(t *testing.T) {
		result := gate.Findings(gate.NameSecurity, []domain.Finding{errorFinding}, domain.LevelWarning, true)
		if result.Passed {
			t.Error("error above warning fail-level must fail")
		}
	})

	t.Run("finding below fail level passes", func(t *testing.T) {
		result := gate.Findings(gate.NameSecurity, []domain.Finding{noteFinding, warningFinding}, domain.LevelError, true)
		if !result.Passed {
			t.Error("findings below the fail level must not fail the gate")
		}
	})

	t.Run("disabled policy never fails", func(t *testing.T) {
		result := gate.Findings(gate.NameSecurity, []domain.Finding{errorFinding}, domain.LevelError, false)
		if !result.Passed {
			t.Error("disabled category must not fail the run")
		}
		if result.Details == "no findings" {
			t.Error("findings must still be reported in details")
		}
	})
}

func TestTests(t *testing.T) {
	failed := gate.Tests(2, 10)
	if failed.Passed || failed.Details != "2 of 10 tests failed" || failed.ExitCode != 1 {
		t.Errorf("unexpected result: %+v", failed)
	}

	passed := gate.Tests(0, 10)
	if !passed.Passed || passed.Details != "10 tests passed" {
		t.Errorf("unexpected result: %+v", passed)
	}
}

func TestTestRun(t *testing.T) {
	counted := gate.TestRun(1, 2, 10)
	if counted.Passed || counted.Details != "2 of 10 tests failed" {
		t.Errorf("unexpected result: %+v", counted)
	}

	exitOnly := gate.TestRun(2, 0, 0)
	if exitOnly.Passed || exitOnly.Details != "test run exited with code 2" || exitOnly.ExitCode != 2 {
		t.Errorf("unexpected result: %+v", exitOnly)
	}

	clean := gate.TestRun(0, 0, 10)
	if !clean.Passed || clean.Details != "10 tests passed" {
		t.Errorf("unexpected result: %+v", clean)
	}
}

func TestUnavailable(t *testing.T) {
	result := gate.Unavailable(gate.NameLint, errors.New("flake8 not found"))
	if result.Passed {
		t.Error("unavailable tool must fail its gate")
	}
	if result.Details != "flake8 not found" {
		t.Errorf("Details = %q", result.Details)
	}

	noErr := gate.Unavailable(gate.NameTypes, nil)
	if noErr.Details != "tool unavailable" {
		t.Errorf("Details = %q", noErr.Details)
	}
}
