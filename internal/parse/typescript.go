package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/rules"
)

// tsc diagnostic: "src/app.ts(12,5): error TS2304: Cannot find name 'x'."
// The location prefix is optional; config-level errors omit it.
var tscPattern = regexp.MustCompile(`^(?:(?P<file>.+?)\((?P<line>\d+),(?P<col>\d+)\): )?error (?P<code>TS\d+): (?P<msg>.*)$`)

// jest summary: "Tests: 2 failed, 8 passed, 10 total". The wording is
// exact-format on purpose; anything that does not match the three-integer
// pattern yields zero counts.
var jestPattern = regexp.MustCompile(`Tests:\s+(\d+) failed, (\d+) passed, (\d+) total`)

// Tsc parses TypeScript compiler output, keeping only lines carrying an
// "error TSxxxx:" marker.
func Tsc(output string) []domain.Finding {
	findings := []domain.Finding{}
	for _, line := range strings.Split(output, "\n") {
		m := tscPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		finding := domain.Finding{
			RuleID:  rules.Normalize("tsc", m[4]),
			Level:   domain.LevelError,
			Message: m[5],
		}
		if m[1] != "" {
			lineNo, _ := strconv.Atoi(m[2])
			colNo, _ := strconv.Atoi(m[3])
			finding.Locations = []domain.Location{
				domain.NewLocation(m[1], lineNo, colNo, lineNo, colNo),
			}
		}
		findings = append(findings, finding)
	}
	return findings
}

// JestCounts holds the three integers of a jest run summary.
type JestCounts struct {
	Failed int
	Passed int
	Total  int
}

// JestSummary extracts test counts from jest output. Output without a
// matching summary line reports zero counts, not an error.
func JestSummary(output string) JestCounts {
	m := jestPattern.FindStringSubmatch(output)
	if m == nil {
		return JestCounts{}
	}
	failed, _ := strconv.Atoi(m[1])
	passed, _ := strconv.Atoi(m[2])
	total, _ := strconv.Atoi(m[3])
	return JestCounts{Failed: failed, Passed: passed, Total: total}
}

// Jest converts a failing jest run into a single summary-level finding.
// A run with no failures, or output without a recognizable summary line,
// yields no findings.
func Jest(output string) []domain.Finding {
	counts := JestSummary(output)
	if counts.Failed == 0 {
		return []domain.Finding{}
	}
	return []domain.Finding{{
		RuleID:  rules.Normalize("jest", "test-failure"),
		Level:   domain.LevelError,
		Message: fmt.Sprintf("%d of %d tests failed", counts.Failed, counts.Total),
	}}
}
