package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/rules"
)

// flake8 line grammar: path:line:col: CODE message
var flake8Pattern = regexp.MustCompile(`^(?P<file>.*?):(?P<line>\d+):(?P<col>\d+): (?P<code>[A-Z]\d{3,4}) (?P<msg>.*)$`)

// Flake8 parses flake8-style lint output. flake8 does not self-report
// severity, so every finding is a warning.
func Flake8(output string) []domain.Finding {
	findings := []domain.Finding{}
	for _, line := range strings.Split(output, "\n") {
		m := flake8Pattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		colNo, _ := strconv.Atoi(m[3])
		code := m[4]
		findings = append(findings, domain.Finding{
			RuleID:  rules.Normalize("flake8", code),
			Level:   domain.LevelWarning,
			Message: code + " " + m[5],
			Locations: []domain.Location{
				domain.NewLocation(m[1], lineNo, colNo, lineNo, colNo),
			},
		})
	}
	return findings
}
