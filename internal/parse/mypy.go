package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/rules"
)

// mypy line grammar: path:line[:col]: (error|warning|note): message [code]
// Continuation lines without a leading path:line: prefix never match and
// are dropped.
var mypyPattern = regexp.MustCompile(`^(?P<file>.*?):(?P<line>\d+):(?:(?P<col>\d+):)? (?P<level>error|note|warning): (?P<msg>.*?)(?: \[(?P<code>[^\]]+)\])?$`)

// Mypy parses mypy-style type checker output. The severity keyword is
// taken verbatim; bare messages without a bracketed error category fall
// back to the mypy-error sentinel.
func Mypy(output string) []domain.Finding {
	findings := []domain.Finding{}
	for _, line := range strings.Split(output, "\n") {
		m := mypyPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		colNo := 0
		if m[3] != "" {
			colNo, _ = strconv.Atoi(m[3])
		}
		code := m[6]
		if code == "" {
			code = rules.MypyFallback
		}
		findings = append(findings, domain.Finding{
			RuleID:  rules.Normalize("mypy", code),
			Level:   mypyLevel(m[4]),
			Message: m[5],
			Locations: []domain.Location{
				domain.NewLocation(m[1], lineNo, colNo, lineNo, colNo),
			},
		})
	}
	return findings
}

func mypyLevel(keyword string) domain.Level {
	switch keyword {
	case "error":
		return domain.LevelError
	case "warning":
		return domain.LevelWarning
	default:
		return domain.LevelNote
	}
}
