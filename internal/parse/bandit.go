package parse

import (
	"encoding/json"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/rules"
)

type banditReport struct {
	Results []banditIssue `json:"results"`
}

type banditIssue struct {
	Filename      string `json:"filename"`
	LineNumber    int    `json:"line_number"`
	TestID        string `json:"test_id"`
	IssueText     string `json:"issue_text"`
	IssueSeverity string `json:"issue_severity"`
}

// Bandit parses bandit's JSON report. Severity maps HIGH to error and
// MEDIUM to warning; anything else, including a missing severity, is a
// note. Undecodable input yields no findings.
func Bandit(output string) []domain.Finding {
	findings := []domain.Finding{}

	var report banditReport
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		return findings
	}

	for _, issue := range report.Results {
		testID := issue.TestID
		if testID == "" {
			testID = "bandit-issue"
		}
		message := issue.IssueText
		if message == "" {
			message = "Bandit issue"
		}
		findings = append(findings, domain.Finding{
			RuleID:  rules.Normalize("bandit", testID),
			Level:   banditLevel(issue.IssueSeverity),
			Message: message,
			Locations: []domain.Location{
				domain.NewLocation(issue.Filename, issue.LineNumber, 0, issue.LineNumber, 0),
			},
		})
	}
	return findings
}

func banditLevel(severity string) domain.Level {
	switch strings.ToUpper(severity) {
	case "HIGH":
		return domain.LevelError
	case "MEDIUM":
		return domain.LevelWarning
	default:
		return domain.LevelNote
	}
}
