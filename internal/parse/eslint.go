package parse

import (
	"encoding/json"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/rules"
)

type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// ESLint parses eslint's JSON formatter output (an array of per-file
// results). Severity 2 maps to error, 1 to warning. Fatal messages with
// a null ruleId fall back to the eslint-issue sentinel.
func ESLint(output string) []domain.Finding {
	findings := []domain.Finding{}

	var files []eslintFile
	if err := json.Unmarshal([]byte(output), &files); err != nil {
		return findings
	}

	for _, file := range files {
		for _, msg := range file.Messages {
			ruleID := msg.RuleID
			if ruleID == "" {
				ruleID = "eslint-issue"
			}
			level := domain.LevelWarning
			if msg.Severity == 2 {
				level = domain.LevelError
			}
			findings = append(findings, domain.Finding{
				RuleID:  rules.Normalize("eslint", ruleID),
				Level:   level,
				Message: msg.Message,
				Locations: []domain.Location{
					domain.NewLocation(file.FilePath, msg.Line, msg.Column, msg.Line, msg.Column),
				},
			})
		}
	}
	return findings
}
