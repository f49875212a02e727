package github

import (
	"fmt"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
)

// Annotation levels accepted by the GitHub Checks API.
const (
	LevelNotice  = "notice"
	LevelWarning = "warning"
	LevelFailure = "failure"
)

// Review statuses for a PR review summary.
const (
	StatusApproved         = "approved"
	StatusChangesRequested = "changes_requested"
)

// fallbackSpan is the fixed column width applied when a tool supplies no
// end position. It is not content-derived.
const fallbackSpan = 5

// PRAnnotation is the GitHub Checks API annotation shape.
type PRAnnotation struct {
	Path            string `json:"path"`
	StartLine       int    `json:"start_line"`
	EndLine         int    `json:"end_line"`
	StartColumn     int    `json:"start_column"`
	EndColumn       int    `json:"end_column"`
	AnnotationLevel string `json:"annotation_level"`
	Message         string `json:"message"`
	Title           string `json:"title"`
}

// PRReviewSummary aggregates the annotations and verdict for one run.
type PRReviewSummary struct {
	OverallStatus string         `json:"overall_status"`
	QualityScore  float64        `json:"quality_score"`
	Annotations   []PRAnnotation `json:"annotations"`
	Suggestions   []string       `json:"suggestions"`
}

// ToAnnotation converts one issue into its annotation. The mapping is
// deterministic and 1:1; without end-position info the annotation spans
// the start line and a fixed-width column range.
func ToAnnotation(issue domain.CodeIssue) PRAnnotation {
	startCol := issue.Column
	if startCol < 1 {
		startCol = 1
	}
	startLine := issue.Line
	if startLine < 1 {
		startLine = 1
	}

	return PRAnnotation{
		Path:            issue.File,
		StartLine:       startLine,
		EndLine:         startLine,
		StartColumn:     startCol,
		EndColumn:       startCol + fallbackSpan,
		AnnotationLevel: annotationLevel(issue.Severity),
		Message:         annotationMessage(issue),
		Title:           fmt.Sprintf("%s: %s", issue.RuleID, issue.Message),
	}
}

// Summarize builds the review summary for a set of issues. The status is
// changes_requested iff at least one issue is an error; the quality
// score is monotone: more and worse issues never raise it.
func Summarize(issues []domain.CodeIssue) PRReviewSummary {
	annotations := make([]PRAnnotation, 0, len(issues))
	for _, issue := range issues {
		annotations = append(annotations, ToAnnotation(issue))
	}

	status := StatusApproved
	for _, issue := range issues {
		if issue.Severity == "error" {
			status = StatusChangesRequested
			break
		}
	}

	return PRReviewSummary{
		OverallStatus: status,
		QualityScore:  qualityScore(issues),
		Annotations:   annotations,
		Suggestions:   collectSuggestions(issues),
	}
}

func annotationLevel(severity string) string {
	switch severity {
	case "error":
		return LevelFailure
	case "warning":
		return LevelWarning
	default:
		return LevelNotice
	}
}

func annotationMessage(issue domain.CodeIssue) string {
	parts := []string{issue.Message}
	if issue.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("Suggestion: %s", issue.Suggestion))
	}
	if issue.FixCode != "" {
		parts = append(parts, fmt.Sprintf("Fix:\n```\n%s\n```", issue.FixCode))
	}
	return strings.Join(parts, "\n")
}

// qualityScore deducts a severity-weighted penalty per issue, clamped to
// [0, 1]. Every added issue lowers the score, errors most of all, so the
// score is monotone in both issue count and severity.
func qualityScore(issues []domain.CodeIssue) float64 {
	var penalty float64
	for _, issue := range issues {
		switch issue.Severity {
		case "error":
			penalty += 0.4
		case "warning":
			penalty += 0.15
		default:
			penalty += 0.05
		}
	}

	score := 1.0 - penalty
	if score < 0 {
		score = 0
	}
	return score
}

func collectSuggestions(issues []domain.CodeIssue) []string {
	suggestions := []string{}
	seen := make(map[string]bool)
	for _, issue := range issues {
		s := issue.Suggestion
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		suggestions = append(suggestions, s)
	}
	return suggestions
}

// Fixed hints for the flake8 codes that have an obvious remedy.
var lintSuggestions = map[string]string{
	"e501": "Consider breaking this long line into multiple lines",
	"e302": "Add two blank lines before class definition",
	"e303": "Remove extra blank lines",
	"f401": "Remove unused import or add 'noqa: F401' comment",
	"f841": "Remove unused variable or use underscore prefix",
	"w291": "Remove trailing whitespace",
	"w292": "Add newline at end of file",
	"w293": "Remove trailing whitespace on blank line",
}

// LintSuggestion returns a remediation hint for a canonical rule ID, or
// "" when no hint exists for the code.
func LintSuggestion(ruleID string) string {
	code := ruleID
	if idx := strings.LastIndex(ruleID, ":"); idx >= 0 {
		code = ruleID[idx+1:]
	}
	return lintSuggestions[strings.ToLower(code)]
}
