package github

import (
	"github.com/bkyoung/quality-gate/internal/domain"
)

// Publisher turns code issues into the PR annotation artifact and the
// review comment body.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish writes the annotations file at path and returns the rendered
// review comment. Issues without a suggestion pick up the canned lint
// hint for their rule, when one exists.
func (p *Publisher) Publish(path string, issues []domain.CodeIssue) (string, error) {
	enriched := make([]domain.CodeIssue, len(issues))
	copy(enriched, issues)
	for i := range enriched {
		if enriched[i].Suggestion == "" {
			enriched[i].Suggestion = LintSuggestion(enriched[i].RuleID)
		}
	}

	summary := Summarize(enriched)
	if err := WriteAnnotations(path, summary.Annotations); err != nil {
		return "", err
	}

	return BuildReviewComment(summary), nil
}
