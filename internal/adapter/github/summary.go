package github

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// perFileLimit caps how many annotations a review comment lists per file
// before collapsing the rest into a count.
const perFileLimit = 3

// BuildReviewComment renders a human-readable markdown review comment
// from a summary.
func BuildReviewComment(summary PRReviewSummary) string {
	titler := cases.Title(language.English)
	status := titler.String(strings.ReplaceAll(summary.OverallStatus, "_", " "))

	var sb strings.Builder
	sb.WriteString("## Quality Gate Review\n\n")
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", status))
	sb.WriteString(fmt.Sprintf("**Quality Score:** %.0f%%\n\n", summary.QualityScore*100))

	if len(summary.Suggestions) > 0 {
		sb.WriteString("### Suggestions\n\n")
		for _, s := range summary.Suggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
		sb.WriteString("\n")
	}

	if len(summary.Annotations) == 0 {
		sb.WriteString("All quality checks passed.\n")
		return sb.String()
	}

	sb.WriteString("### Issues Found\n\n")
	sb.WriteString(fmt.Sprintf("Total annotations: %d\n\n", len(summary.Annotations)))

	for _, path := range annotationPaths(summary.Annotations) {
		group := annotationsForPath(summary.Annotations, path)
		sb.WriteString(fmt.Sprintf("**%s:**\n", path))
		for i, a := range group {
			if i == perFileLimit {
				sb.WriteString(fmt.Sprintf("- ... and %d more issues\n", len(group)-perFileLimit))
				break
			}
			sb.WriteString(fmt.Sprintf("- Line %d: %s\n", a.StartLine, a.Title))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// annotationPaths returns the distinct file paths in first-appearance
// order.
func annotationPaths(annotations []PRAnnotation) []string {
	paths := []string{}
	seen := make(map[string]bool)
	for _, a := range annotations {
		if seen[a.Path] {
			continue
		}
		seen[a.Path] = true
		paths = append(paths, a.Path)
	}
	return paths
}

func annotationsForPath(annotations []PRAnnotation, path string) []PRAnnotation {
	var group []PRAnnotation
	for _, a := range annotations {
		if a.Path == path {
			group = append(group, a)
		}
	}
	return group
}
