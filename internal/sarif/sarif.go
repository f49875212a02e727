// Package sarif holds a typed SARIF 2.1.0 document model and the
// transforms between normalized findings and SARIF results. The document
// round-trips: findings rebuilt from a built document carry the same
// rule ID, level, message, and locations.
package sarif

import (
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
)

// Version and SchemaURI are the literal values every emitted document
// carries, required by downstream SARIF consumers.
const (
	Version   = "2.1.0"
	SchemaURI = "https://json.schemastore.org/sarif-2.1.0.json"
)

// Document is the top-level SARIF log.
type Document struct {
	Version  string         `json:"version"`
	Schema   string         `json:"$schema"`
	Runs     []Run          `json:"runs"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Run is one analysis tool's results.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Result is a single reported finding.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations,omitempty"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// ToolRun pairs a tool identity with its normalized findings; one
// ToolRun becomes one runs[i] entry in the document.
type ToolRun struct {
	ToolName    string
	ToolVersion string
	Findings    []domain.Finding
}

// BuildReport assembles a complete SARIF document. An empty findings
// slice is preserved as a valid empty results array, and a run list of
// zero tools still produces a well-formed document.
func BuildReport(runs []ToolRun, metadata map[string]any) Document {
	doc := Document{
		Version:  Version,
		Schema:   SchemaURI,
		Runs:     make([]Run, 0, len(runs)),
		Metadata: metadata,
	}
	for _, tr := range runs {
		results := make([]Result, 0, len(tr.Findings))
		for _, f := range tr.Findings {
			results = append(results, resultFromFinding(f))
		}
		doc.Runs = append(doc.Runs, Run{
			Tool:    Tool{Driver: Driver{Name: tr.ToolName, Version: tr.ToolVersion}},
			Results: results,
		})
	}
	return doc
}

// Findings converts a run's results back into domain findings, the
// inverse of BuildReport for the fields the finding model carries.
func (r Run) Findings() []domain.Finding {
	findings := make([]domain.Finding, 0, len(r.Results))
	for _, res := range r.Results {
		f := domain.Finding{
			RuleID:  res.RuleID,
			Level:   domain.Level(res.Level),
			Message: res.Message.Text,
		}
		for _, loc := range res.Locations {
			region := loc.PhysicalLocation.Region
			if region == nil {
				f.Locations = append(f.Locations, domain.Location{
					URI:         loc.PhysicalLocation.ArtifactLocation.URI,
					StartLine:   1,
					StartColumn: 1,
					EndLine:     1,
					EndColumn:   1,
				})
				continue
			}
			f.Locations = append(f.Locations, domain.Location{
				URI:         loc.PhysicalLocation.ArtifactLocation.URI,
				StartLine:   region.StartLine,
				StartColumn: region.StartColumn,
				EndLine:     region.EndLine,
				EndColumn:   region.EndColumn,
			})
		}
		findings = append(findings, f)
	}
	return findings
}

func resultFromFinding(f domain.Finding) Result {
	result := Result{
		RuleID:  f.RuleID,
		Level:   string(f.Level),
		Message: Message{Text: f.Message},
	}
	for _, loc := range f.Locations {
		result.Locations = append(result.Locations, Location{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: normalizeURI(loc.URI)},
				Region: &Region{
					StartLine:   loc.StartLine,
					StartColumn: loc.StartColumn,
					EndLine:     loc.EndLine,
					EndColumn:   loc.EndColumn,
				},
			},
		})
	}
	return result
}

// GitHub's SARIF ingestion expects forward-slash URIs.
func normalizeURI(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
