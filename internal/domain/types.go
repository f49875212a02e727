package domain

// Level is the normalized severity of a finding, aligned with SARIF
// result levels.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Location identifies a region of a source file. Line and column numbers
// are 1-based; a zero or negative value supplied by a tool is normalized
// to 1.
type Location struct {
	URI         string `json:"uri"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
}

// Finding is one normalized issue reported by an analysis tool.
// Findings are created once by a parser and never mutated afterward.
type Finding struct {
	RuleID    string     `json:"rule_id"`
	Level     Level      `json:"level"`
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
}

// NewLocation constructs a Location with defaulting: columns default to 1
// when the tool supplies none, the end position defaults to the start
// position, and endLine is clamped so it never precedes startLine.
func NewLocation(uri string, line, col, endLine, endCol int) Location {
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if endLine < line {
		endLine = line
	}
	if endCol < 1 {
		endCol = col
	}
	return Location{
		URI:         uri,
		StartLine:   line,
		StartColumn: col,
		EndLine:     endLine,
		EndColumn:   endCol,
	}
}

// Path returns the finding's primary file path, or "" for package-level
// findings without locations.
func (f Finding) Path() string {
	if len(f.Locations) == 0 {
		return ""
	}
	return f.Locations[0].URI
}

// Line returns the finding's primary start line, or 0 when the finding
// carries no location.
func (f Finding) Line() int {
	if len(f.Locations) == 0 {
		return 0
	}
	return f.Locations[0].StartLine
}

// GateResult is the outcome of a single quality gate check.
type GateResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Details  string `json:"details"`
	ExitCode int    `json:"exit_code"`
}

// Summary aggregates all gate results for one run.
type Summary struct {
	Passed bool         `json:"passed"`
	Gates  []GateResult `json:"gates"`
}

// Summarize folds gate results into a Summary. The run passes only when
// every gate passed; an empty gate list counts as passing.
func Summarize(gates []GateResult) Summary {
	passed := true
	for _, g := range gates {
		if !g.Passed {
			passed = false
			break
		}
	}
	if gates == nil {
		gates = []GateResult{}
	}
	return Summary{Passed: passed, Gates: gates}
}

// CoverageResult is the per-run coverage measurement, derived once from a
// coverage artifact and never persisted.
type CoverageResult struct {
	Percent float64 `json:"percent"`
	Passed  bool    `json:"passed"`
}

// CodeIssue is the pre-GitHub shape of a finding, carrying optional
// suggestion and fix-snippet fields used by the PR annotation mapper.
type CodeIssue struct {
	File       string `json:"file_path"`
	Line       int    `json:"line_number"`
	Column     int    `json:"column"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	RuleID     string `json:"rule_id"`
	Suggestion string `json:"suggestion,omitempty"`
	FixCode    string `json:"fix_code,omitempty"`
}

// IssueFromFinding converts a normalized Finding into the CodeIssue shape
// consumed by the PR annotation mapper.
func IssueFromFinding(f Finding) CodeIssue {
	issue := CodeIssue{
		Severity: severityFromLevel(f.Level),
		Message:  f.Message,
		RuleID:   f.RuleID,
	}
	if len(f.Locations) > 0 {
		loc := f.Locations[0]
		issue.File = loc.URI
		issue.Line = loc.StartLine
		issue.Column = loc.StartColumn
	}
	return issue
}

func severityFromLevel(level Level) string {
	switch level {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "info"
	}
}
