package check

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/gate"
	"github.com/bkyoung/quality-gate/internal/parse"
	"github.com/bkyoung/quality-gate/internal/sarif"
	"github.com/bkyoung/quality-gate/internal/scope"
)

// FileScoper resolves the set of files a check run should cover, along
// with the ref pair the set was diffed against (zero on whole-tree
// scope).
type FileScoper interface {
	ChangedFiles(ctx context.Context, eventPath string) ([]string, scope.RefPair, error)
}

// ToolResult is the raw outcome of one external tool execution.
type ToolResult struct {
	Output   string
	ExitCode int
}

// ToolRunner executes an external analysis tool against a set of files.
// A returned error means the tool could not run at all (missing binary,
// timeout); findings in the output are not errors.
type ToolRunner interface {
	Run(ctx context.Context, tool parse.Tool, files []string) (ToolResult, error)
}

// SARIFWriter persists the aggregated SARIF document.
type SARIFWriter interface {
	Write(path string, doc sarif.Document) error
}

// ReportWriter persists a gate/finding report (JSON or HTML).
type ReportWriter interface {
	Write(path string, gates []domain.GateResult, findings []domain.Finding) error
}

// AnnotationPublisher renders PR annotations from code issues and
// returns the review comment body.
type AnnotationPublisher interface {
	Publish(path string, issues []domain.CodeIssue) (string, error)
}

// RunRecord captures one completed run for persistence.
type RunRecord struct {
	RunID           string
	Timestamp       time.Time
	Repository      string
	BaseRef         string
	HeadRef         string
	Passed          bool
	CoveragePercent float64
	Gates           []domain.GateResult
}

// RunStore defines the outbound port for persisting run history.
type RunStore interface {
	SaveRun(ctx context.Context, run RunRecord) error
}

// Logger is the structured logging port. All methods accept nil fields.
type Logger interface {
	LogDebug(ctx context.Context, message string, fields map[string]any)
	LogInfo(ctx context.Context, message string, fields map[string]any)
	LogWarning(ctx context.Context, message string, fields map[string]any)
	LogError(ctx context.Context, message string, fields map[string]any)
}

// OrchestratorDeps captures the dependencies for the check orchestrator.
type OrchestratorDeps struct {
	Scoper      FileScoper
	Runner      ToolRunner
	SARIF       SARIFWriter
	JSON        ReportWriter
	HTML        ReportWriter
	Annotations AnnotationPublisher
	Store       RunStore // Optional: persistence for run history
	Logger      Logger   // Optional: structured logging
	Now         func() time.Time
}

// Request describes one check run.
type Request struct {
	Repository string
	BaseRef    string
	HeadRef    string
	EventPath  string
	Policy     gate.Policy
	SkipTests  bool
	Parallel   bool

	SARIFPath       string
	JSONPath        string
	HTMLPath        string
	AnnotationsPath string

	// CoveragePaths overrides the default Cobertura report candidates.
	CoveragePaths []string
}

// Result captures the orchestrator outcome.
type Result struct {
	Summary         domain.Summary
	Findings        []domain.Finding
	CoveragePercent int
	Files           []string
	ReviewComment   string
}

// Orchestrator implements the check pipeline: scope files, run tools,
// parse findings, evaluate gates, emit reports.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) validateDependencies() error {
	if o.deps.Scoper == nil {
		return errors.New("file scoper is required")
	}
	if o.deps.Runner == nil {
		return errors.New("tool runner is required")
	}
	// Writers are optional; unset paths skip them.
	// Store is optional.
	// Logger is optional.
	return nil
}

// toolOutcome is one category's contribution to the run.
type toolOutcome struct {
	gates    []domain.GateResult
	findings []domain.Finding
	runs     []sarif.ToolRun
}

// Run executes the full check pipeline for one repository state.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if err := o.validateDependencies(); err != nil {
		return Result{}, err
	}

	files, refs, err := o.deps.Scoper.ChangedFiles(ctx, req.EventPath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve changed files: %w", err)
	}
	if req.BaseRef == "" {
		req.BaseRef = refs.Base
	}
	if req.HeadRef == "" {
		req.HeadRef = refs.Head
	}
	pyFiles := scope.PythonOnly(files)
	jsFiles := scope.JSOnly(files)

	o.logInfo(ctx, "resolved check scope", map[string]any{
		"files":       len(files),
		"pythonFiles": len(pyFiles),
		"jsFiles":     len(jsFiles),
	})

	categories := []func(context.Context) toolOutcome{
		func(ctx context.Context) toolOutcome { return o.lintCategory(ctx, req, pyFiles, jsFiles) },
		func(ctx context.Context) toolOutcome { return o.typesCategory(ctx, req, pyFiles, jsFiles) },
		func(ctx context.Context) toolOutcome { return o.securityCategory(ctx, req, pyFiles) },
		func(ctx context.Context) toolOutcome { return o.testsCategory(ctx, req) },
	}

	outcomes := make([]toolOutcome, len(categories))
	if req.Parallel {
		var wg sync.WaitGroup
		for i, category := range categories {
			wg.Add(1)
			go func(i int, category func(context.Context) toolOutcome) {
				defer wg.Done()
				outcomes[i] = category(ctx)
			}(i, category)
		}
		wg.Wait()
	} else {
		for i, category := range categories {
			outcomes[i] = category(ctx)
		}
	}

	coveragePercent := 0
	var gates []domain.GateResult
	if !req.SkipTests {
		coveragePercent = parse.ProjectCoverage(req.CoveragePaths...)
		gates = append(gates, gate.Coverage(float64(coveragePercent), req.Policy.MinCoverage))
	}

	var findings []domain.Finding
	var toolRuns []sarif.ToolRun
	for _, outcome := range outcomes {
		gates = append(gates, outcome.gates...)
		findings = append(findings, outcome.findings...)
		toolRuns = append(toolRuns, outcome.runs...)
	}

	summary := domain.Summarize(gates)
	toolRuns = append(toolRuns, gateSummaryRun(gates))

	result := Result{
		Summary:         summary,
		Findings:        findings,
		CoveragePercent: coveragePercent,
		Files:           files,
	}

	if err := o.writeReports(req, summary, findings, toolRuns, &result); err != nil {
		return result, err
	}

	o.saveRun(ctx, req, summary, coveragePercent)

	return result, nil
}

// lintCategory runs the style linters, each on its own language slice.
func (o *Orchestrator) lintCategory(ctx context.Context, req Request, pyFiles, jsFiles []string) toolOutcome {
	var outcome toolOutcome
	outcome.add(o.runTool(ctx, parse.ToolFlake8, pyFiles, gate.NameLint, domain.LevelWarning, req.Policy.FailOnLint))
	outcome.add(o.runTool(ctx, parse.ToolESLint, jsFiles, gate.NameJSLint, domain.LevelError, req.Policy.FailOnLint))
	return outcome
}

// typesCategory runs the static type checkers.
func (o *Orchestrator) typesCategory(ctx context.Context, req Request, pyFiles, jsFiles []string) toolOutcome {
	var outcome toolOutcome
	outcome.add(o.runTool(ctx, parse.ToolMypy, pyFiles, gate.NameTypes, domain.LevelError, req.Policy.FailOnMypy))
	outcome.add(o.runTool(ctx, parse.ToolTsc, jsFiles, gate.NameJSTypes, domain.LevelError, req.Policy.FailOnMypy))
	return outcome
}

// securityCategory runs the security scanners.
func (o *Orchestrator) securityCategory(ctx context.Context, req Request, pyFiles []string) toolOutcome {
	var outcome toolOutcome
	outcome.add(o.runTool(ctx, parse.ToolBandit, pyFiles, gate.NameSecurity, domain.LevelError, req.Policy.FailOnBandit))
	return outcome
}

// testsCategory runs both test suites and derives a single tests gate.
// pytest gates on its exit code and leaves coverage.xml behind for the
// coverage gate; jest contributes per-test failure counts and findings.
func (o *Orchestrator) testsCategory(ctx context.Context, req Request) toolOutcome {
	if req.SkipTests {
		return toolOutcome{}
	}

	pyRes, pyErr := o.deps.Runner.Run(ctx, parse.ToolPytest, nil)
	if pyErr != nil {
		o.logWarning(ctx, "pytest unavailable", map[string]any{"error": pyErr.Error()})
	}

	jestRes, jestErr := o.deps.Runner.Run(ctx, parse.ToolJest, nil)
	if jestErr != nil {
		o.logWarning(ctx, "jest unavailable", map[string]any{"error": jestErr.Error()})
	}

	if pyErr != nil && jestErr != nil {
		return toolOutcome{gates: []domain.GateResult{gate.Unavailable(gate.NameTests, pyErr)}}
	}

	pyExit := 0
	if pyErr == nil {
		pyExit = pyRes.ExitCode
	}

	var counts parse.JestCounts
	var findings []domain.Finding
	var runs []sarif.ToolRun
	if jestErr == nil {
		counts = parse.JestSummary(jestRes.Output)
		findings = parse.Jest(jestRes.Output)
		runs = []sarif.ToolRun{{ToolName: parse.ToolJest.String(), Findings: findings}}
	}

	return toolOutcome{
		gates:    []domain.GateResult{gate.TestRun(pyExit, counts.Failed, counts.Total)},
		findings: findings,
		runs:     runs,
	}
}

// runTool executes one tool and turns its output into findings plus a
// gate result. Tools given no files still report a (trivially passing)
// gate so the summary always lists every category.
func (o *Orchestrator) runTool(ctx context.Context, tool parse.Tool, files []string, gateName string, failLevel domain.Level, enforce bool) ([]domain.Finding, []domain.GateResult, []sarif.ToolRun) {
	if len(files) == 0 {
		result := gate.Findings(gateName, nil, failLevel, enforce)
		return nil, []domain.GateResult{result}, nil
	}

	res, err := o.deps.Runner.Run(ctx, tool, files)
	if err != nil {
		o.logWarning(ctx, "tool unavailable", map[string]any{
			"tool":  tool.String(),
			"error": err.Error(),
		})
		return nil, []domain.GateResult{gate.Unavailable(gateName, err)}, nil
	}

	parser, ok := parse.ParserFor(tool)
	if !ok {
		return nil, []domain.GateResult{gate.Unavailable(gateName, fmt.Errorf("no parser for %s", tool))}, nil
	}

	findings := parser(res.Output)
	result := gate.Findings(gateName, findings, failLevel, enforce)
	runs := []sarif.ToolRun{{ToolName: tool.String(), Findings: findings}}
	return findings, []domain.GateResult{result}, runs
}

func (out *toolOutcome) add(findings []domain.Finding, gates []domain.GateResult, runs []sarif.ToolRun) {
	out.findings = append(out.findings, findings...)
	out.gates = append(out.gates, gates...)
	out.runs = append(out.runs, runs...)
}

// gateSummaryRun mirrors each gate outcome into the SARIF document as a
// "gate:<name>" result, so the report alone tells whether the run passed.
func gateSummaryRun(gates []domain.GateResult) sarif.ToolRun {
	findings := make([]domain.Finding, 0, len(gates))
	for _, g := range gates {
		level := domain.LevelNote
		if !g.Passed {
			level = domain.LevelError
		}
		findings = append(findings, domain.Finding{
			RuleID:  "gate:" + g.Name,
			Level:   level,
			Message: g.Details,
		})
	}
	return sarif.ToolRun{ToolName: "quality-gate", Findings: findings}
}

func (o *Orchestrator) writeReports(req Request, summary domain.Summary, findings []domain.Finding, toolRuns []sarif.ToolRun, result *Result) error {
	if req.SARIFPath != "" && o.deps.SARIF != nil {
		doc := sarif.BuildReport(toolRuns, nil)
		if err := o.deps.SARIF.Write(req.SARIFPath, doc); err != nil {
			return fmt.Errorf("write sarif report: %w", err)
		}
	}

	if req.JSONPath != "" && o.deps.JSON != nil {
		if err := o.deps.JSON.Write(req.JSONPath, summary.Gates, findings); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}
	}

	if req.HTMLPath != "" && o.deps.HTML != nil {
		if err := o.deps.HTML.Write(req.HTMLPath, summary.Gates, findings); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
	}

	if req.AnnotationsPath != "" && o.deps.Annotations != nil {
		issues := make([]domain.CodeIssue, 0, len(findings))
		for _, f := range findings {
			issues = append(issues, domain.IssueFromFinding(f))
		}
		comment, err := o.deps.Annotations.Publish(req.AnnotationsPath, issues)
		if err != nil {
			return fmt.Errorf("write annotations: %w", err)
		}
		result.ReviewComment = comment
	}

	return nil
}

// saveRun records the run in the optional history store. Store failures
// are logged and do not fail the run.
func (o *Orchestrator) saveRun(ctx context.Context, req Request, summary domain.Summary, coveragePercent int) {
	if o.deps.Store == nil {
		return
	}

	now := o.deps.Now()
	record := RunRecord{
		RunID:           fmt.Sprintf("run-%d", now.UnixNano()),
		Timestamp:       now,
		Repository:      req.Repository,
		BaseRef:         req.BaseRef,
		HeadRef:         req.HeadRef,
		Passed:          summary.Passed,
		CoveragePercent: float64(coveragePercent),
		Gates:           summary.Gates,
	}

	if err := o.deps.Store.SaveRun(ctx, record); err != nil {
		o.logWarning(ctx, "failed to save run record", map[string]any{
			"runID": record.RunID,
			"error": err.Error(),
		})
	}
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
	}
}
