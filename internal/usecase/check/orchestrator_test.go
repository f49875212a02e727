package check

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/quality-gate/internal/domain"
	"github.com/bkyoung/quality-gate/internal/gate"
	"github.com/bkyoung/quality-gate/internal/parse"
	"github.com/bkyoung/quality-gate/internal/sarif"
	"github.com/bkyoung/quality-gate/internal/scope"
)

type fakeScoper struct {
	files []string
	refs  scope.RefPair
	err   error
}

func (f *fakeScoper) ChangedFiles(ctx context.Context, eventPath string) ([]string, scope.RefPair, error) {
	return f.files, f.refs, f.err
}

type fakeRunner struct {
	mu          sync.Mutex
	outputs     map[parse.Tool]string
	errs        map[parse.Tool]error
	exits       map[parse.Tool]int
	calls       []parse.Tool
	filesByTool map[parse.Tool][]string
}

func (f *fakeRunner) Run(ctx context.Context, tool parse.Tool, files []string) (ToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, tool)
	if f.filesByTool == nil {
		f.filesByTool = map[parse.Tool][]string{}
	}
	f.filesByTool[tool] = files
	f.mu.Unlock()
	if err := f.errs[tool]; err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Output: f.outputs[tool], ExitCode: f.exits[tool]}, nil
}

type captureSARIF struct {
	path string
	doc  sarif.Document
}

func (c *captureSARIF) Write(path string, doc sarif.Document) error {
	c.path = path
	c.doc = doc
	return nil
}

type captureReport struct {
	path     string
	gates    []domain.GateResult
	findings []domain.Finding
	err      error
}

func (c *captureReport) Write(path string, gates []domain.GateResult, findings []domain.Finding) error {
	if c.err != nil {
		return c.err
	}
	c.path = path
	c.gates = gates
	c.findings = findings
	return nil
}

type capturePublisher struct {
	path   string
	issues []domain.CodeIssue
}

func (c *capturePublisher) Publish(path string, issues []domain.CodeIssue) (string, error) {
	c.path = path
	c.issues = issues
	return "review comment", nil
}

type fakeStore struct {
	runs []RunRecord
	err  error
}

func (f *fakeStore) SaveRun(ctx context.Context, run RunRecord) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func writeCoverageXML(t *testing.T, lineRate string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coverage.xml")
	content := `<?xml version="1.0"?><coverage line-rate="` + lineRate + `"></coverage>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func passingRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[parse.Tool]string{
			parse.ToolJest: "Tests: 0 failed, 5 passed, 5 total",
		},
		errs: map[parse.Tool]error{},
	}
}

func baseRequest(t *testing.T) Request {
	t.Helper()
	return Request{
		Repository:    "example/repo",
		Policy:        gate.DefaultPolicy(),
		CoveragePaths: []string{writeCoverageXML(t, "0.85")},
	}
}

func TestRunAllGatesPass(t *testing.T) {
	runner := passingRunner()
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py", "util.py"}},
		Runner: runner,
	})

	result, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err)

	assert.True(t, result.Summary.Passed)
	assert.Equal(t, 85, result.CoveragePercent)

	names := make([]string, 0, len(result.Summary.Gates))
	for _, g := range result.Summary.Gates {
		names = append(names, g.Name)
		assert.True(t, g.Passed, "gate %s should pass", g.Name)
	}
	assert.Equal(t, []string{
		gate.NameCoverage,
		gate.NameLint,
		gate.NameJSLint,
		gate.NameTypes,
		gate.NameJSTypes,
		gate.NameSecurity,
		gate.NameTests,
	}, names)
}

func TestRunFailsOnLintFindings(t *testing.T) {
	runner := passingRunner()
	runner.outputs[parse.ToolFlake8] = "app.py:12:80: E501 line too long (92 > 88 characters)"

	jsonOut := &captureReport{}
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
		JSON:   jsonOut,
	})

	req := baseRequest(t)
	req.JSONPath = filepath.Join(t.TempDir(), "report.json")

	result, err := orch.Run(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, result.Summary.Passed)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "flake8:E501", result.Findings[0].RuleID)

	assert.Equal(t, req.JSONPath, jsonOut.path)
	assert.Equal(t, result.Findings, jsonOut.findings)
}

func TestRunLintNotEnforcedStillReportsFindings(t *testing.T) {
	runner := passingRunner()
	runner.outputs[parse.ToolFlake8] = "app.py:1:1: F401 'os' imported but unused"

	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
	})

	req := baseRequest(t)
	req.Policy.FailOnLint = false

	result, err := orch.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Summary.Passed)
	assert.Len(t, result.Findings, 1)

	for _, g := range result.Summary.Gates {
		if g.Name == gate.NameLint {
			assert.True(t, g.Passed)
			assert.Contains(t, g.Details, "non-blocking")
		}
	}
}

func TestRunToolUnavailableDegrades(t *testing.T) {
	runner := passingRunner()
	runner.errs[parse.ToolBandit] = errors.New("bandit not found")

	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
	})

	result, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err, "unavailable tools degrade, they do not abort")

	assert.False(t, result.Summary.Passed)
	for _, g := range result.Summary.Gates {
		if g.Name == gate.NameSecurity {
			assert.False(t, g.Passed)
			assert.Contains(t, g.Details, "bandit not found")
		}
	}
}

func TestRunSkipTests(t *testing.T) {
	runner := passingRunner()
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
	})

	req := baseRequest(t)
	req.SkipTests = true

	result, err := orch.Run(context.Background(), req)
	require.NoError(t, err)

	for _, g := range result.Summary.Gates {
		assert.NotEqual(t, gate.NameCoverage, g.Name)
		assert.NotEqual(t, gate.NameTests, g.Name)
	}
	assert.NotContains(t, runner.calls, parse.ToolJest)
	assert.NotContains(t, runner.calls, parse.ToolPytest)
}

func TestRunInvokesBothTestRunners(t *testing.T) {
	runner := passingRunner()
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
	})

	result, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err)

	assert.True(t, result.Summary.Passed)
	assert.Contains(t, runner.calls, parse.ToolPytest)
	assert.Contains(t, runner.calls, parse.ToolJest)
}

func TestRunPytestFailureFailsTestsGate(t *testing.T) {
	runner := passingRunner()
	runner.exits = map[parse.Tool]int{parse.ToolPytest: 1}

	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
	})

	result, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err)

	assert.False(t, result.Summary.Passed)
	for _, g := range result.Summary.Gates {
		if g.Name == gate.NameTests {
			assert.False(t, g.Passed)
			assert.Contains(t, g.Details, "exited with code 1")
		}
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	seqRunner := passingRunner()
	seq := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: seqRunner,
	})
	parRunner := passingRunner()
	par := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: parRunner,
	})

	seqReq := baseRequest(t)
	parReq := seqReq
	parReq.Parallel = true

	seqResult, err := seq.Run(context.Background(), seqReq)
	require.NoError(t, err)
	parResult, err := par.Run(context.Background(), parReq)
	require.NoError(t, err)

	assert.Equal(t, seqResult.Summary, parResult.Summary)
}

func TestRunWritesGateSummarySARIF(t *testing.T) {
	runner := passingRunner()
	sarifOut := &captureSARIF{}
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
		SARIF:  sarifOut,
	})

	req := baseRequest(t)
	req.SARIFPath = filepath.Join(t.TempDir(), "out.sarif")

	result, err := orch.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotEmpty(t, sarifOut.doc.Runs)
	last := sarifOut.doc.Runs[len(sarifOut.doc.Runs)-1]
	assert.Equal(t, "quality-gate", last.Tool.Driver.Name)
	require.Len(t, last.Results, len(result.Summary.Gates))
	for _, res := range last.Results {
		assert.Contains(t, res.RuleID, "gate:")
		assert.Equal(t, "note", res.Level)
	}
}

func TestRunPublishesAnnotations(t *testing.T) {
	runner := passingRunner()
	runner.outputs[parse.ToolFlake8] = "app.py:12:80: E501 line too long (92 > 88 characters)"

	pub := &capturePublisher{}
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper:      &fakeScoper{files: []string{"app.py"}},
		Runner:      runner,
		Annotations: pub,
	})

	req := baseRequest(t)
	req.AnnotationsPath = "pr-annotations.json"

	result, err := orch.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "pr-annotations.json", pub.path)
	require.Len(t, pub.issues, 1)
	assert.Equal(t, "flake8:E501", pub.issues[0].RuleID)
	assert.Equal(t, "review comment", result.ReviewComment)
}

func TestRunStoreFailureDoesNotFailRun(t *testing.T) {
	runner := passingRunner()
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
		Store:  &fakeStore{err: errors.New("disk full")},
	})

	result, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err)
	assert.True(t, result.Summary.Passed)
}

func TestRunSavesRunRecord(t *testing.T) {
	runner := passingRunner()
	st := &fakeStore{}
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
		Store:  st,
	})

	req := baseRequest(t)
	req.BaseRef = "main"
	req.HeadRef = "feature"

	result, err := orch.Run(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, st.runs, 1)
	saved := st.runs[0]
	assert.Equal(t, "example/repo", saved.Repository)
	assert.Equal(t, "main", saved.BaseRef)
	assert.Equal(t, "feature", saved.HeadRef)
	assert.Equal(t, result.Summary.Passed, saved.Passed)
	assert.Equal(t, float64(result.CoveragePercent), saved.CoveragePercent)
}

func TestRunRecordsEventResolvedRefs(t *testing.T) {
	runner := passingRunner()
	st := &fakeStore{}
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{
			files: []string{"app.py"},
			refs:  scope.RefPair{Base: "abc123", Head: "def456"},
		},
		Runner: runner,
		Store:  st,
	})

	// No refs on the request; the scoper's event-resolved pair must be
	// what the record carries.
	_, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err)

	require.Len(t, st.runs, 1)
	assert.Equal(t, "abc123", st.runs[0].BaseRef)
	assert.Equal(t, "def456", st.runs[0].HeadRef)
}

func TestRunJSToolsGetOnlyJSFiles(t *testing.T) {
	runner := passingRunner()
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py", "web/app.ts", "web/index.js"}},
		Runner: runner,
	})

	_, err := orch.Run(context.Background(), baseRequest(t))
	require.NoError(t, err)

	jsWant := []string{"web/app.ts", "web/index.js"}
	assert.Equal(t, []string{"app.py"}, runner.filesByTool[parse.ToolFlake8])
	assert.Equal(t, jsWant, runner.filesByTool[parse.ToolESLint])
	assert.Equal(t, jsWant, runner.filesByTool[parse.ToolTsc])
}

func TestRunScoperErrorAborts(t *testing.T) {
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{err: errors.New("bad event payload")},
		Runner: passingRunner(),
	})

	_, err := orch.Run(context.Background(), Request{Policy: gate.DefaultPolicy()})
	assert.ErrorContains(t, err, "resolve changed files")
}

func TestRunReportWriteErrorPropagates(t *testing.T) {
	runner := passingRunner()
	orch := NewOrchestrator(OrchestratorDeps{
		Scoper: &fakeScoper{files: []string{"app.py"}},
		Runner: runner,
		HTML:   &captureReport{err: errors.New("permission denied")},
	})

	req := baseRequest(t)
	req.HTMLPath = "report.html"

	_, err := orch.Run(context.Background(), req)
	assert.ErrorContains(t, err, "write html report")
}

func TestValidateDependencies(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorDeps{}).Run(context.Background(), Request{})
	assert.ErrorContains(t, err, "file scoper is required")

	_, err = NewOrchestrator(OrchestratorDeps{Scoper: &fakeScoper{}}).Run(context.Background(), Request{})
	assert.ErrorContains(t, err, "tool runner is required")
}
