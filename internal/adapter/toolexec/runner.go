// Package toolexec runs the external analysis tools as subprocesses and
// hands their raw output back to the check pipeline.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/bkyoung/quality-gate/internal/parse"
	"github.com/bkyoung/quality-gate/internal/usecase/check"
)

// Runner executes analysis tools in a fixed working directory.
type Runner struct {
	dir string
}

// NewRunner creates a runner whose subprocesses run in dir. An empty dir
// uses the current working directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Run executes one tool against the given files. A missing binary or a
// cancelled context is an error; a non-zero exit with parseable output
// is not.
func (r *Runner) Run(ctx context.Context, tool parse.Tool, files []string) (check.ToolResult, error) {
	args, err := argv(tool, files)
	if err != nil {
		return check.ToolResult{}, err
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return check.ToolResult{}, fmt.Errorf("%s interrupted: %w", tool, ctx.Err())
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return check.ToolResult{}, fmt.Errorf("run %s: %w", tool, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return check.ToolResult{Output: combineOutput(tool, stdout.String(), stderr.String()), ExitCode: exitCode}, nil
}

// argv maps each tool to its command line.
func argv(tool parse.Tool, files []string) ([]string, error) {
	switch tool {
	case parse.ToolFlake8:
		return append([]string{"flake8"}, files...), nil
	case parse.ToolMypy:
		return append([]string{"mypy", "--show-error-codes", "--no-color-output", "--no-error-summary"}, files...), nil
	case parse.ToolBandit:
		args := []string{"bandit", "-f", "json", "-q"}
		if len(files) > 0 {
			return append(args, files...), nil
		}
		return append(args, "-r", "."), nil
	case parse.ToolESLint:
		return append([]string{"npx", "eslint", "--format", "json"}, files...), nil
	case parse.ToolTsc:
		return []string{"npx", "tsc", "--noEmit", "--pretty", "false"}, nil
	case parse.ToolJest:
		return []string{"npx", "jest", "--coverage", "--coverageReporters=cobertura"}, nil
	case parse.ToolPytest:
		return []string{"python", "-m", "pytest", "-q", "--cov=src", "--cov-report=xml"}, nil
	}
	return nil, fmt.Errorf("unknown tool %d", tool)
}

// combineOutput keeps JSON-emitting tools on stdout only; text tools
// report on both streams.
func combineOutput(tool parse.Tool, stdout, stderr string) string {
	switch tool {
	case parse.ToolBandit, parse.ToolESLint:
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}
