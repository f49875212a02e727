package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkyoung/quality-gate/internal/gate"
	"github.com/bkyoung/quality-gate/internal/usecase/check"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrGatesFailed indicates the run completed but at least one gate failed.
// The summary has already been printed; main only maps this to exit code 1.
var ErrGatesFailed = errors.New("quality gates failed")

// Checker defines the dependency required to run the check command.
type Checker interface {
	Run(ctx context.Context, req check.Request) (check.Result, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Defaults holds configuration-derived defaults for the check command.
type Defaults struct {
	MinCoverage  float64
	FailOnLint   bool
	FailOnMypy   bool
	FailOnBandit bool

	Repository      string
	SARIFPath       string
	JSONPath        string
	HTMLPath        string
	AnnotationsPath string

	Parallel  bool
	SkipTests bool
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Checker  Checker
	Args     Arguments
	Defaults Defaults
	Version  string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "qg",
		Short: "CI quality gate aggregator",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(checkCommand(deps.Checker, deps.Defaults))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func checkCommand(checker Checker, defaults Defaults) *cobra.Command {
	var minCov float64
	var eventPath string
	var skipTests bool
	var parallel bool
	var sarifPath string
	var annotationsPath string
	var reportFormat string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the quality gates against the current repository state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if checker == nil {
				return errors.New("checker is not configured")
			}

			req := check.Request{
				Repository: defaults.Repository,
				EventPath:  eventPath,
				Policy: gate.Policy{
					MinCoverage:  minCov,
					FailOnLint:   defaults.FailOnLint,
					FailOnMypy:   defaults.FailOnMypy,
					FailOnBandit: defaults.FailOnBandit,
				},
				SkipTests:       skipTests || defaults.SkipTests,
				Parallel:        parallel || defaults.Parallel,
				AnnotationsPath: annotationsPath,
			}

			switch strings.ToLower(strings.TrimSpace(reportFormat)) {
			case "sarif":
				req.SARIFPath = sarifPath
			case "json":
				req.JSONPath = defaults.JSONPath
			case "html":
				req.HTMLPath = defaults.HTMLPath
			case "all":
				req.SARIFPath = sarifPath
				req.JSONPath = defaults.JSONPath
				req.HTMLPath = defaults.HTMLPath
			case "none":
				// reports suppressed; the console summary still prints
			default:
				return fmt.Errorf("unknown report format %q (want sarif, json, html, all, or none)", reportFormat)
			}

			result, err := checker.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if code := check.WriteSummary(cmd.OutOrStdout(), result.Summary); code != 0 {
				return ErrGatesFailed
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minCov, "min-cov", defaults.MinCoverage, "Minimum coverage percentage")
	cmd.Flags().StringVar(&eventPath, "event", "", "Path to a GitHub event payload for diff scoping")
	cmd.Flags().BoolVar(&skipTests, "skip-tests", defaults.SkipTests, "Skip the test and coverage gates")
	cmd.Flags().BoolVar(&parallel, "parallel", defaults.Parallel, "Run independent tool categories concurrently")
	cmd.Flags().StringVar(&sarifPath, "sarif", defaults.SARIFPath, "SARIF report output path")
	cmd.Flags().StringVar(&annotationsPath, "annotations", defaults.AnnotationsPath, "PR annotations output path (empty disables)")
	cmd.Flags().StringVar(&reportFormat, "report-format", "sarif", "Report format: sarif, json, html, all, or none")

	return cmd
}
