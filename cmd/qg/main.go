package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bkyoung/quality-gate/internal/adapter/cli"
	"github.com/bkyoung/quality-gate/internal/adapter/git"
	githubadapter "github.com/bkyoung/quality-gate/internal/adapter/github"
	"github.com/bkyoung/quality-gate/internal/adapter/observability"
	htmlout "github.com/bkyoung/quality-gate/internal/adapter/output/html"
	jsonout "github.com/bkyoung/quality-gate/internal/adapter/output/json"
	sarifout "github.com/bkyoung/quality-gate/internal/adapter/output/sarif"
	storeadapter "github.com/bkyoung/quality-gate/internal/adapter/store"
	"github.com/bkyoung/quality-gate/internal/adapter/store/sqlite"
	"github.com/bkyoung/quality-gate/internal/adapter/toolexec"
	"github.com/bkyoung/quality-gate/internal/config"
	"github.com/bkyoung/quality-gate/internal/scope"
	"github.com/bkyoung/quality-gate/internal/usecase/check"
	"github.com/bkyoung/quality-gate/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrGatesFailed) {
			// Summary already printed; just signal failure to CI.
			os.Exit(1)
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "qg",
		EnvPrefix:   "QG",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	gitEngine := git.NewEngine(repoDir)
	scoper := scope.NewScoper(gitEngine)
	runner := toolexec.NewRunner(repoDir)

	logger := buildLogger(cfg.Observability.Logging)

	// Initialize run-history store if enabled
	var runStore check.RunStore
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				runStore = storeadapter.NewBridge(sqliteStore)
				defer sqliteStore.Close()
			}
		}
	}

	orchestrator := check.NewOrchestrator(check.OrchestratorDeps{
		Scoper:      scoper,
		Runner:      runner,
		SARIF:       sarifout.NewWriter(),
		JSON:        jsonout.NewWriter(),
		HTML:        htmlout.NewWriter(),
		Annotations: githubadapter.NewPublisher(),
		Store:       runStore,
		Logger:      logger,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Checker: orchestrator,
		Defaults: cli.Defaults{
			MinCoverage:     cfg.Gates.MinCoverage,
			FailOnLint:      cfg.Gates.FailOnLint,
			FailOnMypy:      cfg.Gates.FailOnMypy,
			FailOnBandit:    cfg.Gates.FailOnBandit,
			Repository:      repositoryName(repoDir),
			SARIFPath:       cfg.Output.SARIFPath,
			JSONPath:        cfg.Output.JSONPath,
			HTMLPath:        cfg.Output.HTMLPath,
			AnnotationsPath: cfg.Output.AnnotationsPath,
			Parallel:        cfg.Check.Parallel,
			SkipTests:       cfg.Check.SkipTests,
		},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		if errors.Is(err, cli.ErrGatesFailed) {
			return err
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildLogger creates the structured logger from configuration. The
// format defaults to human on a terminal and JSON everywhere else.
func buildLogger(cfg config.LoggingConfig) check.Logger {
	if !cfg.Enabled {
		return observability.NopLogger{}
	}

	format := observability.ParseFormat(cfg.Format)
	if cfg.Format == "" && !check.IsOutputTerminal() {
		format = observability.LogFormatJSON
	}

	return observability.NewDefaultLogger(observability.ParseLevel(cfg.Level), format)
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "qg"))
	}
	return paths
}
