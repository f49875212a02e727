// Package git implements the scope.GitEngine port backed by go-git.
package git

import (
	"context"
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Engine resolves tracked and changed files for a repository directory.
type Engine struct {
	repoDir string
}

// NewEngine constructs a git engine for the provided repository
// directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// TrackedFiles lists every file in the HEAD tree, in tree order.
func (e *Engine) TrackedFiles(ctx context.Context) ([]string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD tree: %w", err)
	}

	files := []string{}
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk HEAD tree: %w", err)
	}
	return files, nil
}

// ChangedFiles lists the paths that differ between two refs. The diff
// runs from the merge base of the two commits (the three-dot
// `base...head` form), so commits that land on the base branch after
// the head branched off are not reported. For renames and deletions the
// post-change path is reported when one exists, the pre-change path
// otherwise.
func (e *Engine) ChangedFiles(ctx context.Context, baseRef, headRef string) ([]string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return nil, fmt.Errorf("resolve base ref: %w", err)
	}
	headCommit, err := resolveCommit(repo, headRef)
	if err != nil {
		return nil, fmt.Errorf("resolve head ref: %w", err)
	}

	mergeBases, err := baseCommit.MergeBase(headCommit)
	if err != nil {
		return nil, fmt.Errorf("compute merge base: %w", err)
	}
	from := baseCommit
	if len(mergeBases) > 0 {
		from = mergeBases[0]
	}

	patch, err := from.Patch(headCommit)
	if err != nil {
		return nil, fmt.Errorf("compute patch: %w", err)
	}

	files := []string{}
	seen := make(map[string]bool)
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()
		path := ""
		switch {
		case to != nil:
			path = to.Path()
		case from != nil:
			path = from.Path()
		}
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files, nil
}

// resolveCommit tries the ref as given, then as a local branch, then as
// an origin remote branch.
func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}
