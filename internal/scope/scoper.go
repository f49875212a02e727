package scope

import (
	"context"
	"strings"
)

// GitEngine abstracts the git operations the scoper needs.
type GitEngine interface {
	// TrackedFiles lists every tracked file in the repository.
	TrackedFiles(ctx context.Context) ([]string, error)

	// ChangedFiles lists the files that differ between two refs.
	ChangedFiles(ctx context.Context, baseRef, headRef string) ([]string, error)
}

// Scoper resolves the in-scope file set for a run.
type Scoper struct {
	git GitEngine
}

// NewScoper constructs a Scoper backed by the given git engine.
func NewScoper(git GitEngine) *Scoper {
	return &Scoper{git: git}
}

// ChangedFiles returns the ordered in-scope file set plus the ref pair
// the set was diffed against. With an event path that carries a
// base/head pair, the set is the diff between those refs; otherwise the
// whole tracked tree is in scope and the ref pair is zero. A failed or
// empty diff also falls back to the whole tree, so scope ambiguity never
// aborts a run.
func (s *Scoper) ChangedFiles(ctx context.Context, eventPath string) ([]string, RefPair, error) {
	if eventPath != "" {
		if refs, ok := RefsFromEvent(eventPath); ok {
			files, err := s.git.ChangedFiles(ctx, refs.Base, refs.Head)
			if err == nil && len(files) > 0 {
				return files, refs, nil
			}
		}
	}
	files, err := s.git.TrackedFiles(ctx)
	return files, RefPair{}, err
}

// PythonOnly filters paths down to Python sources, preserving order.
func PythonOnly(paths []string) []string {
	result := []string{}
	for _, p := range paths {
		if strings.HasSuffix(p, ".py") {
			result = append(result, p)
		}
	}
	return result
}

// JSOnly filters paths down to JavaScript and TypeScript sources,
// preserving order.
func JSOnly(paths []string) []string {
	result := []string{}
	for _, p := range paths {
		switch {
		case strings.HasSuffix(p, ".js"),
			strings.HasSuffix(p, ".jsx"),
			strings.HasSuffix(p, ".ts"),
			strings.HasSuffix(p, ".tsx"):
			result = append(result, p)
		}
	}
	return result
}

// ChangedPathsFromDiff extracts the set of touched paths from raw
// unified-diff text by reading "diff --git a/<path> b/<path>" headers.
// Paths are de-duplicated with insertion order preserved.
func ChangedPathsFromDiff(diffText string) []string {
	paths := []string{}
	seen := make(map[string]bool)

	for _, line := range strings.Split(diffText, "\n") {
		if !strings.HasPrefix(line, "diff --git ") {
			continue
		}
		rest := strings.TrimPrefix(line, "diff --git ")
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			continue
		}
		// The b/ side carries the post-change path, which is the one a
		// scoped run should analyze.
		path := strings.TrimPrefix(fields[len(fields)-1], "b/")
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	return paths
}
