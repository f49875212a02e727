package git_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bkyoung/quality-gate/internal/adapter/git"
)

func TestEngineTrackedFiles(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	repo, worktree := initRepo(t, tmp)
	_ = repo

	writeFile(t, tmp, "src/app.py", "print('hi')\n")
	writeFile(t, tmp, "README.md", "# readme\n")
	addAll(t, worktree, "src/app.py", "README.md")
	commit(t, worktree, "initial")

	files, err := git.NewEngine(tmp).TrackedFiles(ctx)
	if err != nil {
		t.Fatalf("TrackedFiles returned error: %v", err)
	}

	want := []string{"README.md", "src/app.py"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("TrackedFiles() = %v, want %v", files, want)
	}
}

func TestEngineChangedFiles(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	_, worktree := initRepo(t, tmp)

	writeFile(t, tmp, "a.py", "x = 1\n")
	addAll(t, worktree, "a.py")
	commit(t, worktree, "initial")

	if err := checkoutBranch(worktree, "feature"); err != nil {
		t.Fatalf("checkout error: %v", err)
	}
	writeFile(t, tmp, "a.py", "x = 2\n")
	writeFile(t, tmp, "b.py", "y = 1\n")
	addAll(t, worktree, "a.py", "b.py")
	commit(t, worktree, "feature change")

	files, err := git.NewEngine(tmp).ChangedFiles(ctx, "master", "feature")
	if err != nil {
		t.Fatalf("ChangedFiles returned error: %v", err)
	}

	want := []string{"a.py", "b.py"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ChangedFiles() = %v, want %v", files, want)
	}
}

func TestEngineChangedFiles_BaseAdvancesAfterBranch(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	_, worktree := initRepo(t, tmp)

	writeFile(t, tmp, "shared.py", "x = 1\n")
	addAll(t, worktree, "shared.py")
	commit(t, worktree, "initial")

	if err := checkoutBranch(worktree, "feature"); err != nil {
		t.Fatalf("checkout error: %v", err)
	}
	writeFile(t, tmp, "feature.py", "y = 1\n")
	addAll(t, worktree, "feature.py")
	commit(t, worktree, "feature change")

	// master moves on after the branch point. Those commits must not
	// count toward feature's diff.
	if err := checkoutExisting(worktree, "master"); err != nil {
		t.Fatalf("checkout error: %v", err)
	}
	writeFile(t, tmp, "base_only.py", "z = 1\n")
	addAll(t, worktree, "base_only.py")
	commit(t, worktree, "base change")

	files, err := git.NewEngine(tmp).ChangedFiles(ctx, "master", "feature")
	if err != nil {
		t.Fatalf("ChangedFiles returned error: %v", err)
	}

	want := []string{"feature.py"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ChangedFiles() = %v, want %v", files, want)
	}
}

func TestEngineChangedFiles_BadRef(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	_, worktree := initRepo(t, tmp)
	writeFile(t, tmp, "a.py", "x = 1\n")
	addAll(t, worktree, "a.py")
	commit(t, worktree, "initial")

	if _, err := git.NewEngine(tmp).ChangedFiles(ctx, "nope", "master"); err == nil {
		t.Error("expected error for unresolvable ref")
	}
}

func TestEngineTrackedFiles_NotARepo(t *testing.T) {
	if _, err := git.NewEngine(t.TempDir()).TrackedFiles(context.Background()); err == nil {
		t.Error("expected error outside a repository")
	}
}

func initRepo(t *testing.T, dir string) (*goGit.Repository, *goGit.Worktree) {
	t.Helper()
	repo, err := goGit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return repo, worktree
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

func addAll(t *testing.T, worktree *goGit.Worktree, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := worktree.Add(p); err != nil {
			t.Fatalf("add %s error: %v", p, err)
		}
	}
}

func commit(t *testing.T, worktree *goGit.Worktree, message string) {
	t.Helper()
	_, err := worktree.Commit(message, &goGit.CommitOptions{Author: defaultSignature()})
	if err != nil {
		t.Fatalf("commit error: %v", err)
	}
}

func checkoutBranch(worktree *goGit.Worktree, name string) error {
	return worktree.Checkout(&goGit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
}

func checkoutExisting(worktree *goGit.Worktree, name string) error {
	return worktree.Checkout(&goGit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
}

func defaultSignature() *object.Signature {
	return &object.Signature{
		Name:  "tester",
		Email: "tester@example.com",
		When:  time.Unix(1700000000, 0),
	}
}
