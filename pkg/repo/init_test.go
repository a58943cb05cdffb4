package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}

	gitDir := filepath.Join(dir, ".git")
	if r.GitDir != gitDir {
		t.Errorf("GitDir = %q, want %q", r.GitDir, gitDir)
	}

	assertDir(t, gitDir)
	assertFile(t, filepath.Join(gitDir, "HEAD"))
	assertDir(t, filepath.Join(gitDir, "objects"))
	assertDir(t, filepath.Join(gitDir, "refs", "heads"))

	if r.Store == nil {
		t.Fatal("Store is nil after Init")
	}
	if r.Store.Root() != gitDir {
		t.Errorf("Store.Root() = %q, want %q", r.Store.Root(), gitDir)
	}
}

func TestInit_ExistingRepo_Error(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Fatal("second Init should fail on existing repo, got nil error")
	}
}

func TestInit_HeadDefault(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	ref, err := r.Head()
	if err != nil {
		t.Fatalf("Head(): %v", err)
	}
	if ref != "refs/heads/main" {
		t.Errorf("Head() = %q, want %q", ref, "refs/heads/main")
	}
	branch, err := r.CurrentBranch()
	if err != nil || branch != "main" {
		t.Errorf("CurrentBranch() = %q, %v; want main", branch, err)
	}
}

func TestOpen_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sub := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
	if r.GitDir != filepath.Join(dir, ".git") {
		t.Errorf("GitDir = %q, want %q", r.GitDir, filepath.Join(dir, ".git"))
	}
}

func TestOpen_GitDirDirectly(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	gitDir := filepath.Join(dir, ".git")

	r, err := Open(gitDir)
	if err != nil {
		t.Fatalf("Open(%q): %v", gitDir, err)
	}
	if r.GitDir != gitDir || r.RootDir != gitDir {
		t.Errorf("Open(git dir) = root %q, git %q", r.RootDir, r.GitDir)
	}
}

func TestOpen_NoRepo_Error(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("Open should fail in non-repo directory, got nil error")
	}
}

func TestOpen_HeadWithoutObjectsIsNotRepo(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir); err == nil {
		t.Fatal("Open should reject a .git without objects/")
	}
}

// helpers

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}
