package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Init creates an empty repository at path. It creates the .git/ directory
// structure: HEAD, objects/, and refs/heads/. Returns an error if a .git/
// directory already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	gitDir := filepath.Join(path, ".git")

	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gitDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return newRepo(path, gitDir, opts), nil
}

// Open locates a repository from path. path may be a git directory itself
// (it holds HEAD and objects/), or a working tree, in which case the search
// walks upward for a .git/ directory.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	if isGitDir(abs) {
		return newRepo(abs, abs, opts), nil
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, ".git")
		if isGitDir(gitDir) {
			return newRepo(cur, gitDir, opts), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a git repository (or any parent up to /): %s", abs)
		}
		cur = parent
	}
}

func isGitDir(dir string) bool {
	head, err := os.Stat(filepath.Join(dir, "HEAD"))
	if err != nil || head.IsDir() {
		return false
	}
	objects, err := os.Stat(filepath.Join(dir, "objects"))
	return err == nil && objects.IsDir()
}
