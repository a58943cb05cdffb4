package bridge

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/gitgraph/pkg/object"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func runGit(t *testing.T, dir string, stdin []byte, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(string(out))
}

// packedRepo creates a bare repository holding a blob, a tree and a commit,
// all moved into a packfile with no loose copies left behind.
func packedRepo(t *testing.T) (gitDir string, blob, tree, commit object.Hash) {
	t.Helper()
	requireGit(t)
	gitDir = filepath.Join(t.TempDir(), "repo.git")
	runGit(t, "", nil, "init", "--bare", "--quiet", gitDir)

	store := object.NewStore(gitDir)
	var err error
	if blob, err = store.Put(&object.Blob{Data: []byte("packed\n")}); err != nil {
		t.Fatal(err)
	}
	if tree, err = store.Put(&object.Tree{Entries: []object.TreeEntry{
		{Mode: object.TreeModeFile, Name: "a.txt", Hash: blob},
	}}); err != nil {
		t.Fatal(err)
	}
	sig := "Packer <pack@example.com> 1700000000 +0000"
	if commit, err = store.Put(&object.Commit{
		Tree: tree, Author: sig, Committer: sig, Message: "packed\n",
	}); err != nil {
		t.Fatal(err)
	}

	ids := []byte(string(blob) + "\n" + string(tree) + "\n" + string(commit) + "\n")
	runGit(t, gitDir, ids, "pack-objects", "--quiet", "objects/pack/pack")
	for _, h := range []object.Hash{blob, tree, commit} {
		if err := os.Remove(filepath.Join(gitDir, "objects", string(h[:2]), string(h[2:]))); err != nil {
			t.Fatal(err)
		}
	}
	return gitDir, blob, tree, commit
}

func TestFallbacksReadPackedObjects(t *testing.T) {
	gitDir, blob, _, commit := packedRepo(t)

	fallbacks := map[string]object.Fallback{
		"git":    &CatFile{GitDir: gitDir, Timeout: 10 * time.Second},
		"go-git": NewPackReader(gitDir),
		"pack":   object.NewPackSet(gitDir),
	}
	for name, fb := range fallbacks {
		t.Run(name, func(t *testing.T) {
			typ, data, err := fb.Lookup(blob)
			if err != nil {
				t.Fatalf("Lookup(blob): %v", err)
			}
			if typ != object.TypeBlob || string(data) != "packed\n" {
				t.Fatalf("Lookup(blob) = %s %q", typ, data)
			}

			store := object.NewStore(gitDir, object.WithFallback(fb))
			if store.Has(commit) {
				t.Fatal("commit should not exist as a loose object")
			}
			c, err := store.ReadCommit(commit)
			if err != nil {
				t.Fatalf("ReadCommit via fallback: %v", err)
			}
			if c.Message != "packed\n" {
				t.Fatalf("message = %q", c.Message)
			}
		})
	}
}

func TestFallbacksReportMissing(t *testing.T) {
	gitDir, _, _, _ := packedRepo(t)
	missing := object.Hash(strings.Repeat("0f", 20))

	for name, fb := range map[string]object.Fallback{
		"git":    &CatFile{GitDir: gitDir},
		"go-git": NewPackReader(gitDir),
		"pack":   object.NewPackSet(gitDir),
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := fb.Lookup(missing); err == nil {
				t.Fatal("expected lookup of unknown id to fail")
			}
			store := object.NewStore(gitDir, object.WithFallback(fb))
			if _, err := store.Get(missing); !errors.Is(err, object.ErrObjectNotFound) {
				t.Fatalf("Get error = %v, want ErrObjectNotFound", err)
			}
		})
	}
}

func TestCatFileMatchesGitHashObject(t *testing.T) {
	requireGit(t)
	gitDir := filepath.Join(t.TempDir(), "repo.git")
	runGit(t, "", nil, "init", "--bare", "--quiet", gitDir)
	id := runGit(t, gitDir, []byte("from git\n"), "hash-object", "-w", "--stdin")

	// A loose object written by git is readable without any fallback.
	store := object.NewStore(gitDir)
	b, err := store.ReadBlob(object.Hash(id))
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(b.Data) != "from git\n" {
		t.Fatalf("blob = %q", b.Data)
	}
}

func TestCatFileBadBinary(t *testing.T) {
	c := &CatFile{GitDir: t.TempDir(), Binary: filepath.Join(t.TempDir(), "no-such-git")}
	if _, _, err := c.Lookup(object.Hash(strings.Repeat("ab", 20))); err == nil {
		t.Fatal("expected error from missing binary")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		mode    string
		want    string
		wantErr bool
	}{
		{mode: "git", want: "*bridge.CatFile"},
		{mode: " Go-Git ", want: "*bridge.PackReader"},
		{mode: "pack", want: "*object.PackSet"},
		{mode: "none", want: "<nil>"},
		{mode: "", want: "<nil>"},
		{mode: "svn", wantErr: true},
	}
	for _, tc := range tests {
		fb, err := New(tc.mode, "/tmp/x.git", "", time.Second)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("New(%q) should fail", tc.mode)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q): %v", tc.mode, err)
		}
		got := "<nil>"
		if fb != nil {
			got = typeName(fb)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("New(%q) (-want +got):\n%s", tc.mode, diff)
		}
	}
}

func typeName(fb object.Fallback) string {
	switch fb.(type) {
	case *CatFile:
		return "*bridge.CatFile"
	case *PackReader:
		return "*bridge.PackReader"
	case *object.PackSet:
		return "*object.PackSet"
	default:
		return "unknown"
	}
}
