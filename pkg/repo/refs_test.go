package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/gitgraph/pkg/object"
)

func initRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeRef(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	path := filepath.Join(r.GitDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write ref %s: %v", name, err)
	}
}

var (
	oid1 = object.Hash(strings.Repeat("1234", 10))
	oid2 = object.Hash(strings.Repeat("abcd", 10))
)

func TestResolveSymbolicHead(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "refs/heads/main", string(oid1)+"\n")

	h, ok, err := r.ResolveHead()
	if err != nil || !ok {
		t.Fatalf("ResolveHead = %s, %v, %v", h, ok, err)
	}
	if h != oid1 {
		t.Fatalf("ResolveHead = %s, want %s", h, oid1)
	}
}

func TestResolveDetachedHead(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "HEAD", string(oid2))

	h, ok, err := r.ResolveHead()
	if err != nil || !ok || h != oid2 {
		t.Fatalf("ResolveHead = %s, %v, %v; want %s", h, ok, err, oid2)
	}
	branch, err := r.CurrentBranch()
	if err != nil || branch != "" {
		t.Fatalf("CurrentBranch = %q, %v; want detached", branch, err)
	}
}

func TestResolveSymbolicChain(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "HEAD", "ref: refs/heads/alias\n")
	writeRef(t, r, "refs/heads/alias", "ref: refs/heads/main")
	writeRef(t, r, "refs/heads/main", string(oid1))

	h, ok, err := r.ResolveSymbolic("HEAD")
	if err != nil || !ok || h != oid1 {
		t.Fatalf("ResolveSymbolic = %s, %v, %v; want %s", h, ok, err, oid1)
	}
}

func TestResolveSymbolicMissing(t *testing.T) {
	r := initRepo(t)
	// Fresh repository: HEAD points at a branch with no commits yet.
	h, ok, err := r.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	if ok || h != "" {
		t.Fatalf("ResolveHead = %s, %v; want nothing", h, ok)
	}

	if _, ok, err := r.ResolveSymbolic("refs/heads/nope"); ok || err != nil {
		t.Fatalf("missing ref: ok=%v err=%v", ok, err)
	}

	writeRef(t, r, "refs/heads/empty", "\n")
	if _, ok, err := r.ResolveSymbolic("refs/heads/empty"); ok || err != nil {
		t.Fatalf("empty ref: ok=%v err=%v", ok, err)
	}
}

func TestResolveSymbolicCycle(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "HEAD", "ref: refs/heads/a")
	writeRef(t, r, "refs/heads/a", "ref: refs/heads/b")
	writeRef(t, r, "refs/heads/b", "ref: refs/heads/a")

	_, _, err := r.ResolveHead()
	if !errors.Is(err, ErrRefCycle) {
		t.Fatalf("ResolveHead error = %v, want ErrRefCycle", err)
	}
	var rc *RefCycleError
	if !errors.As(err, &rc) {
		t.Fatalf("error %T is not *RefCycleError", err)
	}
	want := []string{"HEAD", "refs/heads/a", "refs/heads/b", "refs/heads/a"}
	if diff := cmp.Diff(want, rc.Chain); diff != "" {
		t.Fatalf("chain (-want +got):\n%s", diff)
	}

	if _, err := r.Tips(); !errors.Is(err, ErrRefCycle) {
		t.Fatalf("Tips error = %v, want ErrRefCycle", err)
	}
}

func TestResolveSymbolicRejectsEscape(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "HEAD", "ref: ../../outside")
	if _, _, err := r.ResolveHead(); err == nil {
		t.Fatal("expected error for ref escaping the git directory")
	}
}

func TestBranchesNested(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "refs/heads/main", string(oid1)+"\n")
	writeRef(t, r, "refs/heads/feat/new-feature", string(oid2))
	writeRef(t, r, "refs/heads/main.lock", "in-flight update")
	writeRef(t, r, "refs/tags/v1", string(oid2))

	got, err := r.Branches()
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	want := map[string]object.Hash{
		"main":             oid1,
		"feat/new-feature": oid2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("branches (-want +got):\n%s", diff)
	}

	names, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if diff := cmp.Diff([]string{"feat/new-feature", "main"}, names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestBranchesMissingHeadsDir(t *testing.T) {
	r := initRepo(t)
	if err := os.RemoveAll(filepath.Join(r.GitDir, "refs")); err != nil {
		t.Fatal(err)
	}
	got, err := r.Branches()
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Branches = %v, want empty", got)
	}
}

func TestTips(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "refs/heads/main", string(oid1))
	writeRef(t, r, "refs/heads/dev", string(oid1))
	writeRef(t, r, "refs/heads/empty", "")
	writeRef(t, r, "HEAD", string(oid2))

	got, err := r.Tips()
	if err != nil {
		t.Fatalf("Tips: %v", err)
	}
	if diff := cmp.Diff([]object.Hash{oid1, oid2}, got); diff != "" {
		t.Fatalf("tips (-want +got):\n%s", diff)
	}
}

func TestResolveRevision(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "refs/heads/main", string(oid1))
	writeRef(t, r, "refs/heads/feat/x", string(oid2))

	tests := []struct {
		input   string
		want    object.Hash
		wantErr bool
	}{
		{input: "HEAD", want: oid1},
		{input: "main", want: oid1},
		{input: "feat/x", want: oid2},
		{input: "refs/heads/feat/x", want: oid2},
		{input: strings.ToUpper(string(oid2)), want: oid2},
		{input: "nope", wantErr: true},
		{input: "refs/heads/nope", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := r.ResolveRevision(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ResolveRevision(%q) = %s, want error", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveRevision(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ResolveRevision(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}
