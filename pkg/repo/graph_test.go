package repo

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/gitgraph/pkg/dag"
	"github.com/odvcencio/gitgraph/pkg/object"
)

// commitOn writes a commit with the given parents and returns its id.
func commitOn(t *testing.T, r *Repo, msg string, parents ...object.Hash) object.Hash {
	t.Helper()
	blob, err := r.Store.Put(&object.Blob{Data: []byte(msg)})
	if err != nil {
		t.Fatalf("put blob: %v", err)
	}
	tree, err := r.Store.Put(&object.Tree{Entries: []object.TreeEntry{
		{Mode: object.TreeModeFile, Name: "msg.txt", Hash: blob},
	}})
	if err != nil {
		t.Fatalf("put tree: %v", err)
	}
	sig := "Test <test@example.com> 1700000000 +0000"
	h, err := r.Store.Put(&object.Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   msg + "\n",
	})
	if err != nil {
		t.Fatalf("put commit: %v", err)
	}
	return h
}

func nodeHashes(nodes []*dag.Node) []object.Hash {
	out := make([]object.Hash, len(nodes))
	for i, n := range nodes {
		out[i] = n.Hash
	}
	return out
}

func TestBuildGraphLinearChain(t *testing.T) {
	r := initRepo(t)
	a := commitOn(t, r, "A")
	b := commitOn(t, r, "B", a)
	c := commitOn(t, r, "C", b)
	writeRef(t, r, "refs/heads/main", string(c)+"\n")

	g, order, err := r.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if diff := cmp.Diff(sortedCopy(a, b, c), g.Hashes()); diff != "" {
		t.Fatalf("nodes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]object.Hash{b}, g.Node(c).Parents); diff != "" {
		t.Fatalf("C parents (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]object.Hash{c}, g.Node(b).ChildList()); diff != "" {
		t.Fatalf("B children (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]object.Hash{c, b, a}, nodeHashes(order)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if g.Node(c).Commit.Message != "C\n" {
		t.Fatalf("message = %q", g.Node(c).Commit.Message)
	}
}

func TestHistoryMergesIdSpellings(t *testing.T) {
	r := initRepo(t)
	a := commitOn(t, r, "A")
	b := commitOn(t, r, "B", a)
	writeRef(t, r, "refs/heads/main", string(b)+"\n")
	writeRef(t, r, "HEAD", strings.ToUpper(string(b))+"\n")

	g, order, err := r.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if diff := cmp.Diff(sortedCopy(a, b), g.Hashes()); diff != "" {
		t.Fatalf("nodes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]object.Hash{b, a}, nodeHashes(order)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func sortedCopy(hs ...object.Hash) []object.Hash {
	out := append([]object.Hash(nil), hs...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestBuildGraphDiamondAcrossBranches(t *testing.T) {
	r := initRepo(t)
	root := commitOn(t, r, "root")
	x := commitOn(t, r, "x", root)
	y := commitOn(t, r, "y", root)
	m := commitOn(t, r, "merge", x, y)
	writeRef(t, r, "refs/heads/main", string(m))
	writeRef(t, r, "refs/heads/feature/x", string(x))
	writeRef(t, r, "refs/heads/feature/y", string(y))

	_, first, err := r.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	order := nodeHashes(first)
	if len(order) != 4 || order[0] != m || order[3] != root {
		t.Fatalf("order = %v, want merge first and root last", order)
	}
	for i := 0; i < 5; i++ {
		_, again, err := r.History()
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if diff := cmp.Diff(order, nodeHashes(again)); diff != "" {
			t.Fatalf("order unstable (-first +again):\n%s", diff)
		}
	}
}

func TestBuildGraphDanglingBranch(t *testing.T) {
	var logs bytes.Buffer
	dir := t.TempDir()
	r, err := Init(dir, WithLogger(log.New(&logs, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	a := commitOn(t, r, "A")
	b := commitOn(t, r, "B", a)
	writeRef(t, r, "refs/heads/main", string(b))
	writeRef(t, r, "refs/heads/gone", strings.Repeat("de", 20))
	writeRef(t, r, "refs/heads/garbage", "not an id at all")

	blob, err := r.Store.Put(&object.Blob{Data: []byte("tip is a blob")})
	if err != nil {
		t.Fatal(err)
	}
	writeRef(t, r, "refs/heads/blob", string(blob))

	g, order, err := r.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if diff := cmp.Diff(sortedCopy(a, b), g.Hashes()); diff != "" {
		t.Fatalf("nodes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]object.Hash{b, a}, nodeHashes(order)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "skip") {
		t.Fatalf("expected skipped tips to be logged, got:\n%s", logs.String())
	}
}

func TestBuildGraphMissingAncestor(t *testing.T) {
	r := initRepo(t)
	a := commitOn(t, r, "A")
	b := commitOn(t, r, "B", a)
	c := commitOn(t, r, "C", b)
	writeRef(t, r, "refs/heads/main", string(c))

	// Remove B's loose file: C stays, A becomes unreachable.
	if err := os.Remove(filepath.Join(r.GitDir, "objects", string(b[:2]), string(b[2:]))); err != nil {
		t.Fatal(err)
	}

	g, err := r.BuildGraph()
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if diff := cmp.Diff([]object.Hash{c}, g.Hashes()); diff != "" {
		t.Fatalf("nodes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]object.Hash{b}, g.Node(c).Parents); diff != "" {
		t.Fatalf("C keeps its recorded parent (-want +got):\n%s", diff)
	}
}

func TestBuildGraphEmptyRepository(t *testing.T) {
	r := initRepo(t)
	g, order, err := r.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if g.Len() != 0 || len(order) != 0 {
		t.Fatalf("empty repo produced %d nodes", g.Len())
	}
}

func TestBuildGraphRefCycleIsFatal(t *testing.T) {
	r := initRepo(t)
	writeRef(t, r, "HEAD", "ref: HEAD")
	if _, err := r.BuildGraph(); !errors.Is(err, ErrRefCycle) {
		t.Fatalf("BuildGraph error = %v, want ErrRefCycle", err)
	}
}

func TestPage(t *testing.T) {
	nodes := make([]*dag.Node, 5)
	for i := range nodes {
		nodes[i] = &dag.Node{Hash: object.Hash(fmt.Sprintf("%040d", i))}
	}
	tests := []struct {
		skip, limit int
		want        int
		first       int
	}{
		{skip: 0, limit: 0, want: 5, first: 0},
		{skip: 0, limit: 2, want: 2, first: 0},
		{skip: 3, limit: 10, want: 2, first: 3},
		{skip: 5, limit: 1, want: 0},
		{skip: -1, limit: 1, want: 1, first: 0},
	}
	for _, tc := range tests {
		got := Page(nodes, tc.skip, tc.limit)
		if len(got) != tc.want {
			t.Fatalf("Page(skip=%d, limit=%d) len = %d, want %d", tc.skip, tc.limit, len(got), tc.want)
		}
		if tc.want > 0 && got[0] != nodes[tc.first] {
			t.Fatalf("Page(skip=%d, limit=%d) starts at %s", tc.skip, tc.limit, got[0].Hash)
		}
	}
}

func TestMergeBaseAndIsAncestor(t *testing.T) {
	r := initRepo(t)
	root := commitOn(t, r, "root")
	x := commitOn(t, r, "x", root)
	y := commitOn(t, r, "y", root)
	y2 := commitOn(t, r, "y2", y)
	lone := commitOn(t, r, "lone")

	base, found, err := r.MergeBase(x, y2)
	if err != nil || !found || base != root {
		t.Fatalf("MergeBase(x, y2) = %s, %v, %v; want root", base, found, err)
	}
	if _, found, err := r.MergeBase(x, lone); err != nil || found {
		t.Fatalf("MergeBase(x, lone) found = %v, %v; want none", found, err)
	}

	tests := []struct {
		name      string
		anc, desc object.Hash
		want      bool
	}{
		{"parent", y, y2, true},
		{"root", root, y2, true},
		{"sibling", x, y2, false},
		{"reverse", y2, y, false},
		{"self", x, x, true},
	}
	for _, tc := range tests {
		got, err := r.IsAncestor(tc.anc, tc.desc)
		if err != nil {
			t.Fatalf("%s: IsAncestor: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: IsAncestor = %v, want %v", tc.name, got, tc.want)
		}
	}

	blob, err := r.Store.Put(&object.Blob{Data: []byte("not a commit")})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.MergeBase(x, blob); err == nil {
		t.Fatal("MergeBase with a blob should fail")
	}
}
