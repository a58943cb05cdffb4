package repo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/gitgraph/pkg/object"
)

func TestTagsAndCommitTags(t *testing.T) {
	r := initRepo(t)
	c := commitOn(t, r, "tagged")
	blob, err := r.Store.Put(&object.Blob{Data: []byte("payload")})
	if err != nil {
		t.Fatal(err)
	}
	writeRef(t, r, "refs/tags/v1.0.0", string(c)+"\n")
	writeRef(t, r, "refs/tags/release/rc1", string(c)+"\n")
	writeRef(t, r, "refs/tags/blob-tag", string(blob)+"\n")
	writeRef(t, r, "refs/tags/garbage", "zzz\n")

	names, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if diff := cmp.Diff([]string{"blob-tag", "garbage", "release/rc1", "v1.0.0"}, names); diff != "" {
		t.Fatalf("ListTags (-want +got):\n%s", diff)
	}

	got, err := r.CommitTags()
	if err != nil {
		t.Fatalf("CommitTags: %v", err)
	}
	want := map[string]object.Hash{"v1.0.0": c, "release/rc1": c}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CommitTags (-want +got):\n%s", diff)
	}

	h, err := r.ResolveRevision("release/rc1")
	if err != nil || h != c {
		t.Fatalf("ResolveRevision(release/rc1) = %s, %v", h, err)
	}
}

func TestBranchShadowsTag(t *testing.T) {
	r := initRepo(t)
	onBranch := commitOn(t, r, "branch")
	onTag := commitOn(t, r, "tag")
	writeRef(t, r, "refs/heads/same", string(onBranch)+"\n")
	writeRef(t, r, "refs/tags/same", string(onTag)+"\n")

	h, err := r.ResolveRevision("same")
	if err != nil || h != onBranch {
		t.Fatalf("ResolveRevision(same) = %s, %v; want branch", h, err)
	}
	h, err = r.ResolveRevision("refs/tags/same")
	if err != nil || h != onTag {
		t.Fatalf("ResolveRevision(refs/tags/same) = %s, %v; want tag", h, err)
	}
}

func TestTagsWithoutTagDir(t *testing.T) {
	r := initRepo(t)
	tags, err := r.Tags()
	if err != nil || len(tags) != 0 {
		t.Fatalf("Tags = %v, %v", tags, err)
	}
}
