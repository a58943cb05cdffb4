package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// Tags maps each tag under refs/tags to the id its file holds. Annotated
// tags point at tag objects, which this package does not decode; use
// CommitTags for labels that land on commits.
func (r *Repo) Tags() (map[string]object.Hash, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make(map[string]object.Hash, len(refs))
	for full, h := range refs {
		out[strings.TrimPrefix(full, "tags/")] = h
	}
	return out, nil
}

// ListTags lists tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	tags, err := r.Tags()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CommitTags returns the tags whose ref names a readable commit directly.
func (r *Repo) CommitTags() (map[string]object.Hash, error) {
	tags, err := r.Tags()
	if err != nil {
		return nil, err
	}
	out := make(map[string]object.Hash, len(tags))
	for name, h := range tags {
		if !h.Valid() {
			continue
		}
		if _, err := r.Store.ReadCommit(h); err != nil {
			r.logger.Printf("tag %s: skip %s: %v", name, h.Short(), err)
			continue
		}
		out[name] = h
	}
	return out, nil
}
