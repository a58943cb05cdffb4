package repo

import (
	"fmt"
	"path"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// TreeFileEntry is one non-directory entry of a flattened tree.
type TreeFileEntry struct {
	Path string
	Mode string
	Hash object.Hash
}

// FlattenTree walks a tree recursively and returns every blob and gitlink
// entry with its slash-separated path, in tree order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "", make(map[object.Hash]bool))
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string, visiting map[object.Hash]bool) ([]TreeFileEntry, error) {
	if visiting[h] {
		return nil, fmt.Errorf("flatten tree: %s contains itself", h)
	}
	visiting[h] = true
	defer delete(visiting, h)

	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range tree.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}
		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath, visiting)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		result = append(result, TreeFileEntry{Path: fullPath, Mode: entry.Mode, Hash: entry.Hash})
	}
	return result, nil
}

// TreeEntryAtPath descends from treeHash along a slash-separated path and
// returns the entry it names, which may itself be a directory.
func (r *Repo) TreeEntryAtPath(treeHash object.Hash, relPath string) (object.TreeEntry, bool, error) {
	relPath = strings.Trim(relPath, "/")
	if relPath == "" {
		return object.TreeEntry{Mode: object.TreeModeDir, Hash: treeHash}, true, nil
	}
	parts := strings.Split(relPath, "/")
	current := treeHash

	for i, part := range parts {
		tree, err := r.Store.ReadTree(current)
		if err != nil {
			return object.TreeEntry{}, false, fmt.Errorf("read tree %s: %w", current, err)
		}

		var (
			entry object.TreeEntry
			found bool
		)
		for _, te := range tree.Entries {
			if te.Name == part {
				entry = te
				found = true
				break
			}
		}
		if !found {
			return object.TreeEntry{}, false, nil
		}
		if i == len(parts)-1 {
			return entry, true, nil
		}
		if !entry.IsDir() {
			return object.TreeEntry{}, false, nil
		}
		current = entry.Hash
	}
	return object.TreeEntry{}, false, nil
}

// treeOf returns the tree id for a commit or tree id.
func (r *Repo) treeOf(h object.Hash) (object.Hash, error) {
	obj, err := r.Store.Get(h)
	if err != nil {
		return "", err
	}
	switch o := obj.(type) {
	case *object.Commit:
		return o.Tree, nil
	case *object.Tree:
		return h, nil
	default:
		return "", fmt.Errorf("%s is a %s, not a commit or tree", h, obj.Type())
	}
}

func (r *Repo) resolveTreePath(rev, relPath string) (object.Hash, error) {
	if strings.TrimSpace(rev) == "" {
		return "", fmt.Errorf("revision missing before %q", ":"+relPath)
	}
	h, err := r.ResolveRevision(rev)
	if err != nil {
		return "", err
	}
	tree, err := r.treeOf(h)
	if err != nil {
		return "", err
	}
	entry, found, err := r.TreeEntryAtPath(tree, relPath)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("path %q does not exist in %q", relPath, rev)
	}
	return entry.Hash, nil
}
