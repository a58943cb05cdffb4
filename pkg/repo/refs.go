package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/object"
)

const symbolicPrefix = "ref: "

// ErrRefCycle matches any *RefCycleError.
var ErrRefCycle = errors.New("symbolic reference cycle")

// RefCycleError reports a chain of symbolic refs that revisits a ref.
type RefCycleError struct {
	Chain []string
}

func (e *RefCycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRefCycle, strings.Join(e.Chain, " -> "))
}

func (e *RefCycleError) Is(target error) bool { return target == ErrRefCycle }

// Head reads HEAD. If the content starts with "ref: ", it returns the ref
// path (e.g., "refs/heads/main"). Otherwise it returns the raw content as a
// detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimSpace(string(data))

	if strings.HasPrefix(content, symbolicPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(content, symbolicPrefix)), nil
	}
	return content, nil
}

// ResolveHead resolves HEAD to a commit id. ok is false when HEAD, or the
// branch it points at, does not exist yet.
func (r *Repo) ResolveHead() (h object.Hash, ok bool, err error) {
	return r.ResolveSymbolic("HEAD")
}

// ResolveSymbolic follows a ref file under the git directory, such as
// "HEAD" or "refs/heads/main", through any chain of "ref: <path>" contents
// and returns the id it finally names. A ref file that does not exist, or
// is empty, yields ok=false and no error: there is nothing to start from.
// Chains that revisit a ref fail with a *RefCycleError.
func (r *Repo) ResolveSymbolic(name string) (h object.Hash, ok bool, err error) {
	seen := make(map[string]struct{})
	var chain []string
	for {
		clean, err := r.cleanRefName(name)
		if err != nil {
			return "", false, err
		}
		chain = append(chain, clean)
		if _, dup := seen[clean]; dup {
			return "", false, &RefCycleError{Chain: chain}
		}
		seen[clean] = struct{}{}

		data, err := os.ReadFile(filepath.Join(r.GitDir, filepath.FromSlash(clean)))
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("resolve ref %q: %w", clean, err)
		}
		content := strings.TrimSpace(string(data))
		if target, symbolic := strings.CutPrefix(content, symbolicPrefix); symbolic {
			name = strings.TrimSpace(target)
			continue
		}
		if content == "" {
			return "", false, nil
		}
		return object.Hash(content), true, nil
	}
}

// cleanRefName normalizes a ref path and rejects paths that leave the git
// directory.
func (r *Repo) cleanRefName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("resolve ref: empty ref name")
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	if filepath.IsAbs(filepath.FromSlash(clean)) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("resolve ref %q: path escapes git directory", name)
	}
	return clean, nil
}

// ListRefs lists references under refs/. Names are returned relative to
// the refs root, e.g. "heads/main", "tags/v1". Each value is the file's
// trimmed content; symbolic contents are not followed.
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.GitDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[name] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// Branches maps each branch under refs/heads to the id its file holds.
// Nested names use forward slashes ("feat/login").
func (r *Repo) Branches() (map[string]object.Hash, error) {
	refs, err := r.ListRefs("heads")
	if err != nil {
		return nil, fmt.Errorf("branches: %w", err)
	}
	out := make(map[string]object.Hash, len(refs))
	for name, h := range refs {
		out[strings.TrimPrefix(name, "heads/")] = h
	}
	return out, nil
}

// ResolveRevision turns a user-supplied name into an id. It accepts HEAD,
// a full ref path, a branch or tag name or a full 40-character id, optionally
// followed by ":path" to name an entry in that commit's tree.
func (r *Repo) ResolveRevision(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if rev, p, ok := strings.Cut(name, ":"); ok {
		return r.resolveTreePath(rev, p)
	}
	candidates := []string{name}
	if name != "HEAD" && !strings.HasPrefix(name, "refs/") {
		candidates = []string{"refs/heads/" + name, "refs/tags/" + name}
	}
	for _, ref := range candidates {
		h, ok, err := r.ResolveSymbolic(ref)
		if err != nil {
			return "", err
		}
		if ok {
			return object.ParseHash(string(h))
		}
	}
	if h, err := object.ParseHash(name); err == nil {
		return h, nil
	}
	return "", fmt.Errorf("unknown revision %q", name)
}

// Tips returns the deduplicated, sorted set of ids named by every branch
// and by HEAD. Missing refs contribute nothing; unreadable refs and
// symbolic cycles are errors.
func (r *Repo) Tips() ([]object.Hash, error) {
	branches, err := r.Branches()
	if err != nil {
		return nil, err
	}
	set := make(map[object.Hash]struct{}, len(branches)+1)
	for name, h := range branches {
		if strings.HasPrefix(string(h), symbolicPrefix) {
			var ok bool
			h, ok, err = r.ResolveSymbolic("refs/heads/" + name)
			if err != nil {
				return nil, fmt.Errorf("tips: %w", err)
			}
			if !ok {
				continue
			}
		}
		if h != "" {
			set[h] = struct{}{}
		}
	}

	head, ok, err := r.ResolveHead()
	if err != nil {
		return nil, fmt.Errorf("tips: %w", err)
	}
	if ok {
		set[head] = struct{}{}
	}

	out := make([]object.Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
