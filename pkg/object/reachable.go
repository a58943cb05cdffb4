package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// commit parents, commit trees and tree entries. Ids that cannot be found
// are left out; submodule commits (gitlinks) are not followed because they
// belong to another repository.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	if len(roots) == 0 {
		return out, nil
	}

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[h]; ok {
			continue
		}

		obj, err := s.Get(h)
		if errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrInvalidIdentifier) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		out[h] = struct{}{}
		stack = append(stack, referencedHashes(obj)...)
	}

	return out, nil
}

func referencedHashes(obj Object) []Hash {
	switch o := obj.(type) {
	case *Commit:
		refs := make([]Hash, 0, 1+len(o.Parents))
		refs = append(refs, o.Tree)
		refs = append(refs, o.Parents...)
		return refs
	case *Tree:
		refs := make([]Hash, 0, len(o.Entries))
		for _, e := range o.Entries {
			if e.IsGitlink() {
				continue
			}
			refs = append(refs, e.Hash)
		}
		return refs
	default:
		return nil
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
