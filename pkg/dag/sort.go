package dag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// ErrCycle matches any *CycleError.
var ErrCycle = errors.New("cycle detected in commit graph")

// CycleError reports a parent chain that leads back to itself. Path starts
// and ends with the same id.
type CycleError struct {
	Path []object.Hash
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, h := range e.Path {
		parts[i] = h.Short()
	}
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(parts, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

type sortFrame struct {
	hash object.Hash
	next int // index of the next parent to visit
}

// TopoSort orders g so that every child precedes each of its parents. It is
// a depth-first post-order walk over parent links, seeded in ascending id
// order and visiting parents in declared order, then reversed. The seeding
// order fixes the result when several orders are valid. Parents missing
// from g are ignored. A parent chain that returns to a node still on the
// walk stack yields a *CycleError.
func TopoSort(g *Graph) ([]*Node, error) {
	done := make(map[object.Hash]struct{}, g.Len())
	onStack := make(map[object.Hash]struct{})
	out := make([]*Node, 0, g.Len())

	for _, seed := range g.Hashes() {
		if _, ok := done[seed]; ok {
			continue
		}
		stack := []sortFrame{{hash: seed}}
		onStack[seed] = struct{}{}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			n := g.nodes[top.hash]
			if top.next < len(n.Parents) {
				p := n.Parents[top.next]
				top.next++
				if _, ok := done[p]; ok {
					continue
				}
				if _, ok := onStack[p]; ok {
					return nil, &CycleError{Path: cyclePath(stack, p)}
				}
				if !g.Has(p) {
					continue
				}
				onStack[p] = struct{}{}
				stack = append(stack, sortFrame{hash: p})
				continue
			}

			delete(onStack, top.hash)
			done[top.hash] = struct{}{}
			out = append(out, n)
			stack = stack[:len(stack)-1]
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func cyclePath(stack []sortFrame, back object.Hash) []object.Hash {
	start := 0
	for i, f := range stack {
		if f.hash == back {
			start = i
			break
		}
	}
	path := make([]object.Hash, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.hash)
	}
	return append(path, back)
}
