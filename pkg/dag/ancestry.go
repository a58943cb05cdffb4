package dag

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// ErrNotInGraph is returned when a query names a commit the graph never
// discovered.
var ErrNotInGraph = errors.New("commit not in graph")

// Ancestry answers reachability queries over a Graph. Every node carries a
// generation number, one more than the largest generation among its parents
// in the graph, so a walk can stop at any node whose generation is already
// below its target. Merge bases are memoized per unordered pair.
type Ancestry struct {
	g   *Graph
	gen map[object.Hash]uint64

	mu    sync.Mutex
	bases map[pairKey]mergeBaseEntry
}

type pairKey struct {
	left, right object.Hash
}

type mergeBaseEntry struct {
	base  object.Hash
	found bool
}

func canonicalPair(a, b object.Hash) pairKey {
	if a <= b {
		return pairKey{left: a, right: b}
	}
	return pairKey{left: b, right: a}
}

// NewAncestry computes generation numbers for g. A cycle is returned as a
// *CycleError.
func NewAncestry(g *Graph) (*Ancestry, error) {
	order, err := TopoSort(g)
	if err != nil {
		return nil, err
	}
	gen := make(map[object.Hash]uint64, len(order))
	// order is children first, so walk it backwards.
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		var maxParent uint64
		for _, p := range n.Parents {
			if pg, ok := gen[p]; ok && pg > maxParent {
				maxParent = pg
			}
		}
		gen[n.Hash] = maxParent + 1
	}
	return &Ancestry{g: g, gen: gen, bases: make(map[pairKey]mergeBaseEntry)}, nil
}

// Generation returns the generation number of h. Roots are generation 1.
func (a *Ancestry) Generation(h object.Hash) (uint64, bool) {
	g, ok := a.gen[h]
	return g, ok
}

func (a *Ancestry) generation(h object.Hash) (uint64, error) {
	g, ok := a.gen[h]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotInGraph, h)
	}
	return g, nil
}

// IsAncestor reports whether ancestor is reachable from descendant through
// parent links. A commit is its own ancestor.
func (a *Ancestry) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	ga, err := a.generation(ancestor)
	if err != nil {
		return false, err
	}
	gd, err := a.generation(descendant)
	if err != nil {
		return false, err
	}
	return a.isAncestor(ancestor, descendant, ga, gd), nil
}

func (a *Ancestry) isAncestor(ancestor, descendant object.Hash, ga, gd uint64) bool {
	if ancestor == descendant {
		return true
	}
	if ga >= gd {
		return false
	}

	visited := map[object.Hash]struct{}{descendant: {}}
	queue := []object.Hash{descendant}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == ancestor {
			return true
		}
		if a.gen[cur] <= ga {
			continue
		}
		for _, p := range a.g.nodes[cur].Parents {
			pg, ok := a.gen[p]
			if !ok || pg < ga {
				continue
			}
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return false
}

// MergeBase returns the best common ancestor of x and y: the one with the
// highest generation, ties broken by the smaller id. found is false when the
// two histories share no commit.
func (a *Ancestry) MergeBase(x, y object.Hash) (base object.Hash, found bool, err error) {
	gx, err := a.generation(x)
	if err != nil {
		return "", false, err
	}
	gy, err := a.generation(y)
	if err != nil {
		return "", false, err
	}
	if x == y {
		return x, true, nil
	}

	key := canonicalPair(x, y)
	a.mu.Lock()
	cached, ok := a.bases[key]
	a.mu.Unlock()
	if ok {
		return cached.base, cached.found, nil
	}

	// One side already contains the other.
	switch {
	case a.isAncestor(x, y, gx, gy):
		base, found = x, true
	case a.isAncestor(y, x, gy, gx):
		base, found = y, true
	default:
		base, found = a.searchMergeBase(x, y, gx, gy)
	}

	a.mu.Lock()
	a.bases[key] = mergeBaseEntry{base: base, found: found}
	a.mu.Unlock()
	return base, found, nil
}

// searchMergeBase walks both histories highest generation first, always
// advancing the side whose next commit is newer, and stops once neither
// side can reach a generation above the best shared commit found so far.
func (a *Ancestry) searchMergeBase(x, y object.Hash, gx, gy uint64) (object.Hash, bool) {
	visitedX := map[object.Hash]struct{}{x: {}}
	visitedY := map[object.Hash]struct{}{y: {}}
	queueX := genHeap{{hash: x, generation: gx}}
	queueY := genHeap{{hash: y, generation: gy}}

	var best object.Hash
	var bestGen uint64

	for queueX.Len() > 0 || queueY.Len() > 0 {
		if best != "" {
			topX, okX := queueX.peek()
			topY, okY := queueY.peek()
			if (!okX || topX.generation < bestGen) && (!okY || topY.generation < bestGen) {
				break
			}
		}

		fromX := false
		switch {
		case queueX.Len() == 0:
		case queueY.Len() == 0:
			fromX = true
		default:
			fromX = queueX.less(queueX[0], queueY[0]) || queueX[0] == queueY[0]
		}

		own, other := &queueX, visitedY
		ownVisited := visitedX
		if !fromX {
			own, other = &queueY, visitedX
			ownVisited = visitedY
		}
		item := heap.Pop(own).(genItem)
		if best != "" && item.generation < bestGen {
			continue
		}
		if _, shared := other[item.hash]; shared {
			best, bestGen = betterBase(best, bestGen, item.hash, item.generation)
		}

		for _, p := range a.g.nodes[item.hash].Parents {
			pg, ok := a.gen[p]
			if !ok {
				continue
			}
			if best != "" && pg < bestGen {
				continue
			}
			if _, seen := ownVisited[p]; seen {
				continue
			}
			ownVisited[p] = struct{}{}
			heap.Push(own, genItem{hash: p, generation: pg})
			if _, shared := other[p]; shared {
				best, bestGen = betterBase(best, bestGen, p, pg)
			}
		}
	}
	return best, best != ""
}

func betterBase(best object.Hash, bestGen uint64, candidate object.Hash, candidateGen uint64) (object.Hash, uint64) {
	switch {
	case best == "":
		return candidate, candidateGen
	case candidateGen > bestGen:
		return candidate, candidateGen
	case candidateGen < bestGen:
		return best, bestGen
	case candidate < best:
		return candidate, candidateGen
	}
	return best, bestGen
}

type genItem struct {
	hash       object.Hash
	generation uint64
}

// genHeap pops the highest generation first, then the smallest id.
type genHeap []genItem

func (h genHeap) Len() int { return len(h) }

func (h genHeap) Less(i, j int) bool { return h.less(h[i], h[j]) }

func (genHeap) less(a, b genItem) bool {
	if a.generation == b.generation {
		return a.hash < b.hash
	}
	return a.generation > b.generation
}

func (h genHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *genHeap) Push(x any) { *h = append(*h, x.(genItem)) }

func (h *genHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h genHeap) peek() (genItem, bool) {
	if len(h) == 0 {
		return genItem{}, false
	}
	return h[0], true
}
