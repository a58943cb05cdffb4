// Package dag builds an in-memory commit graph from a set of tips and orders
// it topologically.
package dag

import (
	"sort"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// Node is one commit in a Graph. Parents mirrors the commit's parent list,
// order included. Children holds ids of discovered commits that name this
// node as a parent and is filled in by Graph.Link.
type Node struct {
	Hash     object.Hash
	Commit   *object.Commit
	Parents  []object.Hash
	Children map[object.Hash]struct{}
}

// ChildList returns the children sorted by id.
func (n *Node) ChildList() []object.Hash {
	return sortedKeys(n.Children)
}

// Graph is an arena of commit nodes keyed by id. Edges are stored as ids on
// both ends, never as pointers between nodes.
type Graph struct {
	nodes map[object.Hash]*Node
}

// Edge points from a child commit to one of its parents.
type Edge struct {
	Child  object.Hash
	Parent object.Hash
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[object.Hash]*Node)}
}

// Add inserts a node for h, copying the commit's parent list. Adding an id
// that is already present returns the existing node unchanged.
func (g *Graph) Add(h object.Hash, c *object.Commit) *Node {
	if n, ok := g.nodes[h]; ok {
		return n
	}
	var parents []object.Hash
	if c != nil {
		parents = make([]object.Hash, len(c.Parents))
		copy(parents, c.Parents)
	}
	n := &Node{
		Hash:     h,
		Commit:   c,
		Parents:  parents,
		Children: make(map[object.Hash]struct{}),
	}
	g.nodes[h] = n
	return n
}

// Link records each node as a child of every parent that is present in the
// graph. Parents outside the graph are left unlinked.
func (g *Graph) Link() {
	for h, n := range g.nodes {
		for _, p := range n.Parents {
			if parent, ok := g.nodes[p]; ok {
				parent.Children[h] = struct{}{}
			}
		}
	}
}

// Node returns the node for h, or nil.
func (g *Graph) Node(h object.Hash) *Node {
	return g.nodes[h]
}

// Has reports whether h is in the graph.
func (g *Graph) Has(h object.Hash) bool {
	_, ok := g.nodes[h]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Hashes returns every node id in ascending order.
func (g *Graph) Hashes() []object.Hash {
	return sortedKeys(g.nodes)
}

// Nodes returns every node ordered by id.
func (g *Graph) Nodes() []*Node {
	hashes := g.Hashes()
	out := make([]*Node, len(hashes))
	for i, h := range hashes {
		out[i] = g.nodes[h]
	}
	return out
}

// Roots returns nodes with no parent inside the graph, ordered by id.
func (g *Graph) Roots() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		present := false
		for _, p := range n.Parents {
			if g.Has(p) {
				present = true
				break
			}
		}
		if !present {
			out = append(out, n)
		}
	}
	return out
}

// Heads returns nodes that no other node names as a parent, ordered by id.
// Only meaningful after Link.
func (g *Graph) Heads() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if len(n.Children) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns every child-to-parent edge whose parent is in the graph,
// ordered by child id and then by parent position.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, n := range g.Nodes() {
		for _, p := range n.Parents {
			if g.Has(p) {
				out = append(out, Edge{Child: n.Hash, Parent: p})
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[object.Hash]V) []object.Hash {
	out := make([]object.Hash, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
