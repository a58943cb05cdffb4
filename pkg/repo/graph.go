package repo

import (
	"fmt"

	"github.com/odvcencio/gitgraph/pkg/dag"
	"github.com/odvcencio/gitgraph/pkg/object"
)

// BuildGraph collects every branch tip and HEAD and returns the graph of
// commits reachable from them.
func (r *Repo) BuildGraph() (*dag.Graph, error) {
	tips, err := r.Tips()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return dag.NewBuilder(r.Store, r.logger).Build(tips), nil
}

// History builds the graph and returns it with its topological order,
// children before parents. A cycle in the graph is returned unchanged as a
// *dag.CycleError.
func (r *Repo) History() (*dag.Graph, []*dag.Node, error) {
	g, err := r.BuildGraph()
	if err != nil {
		return nil, nil, err
	}
	order, err := dag.TopoSort(g)
	if err != nil {
		return nil, nil, err
	}
	return g, order, nil
}

// Page returns up to limit nodes after skipping skip. A limit of zero or
// less means no limit.
func Page(nodes []*dag.Node, skip, limit int) []*dag.Node {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(nodes) {
		return nil
	}
	nodes = nodes[skip:]
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes
}

// Ancestry builds the graph reachable from the given commits and indexes it
// for ancestor and merge-base queries.
func (r *Repo) Ancestry(commits ...object.Hash) (*dag.Ancestry, error) {
	g := dag.NewBuilder(r.Store, r.logger).Build(commits)
	for _, h := range commits {
		if !g.Has(h) {
			return nil, fmt.Errorf("ancestry: %s is not a readable commit", h)
		}
	}
	return dag.NewAncestry(g)
}

// MergeBase returns the best common ancestor of two commits. found is false
// when their histories are disjoint.
func (r *Repo) MergeBase(a, b object.Hash) (base object.Hash, found bool, err error) {
	anc, err := r.Ancestry(a, b)
	if err != nil {
		return "", false, err
	}
	return anc.MergeBase(a, b)
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	anc, err := r.Ancestry(descendant)
	if err != nil {
		return false, err
	}
	if _, ok := anc.Generation(ancestor); !ok {
		return false, nil
	}
	return anc.IsAncestor(ancestor, descendant)
}
