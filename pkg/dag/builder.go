package dag

import (
	"io"
	"log"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// CommitReader decodes a commit by id. *object.Store satisfies it.
type CommitReader interface {
	ReadCommit(h object.Hash) (*object.Commit, error)
}

// Builder discovers every commit reachable from a set of tips.
type Builder struct {
	Commits CommitReader
	// Logger receives one line per skipped id. Nil discards.
	Logger *log.Logger
}

// NewBuilder returns a Builder reading from commits.
func NewBuilder(commits CommitReader, logger *log.Logger) *Builder {
	return &Builder{Commits: commits, Logger: logger}
}

// Build walks parent links breadth-first from tips and returns the linked
// graph. Ids are normalized to lower case before they are visited, so the
// same commit spelled two ways yields one node. Malformed ids, ids that fail
// to decode and non-commits are skipped, so a tip or ancestor that dangles
// contributes nothing rather than failing the build.
func (b *Builder) Build(tips []object.Hash) *Graph {
	logger := b.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	g := NewGraph()
	visited := make(map[object.Hash]struct{})
	queue := make([]object.Hash, 0, len(tips))
	seeded := make(map[object.Hash]struct{}, len(tips))
	for _, raw := range tips {
		if raw == "" {
			continue
		}
		h, err := object.ParseHash(string(raw))
		if err != nil {
			logger.Printf("skip tip %q: %v", raw, err)
			continue
		}
		if _, ok := seeded[h]; ok {
			continue
		}
		seeded[h] = struct{}{}
		queue = append(queue, h)
	}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, ok := visited[h]; ok {
			continue
		}
		visited[h] = struct{}{}

		c, err := b.Commits.ReadCommit(h)
		if err != nil {
			logger.Printf("skip %s: %v", h, err)
			continue
		}
		n := g.Add(h, c)
		for i, raw := range n.Parents {
			p, err := object.ParseHash(string(raw))
			if err != nil {
				logger.Printf("skip parent %q of %s: %v", raw, h, err)
				continue
			}
			n.Parents[i] = p
			queue = append(queue, p)
		}
	}

	g.Link()
	logger.Printf("discovered %d commits from %d tips", g.Len(), len(seeded))
	return g
}
