// Package snapshot exports a commit graph as JSON, optionally zstd-framed.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/odvcencio/gitgraph/pkg/dag"
	"github.com/odvcencio/gitgraph/pkg/object"
)

// labelMessageLen caps the message part of a node label, in runes.
const labelMessageLen = 30

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Snapshot is a self-contained view of a graph and its topological order.
// Edges lists every declared parent link, including links to parents that are
// not nodes, unlike dag.Graph.Edges, which keeps only in-graph parents.
type Snapshot struct {
	Head     object.Hash            `json:"head,omitempty"`
	Branches map[string]object.Hash `json:"branches,omitempty"`
	Nodes    []Node                 `json:"nodes"`
	Edges    []Edge                 `json:"edges"`
	Order    []object.Hash          `json:"order"`
}

// Node is one commit.
type Node struct {
	Hash      object.Hash   `json:"id"`
	Short     string        `json:"short"`
	Label     string        `json:"label"`
	Tree      object.Hash   `json:"tree"`
	Parents   []object.Hash `json:"parents"`
	Children  []object.Hash `json:"children"`
	Author    string        `json:"author"`
	Committer string        `json:"committer"`
	Message   string        `json:"message"`
}

// Edge runs from a commit (Source) to one of its parents (Target).
type Edge struct {
	Source object.Hash `json:"source"`
	Target object.Hash `json:"target"`
}

// FromGraph captures g. Nodes are sorted by id; edges follow each node's
// parent order and include parents that were never discovered.
func FromGraph(g *dag.Graph, order []*dag.Node, head object.Hash, branches map[string]object.Hash) *Snapshot {
	s := &Snapshot{
		Head:     head,
		Branches: branches,
		Nodes:    make([]Node, 0, g.Len()),
		Edges:    make([]Edge, 0),
		Order:    make([]object.Hash, 0, len(order)),
	}
	for _, n := range g.Nodes() {
		c := n.Commit
		if c == nil {
			c = &object.Commit{}
		}
		s.Nodes = append(s.Nodes, Node{
			Hash:      n.Hash,
			Short:     n.Hash.Short(),
			Label:     Label(n.Hash, c.Message),
			Tree:      c.Tree,
			Parents:   append([]object.Hash{}, n.Parents...),
			Children:  n.ChildList(),
			Author:    c.Author,
			Committer: c.Committer,
			Message:   c.Message,
		})
		for _, p := range n.Parents {
			s.Edges = append(s.Edges, Edge{Source: n.Hash, Target: p})
		}
	}
	for _, n := range order {
		s.Order = append(s.Order, n.Hash)
	}
	return s
}

// Label renders "<short id> - <first message line>", the message line cut
// to 30 characters.
func Label(h object.Hash, message string) string {
	first, _, _ := strings.Cut(message, "\n")
	first = strings.TrimRight(first, "\r")
	if r := []rune(first); len(r) > labelMessageLen {
		first = string(r[:labelMessageLen])
	}
	return h.Short() + " - " + first
}

// Node returns the node for h, or nil.
func (s *Snapshot) Node(h object.Hash) *Node {
	i := sort.Search(len(s.Nodes), func(i int) bool { return s.Nodes[i].Hash >= h })
	if i < len(s.Nodes) && s.Nodes[i].Hash == h {
		return &s.Nodes[i]
	}
	return nil
}

// Write encodes s as indented JSON, wrapped in a zstd frame when compressed
// is set.
func Write(w io.Writer, s *Snapshot, compressed bool) error {
	if !compressed {
		return encode(w, s)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot: zstd writer: %w", err)
	}
	if err := encode(enc, s); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("snapshot: zstd close: %w", err)
	}
	return nil
}

func encode(w io.Writer, s *Snapshot) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(s); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return nil
}

// Read decodes a snapshot written by Write, detecting zstd framing from the
// leading magic bytes.
func Read(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd reader: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	var s Snapshot
	if err := json.NewDecoder(src).Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return &s, nil
}
