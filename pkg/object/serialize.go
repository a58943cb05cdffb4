package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Encode returns the canonical bytes of obj, the same bytes that are hashed
// and stored.
func Encode(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return MarshalBlob(o), nil
	case *Tree:
		return MarshalTree(o)
	case *Commit:
		return MarshalCommit(o), nil
	case nil:
		return nil, fmt.Errorf("encode: nil object")
	default:
		return nil, fmt.Errorf("encode: unsupported object %T", obj)
	}
}

// Decode parses canonical bytes as the given type.
func Decode(objType ObjectType, data []byte) (Object, error) {
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(data)
	case TypeTree:
		return UnmarshalTree(data)
	case TypeCommit:
		return UnmarshalCommit(data)
	default:
		return nil, fmt.Errorf("decode: unknown object type %q", objType)
	}
}

// HashOf encodes obj and returns its id along with the canonical bytes. It
// has no side effects.
func HashOf(obj Object) (Hash, []byte, error) {
	data, err := Encode(obj)
	if err != nil {
		return "", nil, err
	}
	return HashObject(obj.Type(), data), data, nil
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree. Entries are sorted by Name, compared
// byte-wise, and each is written as
//
//	<mode> SP <name> NUL <20 raw hash bytes>
//
// with no separator between entries.
func MarshalTree(tr *Tree) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if err := validateTreeEntry(e); err != nil {
			return nil, fmt.Errorf("marshal tree: %w", err)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: duplicate entry %q", e.Name)
		}
		raw, err := e.Hash.Bytes()
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func validateTreeEntry(e TreeEntry) error {
	switch {
	case e.Name == "":
		return fmt.Errorf("entry with empty name")
	case strings.ContainsAny(e.Name, "/\x00"):
		return fmt.Errorf("entry name %q contains '/' or NUL", e.Name)
	case e.Mode == "":
		return fmt.Errorf("entry %q has empty mode", e.Name)
	case strings.ContainsAny(e.Mode, " \x00"):
		return fmt.Errorf("entry %q has malformed mode %q", e.Name, e.Mode)
	}
	return nil
}

// UnmarshalTree parses a Tree from its serialized form. Entries keep the
// order in which they appear.
func UnmarshalTree(data []byte) (*Tree, error) {
	tr := &Tree{}
	i := 0
	for i < len(data) {
		sp := bytes.IndexByte(data[i:], ' ')
		if sp < 0 {
			return nil, &DecodeError{Type: TypeTree, Offset: i, Reason: "missing space after mode"}
		}
		sp += i
		nul := bytes.IndexByte(data[sp+1:], 0)
		if nul < 0 {
			return nil, &DecodeError{Type: TypeTree, Offset: sp + 1, Reason: "missing NUL after name"}
		}
		nul += sp + 1
		end := nul + 1 + HashSize
		if end > len(data) {
			return nil, &DecodeError{Type: TypeTree, Offset: nul + 1, Reason: fmt.Sprintf("truncated hash (%d of %d bytes)", len(data)-nul-1, HashSize)}
		}
		h, err := HashFromBytes(data[nul+1 : end])
		if err != nil {
			return nil, &DecodeError{Type: TypeTree, Offset: nul + 1, Reason: err.Error()}
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Mode: string(data[i:sp]),
			Name: string(data[sp+1 : nul]),
			Hash: h,
		})
		i = end
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit:
//
//	tree H
//	parent H     (zero or more)
//	author A
//	committer C
//
//	message
//
// The message is written verbatim; no trailing newline is added.
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.Tree))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a Commit from its serialized form. Header lines it
// does not recognize (gpgsig, encoding, mergetag and their continuation
// lines) are skipped. Input without a blank separator line decodes with an
// empty message.
func UnmarshalCommit(data []byte) (*Commit, error) {
	lines := strings.Split(string(data), "\n")
	c := &Commit{}

	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++
			break
		}
		switch {
		case strings.HasPrefix(line, "tree "):
			c.Tree = Hash(line[len("tree "):])
		case strings.HasPrefix(line, "parent "):
			c.Parents = append(c.Parents, Hash(line[len("parent "):]))
		case strings.HasPrefix(line, "author "):
			c.Author = line[len("author "):]
		case strings.HasPrefix(line, "committer "):
			c.Committer = line[len("committer "):]
		}
	}
	if i < len(lines) {
		c.Message = strings.Join(lines[i:], "\n")
	}
	return c, nil
}
