package object

import "fmt"

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// ParseObjectType validates a type token read from an object header or
// reported by a fallback lookup.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTree, TypeCommit:
		return t, nil
	default:
		return "", fmt.Errorf("unknown object type %q", s)
	}
}

const (
	// Tree mode constants using Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// Object is one of *Blob, *Tree or *Commit. The set is closed; callers
// dispatch with a type switch.
type Object interface {
	Type() ObjectType
	isObject()
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

func (*Blob) Type() ObjectType { return TypeBlob }
func (*Blob) isObject()        {}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir || e.Mode == "0"+TreeModeDir
}

// IsGitlink reports whether the entry records a submodule commit, which
// lives in another repository's object space.
func (e TreeEntry) IsGitlink() bool {
	return e.Mode == TreeModeGitlink
}

// Tree holds a list of entries, unique by Name. Marshalling sorts them.
type Tree struct {
	Entries []TreeEntry
}

func (*Tree) Type() ObjectType { return TypeTree }
func (*Tree) isObject()        {}

// Commit points at a tree and zero or more parents. The first parent is the
// mainline parent; order is preserved through encode and decode.
type Commit struct {
	Tree      Hash
	Parents   []Hash
	Author    string
	Committer string
	Message   string
}

func (*Commit) Type() ObjectType { return TypeCommit }
func (*Commit) isObject()        {}
