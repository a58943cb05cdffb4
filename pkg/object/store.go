package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
)

// Fallback resolves ids that have no loose file, typically objects that
// live in packfiles. Implementations return the raw type and canonical
// content.
type Fallback interface {
	Lookup(h Hash) (ObjectType, []byte, error)
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the zlib-deflated
// envelope "type len\0content", readable by git itself.
type Store struct {
	root     string
	fallback Fallback
	cache    *lru.Cache[Hash, Object]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFallback sets the lookup used when an id has no loose file.
func WithFallback(f Fallback) StoreOption {
	return func(s *Store) { s.fallback = f }
}

// WithCacheSize keeps up to n decoded objects in memory. Objects returned
// from a cached store are shared and must be treated as read-only.
func WithCacheSize(n int) StoreOption {
	return func(s *Store) {
		if n <= 0 {
			s.cache = nil
			return
		}
		c, err := lru.New[Hash, Object](n)
		if err != nil {
			return
		}
		s.cache = c
	}
}

// NewStore creates a Store rooted at the given git directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory the store was opened on.
func (s *Store) Root() string { return s.root }

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

// Has reports whether the store holds a loose file for h. The fallback is
// not consulted.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put encodes obj, stores it and returns its id. Storing an object that is
// already present is a no-op.
func (s *Store) Put(obj Object) (Hash, error) {
	data, err := Encode(obj)
	if err != nil {
		return "", fmt.Errorf("object put: %w", err)
	}
	return s.Write(obj.Type(), data)
}

// Write stores canonical content of the given type and returns its id.
// Existing entries are never rewritten. New entries are deflated into a
// temp file and renamed into place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	if _, err := ParseObjectType(string(objType)); err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.objectsDir(), string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	_, err = zw.Write(envelopeHeader(objType, len(data)))
	if err == nil {
		_, err = zw.Write(data)
	}
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}
	return h, nil
}

// Get returns the decoded object for h, consulting the fallback when there
// is no loose file.
func (s *Store) Get(h Hash) (Object, error) {
	h, err := ParseHash(string(h))
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if obj, ok := s.cache.Get(h); ok {
			return obj, nil
		}
	}

	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	obj, err := Decode(objType, data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	if s.cache != nil {
		s.cache.Add(h, obj)
	}
	return obj, nil
}

// Read retrieves an object by hash, returning its type and canonical content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	h, err := ParseHash(string(h))
	if err != nil {
		return "", nil, err
	}

	f, err := os.Open(s.objectPath(h))
	if errors.Is(err, fs.ErrNotExist) {
		return s.readFallback(h)
	}
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "inflate", Err: err}
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "inflate", Err: err}
	}
	return parseEnvelope(h, raw)
}

// parseEnvelope splits "type len\0content" and validates the header.
func parseEnvelope(h Hash, raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "no NUL after header"}
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typeTok, lenTok, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("invalid header %q", header)}
	}
	objType, err := ParseObjectType(typeTok)
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "header", Err: err}
	}
	length, err := strconv.Atoi(lenTok)
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("invalid length %q", lenTok), Err: err}
	}
	if length != len(content) {
		return "", nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("length mismatch (header=%d, actual=%d)", length, len(content))}
	}
	return objType, content, nil
}

func (s *Store) readFallback(h Hash) (ObjectType, []byte, error) {
	if s.fallback == nil {
		return "", nil, &ObjectNotFoundError{Hash: h}
	}
	rawType, data, err := s.fallback.Lookup(h)
	if errors.Is(err, ErrCorruptObject) {
		return "", nil, err
	}
	if err != nil {
		return "", nil, &ObjectNotFoundError{Hash: h, Err: err}
	}
	objType, err := ParseObjectType(string(rawType))
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "fallback", Err: err}
	}
	return objType, data, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// ReadBlob reads an object and requires it to be a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	b, ok := obj.(*Blob)
	if !ok {
		return nil, &TypeMismatchError{Hash: h, Got: obj.Type(), Want: TypeBlob}
	}
	return b, nil
}

// ReadTree reads an object and requires it to be a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	tr, ok := obj.(*Tree)
	if !ok {
		return nil, &TypeMismatchError{Hash: h, Got: obj.Type(), Want: TypeTree}
	}
	return tr, nil
}

// ReadCommit reads an object and requires it to be a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*Commit)
	if !ok {
		return nil, &TypeMismatchError{Hash: h, Got: obj.Type(), Want: TypeCommit}
	}
	return c, nil
}
