package bridge

import (
	"fmt"
	"io"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// PackReader resolves objects in-process through go-git, which reads
// packfiles and their indexes without a git binary.
type PackReader struct {
	GitDir string

	once    sync.Once
	repo    *git.Repository
	openErr error
}

// NewPackReader returns a PackReader for gitDir. The repository is opened on
// first lookup.
func NewPackReader(gitDir string) *PackReader {
	return &PackReader{GitDir: gitDir}
}

// Lookup returns the type and canonical content of h.
func (p *PackReader) Lookup(h object.Hash) (object.ObjectType, []byte, error) {
	p.once.Do(func() {
		p.repo, p.openErr = git.PlainOpen(p.GitDir)
	})
	if p.openErr != nil {
		return "", nil, fmt.Errorf("go-git open %s: %w", p.GitDir, p.openErr)
	}

	enc, err := p.repo.Storer.EncodedObject(plumbing.AnyObject, plumbing.NewHash(string(h)))
	if err != nil {
		return "", nil, fmt.Errorf("go-git lookup %s: %w", h, err)
	}
	rd, err := enc.Reader()
	if err != nil {
		return "", nil, fmt.Errorf("go-git read %s: %w", h, err)
	}
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", nil, fmt.Errorf("go-git read %s: %w", h, err)
	}
	return object.ObjectType(enc.Type().String()), data, nil
}
