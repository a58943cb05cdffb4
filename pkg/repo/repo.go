package repo

import (
	"io"
	"log"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// Repo represents an opened git directory.
type Repo struct {
	RootDir string        // working tree root; equals GitDir for a bare directory
	GitDir  string        // directory holding HEAD, refs/ and objects/
	Store   *object.Store // content-addressed object store

	logger *log.Logger
}

// Option configures a Repo at Open or Init time.
type Option func(*repoOptions)

type repoOptions struct {
	storeOpts []object.StoreOption
	logger    *log.Logger
}

// WithStoreOptions passes options through to the object store.
func WithStoreOptions(opts ...object.StoreOption) Option {
	return func(o *repoOptions) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithLogger sets the logger used for graph builds.
func WithLogger(l *log.Logger) Option {
	return func(o *repoOptions) { o.logger = l }
}

func newRepo(rootDir, gitDir string, opts []Option) *Repo {
	var o repoOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir, o.storeOpts...),
		logger:  logger,
	}
}
