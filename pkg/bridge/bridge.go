// Package bridge supplies object.Fallback implementations for objects the
// loose store cannot see, such as those compacted into packfiles.
package bridge

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// Fallback modes accepted by New.
const (
	ModeGit   = "git"
	ModeGoGit = "go-git"
	ModePack  = "pack"
	ModeNone  = "none"
)

// New returns the fallback for mode. ModeNone, or an empty mode, returns nil
// so the store reports every non-loose id as missing.
func New(mode, gitDir, binary string, timeout time.Duration) (object.Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeGit:
		return &CatFile{GitDir: gitDir, Binary: binary, Timeout: timeout}, nil
	case ModeGoGit:
		return NewPackReader(gitDir), nil
	case ModePack:
		return object.NewPackSet(gitDir), nil
	case ModeNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown fallback mode %q (want %s, %s, %s or %s)", mode, ModeGit, ModeGoGit, ModePack, ModeNone)
	}
}
