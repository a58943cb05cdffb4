package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// List returns the ids of every loose object, sorted. Top-level directories
// that are not exactly two hex characters (pack/, info/) are skipped, as are
// files whose name does not complete a valid id, such as temp files left by
// an interrupted write.
func (s *Store) List() ([]Hash, error) {
	dirs, err := os.ReadDir(s.objectsDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var out []Hash
	for _, d := range dirs {
		if !d.IsDir() || !isFanoutDir(d.Name()) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.objectsDir(), d.Name()))
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", d.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			h := Hash(d.Name() + f.Name())
			if !h.Valid() {
				continue
			}
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func isFanoutDir(name string) bool {
	return len(name) == 2 && isHexDigit(name[0]) && isHexDigit(name[1])
}
