package repo

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// ReflogEntry is one line of a git reflog:
// "<old> <new> <identity><TAB><message>".
type ReflogEntry struct {
	Ref      string
	OldHash  object.Hash
	NewHash  object.Hash
	Identity string
	Message  string
}

// Signature parses the identity into name, email and time.
func (e ReflogEntry) Signature() (object.Signature, bool) {
	return object.ParseSignature(e.Identity)
}

// ReadReflog returns the entries recorded under logs/ for ref, newest first.
// An empty ref or "HEAD" reads HEAD's own log; a bare name is taken as a
// branch. A ref with no log yields no entries. Lines that do not parse are
// skipped. A limit of zero or less means no limit.
func (r *Repo) ReadReflog(ref string, limit int) ([]ReflogEntry, error) {
	refName, err := r.reflogRefName(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(r.GitDir, "logs", filepath.FromSlash(refName)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, ok := parseReflogLine(scanner.Text())
		if !ok {
			r.logger.Printf("reflog %s: skip malformed line", refName)
			continue
		}
		entry.Ref = refName
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func parseReflogLine(line string) (ReflogEntry, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return ReflogEntry{}, false
	}
	head, message, _ := strings.Cut(line, "\t")
	parts := strings.SplitN(head, " ", 3)
	if len(parts) < 3 {
		return ReflogEntry{}, false
	}
	oldHash, err := object.ParseHash(parts[0])
	if err != nil {
		return ReflogEntry{}, false
	}
	newHash, err := object.ParseHash(parts[1])
	if err != nil {
		return ReflogEntry{}, false
	}
	return ReflogEntry{
		OldHash:  oldHash,
		NewHash:  newHash,
		Identity: parts[2],
		Message:  message,
	}, true
}

func (r *Repo) reflogRefName(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "" || ref == "HEAD":
		return "HEAD", nil
	case strings.HasPrefix(ref, "refs/"):
		return r.cleanRefName(ref)
	default:
		return r.cleanRefName("refs/heads/" + ref)
	}
}
