package object

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// maxDeltaChain bounds delta resolution. Git's own default depth is 50.
const maxDeltaChain = 4096

// PackSet reads objects out of the packfiles under objects/pack. It
// implements Fallback, so a Store can serve packed objects in-process
// without a git binary. Indexes are loaded on first lookup; packs added
// afterwards are not seen until Reload.
type PackSet struct {
	dir string

	mu     sync.Mutex
	loaded bool
	packs  []*packFile
}

type packFile struct {
	name string
	idx  *PackIndex
	f    *os.File
	size int64
}

// NewPackSet returns a PackSet for the git directory gitDir.
func NewPackSet(gitDir string) *PackSet {
	return &PackSet{dir: filepath.Join(gitDir, "objects", "pack")}
}

// Lookup returns the type and canonical content of h, verifying that the
// inflated content hashes back to h.
func (p *PackSet) Lookup(h Hash) (ObjectType, []byte, error) {
	h, err := ParseHash(string(h))
	if err != nil {
		return "", nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.loadLocked(); err != nil {
		return "", nil, err
	}

	pf, entry, ok := p.findLocked(h)
	if !ok {
		return "", nil, &ObjectNotFoundError{Hash: h}
	}
	packType, data, err := p.readEntryLocked(pf, entry.Offset, 0)
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "pack " + pf.name, Err: err}
	}
	objType, ok := packType.objectType()
	if !ok {
		return ObjectType(packType.String()), data, nil
	}
	if got := HashObject(objType, data); got != h {
		return "", nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("pack %s: content hashes to %s", pf.name, got)}
	}
	return objType, data, nil
}

// Has reports whether any pack index lists h.
func (p *PackSet) Has(h Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.loadLocked(); err != nil {
		return false
	}
	_, _, ok := p.findLocked(h)
	return ok
}

// List returns every id named by a pack index, sorted and deduplicated.
func (p *PackSet) List() ([]Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.loadLocked(); err != nil {
		return nil, err
	}
	seen := make(map[Hash]struct{})
	var out []Hash
	for _, pf := range p.packs {
		for _, e := range pf.idx.entries {
			if _, dup := seen[e.Hash]; dup {
				continue
			}
			seen[e.Hash] = struct{}{}
			out = append(out, e.Hash)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Reload drops open packs so the next lookup rescans the directory.
func (p *PackSet) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.closeLocked()
	p.loaded = false
	return err
}

// Close releases the open pack files.
func (p *PackSet) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *PackSet) closeLocked() error {
	var firstErr error
	for _, pf := range p.packs {
		if err := pf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.packs = nil
	return firstErr
}

func (p *PackSet) loadLocked() error {
	if p.loaded {
		return nil
	}
	idxPaths, err := filepath.Glob(filepath.Join(p.dir, "pack-*.idx"))
	if err != nil {
		return fmt.Errorf("list pack indexes: %w", err)
	}
	sort.Strings(idxPaths)

	var packs []*packFile
	for _, idxPath := range idxPaths {
		pf, err := openPackFile(idxPath)
		if err != nil {
			for _, opened := range packs {
				opened.f.Close()
			}
			return err
		}
		packs = append(packs, pf)
	}
	p.packs = packs
	p.loaded = true
	return nil
}

func openPackFile(idxPath string) (*packFile, error) {
	name := filepath.Base(strings.TrimSuffix(idxPath, ".idx"))
	idxData, err := os.ReadFile(idxPath)
	if err != nil {
		return nil, fmt.Errorf("read pack index %s: %w", name, err)
	}
	idx, err := ReadPackIndex(idxData)
	if err != nil {
		return nil, fmt.Errorf("parse pack index %s: %w", name, err)
	}

	f, err := os.Open(strings.TrimSuffix(idxPath, ".idx") + ".pack")
	if err != nil {
		return nil, fmt.Errorf("open pack %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat pack %s: %w", name, err)
	}
	header := make([]byte, packHeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("read pack %s: %w", name, err)
	}
	hdr, err := UnmarshalPackHeader(header)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pack %s: %w", name, err)
	}
	if int(hdr.NumObjects) != idx.Len() {
		f.Close()
		return nil, fmt.Errorf("pack %s holds %d objects but its index lists %d", name, hdr.NumObjects, idx.Len())
	}
	trailer := make([]byte, HashSize)
	if _, err := f.ReadAt(trailer, info.Size()-HashSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("read pack %s trailer: %w", name, err)
	}
	if checksum, _ := HashFromBytes(trailer); checksum != idx.PackChecksum {
		f.Close()
		return nil, fmt.Errorf("pack %s checksum %s does not match its index (%s)", name, checksum, idx.PackChecksum)
	}
	return &packFile{name: name, idx: idx, f: f, size: info.Size()}, nil
}

func (p *PackSet) findLocked(h Hash) (*packFile, PackIndexEntry, bool) {
	for _, pf := range p.packs {
		if e, ok := pf.idx.Find(h); ok {
			return pf, e, true
		}
	}
	return nil, PackIndexEntry{}, false
}

// readEntryLocked inflates the entry at offset, resolving delta chains.
// The returned type is never a delta type.
func (p *PackSet) readEntryLocked(pf *packFile, offset uint64, depth int) (PackObjectType, []byte, error) {
	if depth > maxDeltaChain {
		return 0, nil, fmt.Errorf("delta chain deeper than %d", maxDeltaChain)
	}
	if offset < packHeaderSize || int64(offset) >= pf.size-HashSize {
		return 0, nil, fmt.Errorf("entry offset %d outside pack", offset)
	}

	br := bufio.NewReader(io.NewSectionReader(pf.f, int64(offset), pf.size-HashSize-int64(offset)))
	objType, size, err := readPackEntryHeader(br)
	if err != nil {
		return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
	}

	switch objType {
	case PackCommit, PackTree, PackBlob, PackTag:
		data, err := inflateEntry(br, size)
		if err != nil {
			return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		return objType, data, nil

	case PackOfsDelta:
		distance, err := readOfsDeltaDistance(br)
		if err != nil {
			return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		if distance == 0 || distance > offset {
			return 0, nil, fmt.Errorf("offset %d: ofs-delta base distance %d out of range", offset, distance)
		}
		delta, err := inflateEntry(br, size)
		if err != nil {
			return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		baseType, base, err := p.readEntryLocked(pf, offset-distance, depth+1)
		if err != nil {
			return 0, nil, err
		}
		out, err := applyDelta(base, delta)
		if err != nil {
			return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		return baseType, out, nil

	case PackRefDelta:
		raw := make([]byte, HashSize)
		if _, err := io.ReadFull(br, raw); err != nil {
			return 0, nil, fmt.Errorf("offset %d: ref-delta base: %w", offset, err)
		}
		baseHash, _ := HashFromBytes(raw)
		delta, err := inflateEntry(br, size)
		if err != nil {
			return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		basePack, baseEntry, ok := p.findLocked(baseHash)
		if !ok {
			return 0, nil, fmt.Errorf("offset %d: ref-delta base %s not in any pack", offset, baseHash)
		}
		baseType, base, err := p.readEntryLocked(basePack, baseEntry.Offset, depth+1)
		if err != nil {
			return 0, nil, err
		}
		out, err := applyDelta(base, delta)
		if err != nil {
			return 0, nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		return baseType, out, nil

	default:
		return 0, nil, fmt.Errorf("offset %d: unsupported pack entry type %s", offset, objType)
	}
}

// inflateEntry reads one zlib stream and checks it yields exactly size bytes.
func inflateEntry(r io.Reader, size uint64) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if uint64(len(data)) != size {
		return nil, fmt.Errorf("inflated %d bytes, header says %d", len(data), size)
	}
	return data, nil
}
