package fxindex

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// storeMagic identifies an fxindex side-index file; storeVersion is bumped
// whenever the on-disk layout changes in a way readers must not misread.
// storeMagic alone fills the 16-byte header described in §6; storeVersion
// follows it as the first gob-encoded value.
const (
	storeMagic   = "FXINDEX\x00\x00\x00\x00\x00\x00\x00\x00\x00"
	storeVersion = uint32(1)
)

// meta is the IndexStore's "meta" logical table (§4.C).
type meta struct {
	Kind        FileKind
	SeqType     SeqType
	SourcePath  string
	SourceSize  int64
	SourceMtime int64
	Terminator  string // "\n" or "\r\n"
	IsGzip      bool
	GzUncLength int64 // uncompressed length of a gzip source; 0 for flat
	BuiltAt     int64
	FullName    bool
	HasKeyFunc  bool
}

// recordRow is one row of the "records" logical table (§3), shared by
// FASTA and FASTQ with unused fields left zero for whichever kind doesn't
// need them.
type recordRow struct {
	Ord         int
	Name        string
	DescOffset  int64
	DescLength  int64
	SeqOffset   int64
	SeqBytes    int64
	SeqLength   int64
	LineLen     int
	LineNet     int
	TermLen     int
	Irregular   bool
	QualOffset  int64 // FASTQ only
	CountA      int64
	CountC      int64
	CountG      int64
	CountT      int64
	CountU      int64
	CountN      int64
	HasComp     bool // false for protein records: composition fields unused
	GC          float64
	GCSkew      float64
}

// storedCheckpoint is the on-disk form of gzCheckpoint (§6 "checkpoints"
// block).
type storedCheckpoint struct {
	CmpOffset int64
	UncOffset int64
	Bits      uint8
	Window    []byte
}

// nameEntry is one row of the sorted "names" table (§4.C): name to
// ordinal, kept sorted by Name so lookups and prefix scans are binary
// searches.
type nameEntry struct {
	Name string
	Ord  int
}

// payload is the whole gob-encoded body following the 16-byte header.
type payload struct {
	Meta        meta
	Records     []recordRow
	Names       []nameEntry
	Checkpoints []storedCheckpoint
}

// indexStore is a persistent, read-only (after Build) key/value store
// holding the metadata, record table, identifier table, and gzip
// checkpoint blob for one source file (§4.C). It is built once by an
// Indexer and then either kept in memory or reopened via mmap.
type indexStore struct {
	path    string
	meta    meta
	records []recordRow
	names   []nameEntry // sorted by Name
	checkp  []storedCheckpoint

	mapped mmap.MMap // non-nil if this store was opened via mmap
}

func (s *indexStore) recordCount() int { return len(s.records) }

func (s *indexStore) Close() error {
	if s.mapped != nil {
		return s.mapped.Unmap()
	}
	return nil
}

// buildIndexStore runs the appropriate Indexer over src and returns a
// freshly populated, in-memory store (not yet persisted).
func buildIndexStore(srcPath string, info os.FileInfo, isGzip bool, o options) (*indexStore, *gzipRandomAccess, error) {
	var gz *gzipRandomAccess
	var body []byte
	var err error

	if isGzip {
		gz, body, err = buildGzipRandomAccess(srcPath, o.span)
		if err != nil {
			return nil, nil, err
		}
	} else {
		body, err = os.ReadFile(srcPath)
		if err != nil {
			return nil, nil, fmt.Errorf("fxindex: %w", err)
		}
	}

	s, err := indexBytes(body, o)
	if err != nil {
		return nil, nil, err
	}
	s.path = IndexPath(srcPath)
	s.meta.SourcePath = srcPath
	s.meta.SourceSize = info.Size()
	s.meta.SourceMtime = info.ModTime().Unix()
	s.meta.IsGzip = isGzip
	s.meta.BuiltAt = nowUnix()
	s.meta.FullName = o.fullName
	s.meta.HasKeyFunc = o.keyFunc != nil
	if isGzip {
		s.meta.GzUncLength = gz.uncLength
		s.checkp = serializeCheckpoints(gz.checkpoints)
	}

	return s, gz, nil
}

// persist writes the store to a temporary sibling file and atomically
// renames it into place, per §4.C's durability requirement.
func (s *indexStore) persist() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}

	ok := false
	defer func() {
		f.Close()
		if !ok {
			os.Remove(tmp)
		}
	}()

	if _, err := f.WriteString(storeMagic); err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}
	enc := gob.NewEncoder(f)
	if err := enc.Encode(storeVersion); err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}
	p := payload{Meta: s.meta, Records: s.records, Names: s.names, Checkpoints: s.checkp}
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("fxindex: %w", err)
	}
	ok = true
	return nil
}

// openIndexStore memory-maps an existing .fxi file and decodes its
// payload, validating the magic and version before trusting the body.
func openIndexStore(path string) (*indexStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fxindex: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("fxindex: %w", err)
	}
	if info.Size() < int64(len(storeMagic)) {
		return nil, ErrIndexVersionMismatch
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("fxindex: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			m.Unmap()
		}
	}()

	if !bytes.Equal(m[:len(storeMagic)], []byte(storeMagic)) {
		return nil, ErrIndexVersionMismatch
	}

	dec := gob.NewDecoder(bytes.NewReader(m[len(storeMagic):]))
	var version uint32
	if err := dec.Decode(&version); err != nil {
		return nil, ErrIndexVersionMismatch
	}
	if version != storeVersion {
		return nil, ErrIndexVersionMismatch
	}
	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, ErrIndexVersionMismatch
	}

	ok = true
	return &indexStore{
		path:    path,
		meta:    p.Meta,
		records: p.Records,
		names:   p.Names,
		checkp:  p.Checkpoints,
		mapped:  m,
	}, nil
}

// openOrBuildStore ensures a valid .fxi index exists for src, rebuilding it
// (and reporting rebuilt=true) whenever it is absent, stale (source mtime
// or size changed), or fails its version check.
func openOrBuildStore(indexPath, srcPath string, info os.FileInfo, isGzip bool, o options) (*indexStore, bool, error) {
	if existing, err := openIndexStore(indexPath); err == nil {
		if existing.meta.SourceSize == info.Size() && existing.meta.SourceMtime == info.ModTime().Unix() {
			return existing, false, nil
		}
		existing.Close()
	}

	s, _, err := buildIndexStore(srcPath, info, isGzip, o)
	if err != nil {
		return nil, false, err
	}
	if err := s.persist(); err != nil {
		os.Remove(s.path)
		return nil, false, err
	}

	reopened, err := openIndexStore(s.path)
	if err != nil {
		return s, true, nil // fall back to the in-memory copy we just built
	}
	return reopened, true, nil
}

// loadOrBuildGzipIndex restores the GzipRandomAccess checkpoint table from
// the store if present, otherwise (re)builds it.
func loadOrBuildGzipIndex(srcPath string, s *indexStore, span int64) (*gzipRandomAccess, error) {
	if len(s.checkp) > 0 {
		cps, err := deserializeCheckpoints(s.checkp)
		if err != nil {
			return nil, err
		}
		return &gzipRandomAccess{
			path:        srcPath,
			checkpoints: cps,
			uncLength:   s.meta.GzUncLength,
		}, nil
	}
	gz, _, err := buildGzipRandomAccess(srcPath, span)
	if err != nil {
		return nil, err
	}
	s.checkp = serializeCheckpoints(gz.checkpoints)
	s.meta.GzUncLength = gz.uncLength
	return gz, nil
}
