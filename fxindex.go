// Package fxindex is an indexed random-access engine for FASTA and FASTQ
// files, including transparently gzip-compressed variants. It builds a
// persistent side index (the ".fxi" file) that enables O(1) lookup of any
// record by ordinal or identifier, extraction of arbitrary sub-ranges of
// any sequence, and streaming aggregate statistics. A sub-range fetch
// reads and strips the whole owning record, then slices it.
//
// It does not parse command-line arguments, manage process lifecycle, or
// perform sequence alignment; those are external concerns. See cmd/fxindex
// for a thin CLI built on top of this package.
package fxindex

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Version is the only process-wide, immutable datum this package exposes.
const Version = "0.1.0"

// FileKind is exactly one of fasta or fastq, determined from the first
// non-blank line of the source file.
type FileKind int

const (
	KindFASTAFile FileKind = iota
	KindFASTQFile
)

func (k FileKind) String() string {
	if k == KindFASTQFile {
		return "fastq"
	}
	return "fasta"
}

// SeqType classifies the alphabet of a FASTA file's first record.
type SeqType int

const (
	SeqUnknown SeqType = iota
	SeqDNA
	SeqRNA
	SeqProtein
)

func (t SeqType) String() string {
	switch t {
	case SeqDNA:
		return "DNA"
	case SeqRNA:
		return "RNA"
	case SeqProtein:
		return "protein"
	default:
		return "unknown"
	}
}

// KeyFunc derives a record's identifier from its raw header line (without
// the leading '>'/'@' sigil or trailing terminator). It must return a
// non-empty, file-unique value; a failure is reported as ErrMalformedRecord
// during indexing.
type KeyFunc func(header []byte) ([]byte, error)

// options configure a single Open call.
type options struct {
	buildIndex bool
	fullName   bool
	keyFunc    KeyFunc
	uppercase  bool
	span       int64
}

// Option configures Open. See OptionBuildIndex, OptionFullName,
// OptionKeyFunc, and OptionUppercase.
type Option func(*options)

// OptionBuildIndex controls whether Open ensures a ".fxi" index exists
// (building it if missing) or opens in streaming mode. Default: true.
func OptionBuildIndex(enabled bool) Option {
	return func(o *options) { o.buildIndex = enabled }
}

// OptionFullName makes a record's identifier the entire header line rather
// than its first whitespace-delimited token. Mutually exclusive with
// OptionKeyFunc.
func OptionFullName(enabled bool) Option {
	return func(o *options) { o.fullName = enabled }
}

// OptionKeyFunc supplies a user callback deriving identifiers from raw
// header lines. Mutually exclusive with OptionFullName.
func OptionKeyFunc(fn KeyFunc) Option {
	return func(o *options) { o.keyFunc = fn }
}

// OptionUppercase upper-cases sequence bytes at materialization time.
func OptionUppercase(enabled bool) Option {
	return func(o *options) { o.uppercase = enabled }
}

// OptionCheckpointSpan overrides the suggested 1 MiB minimum spacing
// between GzipRandomAccess checkpoints. Has no effect on flat files.
func OptionCheckpointSpan(bytes int64) Option {
	return func(o *options) { o.span = bytes }
}

func defaultOptions() options {
	return options{buildIndex: true, span: 1 << 20}
}

// Engine is an open handle on one source file and (if random access is
// enabled) its side index. The zero value is not usable; construct with
// Open. An Engine is not safe for concurrent use by multiple goroutines:
// it owns at most one in-flight gzip inflater (§5).
type Engine struct {
	mu sync.Mutex

	path    string
	opts    options
	closed  bool
	kind    FileKind
	seqType SeqType

	gz    *gzipRandomAccess // nil for flat files
	store *indexStore       // nil in streaming mode

	f *os.File // flat-file read handle; nil for gzip sources

	streaming *streamIterator // non-nil only in streaming mode
	stats     *Statistics     // cached lazily by Stats
}

// Open opens source for indexed or streaming access. path is a regular
// local file; gzip sources are detected by the standard 0x1f 0x8b magic.
func Open(path string, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.fullName && o.keyFunc != nil {
		return nil, newErr(KindInvalidArgument, "full_name and key_func are mutually exclusive")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr(KindFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, newErr(KindPermissionDenied, path)
		}
		return nil, fmt.Errorf("fxindex: stat %s: %w", path, err)
	}

	isGzip, err := detectGzip(path)
	if err != nil {
		return nil, err
	}

	e := &Engine{path: path, opts: o}

	if !o.buildIndex {
		it, err := newStreamIterator(path, isGzip)
		if err != nil {
			return nil, err
		}
		e.streaming = it
		return e, nil
	}

	indexPath := path + ".fxi"
	store, rebuilt, err := openOrBuildStore(indexPath, path, info, isGzip, o)
	if err != nil {
		return nil, err
	}
	e.store = store
	e.kind = store.meta.Kind
	e.seqType = store.meta.SeqType
	_ = rebuilt

	if isGzip {
		gz, err := loadOrBuildGzipIndex(path, store, o.span)
		if err != nil {
			return nil, err
		}
		e.gz = gz
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("fxindex: %w", err)
		}
		e.f = f
	}

	return e, nil
}

// Close releases the engine's descriptors. Afterwards, Record/Read methods
// that go back to the source (Seq, Fetch, Search, Desc, Qual) return
// ErrUseAfterClose. Their cached fields (Name, Ord, Len, Composition, GC),
// already-materialized Fragments, and KeyView snapshots are not checked
// and keep working.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	var firstErr error
	if e.f != nil {
		if err := e.f.Close(); err != nil {
			firstErr = err
		}
	}
	if e.gz != nil {
		if err := e.gz.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.streaming != nil {
		if err := e.streaming.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Engine) checkOpen() error {
	if e.closed {
		return ErrUseAfterClose
	}
	return nil
}

func (e *Engine) checkIndexed() error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if e.streaming != nil {
		return ErrStreamingOnly
	}
	return nil
}

// Len returns the number of records in the source. Requires an index.
func (e *Engine) Len() (int, error) {
	if err := e.checkIndexed(); err != nil {
		return 0, err
	}
	return e.store.recordCount(), nil
}

// Kind reports whether the source is FASTA or FASTQ.
func (e *Engine) Kind() FileKind { return e.kind }

// SeqType reports the classified alphabet (FASTA only; SeqUnknown for FASTQ).
func (e *Engine) SeqType() SeqType { return e.seqType }

// IndexPath returns the conventional side-index path for a source path.
func IndexPath(sourcePath string) string {
	return filepath.Clean(sourcePath) + ".fxi"
}

func detectGzip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("fxindex: %w", err)
	}
	defer f.Close()
	var magic [2]byte
	n, err := f.Read(magic[:])
	if n < 2 {
		return false, nil
	}
	if err != nil && n == 0 {
		return false, nil
	}
	return magic[0] == 0x1f && magic[1] == 0x8b, nil
}

// nowUnix exists so the single call site that needs "now" for a Meta
// timestamp is easy to find; it is not used on any hot path.
func nowUnix() int64 { return time.Now().Unix() }
