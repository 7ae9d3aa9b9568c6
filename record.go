package fxindex

import (
	"bytes"
	"sort"
)

// Interval is a 1-based, inclusive logical sub-range of a record's
// sequence, as accepted by Fetch (§4.E).
type Interval struct {
	Start int
	End   int
}

// Composition is a per-base tally over DNA/RNA sequence. Protein records
// never populate one; callers get ErrWrongTypeArgument instead.
type Composition struct {
	A, C, G, T, U, N int64
}

// complementTable implements the fixed A<->T, C<->G, U->A, N->N,
// case-preserving substitution of §4.E. A always complements to T,
// whatever the fragment's sequence type.
var complementTable = buildComplementTable()

func buildComplementTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := [][2]byte{{'A', 'T'}, {'C', 'G'}}
	for _, p := range pairs {
		t[p[0]] = p[1]
		t[p[1]] = p[0]
		t[p[0]+32] = p[1] + 32 // lowercase
		t[p[1]+32] = p[0] + 32
	}
	t['U'], t['u'] = 'A', 'a'
	return t
}

// Fragment is a materialized, in-memory sequence slice returned by Fetch
// and by whole-record/read access. It supports the chaining transforms of
// §4.E without a second fetch against the engine.
type Fragment struct {
	seq     []byte
	seqType SeqType
}

func (f *Fragment) Bytes() []byte   { return f.seq }
func (f *Fragment) String() string  { return string(f.seq) }
func (f *Fragment) Len() int        { return len(f.seq) }

// Complement returns the base-complemented fragment, case-preserving.
func (f *Fragment) Complement() *Fragment {
	out := make([]byte, len(f.seq))
	for i, b := range f.seq {
		out[i] = complementTable[b]
	}
	return &Fragment{seq: out, seqType: f.seqType}
}

// Reverse returns the fragment with byte order reversed.
func (f *Fragment) Reverse() *Fragment {
	out := make([]byte, len(f.seq))
	for i, b := range f.seq {
		out[len(out)-1-i] = b
	}
	return &Fragment{seq: out, seqType: f.seqType}
}

// Antisense returns the reverse complement, the composition of Complement
// and Reverse in the conventional order.
func (f *Fragment) Antisense() *Fragment {
	return f.Complement().Reverse()
}

// recordBase holds the state shared by Record (FASTA) and Read (FASTQ):
// both resolve to one row of the engine's record table and fetch raw
// bytes through the same engine plumbing.
type recordBase struct {
	e   *Engine
	row recordRow
}

func (b *recordBase) Name() string { return b.row.Name }
func (b *recordBase) Ord() int     { return b.row.Ord }
func (b *recordBase) Len() int     { return int(b.row.SeqLength) }

// Desc returns the full header line content (minus sigil and terminator).
func (b *recordBase) Desc() (string, error) {
	raw, err := b.e.readRaw(b.row.DescOffset, int(b.row.DescLength))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// seqBytes materializes the whole record/read sequence, terminators
// stripped and optionally upper-cased per the engine's open options.
func (b *recordBase) seqBytes() ([]byte, error) {
	raw, err := b.e.readRaw(b.row.SeqOffset, int(b.row.SeqBytes))
	if err != nil {
		return nil, err
	}
	out := stripTerminators(raw, b.row.LineNet, b.row.TermLen, int(b.row.SeqLength), b.row.Irregular)
	if b.e.opts.uppercase {
		out = toUpperASCII(out)
	}
	return out, nil
}

// Seq returns the whole sequence as a Fragment.
func (b *recordBase) Seq() (*Fragment, error) {
	s, err := b.seqBytes()
	if err != nil {
		return nil, err
	}
	return &Fragment{seq: s, seqType: b.e.seqType}, nil
}

// Fetch resolves one or more logical sub-ranges against the materialized
// sequence and concatenates them in the caller's order (§4.E).
func (b *recordBase) Fetch(intervals ...Interval) (*Fragment, error) {
	if len(intervals) == 0 {
		return nil, newErr(KindInvalidInterval, "no intervals given")
	}
	full, err := b.seqBytes()
	if err != nil {
		return nil, err
	}
	n := len(full)
	var out []byte
	for _, iv := range intervals {
		if iv.Start < 1 || iv.End > n || iv.Start > iv.End {
			return nil, newErr(KindInvalidInterval, b.row.Name)
		}
		out = append(out, full[iv.Start-1:iv.End]...)
	}
	return &Fragment{seq: out, seqType: b.e.seqType}, nil
}

// Search returns the 1-based position of the first occurrence of sub in
// the materialized sequence, or 0 if absent (§4.E). Case-sensitive, per
// the resolved Open Question in DESIGN.md.
func (b *recordBase) Search(sub []byte) (int, error) {
	full, err := b.seqBytes()
	if err != nil {
		return 0, err
	}
	i := bytes.Index(full, sub)
	if i < 0 {
		return 0, nil
	}
	return i + 1, nil
}

// Composition reports the cached per-base tally. Protein records (or
// FASTA files whose first record classified as protein) have none.
func (b *recordBase) Composition() (Composition, error) {
	if !b.row.HasComp {
		return Composition{}, newErr(KindWrongTypeArgument, "protein record has no composition")
	}
	return Composition{
		A: b.row.CountA, C: b.row.CountC, G: b.row.CountG,
		T: b.row.CountT, U: b.row.CountU, N: b.row.CountN,
	}, nil
}

// GC reports gc_content and gc_skew per §4.G's formulas, precomputed by the
// Indexer and cached on the record row.
func (b *recordBase) GC() (gc, skew float64, err error) {
	if !b.row.HasComp {
		return 0, 0, newErr(KindWrongTypeArgument, "protein record has no composition")
	}
	return b.row.GC, b.row.GCSkew, nil
}

// Record is one FASTA entry.
type Record struct{ recordBase }

// Read is one FASTQ read, adding quality-string access over Record's
// sequence-only surface.
type Read struct{ recordBase }

// Qual returns the read's raw quality string, same geometry as Seq since
// FASTQ reads are single-line (no wrapping).
func (r *Read) Qual() ([]byte, error) {
	raw, err := r.e.readRaw(r.row.QualOffset, int(r.row.SeqBytes))
	if err != nil {
		return nil, err
	}
	return stripTerminators(raw, r.row.LineNet, r.row.TermLen, int(r.row.SeqLength), r.row.Irregular), nil
}

// stripTerminators removes line terminators from raw, which holds wantLen
// net sequence bytes interleaved with terminators at a regular lineNet
// stride (§4.B's fast path). irregular records (a line other than the
// last differs in width, or the last line is longer than the rest) fall back to a generic scan that drops every
// '\r'/'\n' byte, since the fixed-stride walk can't locate terminators
// reliably once the geometry isn't uniform (§4.E's slow path).
//
// The fast path stops once wantLen net bytes have been collected rather
// than walking to the end of raw: the final line's own terminator (or
// lack of one, at EOF) is otherwise ambiguous from lengths alone, since a
// full-width unterminated last line and a short terminated one can leave
// the same number of trailing bytes.
func stripTerminators(raw []byte, lineNet, termLen, wantLen int, irregular bool) []byte {
	if irregular {
		return stripAllTerminators(raw)
	}
	if termLen == 0 || lineNet <= 0 {
		return raw
	}
	out := make([]byte, 0, wantLen)
	for len(out) < wantLen && len(raw) > 0 {
		n := lineNet
		if rem := wantLen - len(out); n > rem {
			n = rem
		}
		if n > len(raw) {
			n = len(raw)
		}
		out = append(out, raw[:n]...)
		raw = raw[n:]
		if len(out) < wantLen && len(raw) >= termLen {
			raw = raw[termLen:]
		}
	}
	return out
}

// stripAllTerminators drops every '\r'/'\n' byte regardless of stride.
// Sequence/quality characters never contain either, so this is safe for
// any geometry, uniform or not.
func stripAllTerminators(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b == '\n' || b == '\r' {
			continue
		}
		out = append(out, b)
	}
	return out
}

func toUpperASCII(s []byte) []byte {
	out := make([]byte, len(s))
	for i, b := range s {
		if b >= 'a' && b <= 'z' {
			b -= 32
		}
		out[i] = b
	}
	return out
}

// readRaw fetches n raw bytes at offset from the source, through
// GzipRandomAccess for gzip sources or a direct ReadAt for flat ones.
func (e *Engine) readRaw(offset int64, n int) ([]byte, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if e.gz != nil {
		return e.gz.Read(offset, n)
	}
	buf := make([]byte, n)
	if _, err := e.f.ReadAt(buf, offset); err != nil {
		return nil, newErr(KindCorruptStream, err.Error())
	}
	return buf, nil
}

func (e *Engine) resolveOrd(ord int) (int, error) {
	n := len(e.store.records)
	if ord < 0 {
		ord += n
	}
	if ord < 0 || ord >= n {
		return 0, ErrOutOfRange
	}
	return ord, nil
}

func (e *Engine) resolveName(name string) (int, error) {
	names := e.store.names
	i := sort.Search(len(names), func(i int) bool { return names[i].Name >= name })
	if i < len(names) && names[i].Name == name {
		return names[i].Ord, nil
	}
	return 0, ErrUnknownName
}

// RecordAt resolves a FASTA record by ordinal (negative counts from the
// end). Returns ErrWrongTypeArgument on a FASTQ source.
func (e *Engine) RecordAt(ord int) (*Record, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	if e.kind != KindFASTAFile {
		return nil, newErr(KindWrongTypeArgument, "source is FASTQ")
	}
	i, err := e.resolveOrd(ord)
	if err != nil {
		return nil, err
	}
	return &Record{recordBase{e: e, row: e.store.records[i]}}, nil
}

// RecordByName resolves a FASTA record by identifier.
func (e *Engine) RecordByName(name string) (*Record, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	if e.kind != KindFASTAFile {
		return nil, newErr(KindWrongTypeArgument, "source is FASTQ")
	}
	ord, err := e.resolveName(name)
	if err != nil {
		return nil, err
	}
	return &Record{recordBase{e: e, row: e.store.records[ord]}}, nil
}

// ReadAt resolves a FASTQ read by ordinal (negative counts from the end).
func (e *Engine) ReadAt(ord int) (*Read, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	if e.kind != KindFASTQFile {
		return nil, newErr(KindWrongTypeArgument, "source is FASTA")
	}
	i, err := e.resolveOrd(ord)
	if err != nil {
		return nil, err
	}
	return &Read{recordBase{e: e, row: e.store.records[i]}}, nil
}

// ReadByName resolves a FASTQ read by identifier.
func (e *Engine) ReadByName(name string) (*Read, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	if e.kind != KindFASTQFile {
		return nil, newErr(KindWrongTypeArgument, "source is FASTA")
	}
	ord, err := e.resolveName(name)
	if err != nil {
		return nil, err
	}
	return &Read{recordBase{e: e, row: e.store.records[ord]}}, nil
}
