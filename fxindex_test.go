package fxindex

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

func writeTempGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create(%s): %v", path, err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip Write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip Close: %v", err)
	}
	return path
}

const basicFasta = ">s1\nACGT\nACGT\n>s2\nNNN\n"

func TestBasicFastaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "basic.fasta", basicFasta)

	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	n, err := eng.Len()
	if err != nil || n != 2 {
		t.Fatalf("Len() = %d, %v; want 2, nil", n, err)
	}
	if eng.Kind() != KindFASTAFile {
		t.Fatalf("Kind() = %v; want FASTA", eng.Kind())
	}
	if eng.SeqType() != SeqDNA {
		t.Fatalf("SeqType() = %v; want DNA", eng.SeqType())
	}

	s1, err := eng.RecordByName("s1")
	if err != nil {
		t.Fatalf("RecordByName(s1): %v", err)
	}
	seq1, err := s1.Seq()
	if err != nil || seq1.String() != "ACGTACGT" {
		t.Fatalf("s1.Seq() = %q, %v; want ACGTACGT, nil", seq1, err)
	}

	s2, err := eng.RecordByName("s2")
	if err != nil {
		t.Fatalf("RecordByName(s2): %v", err)
	}
	seq2, err := s2.Seq()
	if err != nil || seq2.String() != "NNN" {
		t.Fatalf("s2.Seq() = %q, %v; want NNN, nil", seq2, err)
	}

	stats, err := eng.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	comp, err := stats.Composition()
	if err != nil {
		t.Fatalf("Composition: %v", err)
	}
	if comp.A != 2 || comp.C != 2 || comp.G != 2 || comp.T != 2 || comp.N != 3 {
		t.Fatalf("Composition() = %+v; want A2 C2 G2 T2 N3", comp)
	}
	gc, _, err := stats.GC()
	if err != nil {
		t.Fatalf("GC: %v", err)
	}
	if gc < 49.9 || gc > 50.1 {
		t.Fatalf("gc_content = %f; want ~50.0", gc)
	}
}

func TestSubRangeOverWrappedLines(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "wrap.fasta", basicFasta)

	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	s1, err := eng.RecordByName("s1")
	if err != nil {
		t.Fatalf("RecordByName(s1): %v", err)
	}

	frag, err := s1.Fetch(Interval{Start: 3, End: 6})
	if err != nil || frag.String() != "GTAC" {
		t.Fatalf("Fetch(3,6) = %q, %v; want GTAC, nil", frag, err)
	}

	frag2, err := s1.Fetch(Interval{Start: 1, End: 2}, Interval{Start: 7, End: 8})
	if err != nil || frag2.String() != "ACGT" {
		t.Fatalf("Fetch([(1,2),(7,8)]) = %q, %v; want ACGT, nil", frag2, err)
	}
}

func TestGzipParity(t *testing.T) {
	dir := t.TempDir()
	flatPath := writeTemp(t, dir, "parity.fasta", basicFasta)
	gzPath := writeTempGzip(t, dir, "parity.fasta.gz", basicFasta)

	flat, err := Open(flatPath)
	if err != nil {
		t.Fatalf("Open(flat): %v", err)
	}
	defer flat.Close()
	gz, err := Open(gzPath)
	if err != nil {
		t.Fatalf("Open(gz): %v", err)
	}
	defer gz.Close()

	flatKeys, err := flat.Keys()
	if err != nil {
		t.Fatalf("Keys(flat): %v", err)
	}
	for _, name := range flatKeys.Names() {
		fr, err := flat.RecordByName(name)
		if err != nil {
			t.Fatalf("flat.RecordByName(%s): %v", name, err)
		}
		gr, err := gz.RecordByName(name)
		if err != nil {
			t.Fatalf("gz.RecordByName(%s): %v", name, err)
		}
		fs, _ := fr.Seq()
		gs, _ := gr.Seq()
		if !bytes.Equal(fs.Bytes(), gs.Bytes()) {
			t.Fatalf("record %s: flat=%q gz=%q", name, fs, gs)
		}
	}

	fstats, _ := flat.Stats()
	gstats, _ := gz.Stats()
	if fstats.Size() != gstats.Size() {
		t.Fatalf("Size mismatch: flat=%d gz=%d", fstats.Size(), gstats.Size())
	}
}

func TestN50L50(t *testing.T) {
	dir := t.TempDir()
	var b bytes.Buffer
	for i, l := range []int{1000, 800, 600, 400, 200} {
		b.WriteString(">r")
		b.WriteByte(byte('0' + i))
		b.WriteByte('\n')
		b.WriteString(bytes.Repeat([]byte("A"), l))
		b.WriteByte('\n')
	}
	path := writeTemp(t, dir, "nl.fasta", b.String())

	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	stats, err := eng.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	n50, l50, err := stats.NL(50)
	if err != nil {
		t.Fatalf("NL(50): %v", err)
	}
	if n50 != 800 || l50 != 2 {
		t.Fatalf("NL(50) = (%d, %d); want (800, 2)", n50, l50)
	}

	if _, _, err := stats.NL(101); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NL(101) error = %v; want ErrInvalidArgument", err)
	}
	if _, _, err := stats.NL(0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NL(0) error = %v; want ErrInvalidArgument", err)
	}
}

func TestFastqCompositionAndEncoding(t *testing.T) {
	dir := t.TempDir()
	qual := make([]byte, 10)
	for i := range qual {
		qual[i] = byte(33 + i*4) // spans [33..69], within Sanger/Illumina1.8 range
	}
	content := "@r1\nACGTACGTAC\n+\n" + string(qual) + "\n"
	path := writeTemp(t, dir, "reads.fastq", content)

	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	if eng.Kind() != KindFASTQFile {
		t.Fatalf("Kind() = %v; want FASTQ", eng.Kind())
	}

	r1, err := eng.ReadByName("r1")
	if err != nil {
		t.Fatalf("ReadByName(r1): %v", err)
	}
	q, err := r1.Qual()
	if err != nil || string(q) != string(qual) {
		t.Fatalf("Qual() = %q, %v; want %q, nil", q, err, qual)
	}

	stats, err := eng.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	phred, err := stats.Phred()
	if err != nil || phred != 33 {
		t.Fatalf("Phred() = %d, %v; want 33, nil", phred, err)
	}
	comp, err := stats.Composition()
	if err != nil || comp.A != 3 || comp.C != 3 || comp.G != 2 || comp.T != 2 {
		t.Fatalf("Composition() = %+v, %v; want A3 C3 G2 T2", comp, err)
	}
	schemes, err := stats.EncodingType()
	if err != nil {
		t.Fatalf("EncodingType: %v", err)
	}
	wantSanger, wantIllumina18 := false, false
	for _, s := range schemes {
		if s == "Sanger Phred+33" {
			wantSanger = true
		}
		if s == "Illumina 1.8+ Phred+33" {
			wantIllumina18 = true
		}
	}
	if !wantSanger || !wantIllumina18 {
		t.Fatalf("EncodingType() = %v; want to contain Sanger Phred+33 and Illumina 1.8+ Phred+33", schemes)
	}
}

func TestErrorSurfaces(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "errs.fasta", basicFasta)

	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	s1, err := eng.RecordByName("s1")
	if err != nil {
		t.Fatalf("RecordByName(s1): %v", err)
	}
	if _, err := s1.Fetch(Interval{Start: 20, End: 10}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("Fetch(20,10) error = %v; want ErrInvalidInterval", err)
	}
	if _, err := eng.RecordByName("no_such"); !errors.Is(err, ErrUnknownName) {
		t.Fatalf("RecordByName(no_such) error = %v; want ErrUnknownName", err)
	}
	n, _ := eng.Len()
	if _, err := eng.RecordAt(n); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("RecordAt(n) error = %v; want ErrOutOfRange", err)
	}

	if _, err := Open(filepath.Join(dir, "missing.fasta")); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Open(missing) error = %v; want ErrFileNotFound", err)
	}
}

func TestAntisenseInvolution(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "anti.fasta", ">r1\nACGTACGTNN\n")

	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	r1, err := eng.RecordByName("r1")
	if err != nil {
		t.Fatalf("RecordByName: %v", err)
	}
	full, err := r1.Seq()
	if err != nil {
		t.Fatalf("Seq: %v", err)
	}
	twice := full.Antisense().Antisense()
	if twice.String() != full.String() {
		t.Fatalf("antisense(antisense(r)) = %q; want %q", twice, full)
	}
}
