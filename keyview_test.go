package fxindex

import (
	"os"
	"path/filepath"
	"testing"
)

const keyviewFasta = ">seq2\nAC\n>seq10\nACGTACGTAC\n>seq1\nACGT\n"

func openKeyviewFixture(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "kv.fasta")
	if err := os.WriteFile(path, []byte(keyviewFasta), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestKeyViewFileOrderAndAccess(t *testing.T) {
	eng := openKeyviewFixture(t)
	kv, err := eng.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if kv.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", kv.Len())
	}
	names := kv.Names()
	want := []string{"seq2", "seq10", "seq1"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("Names()[%d] = %s; want %s", i, names[i], n)
		}
	}
	last, err := kv.At(-1)
	if err != nil || last != "seq1" {
		t.Fatalf("At(-1) = %s, %v; want seq1, nil", last, err)
	}
	if !kv.Contains("seq10") {
		t.Fatalf("Contains(seq10) = false; want true")
	}
	if kv.Contains("nope") {
		t.Fatalf("Contains(nope) = true; want false")
	}
}

func TestKeyViewSortByLength(t *testing.T) {
	eng := openKeyviewFixture(t)
	kv, err := eng.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	asc := kv.Sort(SortByLength, false)
	names := asc.Names()
	if names[0] != "seq2" || names[2] != "seq10" {
		t.Fatalf("ascending length order = %v", names)
	}
	desc := kv.Sort(SortByLength, true)
	dnames := desc.Names()
	if dnames[0] != "seq10" || dnames[2] != "seq2" {
		t.Fatalf("descending length order = %v", dnames)
	}
	// original view order must be unaffected by Sort.
	if kv.Names()[0] != "seq2" {
		t.Fatalf("Sort mutated receiver: %v", kv.Names())
	}
}

func TestKeyViewSortByName(t *testing.T) {
	eng := openKeyviewFixture(t)
	kv, err := eng.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sorted := kv.Sort(SortByName, false)
	names := sorted.Names()
	if names[0] != "seq1" || names[1] != "seq2" || names[2] != "seq10" {
		t.Fatalf("natural-sort order = %v; want [seq1 seq2 seq10]", names)
	}
}

func TestKeyViewFilter(t *testing.T) {
	eng := openKeyviewFixture(t)
	kv, err := eng.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	filtered := kv.Filter(LenCmp(LenGE, 4), NamePrefix("seq1"))
	names := filtered.Names()
	if len(names) != 2 {
		t.Fatalf("Filter result = %v; want 2 names", names)
	}
	for _, n := range names {
		if n != "seq1" && n != "seq10" {
			t.Fatalf("unexpected name in filter result: %s", n)
		}
	}
}
