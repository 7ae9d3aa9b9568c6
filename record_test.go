package fxindex

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecordSearch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.fasta")
	if err := os.WriteFile(path, []byte(">s1\nAAACCCGGGTTT\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	r, err := eng.RecordByName("s1")
	if err != nil {
		t.Fatalf("RecordByName: %v", err)
	}
	pos, err := r.Search([]byte("GGG"))
	if err != nil || pos != 7 {
		t.Fatalf("Search(GGG) = %d, %v; want 7, nil", pos, err)
	}
	pos2, err := r.Search([]byte("ZZZ"))
	if err != nil || pos2 != 0 {
		t.Fatalf("Search(ZZZ) = %d, %v; want 0, nil", pos2, err)
	}
}

func TestRecordDesc(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desc.fasta")
	if err := os.WriteFile(path, []byte(">s1 some description\nACGT\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	r, err := eng.RecordByName("s1")
	if err != nil {
		t.Fatalf("RecordByName: %v", err)
	}
	desc, err := r.Desc()
	if err != nil || desc != "s1 some description" {
		t.Fatalf("Desc() = %q, %v; want 's1 some description', nil", desc, err)
	}
}

func TestExportFAI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fai.fasta")
	if err := os.WriteFile(path, []byte(">s1\nACGTACGT\nACGT\n>s2\nGGGG\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	var buf bytes.Buffer
	if err := eng.ExportFAI(&buf); err != nil {
		t.Fatalf("ExportFAI: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("ExportFAI produced %d lines; want 2:\n%s", len(lines), buf.String())
	}
	fields := strings.Split(lines[0], "\t")
	if fields[0] != "s1" || fields[1] != "12" {
		t.Fatalf("first row = %v; want name=s1 length=12", fields)
	}
}

func TestExportFAIRejectsGzip(t *testing.T) {
	dir := t.TempDir()
	path := writeTempGzip(t, dir, "fai.fasta.gz", basicFasta)
	eng, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	var buf bytes.Buffer
	if err := eng.ExportFAI(&buf); err == nil {
		t.Fatalf("ExportFAI on gzip source: want error, got nil")
	}
}
