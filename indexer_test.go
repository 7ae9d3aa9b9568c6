package fxindex

import (
	"errors"
	"testing"
)

func TestIndexBytesFullNameOption(t *testing.T) {
	body := []byte(">s1 description here\nACGT\n")
	o := defaultOptions()
	o.fullName = true
	s, err := indexBytes(body, o)
	if err != nil {
		t.Fatalf("indexBytes: %v", err)
	}
	if len(s.records) != 1 || s.records[0].Name != "s1 description here" {
		t.Fatalf("records = %+v; want name 's1 description here'", s.records)
	}
}

func TestIndexBytesKeyFunc(t *testing.T) {
	body := []byte(">s1 tag=A\nACGT\n>s2 tag=B\nACGT\n")
	o := defaultOptions()
	o.keyFunc = func(header []byte) ([]byte, error) {
		return []byte("custom-" + string(header[:2])), nil
	}
	s, err := indexBytes(body, o)
	if err != nil {
		t.Fatalf("indexBytes: %v", err)
	}
	if s.records[0].Name != "custom-s1" || s.records[1].Name != "custom-s2" {
		t.Fatalf("records = %+v", s.records)
	}
}

func TestIndexBytesDuplicateName(t *testing.T) {
	body := []byte(">s1\nACGT\n>s1\nTTTT\n")
	_, err := indexBytes(body, defaultOptions())
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v; want ErrDuplicateName", err)
	}
}

func TestIndexBytesFastqLengthMismatch(t *testing.T) {
	body := []byte("@r1\nACGT\n+\nIII\n") // 4 bases, 3 quality bytes
	_, err := indexBytes(body, defaultOptions())
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v; want ErrMalformedRecord", err)
	}
}

func TestIndexBytesFastqMissingPlus(t *testing.T) {
	body := []byte("@r1\nACGT\nnotplus\nIIII\n")
	_, err := indexBytes(body, defaultOptions())
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v; want ErrMalformedRecord", err)
	}
}

func TestIndexBytesProteinClassification(t *testing.T) {
	body := []byte(">p1\nMKVLAASS\n")
	s, err := indexBytes(body, defaultOptions())
	if err != nil {
		t.Fatalf("indexBytes: %v", err)
	}
	if s.meta.SeqType != SeqProtein {
		t.Fatalf("SeqType = %v; want protein", s.meta.SeqType)
	}
	if s.records[0].HasComp {
		t.Fatalf("protein record should not carry composition")
	}
}
