package fxindex

import (
	"fmt"
	"io"
)

// ExportFAI writes a samtools-compatible .fai index for a flat (non-gzip)
// FASTA source: name, length, offset, linebases, linewidth per record, one
// per line. A strict subset of the richer .fxi entry, kept for interop
// with samtools faidx consumers (SPEC_FULL.md supplement).
func (e *Engine) ExportFAI(w io.Writer) error {
	if err := e.checkIndexed(); err != nil {
		return err
	}
	if e.kind != KindFASTAFile {
		return newErr(KindWrongTypeArgument, "ExportFAI requires a FASTA source")
	}
	if e.gz != nil {
		return newErr(KindWrongTypeArgument, "ExportFAI requires a flat (non-gzip) source")
	}
	for _, r := range e.store.records {
		if r.Irregular {
			return newErr(KindMalformedRecord, r.Name+": irregular line geometry, not .fai-representable")
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
			r.Name, r.SeqLength, r.SeqOffset, r.LineNet, r.LineLen); err != nil {
			return fmt.Errorf("fxindex: %w", err)
		}
	}
	return nil
}
