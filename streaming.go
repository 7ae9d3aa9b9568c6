package fxindex

import (
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// StreamRecord is one (name, seq[, qual]) tuple delivered by streaming
// mode (§6: "build_index=false"). Qual is nil for FASTA sources.
type StreamRecord struct {
	Name []byte
	Seq  []byte
	Qual []byte
}

// streamIterator wraps shenwei356/bio's fastx.Reader, the same reader
// phredsort uses for its own input, for the non-indexed forward-only path.
// xopen underneath it auto-detects gzip by magic, so isGzip is informational
// only here.
type streamIterator struct {
	reader *fastx.Reader
}

func newStreamIterator(path string, isGzip bool) (*streamIterator, error) {
	_ = isGzip
	reader, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, newErr(KindCorruptStream, err.Error())
	}
	return &streamIterator{reader: reader}, nil
}

// Next returns the next record, or io.EOF once exhausted.
func (it *streamIterator) Next() (*StreamRecord, error) {
	rec, err := it.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, newErr(KindMalformedRecord, err.Error())
	}
	sr := &StreamRecord{
		Name: append([]byte(nil), rec.Name...),
		Seq:  append([]byte(nil), rec.Seq.Seq...),
	}
	if len(rec.Seq.Qual) > 0 {
		sr.Qual = append([]byte(nil), rec.Seq.Qual...)
	}
	return sr, nil
}

func (it *streamIterator) Close() error {
	it.reader.Close()
	return nil
}

// Next delivers the engine's next streaming record. Requires the engine to
// have been opened with OptionBuildIndex(false); otherwise it returns an
// error of kind ErrStreamingOnly whose detail names the mismatch.
func (e *Engine) Next() (*StreamRecord, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if e.streaming == nil {
		return nil, newErr(KindStreamingOnly, "engine was opened with build_index=true")
	}
	return e.streaming.Next()
}
