package fxindex

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Statistics aggregates over an engine's whole record table, computed in
// O(N) on first access and cached thereafter (§4.G).
type Statistics struct {
	e *Engine

	size        int64
	composition Composition
	hasComp     bool
	lengths     []float64 // parallel to e.store.records, ascending ordinal
	mean        float64
	median      float64
	longestOrd  int
	shortestOrd int

	// FASTQ-only
	qualMin, qualMax byte
	hasQual          bool
}

// Stats computes (or returns the cached) Statistics for the engine.
func (e *Engine) Stats() (*Statistics, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	if e.stats != nil {
		return e.stats, nil
	}

	s := &Statistics{e: e}
	records := e.store.records
	s.lengths = make([]float64, len(records))

	var longestLen, shortestLen int64 = -1, -1
	for i, r := range records {
		s.size += r.SeqLength
		s.lengths[i] = float64(r.SeqLength)
		if r.HasComp {
			s.hasComp = true
			s.composition.A += r.CountA
			s.composition.C += r.CountC
			s.composition.G += r.CountG
			s.composition.T += r.CountT
			s.composition.U += r.CountU
			s.composition.N += r.CountN
		}
		if longestLen < 0 || r.SeqLength > longestLen {
			longestLen = r.SeqLength
			s.longestOrd = r.Ord
		}
		if shortestLen < 0 || r.SeqLength < shortestLen {
			shortestLen = r.SeqLength
			s.shortestOrd = r.Ord
		}
	}

	if len(s.lengths) > 0 {
		s.mean = stat.Mean(s.lengths, nil)
		sorted := append([]float64(nil), s.lengths...)
		sort.Float64s(sorted)
		s.median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}

	if e.kind == KindFASTQFile {
		s.hasQual = true
		s.qualMin, s.qualMax = 255, 0
		for _, r := range records {
			qual, err := e.readRaw(r.QualOffset, int(r.SeqBytes))
			if err != nil {
				return nil, err
			}
			qual = stripTerminators(qual, r.LineNet, r.TermLen, int(r.SeqLength), r.Irregular)
			for _, b := range qual {
				if b < s.qualMin {
					s.qualMin = b
				}
				if b > s.qualMax {
					s.qualMax = b
				}
			}
		}
	}

	e.stats = s
	return s, nil
}

// Size returns the total sequence length across all records.
func (s *Statistics) Size() int64 { return s.size }

// Composition returns the summed per-base tally over all DNA/RNA records.
func (s *Statistics) Composition() (Composition, error) {
	if !s.hasComp {
		return Composition{}, newErr(KindWrongTypeArgument, "no DNA/RNA records")
	}
	return s.composition, nil
}

// GC returns gc_content and gc_skew over the summed composition.
func (s *Statistics) GC() (gc, skew float64, err error) {
	c, err := s.Composition()
	if err != nil {
		return 0, 0, err
	}
	return gcStats(c.A, c.C, c.G, c.T)
}

// Mean and Median report the standard summaries over seq_length.
func (s *Statistics) Mean() float64   { return s.mean }
func (s *Statistics) Median() float64 { return s.median }

// Longest and Shortest return the full resolved record (ties broken by
// lower ordinal), per the pyfastx-derived supplement in SPEC_FULL.md: the
// whole record, not a bare length.
func (s *Statistics) Longest() (*Record, error)  { return s.e.RecordAt(s.longestOrd) }
func (s *Statistics) Shortest() (*Record, error) { return s.e.RecordAt(s.shortestOrd) }

// LongestRead and ShortestRead are the FASTQ equivalents of Longest/Shortest.
func (s *Statistics) LongestRead() (*Read, error)  { return s.e.ReadAt(s.longestOrd) }
func (s *Statistics) ShortestRead() (*Read, error) { return s.e.ReadAt(s.shortestOrd) }

// Count returns the number of records with seq_length >= threshold.
func (s *Statistics) Count(threshold int64) int {
	n := 0
	for _, l := range s.lengths {
		if int64(l) >= threshold {
			n++
		}
	}
	return n
}

// NL computes (N_x, L_x): sort lengths descending, walk the prefix
// accumulating total, and report the length and step count at which the
// running total first reaches x% of size (§4.G).
func (s *Statistics) NL(x int) (nx int64, lx int, err error) {
	if x < 1 || x > 100 {
		return 0, 0, newErr(KindInvalidArgument, "x must be in [1,100]")
	}
	lengths := make([]int64, len(s.lengths))
	for i, l := range s.lengths {
		lengths[i] = int64(l)
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] > lengths[j] })

	target := float64(x) / 100 * float64(s.size)
	var running int64
	for i, l := range lengths {
		running += l
		if float64(running) >= target {
			return l, i + 1, nil
		}
	}
	if len(lengths) > 0 {
		return lengths[len(lengths)-1], len(lengths), nil
	}
	return 0, 0, nil
}

// EncodingType inspects the observed quality-byte range and returns every
// compatible Phred encoding scheme (§4.G). FASTA sources have none.
func (s *Statistics) EncodingType() ([]string, error) {
	if !s.hasQual {
		return nil, newErr(KindWrongTypeArgument, "no quality data (FASTA source)")
	}
	var schemes []string
	lo, hi := s.qualMin, s.qualMax
	if lo >= 33 && hi <= 73 {
		schemes = append(schemes, "Sanger Phred+33")
	}
	if lo >= 59 && hi <= 104 {
		schemes = append(schemes, "Solexa Solexa+64")
	}
	if lo >= 64 && hi <= 104 {
		schemes = append(schemes, "Illumina 1.3+ Phred+64")
	}
	if lo >= 66 && hi <= 104 {
		schemes = append(schemes, "Illumina 1.5+ Phred+64")
	}
	if lo >= 33 && hi <= 74 {
		schemes = append(schemes, "Illumina 1.8+ Phred+33")
	}
	return schemes, nil
}

// Phred returns the offset (33 or 64) implied by EncodingType's detection:
// 33 if any Phred+33 scheme is compatible, else 64.
func (s *Statistics) Phred() (int, error) {
	schemes, err := s.EncodingType()
	if err != nil {
		return 0, err
	}
	for _, sc := range schemes {
		if sc == "Sanger Phred+33" || sc == "Illumina 1.8+ Phred+33" {
			return 33, nil
		}
	}
	return 64, nil
}
