package fxindex

import "github.com/elliotwutingfeng/asciiset"

// lineGeometry describes the wrapping of a FASTA record's sequence lines,
// or of a FASTQ read's single sequence/quality line: the terminator style,
// the net (no-terminator) bytes per full line, and the terminator length.
// §4.B.
type lineGeometry struct {
	termLen int // 1 for "\n", 2 for "\r\n"
	lineNet int // bytes per full line, terminator excluded
	lineLen int // lineNet + termLen
}

// detectTerminator scans line for a trailing "\r\n" or "\n" and returns the
// terminator length (0 if line has none, e.g. final line of file).
func detectTerminator(line []byte) int {
	n := len(line)
	if n == 0 {
		return 0
	}
	if line[n-1] != '\n' {
		return 0
	}
	if n >= 2 && line[n-2] == '\r' {
		return 2
	}
	return 1
}

// dnaSet, rnaSet, and proteinExtra back the alphabet classification in
// classifySeqType: membership tests via asciiset are a single table lookup
// rather than a multi-case switch per byte.
var (
	dnaSet, _ = asciiset.MakeASCIISet("ACGTNacgtn")
	rnaSet, _ = asciiset.MakeASCIISet("ACGUNacgun")
)

// classifySeqType inspects the first record's sequence bytes and returns
// DNA, RNA, or protein per §3. Empty input classifies as protein (the safe
// default: an empty alphabet is "not provably nucleic").
func classifySeqType(seq []byte) SeqType {
	if len(seq) == 0 {
		return SeqProtein
	}
	allDNA, allRNA := true, true
	for _, b := range seq {
		if allDNA && !dnaSet.Contains(b) {
			allDNA = false
		}
		if allRNA && !rnaSet.Contains(b) {
			allRNA = false
		}
		if !allDNA && !allRNA {
			break
		}
	}
	switch {
	case allDNA:
		return SeqDNA
	case allRNA:
		return SeqRNA
	default:
		return SeqProtein
	}
}
