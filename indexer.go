package fxindex

import (
	"bytes"
	"sort"
	"unicode"
)

// readLine returns the line starting at pos (including its terminator, if
// any) plus the position immediately following it and the terminator's
// byte length (0, 1, or 2), via detectTerminator (§4.B).
func readLine(body []byte, pos int) (line []byte, nextPos int, termLen int) {
	rest := body[pos:]
	idx := bytes.IndexByte(rest, '\n')
	if idx < 0 {
		return rest, len(body), 0
	}
	end := pos + idx + 1
	line = body[pos:end]
	return line, end, detectTerminator(line)
}

// geometryOf derives the lineGeometry of a record from its first sequence
// line (§4.B): every full line shares this net width and terminator style.
func geometryOf(firstLine []byte, termLen int) lineGeometry {
	net := len(firstLine) - termLen
	g := lineGeometry{termLen: termLen, lineNet: net}
	if termLen > 0 {
		g.lineLen = net + termLen
	} else {
		g.lineLen = net
	}
	return g
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s []byte) []byte {
	i := bytes.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s
	}
	return s[:i]
}

// deriveName computes a record's identifier from its raw header content
// (sigil and terminator already stripped), per §4.D.
func deriveName(header []byte, o options) ([]byte, error) {
	if o.keyFunc != nil {
		name, err := o.keyFunc(header)
		if err != nil {
			return nil, newErr(KindMalformedRecord, err.Error())
		}
		return name, nil
	}
	if o.fullName {
		return header, nil
	}
	return firstToken(header), nil
}

// countBases tallies A/C/G/T/U/N occurrences (case-insensitive) into the
// given recordRow.
func countBases(row *recordRow, seq []byte) {
	for _, b := range seq {
		switch b {
		case 'A', 'a':
			row.CountA++
		case 'C', 'c':
			row.CountC++
		case 'G', 'g':
			row.CountG++
		case 'T', 't':
			row.CountT++
		case 'U', 'u':
			row.CountU++
		case 'N', 'n':
			row.CountN++
		}
	}
}

// indexBytes performs the single forward pass of §4.D over an already
// fully-materialized byte stream (the decompressed content for gzip
// sources, the raw file content for flat ones) and returns a populated,
// not-yet-persisted indexStore.
func indexBytes(body []byte, o options) (*indexStore, error) {
	pos := 0
	for pos < len(body) {
		line, next, term := readLine(body, pos)
		if len(bytes.TrimRight(line, "\r\n")) != 0 {
			break
		}
		pos = next
		_ = term
	}
	if pos >= len(body) {
		return &indexStore{meta: meta{Kind: KindFASTAFile, Terminator: "\n"}}, nil
	}

	switch body[pos] {
	case '>':
		return indexFasta(body, pos, o)
	case '@':
		return indexFastq(body, pos, o)
	default:
		return nil, newErr(KindMalformedRecord, "first non-blank line has neither '>' nor '@'")
	}
}

func indexFasta(body []byte, pos int, o options) (*indexStore, error) {
	var records []recordRow
	seen := make(map[string]int)
	terminator := "\n"
	var seqType SeqType
	seqTypeSet := false

	ord := 0
	for pos < len(body) {
		if body[pos] != '>' {
			return nil, newErr(KindMalformedRecord, "expected '>' header")
		}
		headerLine, next, hterm := readLine(body, pos)
		header := bytes.TrimRight(headerLine[1:], "\r\n")
		if len(header) == 0 {
			return nil, newErr(KindEmptyName, "empty header line")
		}
		descOffset := int64(pos + 1)
		descLength := int64(len(header))
		if hterm == 2 {
			terminator = "\r\n"
		}
		pos = next

		name, err := deriveName(header, o)
		if err != nil {
			return nil, err
		}
		if len(name) == 0 {
			return nil, newErr(KindEmptyName, "derived name is empty")
		}
		nameStr := string(name)
		if _, dup := seen[nameStr]; dup {
			return nil, newErr(KindDuplicateName, nameStr)
		}

		row := recordRow{Ord: ord, Name: nameStr, DescOffset: descOffset, DescLength: descLength}
		row.SeqOffset = int64(pos)

		var geom lineGeometry
		lineCount := 0
		var seqBytes, seqLength int64
		var firstSeq []byte
		var lineNets []int

		for pos < len(body) && body[pos] != '>' {
			line, next2, tlen := readLine(body, pos)
			net := line
			if tlen > 0 {
				net = line[:len(line)-tlen]
			}
			if lineCount == 0 {
				geom = geometryOf(line, tlen)
				firstSeq = append(firstSeq, net...)
			}
			lineNets = append(lineNets, len(net))
			seqBytes += int64(len(line))
			seqLength += int64(len(net))
			countBases(&row, net)
			lineCount++
			pos = next2
		}

		// Only the final line of a record may be shorter than the rest;
		// any other deviation (including a final line that runs long)
		// makes the record's stride irregular (§4.B).
		irregular := false
		for i, n := range lineNets {
			if i == len(lineNets)-1 {
				if n > geom.lineNet {
					irregular = true
				}
				continue
			}
			if n != geom.lineNet {
				irregular = true
			}
		}

		row.SeqBytes = seqBytes
		row.SeqLength = seqLength
		row.LineNet = geom.lineNet
		row.TermLen = geom.termLen
		row.LineLen = geom.lineLen
		row.Irregular = irregular

		if !seqTypeSet {
			seqType = classifySeqType(firstSeq)
			seqTypeSet = true
		}
		row.HasComp = seqType != SeqProtein
		if row.HasComp {
			row.GC, row.GCSkew = gcStats(row.CountA, row.CountC, row.CountG, row.CountT)
		}

		records = append(records, row)
		seen[nameStr] = ord
		ord++
	}

	if !seqTypeSet {
		seqType = SeqProtein
	}

	return &indexStore{
		meta: meta{
			Kind:       KindFASTAFile,
			SeqType:    seqType,
			Terminator: terminator,
		},
		records: records,
		names:   buildNameTable(records),
	}, nil
}

func indexFastq(body []byte, pos int, o options) (*indexStore, error) {
	var records []recordRow
	seen := make(map[string]int)
	terminator := "\n"

	ord := 0
	for pos < len(body) {
		if body[pos] != '@' {
			return nil, newErr(KindMalformedRecord, "expected '@' header")
		}
		headerLine, next, hterm := readLine(body, pos)
		header := bytes.TrimRight(headerLine[1:], "\r\n")
		if len(header) == 0 {
			return nil, newErr(KindEmptyName, "empty header line")
		}
		descOffset := int64(pos + 1)
		descLength := int64(len(header))
		if hterm == 2 {
			terminator = "\r\n"
		}
		pos = next

		name, err := deriveName(header, o)
		if err != nil {
			return nil, err
		}
		if len(name) == 0 {
			return nil, newErr(KindEmptyName, "derived name is empty")
		}
		nameStr := string(name)
		if _, dup := seen[nameStr]; dup {
			return nil, newErr(KindDuplicateName, nameStr)
		}

		if pos >= len(body) {
			return nil, newErr(KindMalformedRecord, "truncated record: missing sequence line")
		}
		seqLine, next2, sterm := readLine(body, pos)
		seq := seqLine
		if sterm > 0 {
			seq = seqLine[:len(seqLine)-sterm]
		}
		seqOffset := int64(pos)
		pos = next2

		if pos >= len(body) || body[pos] != '+' {
			return nil, newErr(KindMalformedRecord, nameStr+": missing '+' separator")
		}
		_, next3, _ := readLine(body, pos)
		pos = next3

		if pos >= len(body) {
			return nil, newErr(KindMalformedRecord, nameStr+": missing quality line")
		}
		qualLine, next4, qterm := readLine(body, pos)
		qual := qualLine
		if qterm > 0 {
			qual = qualLine[:len(qualLine)-qterm]
		}
		qualOffset := int64(pos)
		pos = next4

		if len(qual) != len(seq) {
			return nil, newErr(KindMalformedRecord, nameStr+": sequence/quality length mismatch")
		}

		row := recordRow{
			Ord:        ord,
			Name:       nameStr,
			DescOffset: descOffset,
			DescLength: descLength,
			SeqOffset:  seqOffset,
			SeqBytes:   int64(len(seqLine)),
			SeqLength:  int64(len(seq)),
			LineNet:    len(seq),
			TermLen:    sterm,
			QualOffset: qualOffset,
		}
		if sterm > 0 {
			row.LineLen = row.LineNet + sterm
		} else {
			row.LineLen = row.LineNet
		}
		countBases(&row, seq)
		row.HasComp = true
		row.GC, row.GCSkew = gcStats(row.CountA, row.CountC, row.CountG, row.CountT)

		records = append(records, row)
		seen[nameStr] = ord
		ord++
	}

	return &indexStore{
		meta: meta{
			Kind:       KindFASTQFile,
			SeqType:    SeqUnknown,
			Terminator: terminator,
		},
		records: records,
		names:   buildNameTable(records),
	}, nil
}

// buildNameTable produces the sorted (name -> ordinal) table backing
// name lookups and prefix scans (§4.C).
func buildNameTable(records []recordRow) []nameEntry {
	names := make([]nameEntry, len(records))
	for i, r := range records {
		names[i] = nameEntry{Name: r.Name, Ord: r.Ord}
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	return names
}

// gcStats computes GC content and GC skew from base counts.
func gcStats(a, c, g, t int64) (gc, skew float64) {
	total := a + c + g + t
	if total > 0 {
		gc = 100 * float64(c+g) / float64(total)
	}
	if g+c > 0 {
		skew = float64(g-c) / float64(g+c)
	}
	return gc, skew
}
