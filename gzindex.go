package fxindex

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// windowSize is the sliding-dictionary size a DEFLATE resume point must
// carry, per RFC 1951 (32 KiB).
const windowSize = 32 * 1024

// gzCheckpoint is one entry of the checkpoint table described in §4.A: a
// point from which decompression can resume without replaying the whole
// file. cmpOffset/uncOffset are the compressed/uncompressed byte offsets,
// bits is the bit position within cmpOffset (always 0 here: see the
// "member boundaries" note on gzipRandomAccess), and window is the 32 KiB
// of uncompressed output immediately preceding the checkpoint.
//
// Read never actually consumes window: every checkpoint here sits on a
// gzip member boundary, which carries no DEFLATE bit-history to restore,
// so resuming needs only cmpOffset/uncOffset. window is captured and
// persisted anyway to keep this table shaped like a general-purpose
// bit-level checkpoint (§4.A's "bits" field is the other half of that
// shape) in case a future checkpoint granularity needs it; today it is
// dead weight on every Read.
type gzCheckpoint struct {
	cmpOffset int64
	uncOffset int64
	bits      uint8
	window    []byte
}

// gzipRandomAccess serves read(uncompressedOffset, length) over a gzip
// stream by replaying from the nearest preceding checkpoint instead of
// from the start of the file (§4.A).
//
// Checkpoint granularity here is per gzip member boundary, not per
// arbitrary bit position: a gzip stream is, per RFC 1952, a concatenation
// of one or more independently-framed members, and a member boundary is
// always byte-aligned with a fresh DEFLATE bit-history, so resuming there
// needs no saved Huffman-decoder state, only the input/output offsets
// (exactly what klauspost/compress/gzip.Reader gives us for free by
// disabling Multistream and re-opening per member). Files produced by a
// block-oriented compressor (bgzip, pigz --independent, anything that
// bgzip-like tooling in this ecosystem emits) therefore get true O(S + n)
// access. A plain single-member gzip file (the output of a stock `gzip`)
// has exactly one member and so degenerates to the implicit checkpoint at
// (0, 0, 0, nil) — sub-range reads on such a file cost O(file size), which
// is the exact scenario this component exists to avoid for the common
// (multi-member) case; see DESIGN.md for the recorded trade-off.
type gzipRandomAccess struct {
	mu          sync.Mutex
	path        string
	checkpoints []gzCheckpoint
	uncLength   int64
}

// buildGzipRandomAccess performs one forward pass over path, emitting a
// checkpoint at the first member and thereafter whenever at least span
// uncompressed bytes have elapsed since the last one. It also returns the
// full decompressed content, since the Indexer needs exactly one forward
// pass over the decompressed stream too (§4.D) and this call has already
// produced it.
func buildGzipRandomAccess(path string, span int64) (*gzipRandomAccess, []byte, error) {
	if span <= 0 {
		span = 1 << 20
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("fxindex: %w", err)
	}
	defer f.Close()

	g := &gzipRandomAccess{path: path}
	cr := &countingReader{r: bufio.NewReader(f)}

	var uncOffset int64
	var lastCheckpoint int64 = -1
	var window []byte
	var out bytes.Buffer

	for {
		memberStart := cr.n
		gz, err := gzip.NewReader(cr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
		}
		gz.Multistream(false)

		if lastCheckpoint < 0 || uncOffset-lastCheckpoint >= span {
			g.checkpoints = append(g.checkpoints, gzCheckpoint{
				cmpOffset: memberStart,
				uncOffset: uncOffset,
				bits:      0,
				window:    append([]byte(nil), window...),
			})
			lastCheckpoint = uncOffset
		}

		buf := make([]byte, 64*1024)
		for {
			n, rerr := gz.Read(buf)
			if n > 0 {
				uncOffset += int64(n)
				window = appendWindow(window, buf[:n])
				out.Write(buf[:n])
			}
			if rerr == io.EOF {
				break
			}
			if rerr != nil {
				gz.Close()
				return nil, nil, fmt.Errorf("%w: %v", ErrCorruptStream, rerr)
			}
		}
		gz.Close()
	}

	if len(g.checkpoints) == 0 {
		g.checkpoints = []gzCheckpoint{{cmpOffset: 0, uncOffset: 0, bits: 0}}
	}
	g.uncLength = uncOffset
	return g, out.Bytes(), nil
}

// appendWindow maintains a rolling buffer of at most windowSize trailing
// bytes, the "last 32 KiB of uncompressed output" a checkpoint must carry.
func appendWindow(window, data []byte) []byte {
	window = append(window, data...)
	if len(window) > windowSize {
		window = append([]byte(nil), window[len(window)-windowSize:]...)
	}
	return window
}

// Read serves the byte range [uncOffset, uncOffset+n) of the uncompressed
// stream. It binary-searches the checkpoint table, reopens the file at the
// matched checkpoint's compressed offset, and discards leading bytes up to
// uncOffset before returning the requested span.
func (g *gzipRandomAccess) Read(uncOffset int64, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if uncOffset < 0 || uncOffset+int64(n) > g.uncLength {
		return nil, ErrOutOfRange
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	i := sort.Search(len(g.checkpoints), func(i int) bool {
		return g.checkpoints[i].uncOffset > uncOffset
	}) - 1
	if i < 0 {
		i = 0
	}
	cp := g.checkpoints[i]

	f, err := os.Open(g.path)
	if err != nil {
		return nil, fmt.Errorf("fxindex: %w", err)
	}
	defer f.Close()
	if _, err := f.Seek(cp.cmpOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("fxindex: %w", err)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
	}
	defer gz.Close()

	if discard := uncOffset - cp.uncOffset; discard > 0 {
		if _, err := io.CopyN(io.Discard, gz, discard); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
		}
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(gz, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
	}
	return buf[:read], nil
}

// Close is a no-op: gzipRandomAccess opens a fresh file handle per Read
// rather than holding one across the engine's lifetime, since concurrent
// Reads must not share a single inflater (§5).
func (g *gzipRandomAccess) Close() error { return nil }

// countingReader tracks the number of bytes consumed from the underlying
// reader, giving the compressed byte offset of each gzip member boundary.
// It implements io.ByteReader so gzip.NewReader reads from it directly
// instead of adding its own read-ahead buffer, which would swallow the
// start of the next member.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// serializeCheckpoints and deserializeCheckpoints convert the in-memory
// checkpoint table to and from the flat form persisted in the IndexStore's
// checkpoints block (§6). Each window is zstd-compressed on the way in,
// the same library phredsort reaches for on its own `-compress` path, since
// a 32 KiB window per checkpoint otherwise dominates index size on large
// gzip inputs with frequent checkpoints.
func serializeCheckpoints(cps []gzCheckpoint) []storedCheckpoint {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err) // zstd.NewWriter(nil) with no options cannot fail
	}
	defer enc.Close()

	out := make([]storedCheckpoint, len(cps))
	for i, c := range cps {
		var window []byte
		if len(c.window) > 0 {
			window = enc.EncodeAll(c.window, make([]byte, 0, len(c.window)))
		}
		out[i] = storedCheckpoint{
			CmpOffset: c.cmpOffset,
			UncOffset: c.uncOffset,
			Bits:      c.bits,
			Window:    window,
		}
	}
	return out
}

func deserializeCheckpoints(stored []storedCheckpoint) ([]gzCheckpoint, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("fxindex: %w", err)
	}
	defer dec.Close()

	result := make([]gzCheckpoint, len(stored))
	for i, s := range stored {
		var window []byte
		if len(s.Window) > 0 {
			window, err = dec.DecodeAll(s.Window, nil)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
			}
		}
		result[i] = gzCheckpoint{cmpOffset: s.CmpOffset, uncOffset: s.UncOffset, bits: s.Bits, window: window}
	}
	return result, nil
}
