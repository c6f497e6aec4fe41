// Package lz4block implements a decoder for the LZ4 block format: the raw
// token/literal/match sequence stream, without the frame format's magic
// number, descriptors or checksums.
//
// Every write goes through a bounded output writer, so a malicious or
// corrupt stream can never produce more than the declared output length.
package lz4block

import (
	"errors"
	"fmt"
)

var (
	// ErrOutputOverflow is returned when a stream would write past the
	// declared output length.
	ErrOutputOverflow = errors.New("lz4: output exceeds declared length")

	// ErrCorrupt is returned for streams that end mid-sequence or carry an
	// invalid match offset.
	ErrCorrupt = errors.New("lz4: corrupt block")

	// ErrSizeMismatch is returned when the stream ends before filling the
	// declared output length.
	ErrSizeMismatch = errors.New("lz4: output shorter than declared length")
)

const (
	minMatch   = 4
	nibbleMask = 0x0f
	runMask    = 15

	// maxExpansion bounds output per input byte: a length-extension byte
	// of 255 is the densest encoding a stream can carry.
	maxExpansion = 255
	// expansionSlack covers the fixed overhead of a minimal final sequence.
	expansionSlack = 16
)

// MaxDecompressedSize returns the largest output a block of srcLen bytes
// can legitimately decode to.
func MaxDecompressedSize(srcLen int) int {
	return srcLen*maxExpansion + expansionSlack
}

// Decompress decodes an LZ4 block into a buffer of exactly size bytes. A
// size the input could never expand to is rejected before allocating.
func Decompress(src []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("declared length %d: %w", size, ErrCorrupt)
	}
	if size > MaxDecompressedSize(len(src)) {
		return nil, fmt.Errorf("declared length %d unreachable from %d input bytes: %w", size, len(src), ErrCorrupt)
	}
	w := newBoundedWriter(size)
	if err := decode(src, w); err != nil {
		return nil, err
	}
	if w.pos != size {
		return nil, fmt.Errorf("decoded %d of %d bytes: %w", w.pos, size, ErrSizeMismatch)
	}
	return w.buf, nil
}

func decode(src []byte, w *boundedWriter) error {
	i := 0
	for i < len(src) {
		token := src[i]
		i++

		literals := int(token >> 4)
		if literals == runMask {
			ext, n, err := readLength(src, i)
			if err != nil {
				return err
			}
			literals += ext
			i = n
		}

		if literals > len(src)-i {
			return fmt.Errorf("literal run of %d at input offset %d: %w", literals, i, ErrCorrupt)
		}
		if err := w.writeLiterals(src[i : i+literals]); err != nil {
			return err
		}
		i += literals

		// The final sequence carries literals only.
		if i >= len(src) {
			break
		}

		if len(src)-i < 2 {
			return fmt.Errorf("match offset at input offset %d: %w", i, ErrCorrupt)
		}
		offset := int(src[i]) | int(src[i+1])<<8
		i += 2

		length := int(token & nibbleMask)
		if length == runMask {
			ext, n, err := readLength(src, i)
			if err != nil {
				return err
			}
			length += ext
			i = n
		}
		if err := w.copyMatch(offset, length+minMatch); err != nil {
			return err
		}
	}
	return nil
}

// readLength reads length-extension bytes starting at src[i]. Each byte adds
// its value; a byte below 255 terminates the run.
func readLength(src []byte, i int) (int, int, error) {
	total := 0
	for {
		if i >= len(src) {
			return 0, i, fmt.Errorf("length extension at input offset %d: %w", i, ErrCorrupt)
		}
		b := src[i]
		i++
		total += int(b)
		if b != 255 {
			return total, i, nil
		}
	}
}
