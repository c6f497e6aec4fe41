package lz4block

import "fmt"

// boundedWriter owns the output buffer. Its capacity is fixed at the
// declared length and it is the only code that writes to the buffer.
type boundedWriter struct {
	buf []byte
	pos int
}

func newBoundedWriter(size int) *boundedWriter {
	return &boundedWriter{buf: make([]byte, size)}
}

func (w *boundedWriter) reserve(n int) error {
	if n > len(w.buf)-w.pos {
		return fmt.Errorf("write %d bytes at output offset %d of %d: %w", n, w.pos, len(w.buf), ErrOutputOverflow)
	}
	return nil
}

func (w *boundedWriter) writeLiterals(p []byte) error {
	if err := w.reserve(len(p)); err != nil {
		return err
	}
	w.pos += copy(w.buf[w.pos:], p)
	return nil
}

// copyMatch copies length bytes starting offset bytes behind the cursor.
// The copy runs forward one byte at a time so that an offset shorter than
// the length repeats the most recent bytes.
func (w *boundedWriter) copyMatch(offset, length int) error {
	if offset == 0 || offset > w.pos {
		return fmt.Errorf("match offset %d at output offset %d: %w", offset, w.pos, ErrCorrupt)
	}
	if err := w.reserve(length); err != nil {
		return err
	}
	from := w.pos - offset
	for k := 0; k < length; k++ {
		w.buf[w.pos+k] = w.buf[from+k]
	}
	w.pos += length
	return nil
}
