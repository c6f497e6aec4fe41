package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// DefaultPrecision is the number of decimal places written per coordinate.
const DefaultPrecision = 6

type objOptions struct {
	precision int
}

// Option configures WriteOBJ and Convert.
type Option func(*objOptions)

// WithPrecision sets the decimal places per coordinate. Negative values are
// ignored.
func WithPrecision(n int) Option {
	return func(o *objOptions) {
		if n >= 0 {
			o.precision = n
		}
	}
}

// WriteOBJ writes m as "v x y z" and "vt u v" line pairs, one per vertex,
// and "f a/a b/b c/c" lines with 1-based indices. Faces keep their order and
// each is written right after the last vertex it references, so a text mesh
// gets a face line after every third vertex.
func WriteOBJ(w io.Writer, m *Mesh, opts ...Option) error {
	o := objOptions{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}

	bw := bufio.NewWriter(w)
	line := make([]byte, 0, 64)
	appendFloat := func(dst []byte, f float32) []byte {
		dst = append(dst, ' ')
		return strconv.AppendFloat(dst, float64(f), 'f', o.precision, 32)
	}

	next := 0
	writeFaces := func(written uint64) error {
		for ; next < len(m.Faces); next++ {
			f := m.Faces[next]
			if uint64(max(f[0], f[1], f[2])) >= written {
				return nil
			}
			line = append(line[:0], 'f')
			for _, idx := range f {
				n := uint64(idx) + 1
				line = append(line, ' ')
				line = strconv.AppendUint(line, n, 10)
				line = append(line, '/')
				line = strconv.AppendUint(line, n, 10)
			}
			line = append(line, '\n')
			if _, err := bw.Write(line); err != nil {
				return fmt.Errorf("write face: %w", err)
			}
		}
		return nil
	}

	for i, v := range m.Vertices {
		line = append(line[:0], 'v')
		for _, c := range v.Position {
			line = appendFloat(line, c)
		}
		line = append(line, "\nvt"...)
		line = appendFloat(line, v.UV[0])
		line = appendFloat(line, v.UV[1])
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("write vertex: %w", err)
		}
		if err := writeFaces(uint64(i) + 1); err != nil {
			return err
		}
	}
	// Faces naming vertices past the end still go out, after every vertex.
	if err := writeFaces(math.MaxUint64); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush obj: %w", err)
	}
	return nil
}
