package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"
)

// MaxUnwrappedSize caps the size of a buffer recovered from an envelope.
const MaxUnwrappedSize = 256 << 20

var (
	// ErrNotModel is returned for buffers that are neither a container nor
	// an XML model document.
	ErrNotModel = errors.New("asset: not a model")

	// ErrEnvelopeTooLarge is returned when an envelope expands past
	// MaxUnwrappedSize.
	ErrEnvelopeTooLarge = errors.New("asset: envelope expands past size limit")
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Unwrap removes a gzip or zstd transport envelope. Buffers without a
// recognised envelope are returned unchanged.
func Unwrap(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip envelope: %w", err)
		}
		defer r.Close()
		return readLimited(r, "gzip")
	case bytes.HasPrefix(data, zstdMagic):
		r := zstd.NewReader(bytes.NewReader(data))
		defer r.Close()
		return readLimited(r, "zstd")
	default:
		return data, nil
	}
}

func readLimited(r io.Reader, kind string) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxUnwrappedSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s envelope: %w", kind, err)
	}
	if len(out) > MaxUnwrappedSize {
		return nil, fmt.Errorf("%s envelope: %w", kind, ErrEnvelopeTooLarge)
	}
	return out, nil
}
