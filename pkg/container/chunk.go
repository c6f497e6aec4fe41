package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/goopsie/assetdecode/pkg/binio"
	"github.com/goopsie/assetdecode/pkg/lz4block"
)

// ChunkHeaderSize is the size of a chunk header including its tag.
const ChunkHeaderSize = 16 // 4 + 4 + 4 + 4 bytes

// ErrTruncatedChunk is returned when a chunk header or body runs past the
// end of the buffer.
var ErrTruncatedChunk = errors.New("truncated chunk")

// Tag identifies a chunk type.
type Tag [4]byte

var (
	TagInstance = Tag{'I', 'N', 'S', 'T'}
	TagProperty = Tag{'P', 'R', 'O', 'P'}
	TagParent   = Tag{'P', 'R', 'N', 'T'}
	TagMeta     = Tag{'M', 'E', 'T', 'A'}
	TagEnd      = Tag{'E', 'N', 'D', 0}
)

// String returns the tag with trailing NULs removed.
func (t Tag) String() string {
	n := len(t)
	for n > 0 && t[n-1] == 0 {
		n--
	}
	return string(t[:n])
}

// ChunkHeader precedes every chunk body. A CompressedLength of zero means
// the body is stored raw and is DecompressedLength bytes long.
type ChunkHeader struct {
	Tag                Tag
	CompressedLength   uint32
	DecompressedLength uint32
	Reserved           uint32
}

// Stored reports whether the body is uncompressed.
func (h *ChunkHeader) Stored() bool {
	return h.CompressedLength == 0
}

// BodyLength is the number of bytes the body occupies in the container.
func (h *ChunkHeader) BodyLength() int {
	if h.Stored() {
		return int(h.DecompressedLength)
	}
	return int(h.CompressedLength)
}

// EncodeTo writes the header to buf, which must hold ChunkHeaderSize bytes.
func (h *ChunkHeader) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Tag[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.CompressedLength)
	binary.LittleEndian.PutUint32(buf[8:12], h.DecompressedLength)
	binary.LittleEndian.PutUint32(buf[12:16], h.Reserved)
}

// readChunkHeader reads the fields following an already consumed tag.
func readChunkHeader(r *binio.Reader, tag Tag) (ChunkHeader, error) {
	h := ChunkHeader{Tag: tag}
	var err error
	if h.CompressedLength, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.DecompressedLength, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.Reserved, err = r.ReadU32(); err != nil {
		return h, err
	}
	return h, nil
}

// readChunkBody consumes exactly BodyLength bytes and returns the
// decompressed body.
func readChunkBody(r *binio.Reader, h ChunkHeader) ([]byte, error) {
	if n := h.BodyLength(); n > r.Remaining() {
		return nil, fmt.Errorf("%s body of %d bytes with %d left: %w", h.Tag, n, r.Remaining(), ErrTruncatedChunk)
	}
	raw, err := r.ReadBytes(h.BodyLength())
	if err != nil {
		return nil, fmt.Errorf("%s body: %w", h.Tag, ErrTruncatedChunk)
	}
	if h.Stored() {
		return raw, nil
	}
	body, err := lz4block.Decompress(raw, int(h.DecompressedLength))
	if err != nil {
		return nil, fmt.Errorf("decompress %s chunk: %w", h.Tag, err)
	}
	return body, nil
}
