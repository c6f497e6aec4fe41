package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/goopsie/assetdecode/pkg/binio"
)

// endBody is the payload conventionally stored in the END chunk.
const endBody = "</roblox>"

type pendingChunk struct {
	tag  Tag
	body []byte
}

// Writer assembles a container from class, property, link and metadata
// chunks. Chunks are emitted in the order they are added.
type Writer struct {
	chunks    []pendingChunk
	classes   uint32
	instances uint32
	compress  bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompression selects LZ4 block compression for chunk bodies. Bodies
// that do not shrink are stored raw.
func WithCompression(enabled bool) WriterOption {
	return func(w *Writer) {
		w.compress = enabled
	}
}

// NewWriter creates an empty container writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func appendString(dst []byte, s string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

func (w *Writer) add(tag Tag, body []byte) {
	w.chunks = append(w.chunks, pendingChunk{tag: tag, body: body})
}

// AddClass emits an INST chunk declaring ids as instances of className.
func (w *Writer) AddClass(classID uint32, className string, service bool, ids []int32) {
	body := binary.LittleEndian.AppendUint32(nil, classID)
	body = appendString(body, className)
	flag := byte(0)
	if service {
		flag = 1
	}
	body = append(body, flag)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(ids)))
	body = binio.AppendPlaneI32(body, binio.Delta(ids))
	w.add(TagInstance, body)
	w.classes++
	w.instances += uint32(len(ids))
}

func propertyPrefix(classID uint32, name string, typ PropertyType) []byte {
	body := binary.LittleEndian.AppendUint32(nil, classID)
	body = appendString(body, name)
	return append(body, byte(typ))
}

// AddStrings emits a String PROP chunk.
func (w *Writer) AddStrings(classID uint32, name string, values []string) {
	body := propertyPrefix(classID, name, PropertyString)
	for _, v := range values {
		body = appendString(body, v)
	}
	w.add(TagProperty, body)
}

// AddBools emits a Bool PROP chunk.
func (w *Writer) AddBools(classID uint32, name string, values []bool) {
	body := propertyPrefix(classID, name, PropertyBool)
	for _, v := range values {
		if v {
			body = append(body, 1)
		} else {
			body = append(body, 0)
		}
	}
	w.add(TagProperty, body)
}

// AddInts emits an Int or Enum PROP chunk.
func (w *Writer) AddInts(classID uint32, name string, typ PropertyType, values []int32) {
	body := propertyPrefix(classID, name, typ)
	w.add(TagProperty, binio.AppendPlaneI32(body, values))
}

// AddFloats emits a Float PROP chunk.
func (w *Writer) AddFloats(classID uint32, name string, values []float32) {
	body := propertyPrefix(classID, name, PropertyFloat)
	w.add(TagProperty, binio.AppendPlaneF32(body, values))
}

// AddRawProperty emits a PROP chunk with an arbitrary type tag and payload.
func (w *Writer) AddRawProperty(classID uint32, name string, typ PropertyType, payload []byte) {
	body := propertyPrefix(classID, name, typ)
	w.add(TagProperty, append(body, payload...))
}

// AddParents emits a PRNT chunk linking children[i] under parents[i]. A
// parent id of -1 leaves the child at the top level.
func (w *Writer) AddParents(children, parents []int32) error {
	if len(children) != len(parents) {
		return fmt.Errorf("parent links: %d children but %d parents", len(children), len(parents))
	}
	body := []byte{0}
	body = binary.LittleEndian.AppendUint32(body, uint32(len(children)))
	body = binio.AppendPlaneI32(body, binio.Delta(children))
	body = binio.AppendPlaneI32(body, binio.Delta(parents))
	w.add(TagParent, body)
	return nil
}

// AddMetadata emits a META chunk. Keys are written in the given order.
func (w *Writer) AddMetadata(pairs [][2]string) {
	body := binary.LittleEndian.AppendUint32(nil, uint32(len(pairs)))
	for _, p := range pairs {
		body = appendString(body, p[0])
		body = appendString(body, p[1])
	}
	w.add(TagMeta, body)
}

// AddChunk emits a chunk with an arbitrary tag and body.
func (w *Writer) AddChunk(tag Tag, body []byte) {
	w.add(tag, body)
}

func (w *Writer) encodeChunk(dst []byte, c pendingChunk) ([]byte, error) {
	h := ChunkHeader{Tag: c.tag, DecompressedLength: uint32(len(c.body))}
	payload := c.body

	if w.compress && len(c.body) > 0 {
		compressed := make([]byte, lz4.CompressBlockBound(len(c.body)))
		n, err := lz4.CompressBlock(c.body, compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("compress %s chunk: %w", c.tag, err)
		}
		if n > 0 && n < len(c.body) {
			h.CompressedLength = uint32(n)
			payload = compressed[:n]
		}
	}

	var hdr [ChunkHeaderSize]byte
	h.EncodeTo(hdr[:])
	dst = append(dst, hdr[:]...)
	return append(dst, payload...), nil
}

// Bytes returns the complete container, terminated by an END chunk.
func (w *Writer) Bytes() ([]byte, error) {
	header := Header{
		Magic:         Magic,
		Signature:     Signature,
		ClassCount:    w.classes,
		InstanceCount: w.instances,
	}
	out, err := header.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}

	for _, c := range w.chunks {
		if out, err = w.encodeChunk(out, c); err != nil {
			return nil, err
		}
	}

	end := pendingChunk{tag: TagEnd, body: []byte(endBody)}
	plain := Writer{}
	if out, err = plain.encodeChunk(out, end); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteTo writes the complete container to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	data, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("write container: %w", err)
	}
	return int64(n), nil
}
