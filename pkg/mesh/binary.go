package mesh

import (
	"fmt"

	"github.com/goopsie/assetdecode/pkg/binio"
)

const (
	// preambleSize is the length of the "version N.NN\n" line.
	preambleSize = 13

	uvOffset      = 24
	minVertexSize = uvOffset + 8
	minFaceSize   = 12
	lodEntrySize  = 4
)

type binaryHeader struct {
	headerSize  uint16
	vertexSize  uint8
	faceSize    uint8
	sizeofLOD   uint16
	numLODs     uint16
	vertexCount uint32
	faceCount   uint32
}

func readBinaryHeader(r *binio.Reader, version int) (binaryHeader, error) {
	var h binaryHeader
	var err error
	if err = r.Seek(preambleSize); err != nil {
		return h, fmt.Errorf("preamble: %w", err)
	}
	if h.headerSize, err = r.ReadU16(); err != nil {
		return h, fmt.Errorf("header size: %w", err)
	}
	if h.vertexSize, err = r.ReadU8(); err != nil {
		return h, fmt.Errorf("vertex size: %w", err)
	}
	if h.faceSize, err = r.ReadU8(); err != nil {
		return h, fmt.Errorf("face size: %w", err)
	}
	if version >= 3 {
		if h.sizeofLOD, err = r.ReadU16(); err != nil {
			return h, fmt.Errorf("lod entry size: %w", err)
		}
		if h.numLODs, err = r.ReadU16(); err != nil {
			return h, fmt.Errorf("lod count: %w", err)
		}
	}
	if h.vertexCount, err = r.ReadU32(); err != nil {
		return h, fmt.Errorf("vertex count: %w", err)
	}
	if h.faceCount, err = r.ReadU32(); err != nil {
		return h, fmt.Errorf("face count: %w", err)
	}

	if h.vertexSize < minVertexSize {
		return h, fmt.Errorf("vertex size %d below %d: %w", h.vertexSize, minVertexSize, ErrMalformed)
	}
	if h.faceSize < minFaceSize {
		return h, fmt.Errorf("face size %d below %d: %w", h.faceSize, minFaceSize, ErrMalformed)
	}
	return h, nil
}

// exportFaces returns how many faces level of detail 0 uses. Version 3
// meshes with several levels store face offsets in a table at the end of the
// buffer; the second entry ends level 0.
func exportFaces(r *binio.Reader, h binaryHeader) (uint32, error) {
	if h.numLODs <= 1 {
		return h.faceCount, nil
	}
	table := r.Len() - int(h.numLODs)*lodEntrySize
	if err := r.Seek(table + lodEntrySize); err != nil {
		return 0, fmt.Errorf("lod table: %w", err)
	}
	n, err := r.ReadU32()
	if err != nil {
		return 0, fmt.Errorf("lod table: %w", err)
	}
	if n > h.faceCount {
		return 0, fmt.Errorf("lod 0 uses %d of %d faces: %w", n, h.faceCount, ErrMalformed)
	}
	return n, nil
}

func parseBinary(data []byte, version int) (*Mesh, error) {
	r := binio.NewReader(data)
	h, err := readBinaryHeader(r, version)
	if err != nil {
		return nil, err
	}

	vertexBase := preambleSize + int(h.headerSize)
	faceBase := vertexBase + int(h.vertexCount)*int(h.vertexSize)
	if faceBase > r.Len() {
		return nil, fmt.Errorf("%d vertices: %w", h.vertexCount, binio.ErrOutOfBounds)
	}

	faces, err := exportFaces(r, h)
	if err != nil {
		return nil, err
	}
	if faceBase+int(faces)*int(h.faceSize) > r.Len() {
		return nil, fmt.Errorf("%d faces: %w", faces, binio.ErrOutOfBounds)
	}

	m := &Mesh{
		Vertices: make([]Vertex, h.vertexCount),
		Faces:    make([]Face, faces),
	}

	for i := range m.Vertices {
		rec := vertexBase + i*int(h.vertexSize)
		v := &m.Vertices[i]
		if err := r.Seek(rec); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		for j := range v.Position {
			if v.Position[j], err = r.ReadF32(); err != nil {
				return nil, fmt.Errorf("vertex %d position: %w", i, err)
			}
		}
		if err := r.Seek(rec + uvOffset); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		u, err := r.ReadF32()
		if err != nil {
			return nil, fmt.Errorf("vertex %d uv: %w", i, err)
		}
		vv, err := r.ReadF32()
		if err != nil {
			return nil, fmt.Errorf("vertex %d uv: %w", i, err)
		}
		v.UV = [2]float32{u, 1 - vv}
	}

	for i := range m.Faces {
		if err := r.Seek(faceBase + i*int(h.faceSize)); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		f := &m.Faces[i]
		for j := range f {
			if f[j], err = r.ReadU32(); err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			if f[j] >= h.vertexCount {
				return nil, fmt.Errorf("face %d references vertex %d of %d: %w", i, f[j], h.vertexCount, ErrMalformed)
			}
		}
	}
	return m, nil
}
