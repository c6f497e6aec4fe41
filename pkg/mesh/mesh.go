// Package mesh parses versioned mesh containers and exports them as OBJ text.
//
// Version 1 meshes are text: a header line, a face count line, then a run of
// bracketed numbers, nine per vertex. Versions 2 and 3 are binary with a
// fixed-stride vertex block followed by a face block of index triples.
package mesh

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a binary mesh declares an impossible layout.
var ErrMalformed = errors.New("mesh: malformed layout")

// UnsupportedVersionError is returned for a header no parser recognises.
type UnsupportedVersionError struct {
	Header string
}

func (e *UnsupportedVersionError) Error() string {
	return "Unsupported mesh version: " + e.Header
}

// Vertex is one exported vertex. UV.V is already flipped to 1 - v.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
}

// Face holds three zero-based vertex indices.
type Face [3]uint32

// Mesh is a parsed mesh.
type Mesh struct {
	Header   string
	Vertices []Vertex
	Faces    []Face
}

// maxHeaderLen bounds how far Header looks for the end of the first line.
const maxHeaderLen = 64

// Header returns the version line at the start of data with any trailing
// carriage return removed.
func Header(data []byte) string {
	head := data[:min(len(data), maxHeaderLen)]
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	return strings.TrimRight(string(head), "\r \t")
}

// Parse detects the mesh version and decodes data.
func Parse(data []byte) (*Mesh, error) {
	header := Header(data)

	var (
		m   *Mesh
		err error
	)
	switch {
	case strings.HasPrefix(header, "version 1"):
		m, err = parseText(data, header)
	case strings.HasPrefix(header, "version 2"):
		m, err = parseBinary(data, 2)
	case strings.HasPrefix(header, "version 3"):
		m, err = parseBinary(data, 3)
	default:
		return nil, &UnsupportedVersionError{Header: header}
	}
	if err != nil {
		return nil, fmt.Errorf("parse %q mesh: %w", header, err)
	}
	m.Header = header
	return m, nil
}

// Convert parses data and renders it as OBJ text.
func Convert(data []byte, opts ...Option) (string, error) {
	m, err := Parse(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}
