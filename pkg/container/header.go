// Package container decodes the chunked binary model container into a
// model.Forest, and writes containers for tooling and tests.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the 8-byte signature every container starts with.
var Magic = [8]byte{'<', 'r', 'o', 'b', 'l', 'o', 'x', '!'}

// Signature follows Magic in files written by the reference tooling. It is
// carried through but not validated.
var Signature = [6]byte{0x89, 0xff, 0x0d, 0x0a, 0x1a, 0x0a}

// HeaderSize is the fixed binary size of a container file header.
const HeaderSize = 32 // 8 + 6 + 2 + 4 + 4 + 8 bytes

// ErrSignatureMismatch is returned when a buffer does not start with Magic.
var ErrSignatureMismatch = errors.New("container signature mismatch")

// Header is the container file header. ClassCount and InstanceCount are
// informational; decoding never relies on them.
type Header struct {
	Magic         [8]byte
	Signature     [6]byte
	Version       uint16
	ClassCount    uint32
	InstanceCount uint32
	Reserved      [8]byte
}

// HasMagic reports whether data starts with the container signature.
func HasMagic(data []byte) bool {
	return len(data) >= len(Magic) && [8]byte(data[:8]) == Magic
}

// Validate checks the header signature.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("magic %x: %w", h.Magic, ErrSignatureMismatch)
	}
	return nil
}

// EncodeTo writes the header to buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:8], h.Magic[:])
	copy(buf[8:14], h.Signature[:])
	binary.LittleEndian.PutUint16(buf[14:16], h.Version)
	binary.LittleEndian.PutUint32(buf[16:20], h.ClassCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.InstanceCount)
	copy(buf[24:32], h.Reserved[:])
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:8])
	copy(h.Signature[:], buf[8:14])
	h.Version = binary.LittleEndian.Uint16(buf[14:16])
	h.ClassCount = binary.LittleEndian.Uint32(buf[16:20])
	h.InstanceCount = binary.LittleEndian.Uint32(buf[20:24])
	copy(h.Reserved[:], buf[24:32])
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < len(Magic) || !HasMagic(data) {
		return ErrSignatureMismatch
	}
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d: %w", HeaderSize, len(data), ErrTruncatedChunk)
	}
	h.DecodeFrom(data)
	return h.Validate()
}
