package binio

import (
	"fmt"
	"math"
)

// Plane layout: an array of N 32-bit values is stored as four contiguous
// byte planes. Plane k holds byte k (least significant first) of every
// element, so element i is plane0[i] | plane1[i]<<8 | plane2[i]<<16 | plane3[i]<<24.

// ReadPlaneU32Array decodes count plane-interleaved 32-bit words.
func (r *Reader) ReadPlaneU32Array(count int) ([]uint32, error) {
	if count < 0 || count > math.MaxInt/4 {
		return nil, fmt.Errorf("plane array of %d elements: %w", count, ErrOutOfBounds)
	}
	b, err := r.take(count * 4)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, count)
	p0 := b[0:count]
	p1 := b[count : 2*count]
	p2 := b[2*count : 3*count]
	p3 := b[3*count : 4*count]
	for i := range out {
		out[i] = uint32(p0[i]) | uint32(p1[i])<<8 | uint32(p2[i])<<16 | uint32(p3[i])<<24
	}
	return out, nil
}

// ReadPlaneI32Array decodes count plane-interleaved signed 32-bit integers.
// Values are returned as stored; delta-encoded arrays need Cumsum.
func (r *Reader) ReadPlaneI32Array(count int) ([]int32, error) {
	words, err := r.ReadPlaneU32Array(count)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(words))
	for i, w := range words {
		out[i] = int32(w)
	}
	return out, nil
}

// ReadPlaneF32Array decodes count plane-interleaved words and reinterprets
// each word's bits as a float32.
func (r *Reader) ReadPlaneF32Array(count int) ([]float32, error) {
	words, err := r.ReadPlaneU32Array(count)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(words))
	for i, w := range words {
		out[i] = math.Float32frombits(w)
	}
	return out, nil
}

// Cumsum turns an array of successive differences into absolute values in
// place and returns it. Sums wrap on int32 overflow, matching the encoder.
func Cumsum(deltas []int32) []int32 {
	for i := 1; i < len(deltas); i++ {
		deltas[i] += deltas[i-1]
	}
	return deltas
}

// Delta is the inverse of Cumsum. It returns a new slice.
func Delta(values []int32) []int32 {
	out := make([]int32, len(values))
	var prev int32
	for i, v := range values {
		out[i] = v - prev
		prev = v
	}
	return out
}

// AppendPlaneU32 appends words to dst in plane layout.
func AppendPlaneU32(dst []byte, words []uint32) []byte {
	n := len(words)
	start := len(dst)
	dst = append(dst, make([]byte, n*4)...)
	planes := dst[start:]
	for i, w := range words {
		planes[i] = byte(w)
		planes[n+i] = byte(w >> 8)
		planes[2*n+i] = byte(w >> 16)
		planes[3*n+i] = byte(w >> 24)
	}
	return dst
}

// AppendPlaneI32 appends signed integers to dst in plane layout.
func AppendPlaneI32(dst []byte, values []int32) []byte {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = uint32(v)
	}
	return AppendPlaneU32(dst, words)
}

// AppendPlaneF32 appends the bit patterns of values to dst in plane layout.
func AppendPlaneF32(dst []byte, values []float32) []byte {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = math.Float32bits(v)
	}
	return AppendPlaneU32(dst, words)
}
