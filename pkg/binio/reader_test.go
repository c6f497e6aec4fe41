package binio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestReader(t *testing.T) {
	data := []byte{0x7f}
	data = binary.LittleEndian.AppendUint16(data, 0xbeef)
	data = binary.LittleEndian.AppendUint32(data, 0xdeadbeef)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(1.5))
	data = binary.LittleEndian.AppendUint32(data, 4)
	data = append(data, "Part"...)

	r := NewReader(data)

	t.Run("Primitives", func(t *testing.T) {
		u8, err := r.ReadU8()
		if err != nil || u8 != 0x7f {
			t.Fatalf("ReadU8: got %x, %v", u8, err)
		}
		u16, err := r.ReadU16()
		if err != nil || u16 != 0xbeef {
			t.Fatalf("ReadU16: got %x, %v", u16, err)
		}
		u32, err := r.ReadU32()
		if err != nil || u32 != 0xdeadbeef {
			t.Fatalf("ReadU32: got %x, %v", u32, err)
		}
		f, err := r.ReadF32()
		if err != nil || f != 1.5 {
			t.Fatalf("ReadF32: got %v, %v", f, err)
		}
		s, err := r.ReadLengthPrefixedString()
		if err != nil || s != "Part" {
			t.Fatalf("ReadLengthPrefixedString: got %q, %v", s, err)
		}
		if r.Remaining() != 0 {
			t.Errorf("Remaining: got %d, want 0", r.Remaining())
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		if _, err := r.ReadU8(); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("ReadU8 past end: got %v, want ErrOutOfBounds", err)
		}
		if err := r.Seek(len(data) + 1); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Seek past end: got %v, want ErrOutOfBounds", err)
		}
	})

	t.Run("FailedReadKeepsCursor", func(t *testing.T) {
		r := NewReader([]byte{1, 2, 3})
		if _, err := r.ReadU32(); err == nil {
			t.Fatal("expected error reading u32 from 3 bytes")
		}
		if r.Pos() != 0 {
			t.Errorf("Pos after failed read: got %d, want 0", r.Pos())
		}
	})

	t.Run("TruncatedString", func(t *testing.T) {
		buf := binary.LittleEndian.AppendUint32(nil, 10)
		buf = append(buf, "short"...)
		r := NewReader(buf)
		if _, err := r.ReadLengthPrefixedString(); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
		if r.Pos() != 0 {
			t.Errorf("Pos: got %d, want 0", r.Pos())
		}
	})
}

func TestPlaneI32Array(t *testing.T) {
	t.Run("ByteArrangement", func(t *testing.T) {
		// Two elements: 0x04030201 and 0x08070605.
		planes := []byte{0x01, 0x05, 0x02, 0x06, 0x03, 0x07, 0x04, 0x08}
		got, err := NewReader(planes).ReadPlaneI32Array(2)
		if err != nil {
			t.Fatalf("ReadPlaneI32Array: %v", err)
		}
		want := []int32{0x04030201, 0x08070605}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("element %d: got %#x, want %#x", i, got[i], want[i])
			}
		}
	})

	t.Run("DeltaRoundTrip", func(t *testing.T) {
		want := []int32{5, -3, 100000}
		encoded := AppendPlaneI32(nil, Delta(want))

		deltas, err := NewReader(encoded).ReadPlaneI32Array(len(want))
		if err != nil {
			t.Fatalf("ReadPlaneI32Array: %v", err)
		}
		got := Cumsum(deltas)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("element %d: got %d, want %d", i, got[i], want[i])
			}
		}
	})

	t.Run("WrappingDelta", func(t *testing.T) {
		want := []int32{math.MaxInt32, math.MinInt32, 0}
		got := Cumsum(Delta(want))
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("element %d: got %d, want %d", i, got[i], want[i])
			}
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		if _, err := NewReader(make([]byte, 7)).ReadPlaneI32Array(2); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
	})
}

func TestPlaneF32Array(t *testing.T) {
	want := []float32{0, 1, -2.25, float32(math.Inf(1))}
	got, err := NewReader(AppendPlaneF32(nil, want)).ReadPlaneF32Array(len(want))
	if err != nil {
		t.Fatalf("ReadPlaneF32Array: %v", err)
	}
	for i := range want {
		if math.Float32bits(got[i]) != math.Float32bits(want[i]) {
			t.Errorf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}

	nan := math.Float32frombits(0x7fc00001)
	got, err = NewReader(AppendPlaneF32(nil, []float32{nan})).ReadPlaneF32Array(1)
	if err != nil {
		t.Fatalf("ReadPlaneF32Array: %v", err)
	}
	if math.Float32bits(got[0]) != 0x7fc00001 {
		t.Errorf("NaN payload: got %#x, want 0x7fc00001", math.Float32bits(got[0]))
	}
}
