package container

import (
	"fmt"
	"testing"
)

func benchmarkContainer(b *testing.B, instances int, compress bool) []byte {
	b.Helper()
	ids := make([]int32, instances)
	parents := make([]int32, instances)
	names := make([]string, instances)
	floats := make([]float32, instances)
	for i := range ids {
		ids[i] = int32(i + 1)
		parents[i] = int32(i / 4)
		names[i] = fmt.Sprintf("Part%d", i)
		floats[i] = float32(i) * 0.25
	}

	w := NewWriter(WithCompression(compress))
	w.AddClass(0, "Part", false, ids)
	w.AddStrings(0, "Name", names)
	w.AddFloats(0, "Transparency", floats)
	w.AddInts(0, "Material", PropertyEnum, ids)
	if err := w.AddParents(ids, parents); err != nil {
		b.Fatal(err)
	}
	data, err := w.Bytes()
	if err != nil {
		b.Fatal(err)
	}
	return data
}

// BenchmarkDecode benchmarks decoding stored and compressed containers.
func BenchmarkDecode(b *testing.B) {
	for _, compress := range []bool{false, true} {
		data := benchmarkContainer(b, 4096, compress)
		b.Run(fmt.Sprintf("Compressed=%v", compress), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Decode(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkWriter benchmarks container assembly.
func BenchmarkWriter(b *testing.B) {
	b.Run("Stored", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			benchmarkContainer(b, 1024, false)
		}
	})

	b.Run("Compressed", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			benchmarkContainer(b, 1024, true)
		}
	})
}
