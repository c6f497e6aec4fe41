package asset

import (
	"context"
	"testing"
)

// BenchmarkDecode benchmarks sniffing and decoding each input form.
func BenchmarkDecode(b *testing.B) {
	binary := minimalContainer(b)

	inputs := map[string][]byte{
		"Container": binary,
		"XML":       []byte(xmlDocument),
		"Gzip":      gzipped(b, binary),
		"Zstd":      zstded(b, binary),
	}
	for name, data := range inputs {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if res := Decode("1", data); !res.Valid {
					b.Fatal(res.Err)
				}
			}
		})
	}
}

// BenchmarkDecodeBatch benchmarks the worker pool on many small assets.
func BenchmarkDecodeBatch(b *testing.B) {
	binary := minimalContainer(b)
	inputs := make([]Input, 256)
	for i := range inputs {
		inputs[i] = Input{AssetID: "bench", Data: binary}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DecodeBatch(context.Background(), inputs)
	}
}
