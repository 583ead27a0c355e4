//go:build bench
// +build bench

package mcap

import (
	"bytes"
	"io"
	"testing"
)

func BenchmarkWalker_SkipBodies(b *testing.B) {
	benchmarks := []struct {
		name     string
		records  int
		bodySize int
	}{
		{name: "many small", records: 10000, bodySize: 64},
		{name: "few large", records: 16, bodySize: 1 << 20},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			body := bytes.Repeat([]byte("x"), bm.bodySize)
			for i := 0; i < bm.records; i++ {
				if _, err := w.WriteRecord(OpMessage, body); err != nil {
					b.Fatal(err)
				}
			}
			if err := w.WriteFooter(); err != nil {
				b.Fatal(err)
			}
			data := buf.Bytes()

			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				walker := NewWalker(bytes.NewReader(data))
				for {
					rec, err := walker.Next()
					if err == io.EOF {
						break
					}
					if err != nil {
						b.Fatal(err)
					}
					if err := walker.SkipBody(rec); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}
