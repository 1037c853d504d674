package fuzztests

import (
	"encoding/binary"
	"testing"

	"odrtab/internal/odrtable"
	"odrtab/internal/odrtable/storage"
)

const (
	maxFuzzInput = 64 << 10 // 64 KiB
	// maxFuzzZSize ограничивает заявленный размер блоба, иначе фаззер
	// тратит время на гигабайтные аллокации
	maxFuzzZSize = 1 << 20
)

func addTableSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, storage.HeaderSize))
	for _, codec := range []odrtable.Codec{odrtable.Zlib, odrtable.Zstd, odrtable.LZ4} {
		b := odrtable.NewBuilderWithOptions(odrtable.BuilderOptions{Codec: codec})
		b.Add("foo", "a.cpp", 1, 1)
		b.Add("foo", "b.cpp", 2, 2)
		b.Add("bar", "a.cpp", 3, 3)
		data, err := b.Build("seed")
		if err != nil {
			f.Fatalf("seed table: %v", err)
		}
		f.Add(data)
		f.Add(append(data, data...))
	}
}

// clampInput copies the input and caps its length.
func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// hugeBlob reports whether any table header in data declares an oversized blob.
func hugeBlob(data []byte) bool {
	for len(data) >= storage.HeaderSize {
		h, err := storage.ReadHeader(data)
		if err != nil {
			return false
		}
		if h.ZSize > maxFuzzZSize {
			return true
		}
		size := h.Size()
		if size == 0 || size > uint64(len(data)) {
			return false
		}
		data = data[size:]
	}
	return false
}

// withVersion returns a copy of table with the version field replaced.
func withVersion(table []byte, v uint32) []byte {
	out := append([]byte(nil), table...)
	if len(out) >= 4 {
		binary.LittleEndian.PutUint32(out, v)
	}
	return out
}
