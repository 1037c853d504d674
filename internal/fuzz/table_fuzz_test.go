package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"odrtab/internal/odrtable"
	"odrtab/internal/odrtable/storage"
)

// checkTimeout is the maximum time allowed for checking a single input.
const checkTimeout = 5 * time.Second

func FuzzParse(f *testing.F) {
	addTableSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		v, err := storage.Parse(input)
		if err != nil {
			if !errors.Is(err, storage.ErrTruncated) && !errors.Is(err, storage.ErrMalformed) {
				t.Fatalf("unexpected error class: %v", err)
			}
			return
		}
		if v.Size() > len(input) {
			t.Fatalf("view size %d beyond input %d", v.Size(), len(input))
		}
		for i := range v.Len() {
			_ = v.Symbol(i)
		}
	})
}

func FuzzReadTables(f *testing.F) {
	addTableSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		if hugeBlob(input) {
			t.Skip("declared blob too large")
		}
		_, _ = odrtable.ReadTables(input, nil)
	})
}

// FuzzCheckNoHang pairs the fuzzed bytes with a valid table so conflicts
// force the lazy decompression path.
func FuzzCheckNoHang(f *testing.F) {
	addTableSeeds(f)
	b := odrtable.NewBuilder()
	b.Add("foo", "base.cpp", 1, 99)
	b.Add("bar", "base.cpp", 2, 99)
	base, err := b.Build("seed")
	if err != nil {
		f.Fatalf("base table: %v", err)
	}
	f.Add(withVersion(base, 1))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		if hugeBlob(input) {
			t.Skip("declared blob too large")
		}
		inputs := []odrtable.InputFile{
			{Source: "base", Data: base},
			{Source: "fuzz", Data: input},
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = odrtable.CheckWithOptions(context.Background(), inputs, odrtable.CheckOptions{})
		}()
		select {
		case <-done:
		case <-time.After(checkTimeout):
			t.Fatalf("check did not finish within %v", checkTimeout)
		}
	})
}
