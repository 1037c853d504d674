// Package loader turns link inputs on disk into odrtable.InputFile values.
package loader

import (
	"bytes"
	"context"
	"debug/elf"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"odrtab/internal/odrtable"
	"odrtab/internal/trace"
)

// SectionName is the ELF section that carries the tables of an object file.
// A relocatable link concatenates the sections of its inputs, which is why
// one input may hold several tables.
const SectionName = ".odrtab"

var elfMagic = []byte(elf.ELFMAG)

// Load reads paths with up to jobs files in flight (0 = GOMAXPROCS).
// The result keeps the order of paths; Source is the path string.
func Load(ctx context.Context, paths []string, jobs int) ([]odrtable.InputFile, error) {
	inputs := make([]odrtable.InputFile, len(paths))
	if len(paths) == 0 {
		return inputs, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	parent := trace.SpanFromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			span := trace.Begin(tracer, trace.ScopeInput, "load "+path, parent)
			data, err := ReadFile(path)
			if err != nil {
				span.End("failed")
				return err
			}
			span.WithExtra("bytes", fmt.Sprint(len(data))).End("")
			// индекс i уникален для горутины, мьютекс не нужен
			inputs[i] = odrtable.InputFile{Source: path, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// ReadFile returns the table bytes of one input. ELF objects contribute the
// contents of SectionName (nothing if they have none); any other file is
// taken as raw concatenated tables.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, elfMagic) {
		return data, nil
	}
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()
	sec := f.Section(SectionName)
	if sec == nil {
		return nil, nil
	}
	out, err := sec.Data()
	if err != nil {
		return nil, fmt.Errorf("%s: section %s: %w", path, SectionName, err)
	}
	return out, nil
}
