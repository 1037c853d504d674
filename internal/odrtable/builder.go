package odrtable

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"odrtab/internal/odrtable/storage"
)

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Codec compresses the detail blob. nil means Zlib.
	Codec Codec
	// NameHash buckets names. nil means NameHash.
	NameHash func(name string) uint64
}

// Builder accumulates the ODR-relevant definitions of one translation unit.
// It is single-use and not safe for concurrent use.
type Builder struct {
	opts  BuilderOptions
	strs  *strtab
	syms  []storage.Symbol
	zsyms []storage.ZSymbol
	built bool
}

// NewBuilder creates a Builder with default options.
func NewBuilder() *Builder {
	return NewBuilderWithOptions(BuilderOptions{})
}

// NewBuilderWithOptions creates a Builder with the given options.
func NewBuilderWithOptions(opts BuilderOptions) *Builder {
	if opts.Codec == nil {
		opts.Codec = Zlib
	}
	if opts.NameHash == nil {
		opts.NameHash = NameHash
	}
	return &Builder{opts: opts, strs: newStrtab()}
}

// Add records one definition. odrHash is the caller's hash of the
// definition's content. A name containing NUL reads back truncated at the NUL.
func (b *Builder) Add(name, file string, line, odrHash uint32) {
	if b.built {
		panic("odrtable: Add after Build")
	}
	b.syms = append(b.syms, storage.Symbol{
		NameHash: b.opts.NameHash(name),
		ODRHash:  odrHash,
	})
	b.zsyms = append(b.zsyms, storage.ZSymbol{
		Name: b.strs.add(name),
		File: b.strs.add(file),
		Line: line,
	})
}

// Len returns the number of definitions added so far.
func (b *Builder) Len() int {
	return len(b.syms)
}

// Build serializes the table. On error nothing is returned and, unless the
// producer was rejected, the builder stays consumed.
func (b *Builder) Build(producer string) ([]byte, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if strings.IndexByte(producer, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProducer, producer)
	}
	b.built = true

	// ZSymbol[] ++ strtab, порядок строк = порядок добавления
	raw := make([]byte, 0, len(b.zsyms)*storage.ZSymbolSize+b.strs.size())
	for _, z := range b.zsyms {
		raw = storage.AppendZSymbol(raw, z)
	}
	raw = append(raw, b.strs.bytes()...)

	zsize, err := safecast.Conv[uint32](len(raw))
	if err != nil {
		return nil, fmt.Errorf("odrtable: detail blob too large: %w", err)
	}
	numSyms, err := safecast.Conv[uint32](len(b.syms))
	if err != nil {
		return nil, fmt.Errorf("odrtable: too many symbols: %w", err)
	}

	out := make([]byte, storage.HeaderSize, storage.HeaderSize+len(producer)+1+len(raw)/2+len(b.syms)*storage.SymbolSize)
	out = append(out, producer...)
	out = append(out, 0)
	out, err = b.opts.Codec.Compress(out, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompress, b.opts.Codec.Name(), err)
	}

	symOff, err := safecast.Conv[uint32](len(out))
	if err != nil {
		return nil, fmt.Errorf("odrtable: table too large: %w", err)
	}
	for _, s := range b.syms {
		out = storage.AppendSymbol(out, s)
	}
	storage.PutHeader(out, storage.Header{
		Version:      storage.CurrentVersion,
		SymbolOffset: symOff,
		NumSymbols:   numSyms,
		ZSize:        zsize,
	})
	return out, nil
}
