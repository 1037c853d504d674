package odrtable

import (
	"fmt"

	"odrtab/internal/odrtable/storage"
)

// ReadTables decodes every table in data, detail blobs included. It is meant
// for inspection tools; Check never decodes tables this eagerly.
func ReadTables(data []byte, codec Codec) ([]Table, error) {
	if codec == nil {
		codec = Zlib
	}
	var out []Table
	for len(data) >= storage.HeaderSize {
		hdr, err := storage.ReadHeader(data)
		if err != nil {
			return nil, err
		}
		if hdr.Version != storage.CurrentVersion {
			return nil, fmt.Errorf("%w: table %d has version %d, want %d", ErrUnsupportedVersion, len(out), hdr.Version, storage.CurrentVersion)
		}
		view, err := storage.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", len(out), err)
		}
		tab, err := decodeTable(view, codec)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", len(out), err)
		}
		out = append(out, tab)
		data = data[view.Size():]
	}
	return out, nil
}

func decodeTable(view storage.View, codec Codec) (Table, error) {
	blob := make([]byte, view.Header.ZSize)
	if err := codec.Decompress(blob, view.Compressed); err != nil {
		return Table{}, fmt.Errorf("%w: %s: %w", ErrDecompress, codec.Name(), err)
	}
	strtab, err := storage.Strtab(blob, view.Len())
	if err != nil {
		return Table{}, err
	}
	tab := Table{
		Version:  view.Header.Version,
		Producer: view.Producer,
		Symbols:  make([]Entry, view.Len()),
	}
	for i := range tab.Symbols {
		z, err := storage.ReadZSymbol(blob, i)
		if err != nil {
			return Table{}, err
		}
		name, err := z.Name.Get(strtab)
		if err != nil {
			return Table{}, err
		}
		file, err := z.File.Get(strtab)
		if err != nil {
			return Table{}, err
		}
		sym := view.Symbol(i)
		tab.Symbols[i] = Entry{
			Name:     name,
			File:     file,
			Line:     z.Line,
			NameHash: sym.NameHash,
			ODRHash:  sym.ODRHash,
		}
	}
	return tab, nil
}
