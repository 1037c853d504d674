package storage

import "fmt"

// View exposes the regions of one table without copying them.
type View struct {
	Header     Header
	Producer   string
	Compressed []byte
	symbols    []byte
}

// Parse splits the table at the start of data into its regions.
// Bytes past Header.Size belong to the next table and are ignored.
func Parse(data []byte) (View, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return View{}, err
	}
	producer, err := ReadProducer(data)
	if err != nil {
		return View{}, err
	}
	blobStart := uint64(HeaderSize) + uint64(len(producer)) + 1
	if uint64(h.SymbolOffset) < blobStart {
		return View{}, fmt.Errorf("%w: symbol offset %d overlaps producer ending at %d", ErrMalformed, h.SymbolOffset, blobStart)
	}
	end := h.Size()
	if end > uint64(len(data)) {
		return View{}, fmt.Errorf("%w: table needs %d bytes, have %d", ErrTruncated, end, len(data))
	}
	// минимум: записи ZSymbol и ведущий NUL таблицы строк
	if need := uint64(h.NumSymbols)*ZSymbolSize + 1; uint64(h.ZSize) < need {
		return View{}, fmt.Errorf("%w: %d-byte detail blob cannot hold %d records", ErrMalformed, h.ZSize, h.NumSymbols)
	}
	return View{
		Header:     h,
		Producer:   producer,
		Compressed: data[blobStart:h.SymbolOffset],
		symbols:    data[h.SymbolOffset:end],
	}, nil
}

// Len returns the number of symbols.
func (v View) Len() int {
	return len(v.symbols) / SymbolSize
}

// Symbol returns the i-th compact record. i must be in [0, Len()).
func (v View) Symbol(i int) Symbol {
	b := v.symbols[i*SymbolSize : (i+1)*SymbolSize]
	return Symbol{
		NameHash: le.Uint64(b[0:]),
		ODRHash:  le.Uint32(b[8:]),
	}
}

// Size returns the table length, i.e. the offset of the next table.
func (v View) Size() int {
	return int(v.Header.Size())
}
