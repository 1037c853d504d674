package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// CurrentVersion is the table version written by this package.
const CurrentVersion uint32 = 0

// Fixed record sizes in bytes.
const (
	HeaderSize  = 16
	SymbolSize  = 12
	ZSymbolSize = 12
)

var (
	// ErrTruncated reports a field or region that runs past the end of its buffer.
	ErrTruncated = errors.New("odrtab: truncated table")
	// ErrMalformed reports offsets or strings that contradict each other.
	ErrMalformed = errors.New("odrtab: malformed table")
)

var le = binary.LittleEndian

// Header is the fixed-width prefix of a table.
type Header struct {
	Version      uint32
	SymbolOffset uint32 // от начала таблицы
	NumSymbols   uint32
	ZSize        uint32 // размер распакованного блоба
}

// Size returns the length of the whole table described by h.
func (h Header) Size() uint64 {
	return uint64(h.SymbolOffset) + uint64(h.NumSymbols)*SymbolSize
}

// PutHeader writes h into the first HeaderSize bytes of dst.
func PutHeader(dst []byte, h Header) {
	_ = dst[HeaderSize-1]
	le.PutUint32(dst[0:], h.Version)
	le.PutUint32(dst[4:], h.SymbolOffset)
	le.PutUint32(dst[8:], h.NumSymbols)
	le.PutUint32(dst[12:], h.ZSize)
}

// ReadHeader decodes the header at the start of table.
func ReadHeader(table []byte) (Header, error) {
	if len(table) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(table))
	}
	return Header{
		Version:      le.Uint32(table[0:]),
		SymbolOffset: le.Uint32(table[4:]),
		NumSymbols:   le.Uint32(table[8:]),
		ZSize:        le.Uint32(table[12:]),
	}, nil
}

// ReadProducer returns the NUL-terminated producer string that follows the header.
func ReadProducer(table []byte) (string, error) {
	if len(table) < HeaderSize {
		return "", fmt.Errorf("%w: no room for producer", ErrTruncated)
	}
	rest := table[HeaderSize:]
	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		return "", fmt.Errorf("%w: producer is not NUL-terminated", ErrMalformed)
	}
	return string(rest[:n]), nil
}
