package storage

import (
	"bytes"
	"fmt"
)

// Symbol is the uncompressed record scanned on every check.
type Symbol struct {
	NameHash uint64
	ODRHash  uint32
}

// AppendSymbol appends the encoded form of s to dst.
func AppendSymbol(dst []byte, s Symbol) []byte {
	dst = le.AppendUint64(dst, s.NameHash)
	return le.AppendUint32(dst, s.ODRHash)
}

// Str is an offset into a string table.
type Str uint32

// Get returns the NUL-terminated string starting at s.
func (s Str) Get(strtab []byte) (string, error) {
	if uint64(s) >= uint64(len(strtab)) {
		return "", fmt.Errorf("%w: string offset %d outside %d-byte string table", ErrTruncated, s, len(strtab))
	}
	rest := strtab[s:]
	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		return "", fmt.Errorf("%w: string at offset %d is not NUL-terminated", ErrMalformed, s)
	}
	return string(rest[:n]), nil
}

// ZSymbol is the detail record kept inside the compressed blob.
type ZSymbol struct {
	Name Str
	File Str
	Line uint32
}

// AppendZSymbol appends the encoded form of z to dst.
func AppendZSymbol(dst []byte, z ZSymbol) []byte {
	dst = le.AppendUint32(dst, uint32(z.Name))
	dst = le.AppendUint32(dst, uint32(z.File))
	return le.AppendUint32(dst, z.Line)
}

// ReadZSymbol decodes the i-th detail record of a decompressed blob.
func ReadZSymbol(blob []byte, i int) (ZSymbol, error) {
	off := uint64(i) * ZSymbolSize
	if i < 0 || off+ZSymbolSize > uint64(len(blob)) {
		return ZSymbol{}, fmt.Errorf("%w: detail record %d outside %d-byte blob", ErrTruncated, i, len(blob))
	}
	b := blob[off:]
	return ZSymbol{
		Name: Str(le.Uint32(b[0:])),
		File: Str(le.Uint32(b[4:])),
		Line: le.Uint32(b[8:]),
	}, nil
}

// Strtab returns the string table region of a blob that holds n detail records.
func Strtab(blob []byte, n int) ([]byte, error) {
	off := uint64(n) * ZSymbolSize
	if off > uint64(len(blob)) {
		return nil, fmt.Errorf("%w: %d detail records do not fit in %d-byte blob", ErrTruncated, n, len(blob))
	}
	return blob[off:], nil
}
