package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTable собирает таблицу вручную, без билдера.
func makeTable(producer string, blob []byte, syms ...Symbol) []byte {
	out := make([]byte, HeaderSize)
	out = append(out, producer...)
	out = append(out, 0)
	out = append(out, blob...)
	off := len(out)
	for _, s := range syms {
		out = AppendSymbol(out, s)
	}
	PutHeader(out, Header{
		Version:      CurrentVersion,
		SymbolOffset: uint32(off),
		NumSymbols:   uint32(len(syms)),
		ZSize:        42,
	})
	return out
}

func TestReadHeaderTruncated(t *testing.T) {
	_, err := ReadHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseRegions(t *testing.T) {
	syms := []Symbol{
		{NameHash: 0x1122334455667788, ODRHash: 0xAAAA},
		{NameHash: 7, ODRHash: 0xBBBB},
	}
	table := makeTable("clang", []byte("zzz"), syms...)
	// хвост следующей таблицы не должен мешать
	data := append(table, 0xFF, 0xFF)

	v, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "clang", v.Producer)
	assert.Equal(t, []byte("zzz"), v.Compressed)
	assert.Equal(t, uint32(42), v.Header.ZSize)
	assert.Equal(t, len(table), v.Size())
	require.Equal(t, 2, v.Len())
	assert.Equal(t, syms[0], v.Symbol(0))
	assert.Equal(t, syms[1], v.Symbol(1))
}

func TestParseEmptyProducer(t *testing.T) {
	v, err := Parse(makeTable("", []byte{1}))
	require.NoError(t, err)
	assert.Equal(t, "", v.Producer)
	assert.Equal(t, []byte{1}, v.Compressed)
	assert.Equal(t, 0, v.Len())
}

func TestParseRejectsOverlappingOffset(t *testing.T) {
	table := makeTable("gcc", nil)
	h, err := ReadHeader(table)
	require.NoError(t, err)
	h.SymbolOffset = HeaderSize
	PutHeader(table, h)

	_, err = Parse(table)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseTruncatedSymbols(t *testing.T) {
	table := makeTable("gcc", []byte{1, 2}, Symbol{NameHash: 1, ODRHash: 2})
	_, err := Parse(table[:len(table)-1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseRejectsSmallBlob(t *testing.T) {
	table := makeTable("gcc", []byte{1}, Symbol{NameHash: 1}, Symbol{NameHash: 2}, Symbol{NameHash: 3}, Symbol{NameHash: 4})
	h, err := ReadHeader(table)
	require.NoError(t, err)
	h.ZSize = 4*ZSymbolSize
	PutHeader(table, h)

	_, err = Parse(table)
	require.ErrorIs(t, err, ErrMalformed)

	h.ZSize++
	PutHeader(table, h)
	_, err = Parse(table)
	require.NoError(t, err)
}

func TestReadProducerWithoutTerminator(t *testing.T) {
	table := make([]byte, HeaderSize)
	table = append(table, "no-nul"...)
	_, err := ReadProducer(table)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestStrGet(t *testing.T) {
	strtab := []byte("\x00foo\x00bar\x00")
	cases := []struct {
		off  Str
		want string
	}{
		{0, ""},
		{1, "foo"},
		{5, "bar"},
		{2, "oo"},
	}
	for _, tc := range cases {
		got, err := tc.off.Get(strtab)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "offset %d", tc.off)
	}

	_, err := Str(9).Get(strtab)
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Str(1).Get([]byte("\x00abc"))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestZSymbolRecords(t *testing.T) {
	var blob []byte
	blob = AppendZSymbol(blob, ZSymbol{Name: 1, File: 5, Line: 10})
	blob = AppendZSymbol(blob, ZSymbol{Name: 9, File: 5, Line: 20})
	blob = append(blob, "\x00foo\x00a.cpp\x00"...)

	z, err := ReadZSymbol(blob, 1)
	require.NoError(t, err)
	assert.Equal(t, ZSymbol{Name: 9, File: 5, Line: 20}, z)

	strtab, err := Strtab(blob, 2)
	require.NoError(t, err)
	file, err := z.File.Get(strtab)
	require.NoError(t, err)
	assert.Equal(t, "a.cpp", file)

	_, err = ReadZSymbol(blob[:2*ZSymbolSize], 2)
	require.ErrorIs(t, err, ErrTruncated)
	_, err = Strtab(blob[:ZSymbolSize], 2)
	require.ErrorIs(t, err, ErrTruncated)
}
