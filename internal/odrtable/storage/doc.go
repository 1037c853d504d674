// Package storage describes the byte layout of an odrtab, the table a
// compiler front end embeds into every object file so that the link step can
// compare definitions across translation units.
//
// # Layout
//
// One table:
//
//	+--------+-------------------+-----------------------------------+-----------+
//	| Header | Producer \0       | compressed(ZSymbol[N] ++ strtab)  | Symbol[N] |
//	+--------+-------------------+-----------------------------------+-----------+
//
// Header:
//
//	+----------------+---------------------+-------------------+--------------+
//	| Version (u32)  | SymbolOffset (u32)  | NumSymbols (u32)  | ZSize (u32)  |
//	+----------------+---------------------+-------------------+--------------+
//
// SymbolOffset counts from the start of the table. ZSize is the size of the
// blob after decompression. Symbol is {NameHash u64, ODRHash u32}; ZSymbol is
// {Name u32, File u32, Line u32} where Name and File are offsets into the
// string table that follows the ZSymbol array inside the blob. Symbol[i] and
// ZSymbol[i] describe the same definition.
//
// All integers are little-endian. Tables may be concatenated; Header.Size
// is the distance from one table to the next.
//
// The package only decodes and encodes fields. Every read is bounds-checked
// and reports ErrTruncated or ErrMalformed instead of trusting offsets.
package storage
